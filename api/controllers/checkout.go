package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/tillpoint/tillpoint-backend/api/responses"
	"github.com/tillpoint/tillpoint-backend/api/validators"
	"github.com/tillpoint/tillpoint-backend/internal/cart"
	"github.com/tillpoint/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/tillpoint/tillpoint-backend/pkg/errors"
	"github.com/tillpoint/tillpoint-backend/pkg/logger"
)

type checkoutRequest struct {
	CustomerName  string              `json:"customer_name" validate:"required"`
	CustomerPhone *string             `json:"customer_phone,omitempty"`
	CashierName   string              `json:"cashier_name" validate:"required"`
	PaymentMethod string              `json:"payment_method" validate:"required"`
	Items         []checkoutItemEntry `json:"items" validate:"required,min=1,dive"`
}

type checkoutItemEntry struct {
	ProductID string `json:"product_id" validate:"required,uuid4"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

func (r checkoutRequest) toInput() (cart.CheckoutInput, error) {
	method, err := enums.ParsePaymentMethod(strings.TrimSpace(r.PaymentMethod))
	if err != nil {
		return cart.CheckoutInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
	}

	items := make([]cart.CheckoutItem, 0, len(r.Items))
	for _, entry := range r.Items {
		productID, err := uuid.Parse(entry.ProductID)
		if err != nil {
			return cart.CheckoutInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
		}
		items = append(items, cart.CheckoutItem{ProductID: productID, Quantity: entry.Quantity})
	}

	return cart.CheckoutInput{
		CustomerName:  r.CustomerName,
		CustomerPhone: r.CustomerPhone,
		CashierName:   r.CashierName,
		PaymentMethod: method,
		Items:         items,
	}, nil
}

// Checkout turns the submitted cart into a persisted bill.
func Checkout(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		bill, err := svc.Checkout(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, bill)
	}
}
