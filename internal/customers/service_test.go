package customers

import (
	"context"
	"testing"

	"github.com/google/uuid"

	pkgerrors "github.com/tillpoint/tillpoint-backend/pkg/errors"
	"github.com/tillpoint/tillpoint-backend/pkg/listing"
	"github.com/tillpoint/tillpoint-backend/pkg/validation"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(NewMemoryStore())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func customerInput(name, email, phone string) CustomerInput {
	return CustomerInput{Name: name, Email: email, Phone: phone}
}

func TestCreateCustomerNormalizesEmail(t *testing.T) {
	svc := newTestService(t)

	dto, err := svc.CreateCustomer(context.Background(), customerInput("Asha Perera", " Asha@Example.COM ", "0771234567"))
	if err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}
	if dto.Email != "asha@example.com" {
		t.Fatalf("email = %q, want asha@example.com", dto.Email)
	}
}

func TestCreateCustomerValidationGate(t *testing.T) {
	svc := newTestService(t)

	cases := []struct {
		name  string
		input CustomerInput
		field string
	}{
		{"missing name", customerInput("", "asha@example.com", "0771234567"), "name"},
		{"bad email", customerInput("Asha", "not-an-email", "0771234567"), "email"},
		{"short phone", customerInput("Asha", "asha@example.com", "123"), "phone"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateCustomer(context.Background(), tc.input)
			appErr := pkgerrors.As(err)
			if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
				t.Fatalf("error = %v, want validation failure", err)
			}
			details, ok := appErr.Details().(validation.Errors)
			if !ok {
				t.Fatalf("details = %T, want validation.Errors", appErr.Details())
			}
			if _, found := details[tc.field]; !found {
				t.Fatalf("details = %v, want failure on %q", details, tc.field)
			}
		})
	}
}

func TestCreateCustomerDuplicateEmailConflicts(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.CreateCustomer(context.Background(), customerInput("Asha", "asha@example.com", "0771234567")); err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}
	_, err := svc.CreateCustomer(context.Background(), customerInput("Other Asha", "ASHA@example.com", "0719876543"))
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeConflict {
		t.Fatalf("error = %v, want conflict", err)
	}
}

func TestCustomerLifecycle(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.CreateCustomer(context.Background(), customerInput("Asha", "asha@example.com", "0771234567"))
	if err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}

	address := "12 Galle Rd"
	updated, err := svc.UpdateCustomer(context.Background(), created.ID, CustomerInput{
		Name:    "Asha Perera",
		Email:   "asha@example.com",
		Phone:   "0771234567",
		Address: &address,
	})
	if err != nil {
		t.Fatalf("UpdateCustomer: %v", err)
	}
	if updated.Name != "Asha Perera" || updated.Address == nil || *updated.Address != address {
		t.Fatalf("updated = %+v", updated)
	}

	if err := svc.DeleteCustomer(context.Background(), created.ID); err != nil {
		t.Fatalf("DeleteCustomer: %v", err)
	}
	_, err = svc.GetCustomer(context.Background(), created.ID)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("error = %v, want not found", err)
	}
}

func TestUpdateUnknownCustomer(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.UpdateCustomer(context.Background(), uuid.New(), customerInput("Asha", "asha@example.com", "0771234567"))
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("error = %v, want not found", err)
	}
}

func TestListCustomersSearchesNameAndEmail(t *testing.T) {
	svc := newTestService(t)

	seed := []CustomerInput{
		customerInput("Asha Perera", "asha@example.com", "0771234567"),
		customerInput("Nuwan Silva", "nuwan@example.com", "0712223334"),
		customerInput("Kamala Fernando", "kamala.asha@shop.lk", "0765556667"),
	}
	for _, in := range seed {
		if _, err := svc.CreateCustomer(context.Background(), in); err != nil {
			t.Fatalf("CreateCustomer(%s): %v", in.Email, err)
		}
	}

	result, err := svc.ListCustomers(context.Background(), listing.Spec{
		Search:        "ASHA",
		SortField:     "name",
		SortDirection: listing.Ascending,
		PageSize:      listing.PageSizeAll,
	})
	if err != nil {
		t.Fatalf("ListCustomers: %v", err)
	}
	if result.TotalEntries != 2 || len(result.Customers) != 2 {
		t.Fatalf("result = %+v, want two matches", result)
	}
	if result.Customers[0].Name != "Asha Perera" || result.Customers[1].Name != "Kamala Fernando" {
		t.Fatalf("order = %q, %q", result.Customers[0].Name, result.Customers[1].Name)
	}
}
