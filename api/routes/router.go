package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tillpoint/tillpoint-backend/api/controllers"
	"github.com/tillpoint/tillpoint-backend/api/middleware"
	"github.com/tillpoint/tillpoint-backend/api/validators"
	"github.com/tillpoint/tillpoint-backend/internal/billing"
	"github.com/tillpoint/tillpoint-backend/internal/cart"
	"github.com/tillpoint/tillpoint-backend/internal/catalog"
	"github.com/tillpoint/tillpoint-backend/internal/customers"
	"github.com/tillpoint/tillpoint-backend/internal/refunds"
	"github.com/tillpoint/tillpoint-backend/internal/reports"
	"github.com/tillpoint/tillpoint-backend/internal/transactions"
	"github.com/tillpoint/tillpoint-backend/pkg/config"
	"github.com/tillpoint/tillpoint-backend/pkg/db"
	"github.com/tillpoint/tillpoint-backend/pkg/logger"
	"github.com/tillpoint/tillpoint-backend/pkg/metrics"
	"github.com/tillpoint/tillpoint-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	sales *metrics.SalesMetrics,
	catalogService catalog.Service,
	customerService customers.Service,
	checkoutService cart.Service,
	billingService billing.Service,
	refundService refunds.Service,
	transactionService transactions.Service,
	reportService reports.Service,
) http.Handler {
	validators.ConfigurePaging(cfg.Listing)

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbClient, redisClient))
	})

	if sales != nil {
		r.Method(http.MethodGet, "/metrics", sales.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Idempotency(redisClient, logg, cfg.Checkout.IdempotencyTTL))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(catalogService, logg))
			r.Post("/", controllers.CreateProduct(catalogService, logg))
			r.Get("/by-sku/{sku}", controllers.GetProductBySKU(catalogService, logg))
			r.Get("/{productID}", controllers.GetProduct(catalogService, logg))
			r.Put("/{productID}", controllers.UpdateProduct(catalogService, logg))
			r.Delete("/{productID}", controllers.DeleteProduct(catalogService, logg))
		})

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", controllers.ListCustomers(customerService, logg))
			r.Post("/", controllers.CreateCustomer(customerService, logg))
			r.Get("/{customerID}", controllers.GetCustomer(customerService, logg))
			r.Put("/{customerID}", controllers.UpdateCustomer(customerService, logg))
			r.Delete("/{customerID}", controllers.DeleteCustomer(customerService, logg))
		})

		r.Post("/checkout", controllers.Checkout(checkoutService, logg))

		r.Route("/bills", func(r chi.Router) {
			r.Get("/", controllers.ListBills(billingService, logg))
			r.Get("/{billID}", controllers.GetBill(billingService, logg))
			r.Get("/by-order/{orderNumber}", controllers.GetBillByOrderNumber(billingService, logg))
		})

		r.Route("/refunds", func(r chi.Router) {
			r.Get("/", controllers.ListRefunds(refundService, logg))
			r.Post("/", controllers.RequestRefund(refundService, logg))
			r.Get("/{refundID}", controllers.GetRefund(refundService, logg))
			r.Post("/{refundID}/decision", controllers.DecideRefund(refundService, logg))
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", controllers.ListTransactions(transactionService, logg))
			r.Post("/expenses", controllers.RecordExpense(transactionService, logg))
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/financial", controllers.FinancialReport(reportService, logg))
			r.Get("/sales", controllers.SalesReport(reportService, logg))
			r.Get("/staff", controllers.StaffReport(reportService, logg))
		})
	})

	return r
}
