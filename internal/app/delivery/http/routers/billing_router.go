package routers

import (
	"hospital-service/internal/app/delivery/http/controllers"
	"hospital-service/internal/app/delivery/http/middlewares"
	"hospital-service/internal/app/models"

	"github.com/go-chi/chi/v5"
)

func attachInvoiceRoutes(router chi.Router, middlewares *middlewares.Middlewares, invoiceController *controllers.InvoiceController) {
	router.Group(func(r chi.Router) {
		r.Use(middlewares.RequireRoles(models.RoleAccountant, models.RoleAdmin))
		r.Get("/overdue", invoiceController.Overdue)
		r.Get("/aging-report", invoiceController.AgingReport)
		r.Get("/outstanding", invoiceController.TotalOutstanding)
	})

	router.Get("/{id}", invoiceController.Get)
	router.Get("/{id}/pdf", invoiceController.InvoicePdf)
	router.Get("/{id}/payments", invoiceController.Payments)
}

func attachPaymentRoutes(router chi.Router, middlewares *middlewares.Middlewares, paymentRateLimiter *middlewares.RateLimiter, paymentController *controllers.PaymentController) {
	router.Group(func(r chi.Router) {
		r.Use(paymentRateLimiter.Limit)
		r.Post("/card", paymentController.CardPayment)
		r.Post("/bank-transfer", paymentController.BankTransfer)
		r.With(middlewares.RequireRoles(models.RoleReceptionist, models.RoleAccountant, models.RoleAdmin)).
			Post("/counter", paymentController.CounterPayment)
	})

	router.Group(func(r chi.Router) {
		r.Use(middlewares.RequireRoles(models.RoleAccountant, models.RoleAdmin))
		r.Get("/", paymentController.ListByDateRange)
		r.Get("/revenue", paymentController.Revenue)
		r.Get("/pending-verification", paymentController.PendingVerification)
		r.Post("/{id}/verify", paymentController.VerifyBankSlip)
	})

	router.Get("/{id}", paymentController.Get)
	router.Get("/{id}/receipt", paymentController.Receipt)
	router.Get("/{id}/bank-slip", paymentController.BankSlip)
}

func attachPaymentPlanRoutes(router chi.Router, middlewares *middlewares.Middlewares, paymentRateLimiter *middlewares.RateLimiter, paymentPlanController *controllers.PaymentPlanController) {
	router.With(middlewares.RequireRoles(models.RoleAccountant, models.RoleReceptionist, models.RoleAdmin)).
		Post("/", paymentPlanController.Create)

	router.Group(func(r chi.Router) {
		r.Use(middlewares.RequireRoles(models.RoleAccountant, models.RoleAdmin))
		r.Get("/overview", paymentPlanController.Overview)
		r.Get("/overdue-installments", paymentPlanController.OverdueInstallments)
		r.Get("/overdue", paymentPlanController.OverduePlans)
		r.Patch("/{id}/status", paymentPlanController.UpdateStatus)
		r.Put("/{id}/adjust", paymentPlanController.Adjust)
	})

	router.Get("/{id}", paymentPlanController.Get)
	router.With(paymentRateLimiter.Limit).
		Post("/{id}/installments/{number}/pay", paymentPlanController.PayInstallment)
}

func attachOrderRoutes(router chi.Router, middlewares *middlewares.Middlewares, orderController *controllers.OrderController) {
	router.With(middlewares.RequireRoles(models.RolePharmacist, models.RoleAdmin)).
		Post("/checkout", orderController.Checkout)
	router.Get("/{id}", orderController.Get)
}
