package routers

import (
	"hospital-service/internal/app/delivery/http/controllers"
	"hospital-service/internal/app/delivery/http/middlewares"
	"hospital-service/internal/app/models"

	"github.com/go-chi/chi/v5"
)

func attachDoctorRoutes(router chi.Router, slotController *controllers.SlotController, availabilityController *controllers.AvailabilityController) {
	router.Get("/{doctorID}/slots", slotController.FreeSlots)
	router.Get("/{doctorID}/availabilities", availabilityController.ListByDoctor)
}

func attachAvailabilityRoutes(router chi.Router, middlewares *middlewares.Middlewares, availabilityController *controllers.AvailabilityController) {
	router.Group(func(r chi.Router) {
		r.Use(middlewares.RequireRoles(models.RoleDoctor, models.RoleReceptionist, models.RoleAdmin))
		r.Post("/", availabilityController.CreateAvailability)
		r.Patch("/{id}", availabilityController.SetAvailable)
		r.Post("/templates", availabilityController.CreateTemplate)
	})
}

func attachAppointmentRoutes(router chi.Router, middlewares *middlewares.Middlewares, appointmentController *controllers.AppointmentController) {
	router.With(middlewares.RequireRoles(models.RolePatient, models.RoleReceptionist, models.RoleAdmin)).
		Post("/", appointmentController.Book)
	router.Get("/{id}", appointmentController.Get)
	router.Post("/{id}/cancel", appointmentController.Cancel)

	router.Group(func(r chi.Router) {
		r.Use(middlewares.RequireRoles(models.RoleDoctor, models.RoleReceptionist, models.RoleAdmin))
		r.Post("/{id}/complete", appointmentController.Complete)
		r.Post("/{id}/no-show", appointmentController.MarkNoShow)
	})
}

func attachPatientRoutes(router chi.Router, appointmentController *controllers.AppointmentController, invoiceController *controllers.InvoiceController) {
	router.Get("/{patientID}/appointments", appointmentController.ListByPatient)
	router.Get("/{patientID}/invoices", invoiceController.ListByPatient)
	router.Get("/{patientID}/invoice-summary", invoiceController.PatientSummary)
}
