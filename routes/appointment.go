package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meddesk/appointment-api/controllers"
	"github.com/meddesk/appointment-api/middleware"
	"github.com/meddesk/appointment-api/scheduling"
)

// SetupAppointmentRoutes configures all appointment related routes
func SetupAppointmentRoutes(app *fiber.App, h *controllers.AppointmentHandler, jwtSecret string) {
	appointment := app.Group("/appointments", middleware.Protected(jwtSecret))

	appointment.Post("/create", middleware.RequireOperation(scheduling.OpCreate), h.CreateAppointment)
	appointment.Post("/pay/:id", middleware.RequireOperation(scheduling.OpPay), h.PayAppointment)
	appointment.Post("/confirm/:id", middleware.RequireOperation(scheduling.OpConfirm), h.ConfirmAppointment)
	appointment.Post("/reject/:id", middleware.RequireOperation(scheduling.OpReject), h.RejectAppointment)
	appointment.Delete("/cancel/:id", middleware.RequireOperation(scheduling.OpCancel), h.CancelAppointment)
	appointment.Get("/list", middleware.RequireOperation(scheduling.OpListToday), h.ListToday)
	appointment.Get("/history", middleware.RequireOperation(scheduling.OpHistory), h.History)
	appointment.Get("/:id", h.GetAppointment)
}
