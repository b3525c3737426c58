package controllers

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/meddesk/appointment-api/middleware"
	"github.com/meddesk/appointment-api/models"
	"github.com/meddesk/appointment-api/scheduling"
	"github.com/meddesk/appointment-api/utils"
)

const dateLayout = "2006-01-02"

// Scheduler is what the appointment handlers need from the scheduling core.
type Scheduler interface {
	Create(identity scheduling.Identity, doctorID uint, date time.Time, slot string) (*models.Appointment, error)
	Pay(ctx context.Context, identity scheduling.Identity, apptID uint, amount int64, paymentMethodRef string) (*models.Appointment, error)
	Confirm(identity scheduling.Identity, apptID uint) (*models.Appointment, error)
	Reject(identity scheduling.Identity, apptID uint) (*models.Appointment, error)
	Cancel(identity scheduling.Identity, apptID uint) (*models.Appointment, error)
	Get(identity scheduling.Identity, apptID uint) (*models.Appointment, error)
	TodayForDoctor(identity scheduling.Identity) ([]models.Appointment, error)
	HistoryForPatient(identity scheduling.Identity, filter scheduling.HistoryFilter) ([]models.Appointment, error)
}

type AppointmentHandler struct {
	Scheduler Scheduler
}

// statusForKind maps domain error kinds to transport status codes.
func statusForKind(kind scheduling.Kind) int {
	switch kind {
	case scheduling.KindValidation, scheduling.KindInvalidTransition:
		return fiber.StatusBadRequest
	case scheduling.KindNotFound:
		return fiber.StatusNotFound
	case scheduling.KindForbidden:
		return fiber.StatusForbidden
	case scheduling.KindConflict:
		return fiber.StatusConflict
	case scheduling.KindPaymentFailed:
		return fiber.StatusPaymentRequired
	case scheduling.KindAuth:
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

func domainError(c *fiber.Ctx, err error) error {
	return c.Status(statusForKind(scheduling.KindOf(err))).JSON(fiber.Map{
		"message": err.Error(),
		"code":    scheduling.KindOf(err),
	})
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	return uint(id), err
}

// CreateAppointment books a slot with a doctor. Patient only.
func (h *AppointmentHandler) CreateAppointment(c *fiber.Ctx) error {
	var body struct {
		DoctorID uint   `json:"doctor_id"`
		Date     string `json:"date"`
		Time     string `json:"time"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Cannot parse JSON",
			Error:   err.Error(),
		})
	}

	date, err := time.Parse(dateLayout, body.Date)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Date must be in YYYY-MM-DD format",
			Error:   err.Error(),
		})
	}

	appt, err := h.Scheduler.Create(middleware.CallerIdentity(c), body.DoctorID, date, body.Time)
	if err != nil {
		return domainError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":     "Appointment created successfully",
		"appointment": appt,
	})
}

// PayAppointment charges the gateway and marks the appointment Paid. Patient only.
func (h *AppointmentHandler) PayAppointment(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid appointment id",
		})
	}

	var body struct {
		Amount        int64  `json:"amount"`
		PaymentMethod string `json:"payment_method"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Cannot parse JSON",
			Error:   err.Error(),
		})
	}

	appt, err := h.Scheduler.Pay(c.UserContext(), middleware.CallerIdentity(c), id, body.Amount, body.PaymentMethod)
	if err != nil {
		return domainError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":     "Appointment paid successfully",
		"appointment": appt,
	})
}

// ConfirmAppointment moves a Paid appointment to Confirmed. Doctor only.
func (h *AppointmentHandler) ConfirmAppointment(c *fiber.Ctx) error {
	return h.transition(c, "Appointment confirmed successfully", h.Scheduler.Confirm)
}

// RejectAppointment terminates an unconfirmed appointment. Doctor only.
func (h *AppointmentHandler) RejectAppointment(c *fiber.Ctx) error {
	return h.transition(c, "Appointment rejected", h.Scheduler.Reject)
}

// CancelAppointment terminates an unconfirmed appointment. Patient or doctor.
func (h *AppointmentHandler) CancelAppointment(c *fiber.Ctx) error {
	return h.transition(c, "Appointment cancelled successfully", h.Scheduler.Cancel)
}

func (h *AppointmentHandler) transition(c *fiber.Ctx, message string,
	apply func(scheduling.Identity, uint) (*models.Appointment, error)) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid appointment id",
		})
	}

	appt, err := apply(middleware.CallerIdentity(c), id)
	if err != nil {
		return domainError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":     message,
		"appointment": appt,
	})
}

// GetAppointment returns one appointment to one of its parties.
func (h *AppointmentHandler) GetAppointment(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid appointment id",
		})
	}

	appt, err := h.Scheduler.Get(middleware.CallerIdentity(c), id)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(appt)
}

// ListToday returns the calling doctor's appointments for today.
func (h *AppointmentHandler) ListToday(c *fiber.Ctx) error {
	appts, err := h.Scheduler.TodayForDoctor(middleware.CallerIdentity(c))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(appts)
}

// History returns the calling patient's appointments, with optional status and
// date-range filters.
func (h *AppointmentHandler) History(c *fiber.Ctx) error {
	filter := scheduling.HistoryFilter{
		Status: models.AppointmentStatus(c.Query("status")),
	}

	if raw := c.Query("start_date"); raw != "" {
		start, err := time.Parse(dateLayout, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
		filter.StartDate = start
	}
	if raw := c.Query("end_date"); raw != "" {
		end, err := time.Parse(dateLayout, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
		filter.EndDate = end
	}

	appts, err := h.Scheduler.HistoryForPatient(middleware.CallerIdentity(c), filter)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(appts)
}
