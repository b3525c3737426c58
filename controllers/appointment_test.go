package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meddesk/appointment-api/models"
	"github.com/meddesk/appointment-api/scheduling"
)

// fakeScheduler returns a canned appointment or error for every operation.
type fakeScheduler struct {
	appt *models.Appointment
	list []models.Appointment
	err  error
}

func (f *fakeScheduler) Create(identity scheduling.Identity, doctorID uint, date time.Time, slot string) (*models.Appointment, error) {
	return f.appt, f.err
}

func (f *fakeScheduler) Pay(ctx context.Context, identity scheduling.Identity, apptID uint, amount int64, paymentMethodRef string) (*models.Appointment, error) {
	return f.appt, f.err
}

func (f *fakeScheduler) Confirm(identity scheduling.Identity, apptID uint) (*models.Appointment, error) {
	return f.appt, f.err
}

func (f *fakeScheduler) Reject(identity scheduling.Identity, apptID uint) (*models.Appointment, error) {
	return f.appt, f.err
}

func (f *fakeScheduler) Cancel(identity scheduling.Identity, apptID uint) (*models.Appointment, error) {
	return f.appt, f.err
}

func (f *fakeScheduler) Get(identity scheduling.Identity, apptID uint) (*models.Appointment, error) {
	return f.appt, f.err
}

func (f *fakeScheduler) TodayForDoctor(identity scheduling.Identity) ([]models.Appointment, error) {
	return f.list, f.err
}

func (f *fakeScheduler) HistoryForPatient(identity scheduling.Identity, filter scheduling.HistoryFilter) ([]models.Appointment, error) {
	return f.list, f.err
}

func newTestApp(scheduler Scheduler) *fiber.App {
	app := fiber.New()
	// Stand-in for the JWT middleware.
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", uint(1))
		c.Locals("role", models.RolePatient)
		return c.Next()
	})

	h := &AppointmentHandler{Scheduler: scheduler}
	app.Post("/appointments/create", h.CreateAppointment)
	app.Post("/appointments/pay/:id", h.PayAppointment)
	app.Post("/appointments/confirm/:id", h.ConfirmAppointment)
	app.Delete("/appointments/cancel/:id", h.CancelAppointment)
	app.Get("/appointments/history", h.History)
	app.Get("/appointments/:id", h.GetAppointment)
	return app
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestCreateAppointmentResponds201(t *testing.T) {
	app := newTestApp(&fakeScheduler{appt: &models.Appointment{Status: models.StatusPending}})

	resp, err := app.Test(jsonRequest(http.MethodPost, "/appointments/create",
		`{"doctor_id":2,"date":"2024-12-20","time":"09:00"}`))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func TestCreateAppointmentRejectsBadDate(t *testing.T) {
	app := newTestApp(&fakeScheduler{})

	resp, err := app.Test(jsonRequest(http.MethodPost, "/appointments/create",
		`{"doctor_id":2,"date":"20-12-2024","time":"09:00"}`))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDomainErrorStatusMapping(t *testing.T) {
	cases := []struct {
		kind scheduling.Kind
		want int
	}{
		{scheduling.KindValidation, fiber.StatusBadRequest},
		{scheduling.KindInvalidTransition, fiber.StatusBadRequest},
		{scheduling.KindNotFound, fiber.StatusNotFound},
		{scheduling.KindForbidden, fiber.StatusForbidden},
		{scheduling.KindConflict, fiber.StatusConflict},
		{scheduling.KindPaymentFailed, fiber.StatusPaymentRequired},
		{scheduling.KindInternal, fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		app := newTestApp(&fakeScheduler{
			err: &scheduling.Error{Kind: tc.kind, Message: "boom"},
		})

		resp, err := app.Test(jsonRequest(http.MethodPost, "/appointments/pay/1",
			`{"amount":5000,"payment_method":"pm_card"}`))
		require.NoError(t, err)
		assert.Equal(t, tc.want, resp.StatusCode, "kind %s", tc.kind)
	}
}

func TestTransitionRejectsNonNumericID(t *testing.T) {
	app := newTestApp(&fakeScheduler{appt: &models.Appointment{}})

	resp, err := app.Test(jsonRequest(http.MethodPost, "/appointments/confirm/abc", ""))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCancelRespondsOK(t *testing.T) {
	app := newTestApp(&fakeScheduler{appt: &models.Appointment{Status: models.StatusCancelled}})

	resp, err := app.Test(jsonRequest(http.MethodDelete, "/appointments/cancel/1", ""))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestHistoryRejectsBadDates(t *testing.T) {
	app := newTestApp(&fakeScheduler{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/appointments/history?start_date=nope", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/appointments/history?end_date=2024/12/01", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
