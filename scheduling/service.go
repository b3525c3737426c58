package scheduling

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/meddesk/appointment-api/models"
	"github.com/meddesk/appointment-api/payments"
)

// Service runs the appointment lifecycle: creation, payment, confirmation,
// rejection and cancellation. All collaborators are injected; the clock is a
// field so tests can pin it.
type Service struct {
	store   Store
	gateway payments.Gateway
	cache   *DayCache
	fee     int64
	now     func() time.Time
}

// NewService builds a Service charging a flat consultation fee per appointment.
func NewService(store Store, gateway payments.Gateway, cache *DayCache, fee int64) *Service {
	return &Service{
		store:   store,
		gateway: gateway,
		cache:   cache,
		fee:     fee,
		now:     time.Now,
	}
}

// WithClock overrides the service clock (for testing).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create books a Pending appointment for the calling patient.
func (s *Service) Create(identity Identity, doctorID uint, date time.Time, slot string) (*models.Appointment, error) {
	if err := CheckRole(OpCreate, identity); err != nil {
		return nil, err
	}
	if err := ValidateSlot(date, slot, s.now()); err != nil {
		return nil, err
	}

	doctor, err := s.store.FindUser(doctorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErr("doctor not found")
		}
		return nil, internalErr("could not look up doctor", err)
	}
	if doctor.Role != models.RoleDoctor {
		return nil, validationErr("user %d is not a doctor", doctorID)
	}

	taken, err := s.store.SlotTaken(doctorID, date, slot)
	if err != nil {
		return nil, internalErr("could not check slot availability", err)
	}
	if taken {
		return nil, conflictErr("the slot is already taken")
	}

	appt := &models.Appointment{
		PatientID: identity.ID,
		DoctorID:  doctorID,
		Date:      date,
		Time:      slot,
		Price:     s.fee,
		Status:    models.StatusPending,
	}
	if err := s.store.CreateAppointment(appt); err != nil {
		// Two creates can pass the pre-check together; the unique index on
		// (doctor_id, date, time) settles who won.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, conflictErr("the slot is already taken")
		}
		return nil, internalErr("could not create appointment", err)
	}

	s.cache.Invalidate(doctorID, date)
	return appt, nil
}

// Pay charges the gateway and moves a Pending appointment to Paid. The gateway
// is only invoked once ownership, status and amount have all checked out; a
// declined charge leaves the appointment untouched.
func (s *Service) Pay(ctx context.Context, identity Identity, apptID uint, amount int64, paymentMethodRef string) (*models.Appointment, error) {
	if err := CheckRole(OpPay, identity); err != nil {
		return nil, err
	}
	appt, err := s.find(apptID)
	if err != nil {
		return nil, err
	}
	if err := checkOwnership(OpPay, identity, appt); err != nil {
		return nil, err
	}
	if err := checkTransition(appt.Status, models.StatusPaid); err != nil {
		return nil, err
	}

	if amount <= 0 {
		return nil, validationErr("payment amount must be positive")
	}
	if amount != appt.Price {
		return nil, validationErr("payment amount %d does not match the appointment price %d", amount, appt.Price)
	}
	if paymentMethodRef == "" {
		return nil, validationErr("payment method is required")
	}

	receipt, err := s.gateway.Charge(ctx, amount, paymentMethodRef)
	if err != nil {
		return nil, paymentErr("payment was declined", err)
	}

	details := &models.PaymentDetails{
		TransactionID: receipt.TransactionID,
		Amount:        receipt.Amount,
		Currency:      receipt.Currency,
	}
	return s.apply(appt, models.StatusPaid, details)
}

// Confirm moves a Paid appointment to Confirmed. Doctor only.
func (s *Service) Confirm(identity Identity, apptID uint) (*models.Appointment, error) {
	return s.transition(OpConfirm, identity, apptID, models.StatusConfirmed)
}

// Reject terminates a Pending or Paid appointment. Doctor only.
func (s *Service) Reject(identity Identity, apptID uint) (*models.Appointment, error) {
	return s.transition(OpReject, identity, apptID, models.StatusRejected)
}

// Cancel terminates a Pending or Paid appointment. Either party may cancel;
// Confirmed appointments cannot be cancelled.
func (s *Service) Cancel(identity Identity, apptID uint) (*models.Appointment, error) {
	return s.transition(OpCancel, identity, apptID, models.StatusCancelled)
}

// Get returns a single appointment to one of its parties.
func (s *Service) Get(identity Identity, apptID uint) (*models.Appointment, error) {
	appt, err := s.find(apptID)
	if err != nil {
		return nil, err
	}
	if err := checkOwnership(OpGet, identity, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

func (s *Service) find(apptID uint) (*models.Appointment, error) {
	appt, err := s.store.FindAppointment(apptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErr("appointment not found")
		}
		return nil, internalErr("could not load appointment", err)
	}
	return appt, nil
}

// transition runs the shared gate order for pure status moves: role, fetch,
// ownership, then status precondition. Ownership failures must surface before
// status failures.
func (s *Service) transition(op Operation, identity Identity, apptID uint, to models.AppointmentStatus) (*models.Appointment, error) {
	if err := CheckRole(op, identity); err != nil {
		return nil, err
	}
	appt, err := s.find(apptID)
	if err != nil {
		return nil, err
	}
	if err := checkOwnership(op, identity, appt); err != nil {
		return nil, err
	}
	if err := checkTransition(appt.Status, to); err != nil {
		return nil, err
	}
	return s.apply(appt, to, nil)
}

// apply commits a transition with a compare-and-set on the status we read, so
// a concurrent transition on the same appointment cannot be silently lost.
func (s *Service) apply(appt *models.Appointment, to models.AppointmentStatus, details *models.PaymentDetails) (*models.Appointment, error) {
	ok, err := s.store.UpdateStatusIf(appt.ID, appt.Status, to, details)
	if err != nil {
		return nil, internalErr("could not update appointment", err)
	}
	if !ok {
		return nil, transitionErr("appointment status changed, please retry")
	}

	appt.Status = to
	if details != nil {
		appt.PaymentDetails = details
	}
	s.cache.Invalidate(appt.DoctorID, appt.Date)
	return appt, nil
}
