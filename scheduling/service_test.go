package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/meddesk/appointment-api/models"
	"github.com/meddesk/appointment-api/payments"
)

// fakeStore is an in-memory Store so service tests run without postgres.
type fakeStore struct {
	users     map[uint]*models.User
	appts     map[uint]*models.Appointment
	nextID    uint
	listCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users: map[uint]*models.User{
			1: {ID: 1, Name: "Pat", Email: "pat@test.com", Role: models.RolePatient},
			2: {ID: 2, Name: "Dr. Dawn", Email: "dawn@test.com", Role: models.RoleDoctor},
			3: {ID: 3, Name: "Sam", Email: "sam@test.com", Role: models.RolePatient},
			4: {ID: 4, Name: "Dr. Drew", Email: "drew@test.com", Role: models.RoleDoctor},
		},
		appts: map[uint]*models.Appointment{},
	}
}

func (f *fakeStore) CreateAppointment(appt *models.Appointment) error {
	taken, _ := f.SlotTaken(appt.DoctorID, appt.Date, appt.Time)
	if taken {
		return gorm.ErrDuplicatedKey
	}
	f.nextID++
	appt.ID = f.nextID
	stored := *appt
	f.appts[appt.ID] = &stored
	return nil
}

func (f *fakeStore) FindAppointment(id uint) (*models.Appointment, error) {
	appt, ok := f.appts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *appt
	return &copied, nil
}

func (f *fakeStore) SlotTaken(doctorID uint, date time.Time, slot string) (bool, error) {
	day := date.Format("2006-01-02")
	for _, a := range f.appts {
		if a.Status == models.StatusRejected || a.Status == models.StatusCancelled {
			continue
		}
		if a.DoctorID == doctorID && a.Date.Format("2006-01-02") == day && a.Time == slot {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) UpdateStatusIf(id uint, from, to models.AppointmentStatus, details *models.PaymentDetails) (bool, error) {
	appt, ok := f.appts[id]
	if !ok || appt.Status != from {
		return false, nil
	}
	appt.Status = to
	if details != nil {
		appt.PaymentDetails = details
	}
	return true, nil
}

func (f *fakeStore) FindUser(id uint) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeStore) ListForDoctorBetween(doctorID uint, from, to time.Time) ([]models.Appointment, error) {
	f.listCalls++
	var out []models.Appointment
	for i := uint(1); i <= f.nextID; i++ {
		a, ok := f.appts[i]
		if !ok || a.DoctorID != doctorID {
			continue
		}
		if a.Date.Before(from) || a.Date.After(to) {
			continue
		}
		joined := *a
		joined.Patient = *f.users[a.PatientID]
		out = append(out, joined)
	}
	return out, nil
}

func (f *fakeStore) ListForPatient(patientID uint, filter HistoryFilter) ([]models.Appointment, error) {
	var out []models.Appointment
	for i := uint(1); i <= f.nextID; i++ {
		a, ok := f.appts[i]
		if !ok || a.PatientID != patientID {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if !filter.StartDate.IsZero() && a.Date.Before(filter.StartDate) {
			continue
		}
		if !filter.EndDate.IsZero() && a.Date.After(filter.EndDate) {
			continue
		}
		joined := *a
		joined.Doctor = *f.users[a.DoctorID]
		out = append(out, joined)
	}
	return out, nil
}

// fakeGateway approves everything unless told to decline.
type fakeGateway struct {
	declineWith error
	charges     int
	lastAmount  int64
}

func (g *fakeGateway) Charge(ctx context.Context, amount int64, paymentMethodRef string) (*payments.Receipt, error) {
	g.charges++
	g.lastAmount = amount
	if g.declineWith != nil {
		return nil, g.declineWith
	}
	return &payments.Receipt{TransactionID: "tx_1", Amount: amount, Currency: "usd"}, nil
}

var (
	patient  = Identity{ID: 1, Role: models.RolePatient}
	doctor   = Identity{ID: 2, Role: models.RoleDoctor}
	patient2 = Identity{ID: 3, Role: models.RolePatient}
	doctor2  = Identity{ID: 4, Role: models.RoleDoctor}
)

func testClock() time.Time {
	return time.Date(2024, 12, 1, 10, 0, 0, 0, time.UTC)
}

func newTestService(t *testing.T) (*Service, *fakeStore, *fakeGateway) {
	t.Helper()
	store := newFakeStore()
	gateway := &fakeGateway{}
	svc := NewService(store, gateway, nil, 5000).WithClock(testClock)
	return svc, store, gateway
}

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	date, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)
	return date
}

func TestCreateAppointment(t *testing.T) {
	svc, _, _ := newTestService(t)

	appt, err := svc.Create(patient, 2, mustDate(t, "2024-12-20"), "09:00")
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, appt.Status)
	assert.Equal(t, int64(5000), appt.Price)
	assert.Equal(t, uint(1), appt.PatientID)
	assert.Equal(t, uint(2), appt.DoctorID)
	assert.Nil(t, appt.PaymentDetails)
}

func TestCreateRejectsDisallowedSlot(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Create(patient, 2, mustDate(t, "2024-12-20"), "06:00")
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestCreateRejectsPastDate(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Create(patient, 2, mustDate(t, "2024-11-30"), "09:00")
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestCreateRequiresPatientRole(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Create(doctor, 2, mustDate(t, "2024-12-20"), "09:00")
	require.Error(t, err)
	assert.Equal(t, KindForbidden, KindOf(err))
}

func TestCreateUnknownDoctor(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Create(patient, 99, mustDate(t, "2024-12-20"), "09:00")
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestCreateDoctorMustBeDoctor(t *testing.T) {
	svc, _, _ := newTestService(t)

	// User 3 exists but is a patient.
	_, err := svc.Create(patient, 3, mustDate(t, "2024-12-20"), "09:00")
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestCreateSlotTaken(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Create(patient, 2, mustDate(t, "2024-12-20"), "09:00")
	require.NoError(t, err)

	_, err = svc.Create(patient2, 2, mustDate(t, "2024-12-20"), "09:00")
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))

	// Same time with a different doctor is fine.
	_, err = svc.Create(patient2, 4, mustDate(t, "2024-12-20"), "09:00")
	assert.NoError(t, err)
}

func TestCancelledSlotCanBeRebooked(t *testing.T) {
	svc, _, _ := newTestService(t)

	appt, err := svc.Create(patient, 2, mustDate(t, "2024-12-20"), "09:00")
	require.NoError(t, err)

	_, err = svc.Cancel(patient, appt.ID)
	require.NoError(t, err)

	_, err = svc.Create(patient2, 2, mustDate(t, "2024-12-20"), "09:00")
	assert.NoError(t, err)
}

func TestPayAppointment(t *testing.T) {
	svc, store, gateway := newTestService(t)

	appt, err := svc.Create(patient, 2, mustDate(t, "2024-12-20"), "09:00")
	require.NoError(t, err)

	paid, err := svc.Pay(context.Background(), patient, appt.ID, 5000, "pm_card")
	require.NoError(t, err)

	assert.Equal(t, models.StatusPaid, paid.Status)
	require.NotNil(t, paid.PaymentDetails)
	assert.Equal(t, "tx_1", paid.PaymentDetails.TransactionID)
	assert.Equal(t, int64(5000), paid.PaymentDetails.Amount)
	assert.Equal(t, "usd", paid.PaymentDetails.Currency)
	assert.Equal(t, 1, gateway.charges)

	stored, err := store.FindAppointment(appt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, stored.Status)
}

func TestPayAmountMustMatchPrice(t *testing.T) {
	svc, _, gateway := newTestService(t)

	appt, err := svc.Create(patient, 2, mustDate(t, "2024-12-20"), "09:00")
	require.NoError(t, err)

	for _, amount := range []int64{0, -100, 4999} {
		_, err = svc.Pay(context.Background(), patient, appt.ID, amount, "pm_card")
		require.Error(t, err)
		assert.Equal(t, KindValidation, KindOf(err))
	}
	assert.Equal(t, 0, gateway.charges, "gateway must not be called for bad amounts")
}

func TestPayDeclinedLeavesStateUntouched(t *testing.T) {
	svc, store, gateway := newTestService(t)
	gateway.declineWith = errors.New("card declined")

	appt, err := svc.Create(patient, 2, mustDate(t, "2024-12-20"), "09:00")
	require.NoError(t, err)

	_, err = svc.Pay(context.Background(), patient, appt.ID, 5000, "pm_card")
	require.Error(t, err)
	assert.Equal(t, KindPaymentFailed, KindOf(err))
	assert.Contains(t, err.Error(), "card declined")

	stored, err := store.FindAppointment(appt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)
	assert.Nil(t, stored.PaymentDetails)
}

func TestPayTwiceFails(t *testing.T) {
	svc, _, _ := newTestService(t)

	appt, err := svc.Create(patient, 2, mustDate(t, "2024-12-20"), "09:00")
	require.NoError(t, err)

	_, err = svc.Pay(context.Background(), patient, appt.ID, 5000, "pm_card")
	require.NoError(t, err)

	_, err = svc.Pay(context.Background(), patient, appt.ID, 5000, "pm_card")
	require.Error(t, err)
	assert.Equal(t, KindInvalidTransition, KindOf(err))
}

func TestPayByNonOwnerIsForbiddenBeforeStatusCheck(t *testing.T) {
	svc, _, _ := newTestService(t)

	appt, err := svc.Create(patient, 2, mustDate(t, "2024-12-20"), "09:00")
	require.NoError(t, err)
	_, err = svc.Pay(context.Background(), patient, appt.ID, 5000, "pm_card")
	require.NoError(t, err)

	// The appointment is already Paid, but a stranger must see Forbidden,
	// never the status error.
	_, err = svc.Pay(context.Background(), patient2, appt.ID, 5000, "pm_card")
	require.Error(t, err)
	assert.Equal(t, KindForbidden, KindOf(err))
}

func TestPayUnknownAppointment(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Pay(context.Background(), patient, 42, 5000, "pm_card")
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestConfirmRequiresPaid(t *testing.T) {
	svc, _, _ := newTestService(t)

	appt, err := svc.Create(patient, 2, mustDate(t, "2024-12-20"), "09:00")
	require.NoError(t, err)

	_, err = svc.Confirm(doctor, appt.ID)
	require.Error(t, err)
	assert.Equal(t, KindInvalidTransition, KindOf(err))

	_, err = svc.Pay(context.Background(), patient, appt.ID, 5000, "pm_card")
	require.NoError(t, err)

	confirmed, err := svc.Confirm(doctor, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, confirmed.Status)
}

func TestConfirmByWrongDoctor(t *testing.T) {
	svc, _, _ := newTestService(t)

	appt, err := svc.Create(patient, 2, mustDate(t, "2024-12-20"), "09:00")
	require.NoError(t, err)
	_, err = svc.Pay(context.Background(), patient, appt.ID, 5000, "pm_card")
	require.NoError(t, err)

	_, err = svc.Confirm(doctor2, appt.ID)
	require.Error(t, err)
	assert.Equal(t, KindForbidden, KindOf(err))
}

func TestRejectPendingAndPaid(t *testing.T) {
	svc, _, _ := newTestService(t)

	pending, err := svc.Create(patient, 2, mustDate(t, "2024-12-20"), "09:00")
	require.NoError(t, err)
	rejected, err := svc.Reject(doctor, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, rejected.Status)

	paid, err := svc.Create(patient, 2, mustDate(t, "2024-12-20"), "10:00")
	require.NoError(t, err)
	_, err = svc.Pay(context.Background(), patient, paid.ID, 5000, "pm_card")
	require.NoError(t, err)
	rejected, err = svc.Reject(doctor, paid.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, rejected.Status)
}

func TestRejectRequiresDoctorRole(t *testing.T) {
	svc, _, _ := newTestService(t)

	appt, err := svc.Create(patient, 2, mustDate(t, "2024-12-20"), "09:00")
	require.NoError(t, err)

	_, err = svc.Reject(patient, appt.ID)
	require.Error(t, err)
	assert.Equal(t, KindForbidden, KindOf(err))
}

func TestCancelByEitherParty(t *testing.T) {
	svc, _, _ := newTestService(t)

	first, err := svc.Create(patient, 2, mustDate(t, "2024-12-20"), "09:00")
	require.NoError(t, err)
	cancelled, err := svc.Cancel(patient, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)

	second, err := svc.Create(patient, 2, mustDate(t, "2024-12-20"), "10:00")
	require.NoError(t, err)
	cancelled, err = svc.Cancel(doctor, second.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)

	third, err := svc.Create(patient, 2, mustDate(t, "2024-12-20"), "11:00")
	require.NoError(t, err)
	_, err = svc.Cancel(patient2, third.ID)
	require.Error(t, err)
	assert.Equal(t, KindForbidden, KindOf(err))
}

func TestConfirmedCannotBeCancelled(t *testing.T) {
	svc, _, _ := newTestService(t)

	appt, err := svc.Create(patient, 2, mustDate(t, "2024-12-20"), "09:00")
	require.NoError(t, err)
	_, err = svc.Pay(context.Background(), patient, appt.ID, 5000, "pm_card")
	require.NoError(t, err)
	_, err = svc.Confirm(doctor, appt.ID)
	require.NoError(t, err)

	for _, caller := range []Identity{patient, doctor} {
		_, err = svc.Cancel(caller, appt.ID)
		require.Error(t, err, "cancel as %s", caller.Role)
		assert.Equal(t, KindInvalidTransition, KindOf(err))
	}
}

func TestConcurrentTransitionDetected(t *testing.T) {
	svc, store, _ := newTestService(t)

	appt, err := svc.Create(patient, 2, mustDate(t, "2024-12-20"), "09:00")
	require.NoError(t, err)

	// Another request slips in between our read and write.
	ok, err := store.UpdateStatusIf(appt.ID, models.StatusPending, models.StatusCancelled, nil)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = svc.Pay(context.Background(), patient, appt.ID, 5000, "pm_card")
	require.Error(t, err)
	assert.Equal(t, KindInvalidTransition, KindOf(err))
}

func TestGetAppointment(t *testing.T) {
	svc, _, _ := newTestService(t)

	appt, err := svc.Create(patient, 2, mustDate(t, "2024-12-20"), "09:00")
	require.NoError(t, err)

	got, err := svc.Get(patient, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, appt.ID, got.ID)

	_, err = svc.Get(doctor, appt.ID)
	require.NoError(t, err)

	_, err = svc.Get(patient2, appt.ID)
	require.Error(t, err)
	assert.Equal(t, KindForbidden, KindOf(err))
}
