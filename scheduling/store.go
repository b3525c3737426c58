package scheduling

import (
	"time"

	"gorm.io/gorm"

	"github.com/meddesk/appointment-api/models"
)

// Store is the persistence collaborator the scheduling core talks to. The
// production implementation is GORM-backed; tests swap in an in-memory fake.
type Store interface {
	CreateAppointment(appt *models.Appointment) error
	FindAppointment(id uint) (*models.Appointment, error)
	// SlotTaken reports whether a live (non-rejected, non-cancelled) appointment
	// already occupies the doctor's slot. This is a fast pre-check; the partial
	// unique index created in db.Migrate is the authoritative guard.
	SlotTaken(doctorID uint, date time.Time, slot string) (bool, error)
	// UpdateStatusIf is a compare-and-set on status: the update only applies if
	// the row still holds the from status. Returns false when the row was
	// missing or had moved on, so concurrent transitions cannot lose updates.
	UpdateStatusIf(id uint, from, to models.AppointmentStatus, details *models.PaymentDetails) (bool, error)
	FindUser(id uint) (*models.User, error)
	ListForDoctorBetween(doctorID uint, from, to time.Time) ([]models.Appointment, error)
	ListForPatient(patientID uint, filter HistoryFilter) ([]models.Appointment, error)
}

type gormStore struct {
	db *gorm.DB
}

// NewStore wraps a GORM handle in the Store interface.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

var liveStatuses = []models.AppointmentStatus{
	models.StatusPending, models.StatusPaid, models.StatusConfirmed,
}

func (s *gormStore) CreateAppointment(appt *models.Appointment) error {
	return s.db.Create(appt).Error
}

func (s *gormStore) FindAppointment(id uint) (*models.Appointment, error) {
	var appt models.Appointment
	if err := s.db.First(&appt, id).Error; err != nil {
		return nil, err
	}
	return &appt, nil
}

func (s *gormStore) SlotTaken(doctorID uint, date time.Time, slot string) (bool, error) {
	var count int64
	err := s.db.Model(&models.Appointment{}).
		Where("doctor_id = ? AND date = ? AND time = ?", doctorID, date.Format("2006-01-02"), slot).
		Where("status IN ?", liveStatuses).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *gormStore) UpdateStatusIf(id uint, from, to models.AppointmentStatus, details *models.PaymentDetails) (bool, error) {
	updates := map[string]any{"status": to}
	if details != nil {
		updates["payment_transaction_id"] = details.TransactionID
		updates["payment_amount"] = details.Amount
		updates["payment_currency"] = details.Currency
	}
	res := s.db.Model(&models.Appointment{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *gormStore) FindUser(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// selectContact narrows the joined user to what callers may see.
func selectContact(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "email")
}

func (s *gormStore) ListForDoctorBetween(doctorID uint, from, to time.Time) ([]models.Appointment, error) {
	var appts []models.Appointment
	err := s.db.Preload("Patient", selectContact).
		Where("doctor_id = ?", doctorID).
		Where("date >= ? AND date <= ?", from.Format("2006-01-02"), to.Format("2006-01-02")).
		Order("id asc").
		Find(&appts).Error
	return appts, err
}

func (s *gormStore) ListForPatient(patientID uint, filter HistoryFilter) ([]models.Appointment, error) {
	query := s.db.Preload("Doctor", selectContact).
		Where("patient_id = ?", patientID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if !filter.StartDate.IsZero() {
		query = query.Where("date >= ?", filter.StartDate.Format("2006-01-02"))
	}
	if !filter.EndDate.IsZero() {
		query = query.Where("date <= ?", filter.EndDate.Format("2006-01-02"))
	}

	var appts []models.Appointment
	err := query.Order("id asc").Find(&appts).Error
	return appts, err
}
