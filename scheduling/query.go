package scheduling

import (
	"time"

	"github.com/meddesk/appointment-api/models"
)

// HistoryFilter narrows a patient's appointment history. Zero values mean
// "no filter"; both date bounds are inclusive.
type HistoryFilter struct {
	Status    models.AppointmentStatus
	StartDate time.Time
	EndDate   time.Time
}

var knownStatuses = map[models.AppointmentStatus]bool{
	models.StatusPending:   true,
	models.StatusPaid:      true,
	models.StatusConfirmed: true,
	models.StatusRejected:  true,
	models.StatusCancelled: true,
}

// TodayForDoctor lists the calling doctor's appointments for the current day,
// each joined with the patient's name and email. Served from the day cache
// when warm.
func (s *Service) TodayForDoctor(identity Identity) ([]models.Appointment, error) {
	if err := CheckRole(OpListToday, identity); err != nil {
		return nil, err
	}

	now := s.now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())

	if appts, ok := s.cache.Get(identity.ID, start); ok {
		return appts, nil
	}

	appts, err := s.store.ListForDoctorBetween(identity.ID, start, end)
	if err != nil {
		return nil, internalErr("could not list appointments", err)
	}

	// Cache until midnight; tomorrow is a different key anyway.
	s.cache.Put(identity.ID, start, appts, start.AddDate(0, 0, 1).Sub(now))
	return appts, nil
}

// HistoryForPatient lists the calling patient's appointments, optionally
// filtered by status and an inclusive date range, each joined with the
// doctor's name and email.
func (s *Service) HistoryForPatient(identity Identity, filter HistoryFilter) ([]models.Appointment, error) {
	if err := CheckRole(OpHistory, identity); err != nil {
		return nil, err
	}
	if filter.Status != "" && !knownStatuses[filter.Status] {
		return nil, validationErr("unknown status %q", filter.Status)
	}
	if !filter.StartDate.IsZero() && !filter.EndDate.IsZero() && filter.EndDate.Before(filter.StartDate) {
		return nil, validationErr("end date is before start date")
	}

	appts, err := s.store.ListForPatient(identity.ID, filter)
	if err != nil {
		return nil, internalErr("could not load appointment history", err)
	}
	return appts, nil
}
