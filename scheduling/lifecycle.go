package scheduling

import "github.com/meddesk/appointment-api/models"

// transitions is the appointment lifecycle graph. Pending and Paid are the only
// transient states; Confirmed, Rejected and Cancelled are terminal.
var transitions = map[models.AppointmentStatus][]models.AppointmentStatus{
	models.StatusPending: {models.StatusPaid, models.StatusRejected, models.StatusCancelled},
	models.StatusPaid:    {models.StatusConfirmed, models.StatusRejected, models.StatusCancelled},
}

// CanTransition reports whether from -> to is a legal lifecycle move.
func CanTransition(from, to models.AppointmentStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// checkTransition returns the InvalidTransition error for an illegal move,
// with a message naming both states so callers can tell what was attempted.
func checkTransition(from, to models.AppointmentStatus) error {
	if CanTransition(from, to) {
		return nil
	}
	if from.Terminal() {
		return transitionErr("appointment is already %s, no further changes allowed", from)
	}
	return transitionErr("cannot move a %s appointment to %s", from, to)
}
