package scheduling

import (
	"github.com/meddesk/appointment-api/models"
)

// Identity is the authenticated caller, as carried in the verified token.
type Identity struct {
	ID   uint
	Role models.Role
}

// Operation names every action the scheduling core exposes.
type Operation string

const (
	OpCreate    Operation = "create"
	OpPay       Operation = "pay"
	OpConfirm   Operation = "confirm"
	OpReject    Operation = "reject"
	OpCancel    Operation = "cancel"
	OpListToday Operation = "list_today"
	OpHistory   Operation = "history"
	OpGet       Operation = "get"
)

type ownership int

const (
	ownsNothing ownership = iota // no per-appointment ownership check
	ownsAsPatient
	ownsAsDoctor
	ownsAsEither
)

type policy struct {
	role  models.Role // "" means any authenticated user
	owner ownership
}

// policies is the single source of truth for who may invoke what. Routes read
// the role column through RequiredRole; the service reads the ownership column
// through checkOwnership.
var policies = map[Operation]policy{
	OpCreate:    {role: models.RolePatient, owner: ownsNothing},
	OpPay:       {role: models.RolePatient, owner: ownsAsPatient},
	OpConfirm:   {role: models.RoleDoctor, owner: ownsAsDoctor},
	OpReject:    {role: models.RoleDoctor, owner: ownsAsDoctor},
	OpCancel:    {role: "", owner: ownsAsEither},
	OpListToday: {role: models.RoleDoctor, owner: ownsNothing},
	OpHistory:   {role: models.RolePatient, owner: ownsNothing},
	OpGet:       {role: "", owner: ownsAsEither},
}

// RequiredRole returns the role an operation's route demands, or "" when any
// authenticated user may call it.
func RequiredRole(op Operation) models.Role {
	return policies[op].role
}

// CheckRole enforces the role column of the policy table. Failures are
// Forbidden with a message naming the rejected role, distinct from ownership
// failures.
func CheckRole(op Operation, identity Identity) error {
	required := policies[op].role
	if required != "" && identity.Role != required {
		return forbiddenErr("access denied for role %s", identity.Role)
	}
	return nil
}

// checkOwnership enforces the ownership column of the policy table against a
// concrete appointment.
func checkOwnership(op Operation, identity Identity, appt *models.Appointment) error {
	switch policies[op].owner {
	case ownsAsPatient:
		if appt.PatientID != identity.ID {
			return forbiddenErr("you are not the patient on this appointment")
		}
	case ownsAsDoctor:
		if appt.DoctorID != identity.ID {
			return forbiddenErr("you are not the doctor on this appointment")
		}
	case ownsAsEither:
		if appt.PatientID != identity.ID && appt.DoctorID != identity.ID {
			return forbiddenErr("you are not a party to this appointment")
		}
	}
	return nil
}
