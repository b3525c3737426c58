package models

import (
	"time"

	"gorm.io/gorm"
)

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "Pending"
	StatusPaid      AppointmentStatus = "Paid"
	StatusConfirmed AppointmentStatus = "Confirmed"
	StatusRejected  AppointmentStatus = "Rejected"
	StatusCancelled AppointmentStatus = "Cancelled"
)

// PaymentDetails records the gateway charge that moved an appointment to Paid.
// It is only ever set on Paid and Confirmed appointments.
type PaymentDetails struct {
	TransactionID string `json:"transaction_id,omitempty"`
	Amount        int64  `json:"amount,omitempty"`
	Currency      string `json:"currency,omitempty"`
}

type Appointment struct {
	gorm.Model
	PatientID      uint              `json:"patient_id"`
	Patient        User              `json:"patient,omitempty" gorm:"foreignKey:PatientID"`
	DoctorID       uint              `json:"doctor_id"`
	Doctor         User              `json:"doctor,omitempty" gorm:"foreignKey:DoctorID"`
	Date           time.Time         `json:"date" gorm:"type:date"`
	Time           string            `json:"time"`
	Price          int64             `json:"price"`
	Status         AppointmentStatus `json:"status"`
	PaymentDetails *PaymentDetails   `json:"payment_details,omitempty" gorm:"embedded;embeddedPrefix:payment_"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.Status == "" {
		a.Status = StatusPending
	}
	return nil
}

// Terminal reports whether the status admits no further transitions.
func (s AppointmentStatus) Terminal() bool {
	return s == StatusConfirmed || s == StatusRejected || s == StatusCancelled
}
