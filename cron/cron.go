package cron

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/meddesk/appointment-api/models"
	"github.com/meddesk/appointment-api/utils"
)

// StartReminderJobs schedules the nightly sweep that reminds patients about
// tomorrow's confirmed appointments.
func StartReminderJobs(gdb *gorm.DB, mailer utils.Mailer) *cron.Cron {
	c := cron.New()
	job := reminderJob{db: gdb, mailer: mailer}
	// Every evening at 18:00, remind patients booked for tomorrow.
	if _, err := c.AddFunc("0 18 * * *", job.sendReminders); err != nil {
		log.Fatalf("Failed to add cron job: %v", err)
	}
	c.Start()
	log.Println("Cron job scheduler started for appointment reminders")
	return c
}

type reminderJob struct {
	db     *gorm.DB
	mailer utils.Mailer
}

func (j reminderJob) sendReminders() {
	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")

	var appointments []models.Appointment
	err := j.db.Preload("Patient").Preload("Doctor").
		Where("status = ? AND date = ?", models.StatusConfirmed, tomorrow).
		Find(&appointments).Error
	if err != nil {
		log.Printf("Error fetching appointments for reminders: %v", err)
		return
	}

	for _, appointment := range appointments {
		if err := j.sendReminderEmail(&appointment); err != nil {
			log.Printf("Failed to send reminder for appointment %d: %v", appointment.ID, err)
			continue
		}
		log.Printf("Sent reminder for appointment %d to %s", appointment.ID, appointment.Patient.Email)
	}
}

func (j reminderJob) sendReminderEmail(appointment *models.Appointment) error {
	subject := "Reminder: Appointment Tomorrow"
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>This is a reminder for your appointment tomorrow.</p>
		<p><strong>Details:</strong></p>
		<ul>
			<li><strong>Doctor:</strong> %s</li>
			<li><strong>Date:</strong> %s</li>
			<li><strong>Time:</strong> %s</li>
		</ul>
		<p>Please arrive on time. If you need to cancel, contact us as soon as possible.</p>
		<p>Best regards,</p>
		<p>Your Appointment Team</p>
	`, appointment.Patient.Name, appointment.Doctor.Name,
		appointment.Date.Format("2006-01-02"), appointment.Time)

	return j.mailer.Send(appointment.Patient.Email, subject, body)
}
