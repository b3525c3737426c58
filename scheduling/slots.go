package scheduling

import "time"

// AllowedSlots is the fixed set of bookable times. Appointments are on the hour,
// with a two hour lunch break after 12:00.
var AllowedSlots = []string{
	"07:00", "08:00", "09:00", "10:00", "11:00", "12:00",
	"14:00", "15:00", "16:00", "17:00", "18:00",
}

func slotAllowed(slot string) bool {
	for _, s := range AllowedSlots {
		if s == slot {
			return true
		}
	}
	return false
}

// ValidateSlot checks a requested date and time slot against the permitted-slot
// list and the calendar. now is passed in explicitly so callers control the clock.
// The date must be today or later; when it is today, the slot must still be ahead
// of now's time of day.
func ValidateSlot(date time.Time, slot string, now time.Time) error {
	if !slotAllowed(slot) {
		return validationErr("time %q is not an allowed slot", slot)
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, now.Location())
	if day.Before(today) {
		return validationErr("cannot book an appointment in the past")
	}

	if day.Equal(today) {
		// Slot strings are HH:MM, validated above, so ParseInLocation cannot fail.
		t, _ := time.ParseInLocation("15:04", slot, now.Location())
		slotAt := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
		if !slotAt.After(now) {
			return validationErr("slot %s has already passed today", slot)
		}
	}

	return nil
}
