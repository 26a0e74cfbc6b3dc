package inventory

import "time"

// ReminderPeriod is how far before expiry a pharmaceutical item should be flagged.
type ReminderPeriod string

const (
	ReminderDay       ReminderPeriod = "Day"
	ReminderMonth     ReminderPeriod = "Month"
	ReminderTwoMonths ReminderPeriod = "Two Months"
	ReminderSixMonths ReminderPeriod = "Six Months"
	ReminderYear      ReminderPeriod = "Year"
)

var reminderDays = map[ReminderPeriod]int{
	ReminderDay:       1,
	ReminderMonth:     30,
	ReminderTwoMonths: 60,
	ReminderSixMonths: 180,
	ReminderYear:      365,
}

// ReminderDays returns the number of days before expiry at which the reminder
// fires. ok is false for unrecognized periods.
func ReminderDays(period ReminderPeriod) (days int, ok bool) {
	days, ok = reminderDays[period]
	return days, ok
}

// Item is the subset of the item master used for expiry tracking.
type Item struct {
	Code           string
	ItemName       string
	Pharmaceutical bool
	Registered     bool
	ExpiryDate     *time.Time
	Reminder       ReminderPeriod
}

// Tracked reports whether the item takes part in expiry reminders.
func (i Item) Tracked() bool {
	return i.Pharmaceutical && i.Registered && i.ExpiryDate != nil && i.Reminder != ""
}

// ReminderDate returns the calendar day on which the reminder for expiry fires.
func ReminderDate(expiry time.Time, days int) time.Time {
	return expiry.AddDate(0, 0, -days)
}
