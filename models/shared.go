package models

// ReminderPayload is the body of a queued booking reminder. Date and StartTime
// pin the reminder to the slot it was scheduled for; a rescheduled booking gets
// a new reminder and the old one is dropped by the worker.
type ReminderPayload struct {
	BookingID string `json:"bookingId"`
	UserID    string `json:"userId"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	FireDate  string `json:"fireDate"` // RFC3339, informational
}
