package models

import "time"

// WeeklyScheduleEntry is a provider's recurring working window for one weekday.
// DayOfWeek follows time.Weekday numbering (0 = Sunday).
type WeeklyScheduleEntry struct {
	ID         string    `bson:"id" json:"id"`
	ProviderID string    `bson:"providerId" json:"providerId"`
	DayOfWeek  int       `bson:"dayOfWeek" json:"dayOfWeek"`
	StartTime  string    `bson:"startTime" json:"startTime"` // "HH:mm"
	EndTime    string    `bson:"endTime" json:"endTime"`     // "HH:mm"
	IsActive   bool      `bson:"isActive" json:"isActive"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ScheduleOverride is a date-specific exception to the weekly schedule.
//
//	IsBlocked, no times    -> the whole day is closed
//	IsBlocked, both times  -> the range is carved out of the day
//	!IsBlocked, both times -> custom hours that replace the weekly windows
type ScheduleOverride struct {
	ID         string    `bson:"id" json:"id"`
	ProviderID string    `bson:"providerId" json:"providerId"`
	Date       string    `bson:"date" json:"date"` // "2006-01-02"
	IsBlocked  bool      `bson:"isBlocked" json:"isBlocked"`
	StartTime  *string   `bson:"startTime,omitempty" json:"startTime,omitempty"`
	EndTime    *string   `bson:"endTime,omitempty" json:"endTime,omitempty"`
	Reason     string    `bson:"reason,omitempty" json:"reason,omitempty"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}

// HasTimes reports whether both ends of the override's range are set.
func (o ScheduleOverride) HasTimes() bool {
	return o.StartTime != nil && o.EndTime != nil
}

// IsFullDayBlock reports whether the override closes the whole day.
func (o ScheduleOverride) IsFullDayBlock() bool {
	return o.IsBlocked && o.StartTime == nil && o.EndTime == nil
}

// IsPartialBlock reports whether the override blocks a sub-range of the day.
func (o ScheduleOverride) IsPartialBlock() bool {
	return o.IsBlocked && o.HasTimes()
}

// IsCustomHours reports whether the override supplies replacement working hours.
func (o ScheduleOverride) IsCustomHours() bool {
	return !o.IsBlocked && o.HasTimes()
}

// WeeklyScheduleRequest is the payload for replacing a provider's week.
type WeeklyScheduleRequest struct {
	Entries []WeeklyScheduleEntry `json:"entries" binding:"required"`
}

// CreateOverrideRequest is the payload for adding a date override.
type CreateOverrideRequest struct {
	Date      string  `json:"date"`
	IsBlocked bool    `json:"isBlocked"`
	StartTime *string `json:"startTime,omitempty"`
	EndTime   *string `json:"endTime,omitempty"`
	Reason    string  `json:"reason,omitempty"`
}
