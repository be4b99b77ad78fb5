package relationalRepo

import (
	"strings"
	"time"

	"appointly/models"
)

type providerRow struct {
	ID          string `gorm:"column:id;primaryKey;size:64"`
	Name        string `gorm:"column:name;size:255;not null"`
	Bio         string `gorm:"column:bio;type:text"`
	Specialties string `gorm:"column:specialties;type:text"`
	IsActive    bool   `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (providerRow) TableName() string { return "providers" }

type providerServiceRow struct {
	ProviderID string `gorm:"column:provider_id;primaryKey;size:64"`
	ServiceID  string `gorm:"column:service_id;primaryKey;size:64"`
}

func (providerServiceRow) TableName() string { return "provider_services" }

type serviceRow struct {
	ID         string  `gorm:"column:id;primaryKey;size:64"`
	Name       string  `gorm:"column:name;size:255;not null"`
	Price      float64 `gorm:"column:price;not null"`
	Duration   int     `gorm:"column:duration;not null"`
	BufferTime int     `gorm:"column:buffer_time;not null;default:0"`
	Status     string  `gorm:"column:status;size:16;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (serviceRow) TableName() string { return "services" }

type weeklyRow struct {
	ID         string `gorm:"column:id;primaryKey;size:64"`
	ProviderID string `gorm:"column:provider_id;size:64;not null;uniqueIndex:uniq_weekly_day"`
	DayOfWeek  int    `gorm:"column:day_of_week;not null;uniqueIndex:uniq_weekly_day"`
	StartTime  string `gorm:"column:start_time;size:5;not null"`
	EndTime    string `gorm:"column:end_time;size:5;not null"`
	IsActive   bool   `gorm:"column:is_active;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (weeklyRow) TableName() string { return "weekly_schedules" }

type overrideRow struct {
	ID         string  `gorm:"column:id;primaryKey;size:64"`
	ProviderID string  `gorm:"column:provider_id;size:64;not null;index:idx_override_day"`
	Date       string  `gorm:"column:date;size:10;not null;index:idx_override_day"`
	IsBlocked  bool    `gorm:"column:is_blocked;not null"`
	StartTime  *string `gorm:"column:start_time;size:5"`
	EndTime    *string `gorm:"column:end_time;size:5"`
	Reason     string  `gorm:"column:reason;type:text"`
	CreatedAt  time.Time
}

func (overrideRow) TableName() string { return "schedule_overrides" }

type bookingRow struct {
	ID                 string `gorm:"column:id;primaryKey;size:64"`
	BookingNumber      string `gorm:"column:booking_number;size:16;not null;uniqueIndex:uniq_booking_number"`
	ProviderID         string `gorm:"column:provider_id;size:64;not null;index:idx_booking_day"`
	ServiceID          string `gorm:"column:service_id;size:64;not null"`
	UserID             string `gorm:"column:user_id;size:64;not null;index"`
	Date               string `gorm:"column:date;size:10;not null;index:idx_booking_day"`
	StartTime          string `gorm:"column:start_time;size:5;not null"`
	EndTime            string `gorm:"column:end_time;size:5;not null"`
	Status             string `gorm:"column:status;size:16;not null;index:idx_booking_day"`
	Notes              string `gorm:"column:notes;type:text"`
	CancellationReason string `gorm:"column:cancellation_reason;type:text"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
	ConfirmedAt        *time.Time `gorm:"column:confirmed_at"`
	CompletedAt        *time.Time `gorm:"column:completed_at"`
	CancelledAt        *time.Time `gorm:"column:cancelled_at"`
}

func (bookingRow) TableName() string { return "bookings" }

func toProviderRow(p models.Provider) providerRow {
	return providerRow{
		ID:          p.ID,
		Name:        p.Name,
		Bio:         p.Bio,
		Specialties: strings.Join(p.Specialties, ","),
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (r providerRow) toModel(serviceIDs []string) models.Provider {
	var specialties []string
	if r.Specialties != "" {
		specialties = strings.Split(r.Specialties, ",")
	}
	return models.Provider{
		ID:          r.ID,
		Name:        r.Name,
		Bio:         r.Bio,
		Specialties: specialties,
		IsActive:    r.IsActive,
		ServiceIDs:  serviceIDs,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func toServiceRow(s models.Service) serviceRow {
	return serviceRow{
		ID:         s.ID,
		Name:       s.Name,
		Price:      s.Price,
		Duration:   s.Duration,
		BufferTime: s.BufferTime,
		Status:     string(s.Status),
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

func (r serviceRow) toModel() models.Service {
	return models.Service{
		ID:         r.ID,
		Name:       r.Name,
		Price:      r.Price,
		Duration:   r.Duration,
		BufferTime: r.BufferTime,
		Status:     models.ServiceStatus(r.Status),
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func toWeeklyRow(e models.WeeklyScheduleEntry) weeklyRow {
	return weeklyRow{
		ID:         e.ID,
		ProviderID: e.ProviderID,
		DayOfWeek:  e.DayOfWeek,
		StartTime:  e.StartTime,
		EndTime:    e.EndTime,
		IsActive:   e.IsActive,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

func (r weeklyRow) toModel() models.WeeklyScheduleEntry {
	return models.WeeklyScheduleEntry{
		ID:         r.ID,
		ProviderID: r.ProviderID,
		DayOfWeek:  r.DayOfWeek,
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
		IsActive:   r.IsActive,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func toOverrideRow(o models.ScheduleOverride) overrideRow {
	return overrideRow{
		ID:         o.ID,
		ProviderID: o.ProviderID,
		Date:       o.Date,
		IsBlocked:  o.IsBlocked,
		StartTime:  o.StartTime,
		EndTime:    o.EndTime,
		Reason:     o.Reason,
		CreatedAt:  o.CreatedAt,
	}
}

func (r overrideRow) toModel() models.ScheduleOverride {
	return models.ScheduleOverride{
		ID:         r.ID,
		ProviderID: r.ProviderID,
		Date:       r.Date,
		IsBlocked:  r.IsBlocked,
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
		Reason:     r.Reason,
		CreatedAt:  r.CreatedAt,
	}
}

func toBookingRow(b models.Booking) bookingRow {
	return bookingRow{
		ID:                 b.ID,
		BookingNumber:      b.BookingNumber,
		ProviderID:         b.ProviderID,
		ServiceID:          b.ServiceID,
		UserID:             b.UserID,
		Date:               b.Date,
		StartTime:          b.StartTime,
		EndTime:            b.EndTime,
		Status:             string(b.Status),
		Notes:              b.Notes,
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
		ConfirmedAt:        b.ConfirmedAt,
		CompletedAt:        b.CompletedAt,
		CancelledAt:        b.CancelledAt,
	}
}

func (r bookingRow) toModel() models.Booking {
	status := models.BookingStatus(r.Status)
	return models.Booking{
		ID:                 r.ID,
		BookingNumber:      r.BookingNumber,
		ProviderID:         r.ProviderID,
		ServiceID:          r.ServiceID,
		UserID:             r.UserID,
		Date:               r.Date,
		StartTime:          r.StartTime,
		EndTime:            r.EndTime,
		Status:             status,
		Active:             status.IsActive(),
		Notes:              r.Notes,
		CancellationReason: r.CancellationReason,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
		ConfirmedAt:        r.ConfirmedAt,
		CompletedAt:        r.CompletedAt,
		CancelledAt:        r.CancelledAt,
	}
}

func bookingModels(rows []bookingRow) []models.Booking {
	out := make([]models.Booking, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out
}

func statusStrings(statuses []models.BookingStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
