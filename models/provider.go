package models

import "time"

// ServiceStatus is the publication state of a bookable service.
type ServiceStatus string

const (
	ServiceStatusActive   ServiceStatus = "ACTIVE"
	ServiceStatusDraft    ServiceStatus = "DRAFT"
	ServiceStatusArchived ServiceStatus = "ARCHIVED"
)

// Provider is a person or resource that can be booked for one or more services.
type Provider struct {
	ID          string    `bson:"id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Bio         string    `bson:"bio,omitempty" json:"bio,omitempty"`
	Specialties []string  `bson:"specialties,omitempty" json:"specialties,omitempty"`
	IsActive    bool      `bson:"isActive" json:"isActive"`
	ServiceIDs  []string  `bson:"serviceIds" json:"serviceIds"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// OffersService reports whether the provider is linked to serviceID.
func (p Provider) OffersService(serviceID string) bool {
	for _, id := range p.ServiceIDs {
		if id == serviceID {
			return true
		}
	}
	return false
}

// Service describes what is being booked and how long it occupies the provider.
type Service struct {
	ID         string        `bson:"id" json:"id"`
	Name       string        `bson:"name" json:"name"`
	Price      float64       `bson:"price" json:"price"`
	Duration   int           `bson:"duration" json:"duration"`     // minutes
	BufferTime int           `bson:"bufferTime" json:"bufferTime"` // minutes kept free after each booking
	Status     ServiceStatus `bson:"status" json:"status"`
	CreatedAt  time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// Bookable reports whether new bookings may be taken for the service.
func (s Service) Bookable() bool {
	return s.Status == ServiceStatusActive
}

// Step is the distance between consecutive slot starts.
func (s Service) Step() int {
	return s.Duration + s.BufferTime
}
