package booking

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
)

const (
	bookingNumberPrefix = "BK-"
	bookingNumberLength = 8
)

var bookingNumberEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// GenerateBookingNumber returns "BK-" followed by 8 random uppercase alphanumerics.
func GenerateBookingNumber() (string, error) {
	numBytes := (bookingNumberLength*5 + 7) / 8
	randomBytes := make([]byte, numBytes)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	code := bookingNumberEncoding.EncodeToString(randomBytes)
	return bookingNumberPrefix + code[:bookingNumberLength], nil
}

func (se *DefaultSchedulingEngine) bookingNumber() (string, error) {
	if se.NewBookingNumber != nil {
		return se.NewBookingNumber()
	}
	return GenerateBookingNumber()
}
