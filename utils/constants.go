// File: utils/constants.go
package utils

import "time"

// SlotCachePrefix is the prefix used for cached slot grids.
const SlotCachePrefix = "slots:"

// SlotCacheVersionPrefix is the prefix of the per-provider cache generation counter.
const SlotCacheVersionPrefix = "slots:ver:"

// DefaultSlotCacheTTL is used when SLOT_CACHE_TTL is not configured.
const DefaultSlotCacheTTL = 2 * time.Minute

// DefaultBookingNumberAttempts bounds booking number regeneration on collision.
const DefaultBookingNumberAttempts = 5

// DefaultStoreTimeout bounds a single repository round trip.
const DefaultStoreTimeout = 5 * time.Second
