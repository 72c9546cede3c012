package repository

import (
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrListNotFound is returned when a task write references a list that
	// does not exist.
	ErrListNotFound = errors.New("referenced list does not exist")
)

// Timestamp is the store clock: UTC, microsecond precision, so values survive
// a round trip through postgres and sqlite unchanged.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// NextUpdatedAt keeps updated_at strictly increasing for a row even when the
// clock has not moved since the previous write.
func NextUpdatedAt(prev, now time.Time) time.Time {
	now = Timestamp(now)
	if !now.After(prev) {
		return prev.Add(time.Microsecond)
	}
	return now
}
