package schedule

import (
	"errors"
	"fmt"
)

var (
	ErrNoTeachersForSection = errors.New("no teachers available for section")
	ErrNoVenues             = errors.New("no venues available")
	ErrInvalidQueryKey      = errors.New("unknown day or time slot")
	ErrTeacherUnavailable   = errors.New("teacher is not available at this time")
	ErrUnknownFormat        = errors.New("unknown export format")
)

// NoTeachersError is returned by Generate when no teacher teaches the requested section.
type NoTeachersError struct {
	Section string
}

func (err *NoTeachersError) Error() string {
	return fmt.Sprintf("No teachers available for section %s", err.Section)
}

func (err *NoTeachersError) Is(target error) bool {
	return target == ErrNoTeachersForSection
}
