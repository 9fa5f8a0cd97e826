package attendance

import "errors"

// Attendance domain errors
var (
	// Conflict
	ErrAlreadyCheckedIn  = errors.New("already clocked in today")
	ErrAlreadyCheckedOut = errors.New("already clocked out today")

	// Not found
	ErrNotCheckedIn = errors.New("no clock-in record found for today")

	// ErrSessionNotOpen is returned by the store when a clock-out update
	// matched no open session. The engine turns it into ErrNotCheckedIn or
	// ErrAlreadyCheckedOut.
	ErrSessionNotOpen = errors.New("no open attendance session matched")
)
