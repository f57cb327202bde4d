package athlete

import "errors"

var (
	// ErrUnknownStatus marks a status outside active, recovery and injury.
	ErrUnknownStatus = errors.New("unknown status")
	// ErrUnknownSport marks a blank sport or one outside the configured set.
	ErrUnknownSport = errors.New("unknown sport")
	// ErrInvalidAthlete marks range or identity violations.
	ErrInvalidAthlete = errors.New("invalid athlete")
	// ErrDuplicateID marks a second record with an id already admitted.
	ErrDuplicateID = errors.New("duplicate athlete id")
	// ErrUnknownSort marks an unsupported roster sort key.
	ErrUnknownSort = errors.New("unknown sort key")
)
