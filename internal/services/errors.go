package services

import (
	"errors"
	"fmt"
)

// Validation failures. Their text is shown to the organizer as is.
var (
	ErrIncompleteVote     = errors.New("Please fill all fields")
	ErrDuplicateWine      = errors.New("Each wine can only be selected once!")
	ErrTooFewWines        = errors.New("not enough wines to vote")
	ErrWineNotAssigned    = errors.New("Only the participant's own wines can be ranked")
	ErrSlotCount          = errors.New("wrong number of wine numbers")
	ErrDuplicateSlot      = errors.New("All wine numbers must be different")
	ErrWineOutOfRange     = errors.New("wine number out of range")
	ErrNameRequired       = errors.New("Please enter a participant name")
	ErrInvalidTotalWines  = fmt.Errorf("Total wines must be between 1 and %d", MaxTotalWines)
	ErrNoDraft            = errors.New("No wine assignment in progress")
	ErrNoWinesAvailable   = errors.New("Tournament is full! No wines have available spots left.")
	ErrUnknownParticipant = errors.New("Unknown participant")
)

// ErrStaleResponse marks a response that arrived after a newer one was applied.
// It is never shown to the organizer.
var ErrStaleResponse = errors.New("stale response discarded")

var validationErrors = []error{
	ErrIncompleteVote, ErrDuplicateWine, ErrTooFewWines, ErrWineNotAssigned,
	ErrSlotCount, ErrDuplicateSlot, ErrWineOutOfRange, ErrNameRequired,
	ErrInvalidTotalWines, ErrNoDraft, ErrNoWinesAvailable, ErrUnknownParticipant,
}

// detailedError carries a message with specifics while still matching its sentinel.
type detailedError struct {
	kind error
	msg  string
}

func (e *detailedError) Error() string { return e.msg }
func (e *detailedError) Unwrap() error { return e.kind }

func tooFewWines(n int) error {
	return &detailedError{
		kind: ErrTooFewWines,
		msg:  fmt.Sprintf("This participant has only %d wines. Cannot vote (need at least 3 wines for 1st, 2nd, 3rd place).", n),
	}
}

func slotCount(expected int) error {
	return &detailedError{
		kind: ErrSlotCount,
		msg:  fmt.Sprintf("Please provide exactly %d wine numbers", expected),
	}
}

func wineOutOfRange(wine, total int) error {
	return &detailedError{
		kind: ErrWineOutOfRange,
		msg:  fmt.Sprintf("Wine %d is not between 1 and %d", wine, total),
	}
}

// IsValidationError reports whether err was raised before any request was sent.
func IsValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
