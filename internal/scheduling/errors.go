package scheduling

import (
	"errors"
	"sort"
)

// Business-rule rejections. Terminal for the request that caused them;
// repeating the identical call will not make them go away.
var (
	ErrVotingClosed   = errors.New("voting deadline has passed")
	ErrCapacityFull   = errors.New("time slot has no remaining capacity")
	ErrNotVotable     = errors.New("dimension does not accept votes")
	ErrNotParticipant = errors.New("user is not a participant of the event")
	ErrUnknownOption  = errors.New("option does not exist on the event")
)

// ValidationErrors accumulates field-level problems keyed by field path,
// e.g. "title" or "timeOptions.<optionId>.startTime". Option-level keys let
// the caller render every violation at once.
type ValidationErrors map[string]string

func (v ValidationErrors) Add(field, message string) {
	if _, exists := v[field]; !exists {
		v[field] = message
	}
}

func (v ValidationErrors) Any() bool {
	return len(v) > 0
}

// Fields returns the violated field paths in stable order.
func (v ValidationErrors) Fields() []string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}
