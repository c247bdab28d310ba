package scheduling

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TimeOptionDraft is a time slot being edited in the creation wizard. Nil
// times mean the field has not been filled in yet. MaxCapacity is meaningful
// only under CAPACITY_BASED; 0 means unset.
type TimeOptionDraft struct {
	ID          string
	StartTime   *time.Time
	EndTime     *time.Time
	MaxCapacity int
}

// RestaurantOptionDraft is a restaurant choice being edited in the wizard.
type RestaurantOptionDraft struct {
	ID            string
	Name          string
	MenuImageURL  string
	RestaurantURL string
}

// Draft is the wizard's working copy of an event. It is a plain value:
// every transition returns a new Draft and leaves the receiver untouched, so
// wizard steps can be composed without shared mutable state.
type Draft struct {
	Title             string
	Description       string
	ParticipantIDs    []uint
	VotingDeadline    *time.Time
	TimeMode          TimeMode
	TimeOptions       []TimeOptionDraft
	RestaurantMode    RestaurantMode
	RestaurantOptions []RestaurantOptionDraft
}

// NewDraft starts a blank draft: a single fixed time slot and no restaurant.
func NewDraft() Draft {
	return Draft{
		TimeMode:       TimeFixed,
		TimeOptions:    []TimeOptionDraft{newTimeOption()},
		RestaurantMode: RestaurantNone,
	}
}

func newTimeOption() TimeOptionDraft {
	return TimeOptionDraft{ID: uuid.NewString()}
}

func newRestaurantOption() RestaurantOptionDraft {
	return RestaurantOptionDraft{ID: uuid.NewString()}
}

func (d Draft) clone() Draft {
	out := d
	out.ParticipantIDs = append([]uint(nil), d.ParticipantIDs...)
	out.TimeOptions = append([]TimeOptionDraft(nil), d.TimeOptions...)
	out.RestaurantOptions = append([]RestaurantOptionDraft(nil), d.RestaurantOptions...)
	if d.VotingDeadline != nil {
		deadline := *d.VotingDeadline
		out.VotingDeadline = &deadline
	}
	return out
}

// WithTimeMode switches the time dimension's scheduling policy. Switching
// between the two multi-option modes keeps the entered slots (capacities are
// zeroed when leaving CAPACITY_BASED, they carry no meaning elsewhere); any
// other switch resets the list to a single blank slot.
func (d Draft) WithTimeMode(mode TimeMode) Draft {
	if mode == d.TimeMode {
		return d
	}
	out := d.clone()
	out.TimeMode = mode
	if mode.MultiOption() && d.TimeMode.MultiOption() {
		if mode != TimeCapacityBased {
			for i := range out.TimeOptions {
				out.TimeOptions[i].MaxCapacity = 0
			}
		}
		return out
	}
	out.TimeOptions = []TimeOptionDraft{newTimeOption()}
	return out
}

// WithRestaurantMode switches the restaurant dimension's policy. NONE empties
// the list; every other switch resets it to a single blank option.
func (d Draft) WithRestaurantMode(mode RestaurantMode) Draft {
	if mode == d.RestaurantMode {
		return d
	}
	out := d.clone()
	out.RestaurantMode = mode
	if mode == RestaurantNone {
		out.RestaurantOptions = nil
		return out
	}
	out.RestaurantOptions = []RestaurantOptionDraft{newRestaurantOption()}
	return out
}

// AddTimeOption appends a blank slot. Silent no-op at the six-option ceiling;
// the wizard disables the button rather than surfacing an error.
func (d Draft) AddTimeOption() Draft {
	if len(d.TimeOptions) >= MaxOptions {
		return d
	}
	out := d.clone()
	out.TimeOptions = append(out.TimeOptions, newTimeOption())
	return out
}

// RemoveTimeOption drops the identified slot. Silent no-op when only one slot
// remains or the id is unknown.
func (d Draft) RemoveTimeOption(id string) Draft {
	if len(d.TimeOptions) <= 1 {
		return d
	}
	out := d.clone()
	for i, opt := range out.TimeOptions {
		if opt.ID == id {
			out.TimeOptions = append(out.TimeOptions[:i], out.TimeOptions[i+1:]...)
			return out
		}
	}
	return d
}

// AddRestaurantOption appends a blank option, subject to the same ceiling as
// AddTimeOption. No-op while the restaurant dimension is NONE.
func (d Draft) AddRestaurantOption() Draft {
	if d.RestaurantMode == RestaurantNone || len(d.RestaurantOptions) >= MaxOptions {
		return d
	}
	out := d.clone()
	out.RestaurantOptions = append(out.RestaurantOptions, newRestaurantOption())
	return out
}

// RemoveRestaurantOption drops the identified option; no-op at one remaining.
func (d Draft) RemoveRestaurantOption(id string) Draft {
	if len(d.RestaurantOptions) <= 1 {
		return d
	}
	out := d.clone()
	for i, opt := range out.RestaurantOptions {
		if opt.ID == id {
			out.RestaurantOptions = append(out.RestaurantOptions[:i], out.RestaurantOptions[i+1:]...)
			return out
		}
	}
	return d
}

// RequiresVoting reports whether any dimension needs participant votes, which
// is exactly when a voting deadline must be present.
func (d Draft) RequiresVoting() bool {
	return d.TimeMode.RequiresVoting() || d.RestaurantMode.RequiresVoting()
}

// Validate checks the whole draft against the invariants and returns every
// violation at once, keyed by field path. An empty map means the draft may be
// submitted.
func (d Draft) Validate(now time.Time) ValidationErrors {
	errs := ValidationErrors{}

	if strings.TrimSpace(d.Title) == "" {
		errs.Add("title", "title is required")
	}
	if len(d.ParticipantIDs) == 0 {
		errs.Add("participantIds", "invite at least one participant")
	}

	d.validateTimeDimension(errs)
	d.validateRestaurantDimension(errs)

	if d.RequiresVoting() {
		if d.VotingDeadline == nil {
			errs.Add("votingDeadline", "voting deadline is required when a dimension is voted on")
		} else if NotPast(*d.VotingDeadline, now) != nil {
			errs.Add("votingDeadline", "voting deadline must not be in the past")
		}
	}

	return errs
}

func (d Draft) validateTimeDimension(errs ValidationErrors) {
	if !d.TimeMode.Valid() {
		errs.Add("timeOptionType", "unknown time option type")
		return
	}
	switch {
	case d.TimeMode == TimeFixed && len(d.TimeOptions) != 1:
		errs.Add("timeOptions", "a fixed time requires exactly one slot")
	case d.TimeMode.MultiOption() && (len(d.TimeOptions) < MinVotingOptions || len(d.TimeOptions) > MaxOptions):
		errs.Add("timeOptions", fmt.Sprintf("between %d and %d time slots are required", MinVotingOptions, MaxOptions))
	}
	for _, opt := range d.TimeOptions {
		key := "timeOptions." + opt.ID
		if opt.StartTime == nil {
			errs.Add(key+".startTime", "start time is required")
		}
		if opt.EndTime == nil {
			errs.Add(key+".endTime", "end time is required")
		}
		if opt.StartTime != nil && opt.EndTime != nil {
			if err := ValidateTimeOrder(*opt.StartTime, *opt.EndTime); err != nil {
				errs.Add(key+".endTime", "end time must be after start time")
			}
		}
		if d.TimeMode == TimeCapacityBased && opt.MaxCapacity < 1 {
			errs.Add(key+".maxCapacity", "capacity must be at least 1")
		}
	}
}

func (d Draft) validateRestaurantDimension(errs ValidationErrors) {
	if !d.RestaurantMode.Valid() {
		errs.Add("restaurantOptionType", "unknown restaurant option type")
		return
	}
	switch {
	case d.RestaurantMode == RestaurantNone && len(d.RestaurantOptions) != 0:
		errs.Add("restaurantOptions", "no restaurant options are allowed without a restaurant dimension")
	case d.RestaurantMode == RestaurantFixed && len(d.RestaurantOptions) != 1:
		errs.Add("restaurantOptions", "a fixed restaurant requires exactly one option")
	case d.RestaurantMode == RestaurantVoting && (len(d.RestaurantOptions) < MinVotingOptions || len(d.RestaurantOptions) > MaxOptions):
		errs.Add("restaurantOptions", fmt.Sprintf("between %d and %d restaurant options are required", MinVotingOptions, MaxOptions))
	}
	for _, opt := range d.RestaurantOptions {
		if strings.TrimSpace(opt.Name) == "" {
			errs.Add("restaurantOptions."+opt.ID+".name", "restaurant name is required")
		}
	}
}

// Normalized clears fields that carry no meaning under the selected modes, so
// a stale deadline or capacity never reaches persistence.
func (d Draft) Normalized() Draft {
	out := d.clone()
	if !out.RequiresVoting() {
		out.VotingDeadline = nil
	}
	if out.TimeMode != TimeCapacityBased {
		for i := range out.TimeOptions {
			out.TimeOptions[i].MaxCapacity = 0
		}
	}
	if out.RestaurantMode == RestaurantNone {
		out.RestaurantOptions = nil
	}
	for i := range out.TimeOptions {
		if out.TimeOptions[i].ID == "" {
			out.TimeOptions[i].ID = uuid.NewString()
		}
	}
	for i := range out.RestaurantOptions {
		if out.RestaurantOptions[i].ID == "" {
			out.RestaurantOptions[i].ID = uuid.NewString()
		}
	}
	return out
}
