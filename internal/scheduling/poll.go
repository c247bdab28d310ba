package scheduling

import (
	"sort"
	"time"
)

// Ballot is one participant's current selections on an event: at most one
// option per dimension. The zero value means no selection anywhere.
type Ballot struct {
	TimeOptionID       string
	RestaurantOptionID string
}

func (b Ballot) selection(dim Dimension) string {
	if dim == DimensionTime {
		return b.TimeOptionID
	}
	return b.RestaurantOptionID
}

func (b *Ballot) setSelection(dim Dimension, optionID string) {
	if dim == DimensionTime {
		b.TimeOptionID = optionID
	} else {
		b.RestaurantOptionID = optionID
	}
}

// PollOption is the slice of an option the ledger needs: its identity and,
// for capacity slots, the seat ceiling. List order follows the creator's
// original ordering.
type PollOption struct {
	ID          string
	MaxCapacity int
}

// Poll is the voting state of one event, loaded as a snapshot from the
// persistence gateway. All counts are derived from Votes on read; nothing is
// kept as a counter that could drift. Poll itself is not goroutine-safe: the
// gateway serializes mutations on the same event, one transaction per vote
// request.
type Poll struct {
	CreatorID         uint
	ParticipantIDs    []uint
	VotingDeadline    *time.Time
	TimeMode          TimeMode
	TimeOptions       []PollOption
	RestaurantMode    RestaurantMode
	RestaurantOptions []PollOption
	Votes             map[uint]Ballot
}

// IsClosed reports whether voting has ended at the given instant. Events with
// no deadline (fully fixed) never close.
func (p *Poll) IsClosed(now time.Time) bool {
	return p.VotingDeadline != nil && !now.Before(*p.VotingDeadline)
}

func (p *Poll) isParticipant(userID uint) bool {
	if userID == p.CreatorID {
		return true
	}
	for _, id := range p.ParticipantIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (p *Poll) votable(dim Dimension) bool {
	if dim == DimensionTime {
		return p.TimeMode.RequiresVoting()
	}
	return p.RestaurantMode.RequiresVoting()
}

func (p *Poll) options(dim Dimension) []PollOption {
	if dim == DimensionTime {
		return p.TimeOptions
	}
	return p.RestaurantOptions
}

func (p *Poll) option(dim Dimension, optionID string) (PollOption, bool) {
	for _, opt := range p.options(dim) {
		if opt.ID == optionID {
			return opt, true
		}
	}
	return PollOption{}, false
}

// VotesFor returns the users whose current selection in dim is optionID, in
// ascending user-id order so repeated reads render identically.
func (p *Poll) VotesFor(dim Dimension, optionID string) []uint {
	var users []uint
	for userID, ballot := range p.Votes {
		if ballot.selection(dim) == optionID {
			users = append(users, userID)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i] < users[j] })
	return users
}

// ReservedCount is the number of seats currently taken on a time slot.
func (p *Poll) ReservedCount(optionID string) int {
	return len(p.VotesFor(DimensionTime, optionID))
}

// CastOrToggle applies one vote request and returns the user's resulting
// ballot. Casting the currently-selected option withdraws it; casting a
// different option replaces the previous selection in that dimension as a
// single swap. now must be sampled once per request by the caller.
func (p *Poll) CastOrToggle(userID uint, dim Dimension, optionID string, now time.Time) (Ballot, error) {
	current := p.Votes[userID]
	if p.IsClosed(now) {
		return current, ErrVotingClosed
	}
	if !p.isParticipant(userID) {
		return current, ErrNotParticipant
	}
	if !p.votable(dim) {
		return current, ErrNotVotable
	}
	opt, ok := p.option(dim, optionID)
	if !ok {
		return current, ErrUnknownOption
	}

	// Re-casting the held option is a toggle-off; it can never hit the
	// capacity check, so re-confirming one's own seat always succeeds.
	if current.selection(dim) == optionID {
		current.setSelection(dim, "")
		p.setBallot(userID, current)
		return current, nil
	}

	if dim == DimensionTime && p.TimeMode == TimeCapacityBased {
		if opt.MaxCapacity >= 1 && p.ReservedCount(optionID) >= opt.MaxCapacity {
			return current, ErrCapacityFull
		}
	}

	current.setSelection(dim, optionID)
	p.setBallot(userID, current)
	return current, nil
}

func (p *Poll) setBallot(userID uint, ballot Ballot) {
	if p.Votes == nil {
		p.Votes = map[uint]Ballot{}
	}
	p.Votes[userID] = ballot
}

// RequiresVoting reports whether any dimension takes participant votes at
// all; fully fixed events have nothing to close.
func (p *Poll) RequiresVoting() bool {
	return p.TimeMode.RequiresVoting() || p.RestaurantMode.RequiresVoting()
}

// CanClose reports whether the viewer may close voting early: only the
// creator, and only once their own selection is in for every dimension that
// takes votes.
func (p *Poll) CanClose(viewerID uint) bool {
	if viewerID != p.CreatorID {
		return false
	}
	ballot := p.Votes[viewerID]
	if p.TimeMode.RequiresVoting() && ballot.TimeOptionID == "" {
		return false
	}
	if p.RestaurantMode.RequiresVoting() && ballot.RestaurantOptionID == "" {
		return false
	}
	return true
}

// Winner resolves the dimension's result. Fixed dimensions resolve to their
// sole option; voted dimensions take the option with the most votes, breaking
// ties toward the creator's pick and then toward original list order. The
// result is a pure derivation of the vote set, so recomputing it after the
// deadline always yields the same option.
func (p *Poll) Winner(dim Dimension) (string, bool) {
	opts := p.options(dim)
	if len(opts) == 0 {
		return "", false
	}
	if !p.votable(dim) {
		return opts[0].ID, true
	}

	maxVotes := -1
	var tied []string
	for _, opt := range opts {
		votes := len(p.VotesFor(dim, opt.ID))
		switch {
		case votes > maxVotes:
			maxVotes = votes
			tied = []string{opt.ID}
		case votes == maxVotes:
			tied = append(tied, opt.ID)
		}
	}

	creatorPick := p.Votes[p.CreatorID].selection(dim)
	for _, id := range tied {
		if id == creatorPick {
			return id, true
		}
	}
	return tied[0], true
}

// EffectiveSelection is the published read model for a dimension: the
// viewer's own selection while voting is open, the resolved winner once it
// has closed.
func (p *Poll) EffectiveSelection(dim Dimension, viewerID uint, now time.Time) string {
	if p.IsClosed(now) {
		winner, ok := p.Winner(dim)
		if !ok {
			return ""
		}
		return winner
	}
	return p.Votes[viewerID].selection(dim)
}
