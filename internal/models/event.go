package models

import (
	"time"

	"gorm.io/gorm"
)

// Event is a meetup proposal: a time dimension and an optional restaurant
// dimension, each either fixed by the creator or put to a participant vote.
// Option and vote rows are owned by the event and removed with it.
type Event struct {
	gorm.Model
	Title                string
	Description          string
	CreatorID            uint
	Creator              User       `gorm:"foreignKey:CreatorID"`
	VotingDeadline       *time.Time // nil for fully fixed events
	TimeOptionType       string
	RestaurantOptionType string
	TimeOptions          []TimeOption       `gorm:"constraint:OnDelete:CASCADE"`
	RestaurantOptions    []RestaurantOption `gorm:"constraint:OnDelete:CASCADE"`
	Participants         []User             `gorm:"many2many:event_participants"`
	Votes                []Vote             `gorm:"constraint:OnDelete:CASCADE"`
}

// TimeOption is one candidate time slot. OptionID is assigned at draft time
// and stays stable once persisted; Position preserves the creator's ordering,
// which the tie-break depends on.
type TimeOption struct {
	gorm.Model
	EventID     uint   `gorm:"index"`
	OptionID    string `gorm:"index"`
	Position    int
	StartTime   time.Time
	EndTime     time.Time
	MaxCapacity int // 0 unless the event is capacity based
}

// RestaurantOption is one candidate restaurant.
type RestaurantOption struct {
	gorm.Model
	EventID       uint   `gorm:"index"`
	OptionID      string `gorm:"index"`
	Position      int
	Name          string
	MenuImageURL  string
	RestaurantURL string
}

// Vote is a participant's active selection in one dimension of one event.
// The unique index makes "one selection per dimension" a database invariant,
// not just an application rule.
type Vote struct {
	gorm.Model
	EventID   uint   `gorm:"uniqueIndex:idx_vote_event_user_dim"`
	UserID    uint   `gorm:"uniqueIndex:idx_vote_event_user_dim"`
	Dimension string `gorm:"uniqueIndex:idx_vote_event_user_dim"`
	OptionID  string
}
