package handlers

import (
	"time"

	"github.com/gdg-garage/garage-meetup-api/internal/models"
	"github.com/gdg-garage/garage-meetup-api/internal/scheduling"
	"gorm.io/gorm"
)

type ParticipantView struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
}

type TimeOptionView struct {
	ID            string            `json:"id"`
	StartTime     time.Time         `json:"start_time"`
	EndTime       time.Time         `json:"end_time"`
	MaxCapacity   int               `json:"max_capacity,omitempty"`
	VotesCount    int               `json:"votes_count"`
	ReservedCount int               `json:"reserved_count"`
	VotedUsers    []ParticipantView `json:"voted_users"`
}

type RestaurantOptionView struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	MenuImageURL  string            `json:"menu_image_url,omitempty"`
	RestaurantURL string            `json:"restaurant_url,omitempty"`
	VotesCount    int               `json:"votes_count"`
	VotedUsers    []ParticipantView `json:"voted_users"`
}

// EventView is the published read model. Every count in it is derived from
// the vote rows at read time; winners appear only once voting has closed.
type EventView struct {
	ID                        uint                   `json:"id"`
	Title                     string                 `json:"title"`
	Description               string                 `json:"description,omitempty"`
	CreatorID                 uint                   `json:"creator_id"`
	Participants              []ParticipantView      `json:"participants"`
	VotingDeadline            *time.Time             `json:"voting_deadline,omitempty"`
	VotingClosed              bool                   `json:"voting_closed"`
	CanClose                  bool                   `json:"can_close"`
	TimeOptionType            string                 `json:"time_option_type"`
	TimeOptions               []TimeOptionView       `json:"time_options"`
	MyTimeOptionID            string                 `json:"my_time_option_id,omitempty"`
	WinningTimeOptionID       string                 `json:"winning_time_option_id,omitempty"`
	RestaurantOptionType      string                 `json:"restaurant_option_type"`
	RestaurantOptions         []RestaurantOptionView `json:"restaurant_options,omitempty"`
	MyRestaurantOptionID      string                 `json:"my_restaurant_option_id,omitempty"`
	WinningRestaurantOptionID string                 `json:"winning_restaurant_option_id,omitempty"`
}

// loadEvent fetches an event with everything the read model and the ledger
// need, options in creator order.
func loadEvent(db *gorm.DB, id uint) (*models.Event, error) {
	var event models.Event
	err := db.
		Preload("TimeOptions", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("RestaurantOptions", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Participants").
		Preload("Creator").
		Preload("Votes").
		First(&event, id).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// buildPoll projects a loaded event into the scheduling snapshot the core
// operates on.
func buildPoll(event *models.Event) *scheduling.Poll {
	poll := &scheduling.Poll{
		CreatorID:      event.CreatorID,
		VotingDeadline: event.VotingDeadline,
		TimeMode:       scheduling.TimeMode(event.TimeOptionType),
		RestaurantMode: scheduling.RestaurantMode(event.RestaurantOptionType),
		Votes:          map[uint]scheduling.Ballot{},
	}
	for _, p := range event.Participants {
		poll.ParticipantIDs = append(poll.ParticipantIDs, p.ID)
	}
	for _, opt := range event.TimeOptions {
		poll.TimeOptions = append(poll.TimeOptions, scheduling.PollOption{
			ID:          opt.OptionID,
			MaxCapacity: opt.MaxCapacity,
		})
	}
	for _, opt := range event.RestaurantOptions {
		poll.RestaurantOptions = append(poll.RestaurantOptions, scheduling.PollOption{ID: opt.OptionID})
	}
	for _, vote := range event.Votes {
		ballot := poll.Votes[vote.UserID]
		if vote.Dimension == string(scheduling.DimensionTime) {
			ballot.TimeOptionID = vote.OptionID
		} else {
			ballot.RestaurantOptionID = vote.OptionID
		}
		poll.Votes[vote.UserID] = ballot
	}
	return poll
}

func buildEventView(event *models.Event, viewerID uint, now time.Time) EventView {
	poll := buildPoll(event)
	closed := poll.IsClosed(now)

	directory := map[uint]ParticipantView{}
	participants := make([]ParticipantView, 0, len(event.Participants))
	for _, p := range event.Participants {
		view := ParticipantView{ID: p.ID, Username: p.Username, Avatar: p.Avatar}
		directory[p.ID] = view
		participants = append(participants, view)
	}

	voters := func(dim scheduling.Dimension, optionID string) []ParticipantView {
		users := poll.VotesFor(dim, optionID)
		views := make([]ParticipantView, 0, len(users))
		for _, id := range users {
			if view, ok := directory[id]; ok {
				views = append(views, view)
			} else {
				views = append(views, ParticipantView{ID: id})
			}
		}
		return views
	}

	view := EventView{
		ID:                   event.ID,
		Title:                event.Title,
		Description:          event.Description,
		CreatorID:            event.CreatorID,
		Participants:         participants,
		VotingDeadline:       event.VotingDeadline,
		VotingClosed:         closed,
		CanClose:             !closed && viewerID == event.CreatorID && poll.CanClose(viewerID),
		TimeOptionType:       event.TimeOptionType,
		RestaurantOptionType: event.RestaurantOptionType,
	}

	for _, opt := range event.TimeOptions {
		votes := voters(scheduling.DimensionTime, opt.OptionID)
		view.TimeOptions = append(view.TimeOptions, TimeOptionView{
			ID:            opt.OptionID,
			StartTime:     opt.StartTime,
			EndTime:       opt.EndTime,
			MaxCapacity:   opt.MaxCapacity,
			VotesCount:    len(votes),
			ReservedCount: len(votes),
			VotedUsers:    votes,
		})
	}
	for _, opt := range event.RestaurantOptions {
		votes := voters(scheduling.DimensionRestaurant, opt.OptionID)
		view.RestaurantOptions = append(view.RestaurantOptions, RestaurantOptionView{
			ID:            opt.OptionID,
			Name:          opt.Name,
			MenuImageURL:  opt.MenuImageURL,
			RestaurantURL: opt.RestaurantURL,
			VotesCount:    len(votes),
			VotedUsers:    votes,
		})
	}

	ballot := poll.Votes[viewerID]
	view.MyTimeOptionID = ballot.TimeOptionID
	view.MyRestaurantOptionID = ballot.RestaurantOptionID

	if closed {
		if winner, ok := poll.Winner(scheduling.DimensionTime); ok {
			view.WinningTimeOptionID = winner
		}
		if winner, ok := poll.Winner(scheduling.DimensionRestaurant); ok {
			view.WinningRestaurantOptionID = winner
		}
	}

	return view
}
