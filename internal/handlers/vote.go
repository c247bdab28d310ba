package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/garage-meetup-api/internal/auth"
	"github.com/gdg-garage/garage-meetup-api/internal/models"
	"github.com/gdg-garage/garage-meetup-api/internal/scheduling"
	"gorm.io/gorm"
)

type VoteHandler struct {
	db *gorm.DB
}

func NewVoteHandler(db *gorm.DB) *VoteHandler {
	return &VoteHandler{db: db}
}

type VoteRequest struct {
	ID   uint `path:"id"`
	Body struct {
		Dimension string `json:"dimension" doc:"time or restaurant"`
		OptionID  string `json:"option_id"`
	}
}

// HandleVote casts, replaces or withdraws the caller's selection in one
// dimension and returns the authoritative updated read model. The whole
// read-check-write runs in one transaction, so two participants racing for
// the last seat of a capacity slot cannot both win; the loser gets a 409.
func (h *VoteHandler) HandleVote(ctx context.Context, input *VoteRequest) (*EventResponse, error) {
	userID, ok := auth.UserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	dimension := scheduling.Dimension(input.Body.Dimension)
	if !dimension.Valid() {
		return nil, huma.Error422UnprocessableEntity("dimension must be time or restaurant")
	}
	if input.Body.OptionID == "" {
		return nil, huma.Error422UnprocessableEntity("option_id is required")
	}

	// One "now" for the whole request; the deadline check and the persisted
	// state must not disagree mid-operation.
	now := time.Now()

	err := h.db.Transaction(func(tx *gorm.DB) error {
		event, err := loadEvent(tx, input.ID)
		if err != nil {
			return err
		}

		poll := buildPoll(event)
		ballot, err := poll.CastOrToggle(userID, dimension, input.Body.OptionID, now)
		if err != nil {
			return err
		}

		// Persist the swap as one unit: either the dimension's row is gone
		// (toggle-off) or it points at the new option. The unique index on
		// (event, user, dimension) rules out double-counting.
		selection := ballot.TimeOptionID
		if dimension == scheduling.DimensionRestaurant {
			selection = ballot.RestaurantOptionID
		}
		if selection == "" {
			// Hard delete: a soft-deleted row would trip the unique index
			// the next time the user re-casts in this dimension.
			return tx.Unscoped().
				Where("event_id = ? AND user_id = ? AND dimension = ?",
					event.ID, userID, string(dimension)).
				Delete(&models.Vote{}).Error
		}

		var vote models.Vote
		if err := tx.Where(models.Vote{
			EventID:   event.ID,
			UserID:    userID,
			Dimension: string(dimension),
		}).FirstOrInit(&vote).Error; err != nil {
			return err
		}
		vote.OptionID = selection
		return tx.Save(&vote).Error
	})
	if err != nil {
		return nil, voteError(err)
	}

	event, err := loadEvent(h.db, input.ID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to load event")
	}
	return &EventResponse{Body: buildEventView(event, userID, now)}, nil
}

// voteError maps ledger rejections onto the HTTP taxonomy. Business-rule
// rejections are terminal for the request; only the opaque 500 is worth a
// retry.
func voteError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return huma.Error404NotFound("Event not found")
	case errors.Is(err, scheduling.ErrVotingClosed):
		return huma.Error409Conflict("Voting is closed")
	case errors.Is(err, scheduling.ErrCapacityFull):
		return huma.Error409Conflict("Time slot has no remaining capacity")
	case errors.Is(err, scheduling.ErrNotVotable):
		return huma.Error422UnprocessableEntity("This dimension is fixed and does not accept votes")
	case errors.Is(err, scheduling.ErrNotParticipant):
		return huma.Error403Forbidden("You are not invited to this event")
	case errors.Is(err, scheduling.ErrUnknownOption):
		return huma.Error404NotFound("Option not found on this event")
	}
	return huma.Error500InternalServerError("Failed to apply vote")
}
