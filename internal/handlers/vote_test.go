package handlers

import (
	"testing"
	"time"

	"github.com/gdg-garage/garage-meetup-api/internal/models"
	"gorm.io/gorm"
)

func castVote(t *testing.T, h *VoteHandler, userID, eventID uint, dimension, optionID string) *EventResponse {
	t.Helper()
	req := &VoteRequest{ID: eventID}
	req.Body.Dimension = dimension
	req.Body.OptionID = optionID
	resp, err := h.HandleVote(userCtx(userID), req)
	if err != nil {
		t.Fatalf("HandleVote(%d, %s, %s) failed: %v", userID, dimension, optionID, err)
	}
	return resp
}

func tryVote(h *VoteHandler, userID, eventID uint, dimension, optionID string) error {
	req := &VoteRequest{ID: eventID}
	req.Body.Dimension = dimension
	req.Body.OptionID = optionID
	_, err := h.HandleVote(userCtx(userID), req)
	return err
}

func voteRows(t *testing.T, db *gorm.DB, eventID uint) int64 {
	t.Helper()
	var count int64
	db.Model(&models.Vote{}).Where("event_id = ?", eventID).Count(&count)
	return count
}

func TestHandleVote(t *testing.T) {
	db := setupTestDB(t)
	creator := createTestUser(t, db, "100", "creator")
	guest := createTestUser(t, db, "200", "guest")
	stranger := createTestUser(t, db, "300", "stranger")
	eventHandler := NewEventHandler(db, nil)
	handler := NewVoteHandler(db)

	created, err := eventHandler.HandleCreateEvent(userCtx(creator.ID),
		&CreateEventRequest{Body: votingDraftBody([]uint{guest.ID}, time.Now().Add(12*time.Hour))})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	eventID := created.Body.ID

	t.Run("CastCountsDerivedFromRows", func(t *testing.T) {
		resp := castVote(t, handler, guest.ID, eventID, "time", "t1")
		if resp.Body.MyTimeOptionID != "t1" {
			t.Errorf("expected own selection t1, got %q", resp.Body.MyTimeOptionID)
		}
		if resp.Body.TimeOptions[0].VotesCount != 1 {
			t.Errorf("expected 1 vote on t1, got %d", resp.Body.TimeOptions[0].VotesCount)
		}
		if len(resp.Body.TimeOptions[0].VotedUsers) != 1 || resp.Body.TimeOptions[0].VotedUsers[0].Username != "guest" {
			t.Errorf("expected guest listed on t1, got %+v", resp.Body.TimeOptions[0].VotedUsers)
		}
	})

	t.Run("ToggleOffRemovesTheRow", func(t *testing.T) {
		resp := castVote(t, handler, guest.ID, eventID, "time", "t1")
		if resp.Body.MyTimeOptionID != "" {
			t.Errorf("expected selection withdrawn, got %q", resp.Body.MyTimeOptionID)
		}
		if rows := voteRows(t, db, eventID); rows != 0 {
			t.Errorf("expected 0 vote rows, got %d", rows)
		}
	})

	t.Run("RecastAfterToggleWorks", func(t *testing.T) {
		resp := castVote(t, handler, guest.ID, eventID, "time", "t1")
		if resp.Body.MyTimeOptionID != "t1" {
			t.Errorf("expected t1 re-selected, got %q", resp.Body.MyTimeOptionID)
		}
	})

	t.Run("SwapIsOneRowPerDimension", func(t *testing.T) {
		resp := castVote(t, handler, guest.ID, eventID, "time", "t2")
		if resp.Body.MyTimeOptionID != "t2" {
			t.Errorf("expected swap to t2, got %q", resp.Body.MyTimeOptionID)
		}
		if resp.Body.TimeOptions[0].VotesCount != 0 || resp.Body.TimeOptions[1].VotesCount != 1 {
			t.Errorf("expected vote moved to t2, got %d/%d",
				resp.Body.TimeOptions[0].VotesCount, resp.Body.TimeOptions[1].VotesCount)
		}
		if rows := voteRows(t, db, eventID); rows != 1 {
			t.Errorf("expected exactly 1 vote row after swap, got %d", rows)
		}
	})

	t.Run("StrangerForbidden", func(t *testing.T) {
		assertStatus(t, tryVote(handler, stranger.ID, eventID, "time", "t1"), 403)
	})

	t.Run("UnknownOptionNotFound", func(t *testing.T) {
		assertStatus(t, tryVote(handler, guest.ID, eventID, "time", "bogus"), 404)
	})

	t.Run("BadDimensionRejected", func(t *testing.T) {
		assertStatus(t, tryVote(handler, guest.ID, eventID, "dessert", "t1"), 422)
	})

	t.Run("MissingEventNotFound", func(t *testing.T) {
		assertStatus(t, tryVote(handler, guest.ID, 424242, "time", "t1"), 404)
	})
}

func TestHandleVoteFixedDimension(t *testing.T) {
	db := setupTestDB(t)
	creator := createTestUser(t, db, "100", "creator")
	guest := createTestUser(t, db, "200", "guest")
	eventHandler := NewEventHandler(db, nil)
	handler := NewVoteHandler(db)

	start := time.Now().Add(24 * time.Hour)
	body := EventDraftBody{
		Title:          "Fixed evening",
		ParticipantIDs: []uint{guest.ID},
		TimeOptionType: "FIXED",
		TimeOptions: []TimeOptionBody{
			{ID: "t1", StartTime: &start, EndTime: timePtr(start.Add(time.Hour))},
		},
		RestaurantOptionType: "NONE",
	}
	created, err := eventHandler.HandleCreateEvent(userCtx(creator.ID), &CreateEventRequest{Body: body})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	assertStatus(t, tryVote(handler, guest.ID, created.Body.ID, "time", "t1"), 422)
}

func TestHandleVoteCapacity(t *testing.T) {
	db := setupTestDB(t)
	creator := createTestUser(t, db, "100", "creator")
	guest := createTestUser(t, db, "200", "guest")
	third := createTestUser(t, db, "300", "third")
	eventHandler := NewEventHandler(db, nil)
	handler := NewVoteHandler(db)

	start1 := time.Now().Add(24 * time.Hour)
	start2 := time.Now().Add(48 * time.Hour)
	deadline := time.Now().Add(12 * time.Hour)
	body := EventDraftBody{
		Title:          "Climbing session",
		ParticipantIDs: []uint{guest.ID, third.ID},
		VotingDeadline: &deadline,
		TimeOptionType: "CAPACITY_BASED",
		TimeOptions: []TimeOptionBody{
			{ID: "t1", StartTime: &start1, EndTime: timePtr(start1.Add(2 * time.Hour)), MaxCapacity: 1},
			{ID: "t2", StartTime: &start2, EndTime: timePtr(start2.Add(2 * time.Hour)), MaxCapacity: 2},
		},
		RestaurantOptionType: "NONE",
	}
	created, err := eventHandler.HandleCreateEvent(userCtx(creator.ID), &CreateEventRequest{Body: body})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	eventID := created.Body.ID

	t.Run("FirstComeFirstServed", func(t *testing.T) {
		resp := castVote(t, handler, guest.ID, eventID, "time", "t1")
		if resp.Body.TimeOptions[0].ReservedCount != 1 {
			t.Errorf("expected 1 reservation on t1, got %d", resp.Body.TimeOptions[0].ReservedCount)
		}
	})

	t.Run("SecondTakerGetsConflict", func(t *testing.T) {
		assertStatus(t, tryVote(handler, third.ID, eventID, "time", "t1"), 409)
	})

	t.Run("LoserFindsAnotherSlot", func(t *testing.T) {
		resp := castVote(t, handler, third.ID, eventID, "time", "t2")
		if resp.Body.TimeOptions[1].ReservedCount != 1 {
			t.Errorf("expected 1 reservation on t2, got %d", resp.Body.TimeOptions[1].ReservedCount)
		}
	})

	t.Run("HolderCanReleaseAndRetake", func(t *testing.T) {
		resp := castVote(t, handler, guest.ID, eventID, "time", "t1") // release
		if resp.Body.TimeOptions[0].ReservedCount != 0 {
			t.Fatalf("expected seat released, got %d", resp.Body.TimeOptions[0].ReservedCount)
		}
		resp = castVote(t, handler, guest.ID, eventID, "time", "t1") // retake
		if resp.Body.TimeOptions[0].ReservedCount != 1 {
			t.Fatalf("expected seat retaken, got %d", resp.Body.TimeOptions[0].ReservedCount)
		}
	})

	t.Run("CapacityInvariantHolds", func(t *testing.T) {
		castVote(t, handler, creator.ID, eventID, "time", "t2")
		assertStatus(t, tryVote(handler, guest.ID, eventID, "time", "t2"), 409)

		var event models.Event
		if err := db.Preload("TimeOptions").Preload("Votes").First(&event, eventID).Error; err != nil {
			t.Fatalf("load failed: %v", err)
		}
		reserved := map[string]int{}
		for _, vote := range event.Votes {
			if vote.Dimension == "time" {
				reserved[vote.OptionID]++
			}
		}
		for _, opt := range event.TimeOptions {
			if reserved[opt.OptionID] > opt.MaxCapacity {
				t.Errorf("option %s holds %d reservations over capacity %d",
					opt.OptionID, reserved[opt.OptionID], opt.MaxCapacity)
			}
		}
	})
}
