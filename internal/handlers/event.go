package handlers

import (
	"context"
	"errors"
	"log"
	"sort"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/garage-meetup-api/internal/auth"
	"github.com/gdg-garage/garage-meetup-api/internal/models"
	"github.com/gdg-garage/garage-meetup-api/internal/notifier"
	"github.com/gdg-garage/garage-meetup-api/internal/scheduling"
	"gorm.io/gorm"
)

type EventHandler struct {
	db       *gorm.DB
	notifier notifier.Notifier
}

func NewEventHandler(db *gorm.DB, notifier notifier.Notifier) *EventHandler {
	return &EventHandler{db: db, notifier: notifier}
}

type TimeOptionBody struct {
	ID          string     `json:"id,omitempty" doc:"Draft-assigned option id; generated when empty"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	MaxCapacity int        `json:"max_capacity,omitempty" doc:"Seat limit, CAPACITY_BASED only"`
}

type RestaurantOptionBody struct {
	ID            string `json:"id,omitempty"`
	Name          string `json:"name"`
	MenuImageURL  string `json:"menu_image_url,omitempty"`
	RestaurantURL string `json:"restaurant_url,omitempty"`
}

type EventDraftBody struct {
	Title                string                 `json:"title"`
	Description          string                 `json:"description,omitempty"`
	ParticipantIDs       []uint                 `json:"participant_ids" doc:"Users invited to the event; the creator is always included"`
	VotingDeadline       *time.Time             `json:"voting_deadline,omitempty"`
	TimeOptionType       string                 `json:"time_option_type" doc:"FIXED, VOTING or CAPACITY_BASED"`
	TimeOptions          []TimeOptionBody       `json:"time_options"`
	RestaurantOptionType string                 `json:"restaurant_option_type" doc:"FIXED, VOTING or NONE"`
	RestaurantOptions    []RestaurantOptionBody `json:"restaurant_options,omitempty"`
}

type CreateEventRequest struct {
	Body EventDraftBody
}

type UpdateEventRequest struct {
	ID   uint `path:"id"`
	Body EventDraftBody
}

type EventResponse struct {
	Body EventView
}

func draftFromBody(body EventDraftBody) scheduling.Draft {
	draft := scheduling.Draft{
		Title:          body.Title,
		Description:    body.Description,
		ParticipantIDs: body.ParticipantIDs,
		VotingDeadline: body.VotingDeadline,
		TimeMode:       scheduling.TimeMode(body.TimeOptionType),
		RestaurantMode: scheduling.RestaurantMode(body.RestaurantOptionType),
	}
	for _, opt := range body.TimeOptions {
		draft.TimeOptions = append(draft.TimeOptions, scheduling.TimeOptionDraft{
			ID:          opt.ID,
			StartTime:   opt.StartTime,
			EndTime:     opt.EndTime,
			MaxCapacity: opt.MaxCapacity,
		})
	}
	for _, opt := range body.RestaurantOptions {
		draft.RestaurantOptions = append(draft.RestaurantOptions, scheduling.RestaurantOptionDraft{
			ID:            opt.ID,
			Name:          opt.Name,
			MenuImageURL:  opt.MenuImageURL,
			RestaurantURL: opt.RestaurantURL,
		})
	}
	return draft
}

// validationError renders every accumulated field error at once, so the
// wizard can highlight all violations in a single round trip.
func validationError(errs scheduling.ValidationErrors) error {
	details := make([]error, 0, len(errs))
	for _, field := range errs.Fields() {
		details = append(details, &huma.ErrorDetail{Location: field, Message: errs[field]})
	}
	return huma.Error422UnprocessableEntity("event draft is invalid", details...)
}

// resolveParticipants checks every invited id against the user table and
// always includes the creator.
func (h *EventHandler) resolveParticipants(tx *gorm.DB, draft scheduling.Draft, creatorID uint) ([]models.User, error) {
	seen := map[uint]bool{creatorID: true}
	ids := []uint{creatorID}
	for _, id := range draft.ParticipantIDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var users []models.User
	if err := tx.Find(&users, ids).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to load participants")
	}
	if len(users) != len(ids) {
		errs := scheduling.ValidationErrors{}
		errs.Add("participantIds", "one or more invited participants do not exist")
		return nil, validationError(errs)
	}
	return users, nil
}

func optionRows(draft scheduling.Draft) ([]models.TimeOption, []models.RestaurantOption) {
	timeOptions := make([]models.TimeOption, 0, len(draft.TimeOptions))
	for i, opt := range draft.TimeOptions {
		row := models.TimeOption{
			OptionID:    opt.ID,
			Position:    i,
			MaxCapacity: opt.MaxCapacity,
		}
		if opt.StartTime != nil {
			row.StartTime = *opt.StartTime
		}
		if opt.EndTime != nil {
			row.EndTime = *opt.EndTime
		}
		timeOptions = append(timeOptions, row)
	}
	restaurantOptions := make([]models.RestaurantOption, 0, len(draft.RestaurantOptions))
	for i, opt := range draft.RestaurantOptions {
		restaurantOptions = append(restaurantOptions, models.RestaurantOption{
			OptionID:      opt.ID,
			Position:      i,
			Name:          opt.Name,
			MenuImageURL:  opt.MenuImageURL,
			RestaurantURL: opt.RestaurantURL,
		})
	}
	return timeOptions, restaurantOptions
}

// HandleCreateEvent persists a submitted wizard draft after running the full
// accumulated validation over both dimensions.
func (h *EventHandler) HandleCreateEvent(ctx context.Context, input *CreateEventRequest) (*EventResponse, error) {
	userID, ok := auth.UserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	now := time.Now()
	draft := draftFromBody(input.Body).Normalized()
	if errs := draft.Validate(now); errs.Any() {
		return nil, validationError(errs)
	}

	var eventID uint
	err := h.db.Transaction(func(tx *gorm.DB) error {
		users, err := h.resolveParticipants(tx, draft, userID)
		if err != nil {
			return err
		}

		timeOptions, restaurantOptions := optionRows(draft)
		event := models.Event{
			Title:                draft.Title,
			Description:          draft.Description,
			CreatorID:            userID,
			VotingDeadline:       draft.VotingDeadline,
			TimeOptionType:       string(draft.TimeMode),
			RestaurantOptionType: string(draft.RestaurantMode),
			TimeOptions:          timeOptions,
			RestaurantOptions:    restaurantOptions,
			Participants:         users,
		}
		if err := tx.Create(&event).Error; err != nil {
			return huma.Error500InternalServerError("Failed to create event: " + err.Error())
		}
		eventID = event.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	event, err := loadEvent(h.db, eventID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to load event")
	}

	if h.notifier != nil {
		if err := h.notifier.NotifyEventCreated(*event, event.Creator); err != nil {
			log.Printf("Failed to send notification: %v", err)
		}
	}

	return &EventResponse{Body: buildEventView(event, userID, now)}, nil
}

// HandleUpdateEvent revalidates and replaces the event's scheduling fields.
// Votes referencing removed options or uninvited participants are discarded.
func (h *EventHandler) HandleUpdateEvent(ctx context.Context, input *UpdateEventRequest) (*EventResponse, error) {
	userID, ok := auth.UserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	now := time.Now()
	draft := draftFromBody(input.Body).Normalized()
	if errs := draft.Validate(now); errs.Any() {
		return nil, validationError(errs)
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.First(&event, input.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return huma.Error404NotFound("Event not found")
			}
			return huma.Error500InternalServerError("Database error")
		}
		if event.CreatorID != userID {
			return huma.Error403Forbidden("Only the creator can edit the event")
		}

		users, err := h.resolveParticipants(tx, draft, userID)
		if err != nil {
			return err
		}

		event.Title = draft.Title
		event.Description = draft.Description
		event.VotingDeadline = draft.VotingDeadline
		event.TimeOptionType = string(draft.TimeMode)
		event.RestaurantOptionType = string(draft.RestaurantMode)
		if err := tx.Save(&event).Error; err != nil {
			return huma.Error500InternalServerError("Failed to update event")
		}

		// Rebuild the option lists from the draft.
		if err := tx.Unscoped().Where("event_id = ?", event.ID).Delete(&models.TimeOption{}).Error; err != nil {
			return huma.Error500InternalServerError("Failed to update time options")
		}
		if err := tx.Unscoped().Where("event_id = ?", event.ID).Delete(&models.RestaurantOption{}).Error; err != nil {
			return huma.Error500InternalServerError("Failed to update restaurant options")
		}
		timeOptions, restaurantOptions := optionRows(draft)
		for i := range timeOptions {
			timeOptions[i].EventID = event.ID
		}
		for i := range restaurantOptions {
			restaurantOptions[i].EventID = event.ID
		}
		if len(timeOptions) > 0 {
			if err := tx.Create(&timeOptions).Error; err != nil {
				return huma.Error500InternalServerError("Failed to save time options")
			}
		}
		if len(restaurantOptions) > 0 {
			if err := tx.Create(&restaurantOptions).Error; err != nil {
				return huma.Error500InternalServerError("Failed to save restaurant options")
			}
		}

		if err := tx.Model(&event).Association("Participants").Replace(users); err != nil {
			return huma.Error500InternalServerError("Failed to update participants")
		}

		// Drop votes that no longer point at anything.
		optionIDs := make([]string, 0, len(timeOptions)+len(restaurantOptions))
		for _, opt := range timeOptions {
			optionIDs = append(optionIDs, opt.OptionID)
		}
		for _, opt := range restaurantOptions {
			optionIDs = append(optionIDs, opt.OptionID)
		}
		userIDs := make([]uint, 0, len(users))
		for _, u := range users {
			userIDs = append(userIDs, u.ID)
		}
		if err := tx.Unscoped().Where("event_id = ? AND option_id NOT IN ?", event.ID, optionIDs).
			Delete(&models.Vote{}).Error; err != nil {
			return huma.Error500InternalServerError("Failed to prune votes")
		}
		if err := tx.Unscoped().Where("event_id = ? AND user_id NOT IN ?", event.ID, userIDs).
			Delete(&models.Vote{}).Error; err != nil {
			return huma.Error500InternalServerError("Failed to prune votes")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	event, err := loadEvent(h.db, input.ID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to load event")
	}
	return &EventResponse{Body: buildEventView(event, userID, now)}, nil
}

type GetEventRequest struct {
	ID uint `path:"id"`
}

func (h *EventHandler) HandleGetEvent(ctx context.Context, input *GetEventRequest) (*EventResponse, error) {
	userID, ok := auth.UserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	event, err := loadEvent(h.db, input.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, huma.Error404NotFound("Event not found")
		}
		return nil, huma.Error500InternalServerError("Database error")
	}

	if userID != event.CreatorID && !containsUser(event.Participants, userID) {
		return nil, huma.Error403Forbidden("You are not invited to this event")
	}

	return &EventResponse{Body: buildEventView(event, userID, time.Now())}, nil
}

type ListEventsResponse struct {
	Body []EventView
}

// HandleListEvents returns every event the caller participates in.
func (h *EventHandler) HandleListEvents(ctx context.Context, input *struct{}) (*ListEventsResponse, error) {
	userID, ok := auth.UserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	var ids []uint
	err := h.db.Model(&models.Event{}).
		Joins("JOIN event_participants ep ON ep.event_id = events.id").
		Where("ep.user_id = ?", userID).
		Distinct().
		Pluck("events.id", &ids).Error
	if err != nil {
		return nil, huma.Error500InternalServerError("Database error")
	}

	now := time.Now()
	views := make([]EventView, 0, len(ids))
	for _, id := range ids {
		event, err := loadEvent(h.db, id)
		if err != nil {
			return nil, huma.Error500InternalServerError("Database error")
		}
		views = append(views, buildEventView(event, userID, now))
	}
	return &ListEventsResponse{Body: views}, nil
}

type DeleteEventRequest struct {
	ID uint `path:"id"`
}

func (h *EventHandler) HandleDeleteEvent(ctx context.Context, input *DeleteEventRequest) (*struct{}, error) {
	userID, ok := auth.UserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.First(&event, input.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return huma.Error404NotFound("Event not found")
			}
			return huma.Error500InternalServerError("Database error")
		}
		if event.CreatorID != userID {
			return huma.Error403Forbidden("Only the creator can delete the event")
		}
		for _, model := range []interface{}{&models.TimeOption{}, &models.RestaurantOption{}, &models.Vote{}} {
			if err := tx.Unscoped().Where("event_id = ?", event.ID).Delete(model).Error; err != nil {
				return huma.Error500InternalServerError("Failed to delete event")
			}
		}
		if err := tx.Model(&event).Association("Participants").Clear(); err != nil {
			return huma.Error500InternalServerError("Failed to delete event")
		}
		if err := tx.Delete(&event).Error; err != nil {
			return huma.Error500InternalServerError("Failed to delete event")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return nil, nil
}

type CloseVotingRequest struct {
	ID uint `path:"id"`
}

// HandleCloseVoting lets the creator end voting early by moving the deadline
// to now. Refused until the creator's own selections cover every voting
// dimension.
func (h *EventHandler) HandleCloseVoting(ctx context.Context, input *CloseVotingRequest) (*EventResponse, error) {
	userID, ok := auth.UserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	now := time.Now()
	err := h.db.Transaction(func(tx *gorm.DB) error {
		event, err := loadEvent(tx, input.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return huma.Error404NotFound("Event not found")
			}
			return huma.Error500InternalServerError("Database error")
		}
		if event.CreatorID != userID {
			return huma.Error403Forbidden("Only the creator can close voting")
		}

		poll := buildPoll(event)
		if !poll.RequiresVoting() {
			return huma.Error422UnprocessableEntity("Event has no open vote to close")
		}
		if poll.IsClosed(now) {
			return huma.Error409Conflict("Voting is already closed")
		}
		if !poll.CanClose(userID) {
			return huma.Error422UnprocessableEntity("Cast your own vote in every voting dimension before closing")
		}

		return tx.Model(&models.Event{}).
			Where("id = ?", event.ID).
			Update("voting_deadline", now).Error
	})
	if err != nil {
		return nil, err
	}

	event, err := loadEvent(h.db, input.ID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to load event")
	}

	if h.notifier != nil {
		poll := buildPoll(event)
		var winningTime *models.TimeOption
		if winner, ok := poll.Winner(scheduling.DimensionTime); ok {
			for i := range event.TimeOptions {
				if event.TimeOptions[i].OptionID == winner {
					winningTime = &event.TimeOptions[i]
					break
				}
			}
		}
		var winningRestaurant *models.RestaurantOption
		if winner, ok := poll.Winner(scheduling.DimensionRestaurant); ok {
			for i := range event.RestaurantOptions {
				if event.RestaurantOptions[i].OptionID == winner {
					winningRestaurant = &event.RestaurantOptions[i]
					break
				}
			}
		}
		if err := h.notifier.NotifyVotingClosed(*event, winningTime, winningRestaurant); err != nil {
			log.Printf("Failed to send notification: %v", err)
		}
	}

	return &EventResponse{Body: buildEventView(event, userID, now)}, nil
}

func containsUser(users []models.User, id uint) bool {
	for _, u := range users {
		if u.ID == id {
			return true
		}
	}
	return false
}
