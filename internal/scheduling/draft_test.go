package scheduling

import (
	"strings"
	"testing"
	"time"
)

func timePtr(t time.Time) *time.Time { return &t }

func validVotingDraft(now time.Time) Draft {
	start1 := now.Add(24 * time.Hour)
	start2 := now.Add(48 * time.Hour)
	deadline := now.Add(12 * time.Hour)
	return Draft{
		Title:          "Team dinner",
		ParticipantIDs: []uint{2, 3},
		VotingDeadline: &deadline,
		TimeMode:       TimeVoting,
		TimeOptions: []TimeOptionDraft{
			{ID: "t1", StartTime: timePtr(start1), EndTime: timePtr(start1.Add(2 * time.Hour))},
			{ID: "t2", StartTime: timePtr(start2), EndTime: timePtr(start2.Add(2 * time.Hour))},
		},
		RestaurantMode: RestaurantNone,
	}
}

func TestNewDraft(t *testing.T) {
	draft := NewDraft()
	if draft.TimeMode != TimeFixed {
		t.Errorf("expected FIXED time mode, got %s", draft.TimeMode)
	}
	if len(draft.TimeOptions) != 1 {
		t.Errorf("expected one blank time option, got %d", len(draft.TimeOptions))
	}
	if draft.TimeOptions[0].ID == "" {
		t.Error("expected blank option to carry an id")
	}
	if draft.RestaurantMode != RestaurantNone {
		t.Errorf("expected NONE restaurant mode, got %s", draft.RestaurantMode)
	}
	if len(draft.RestaurantOptions) != 0 {
		t.Errorf("expected no restaurant options, got %d", len(draft.RestaurantOptions))
	}
}

func TestWithTimeMode(t *testing.T) {
	now := time.Now()

	t.Run("FixedToVotingResets", func(t *testing.T) {
		draft := NewDraft().WithTimeMode(TimeVoting)
		if len(draft.TimeOptions) != 1 {
			t.Fatalf("expected a single blank option after mode switch, got %d", len(draft.TimeOptions))
		}
		if draft.TimeOptions[0].StartTime != nil {
			t.Error("expected blank option after mode switch")
		}
	})

	t.Run("VotingToCapacityKeepsTimes", func(t *testing.T) {
		draft := validVotingDraft(now)
		switched := draft.WithTimeMode(TimeCapacityBased)
		if len(switched.TimeOptions) != 2 {
			t.Fatalf("expected entered slots to survive, got %d", len(switched.TimeOptions))
		}
		if switched.TimeOptions[0].StartTime == nil || !switched.TimeOptions[0].StartTime.Equal(*draft.TimeOptions[0].StartTime) {
			t.Error("expected start times to be preserved")
		}
	})

	t.Run("CapacityToVotingZeroesCapacity", func(t *testing.T) {
		draft := validVotingDraft(now).WithTimeMode(TimeCapacityBased)
		draft.TimeOptions[0].MaxCapacity = 4
		switched := draft.WithTimeMode(TimeVoting)
		if switched.TimeOptions[0].MaxCapacity != 0 {
			t.Errorf("expected capacity cleared, got %d", switched.TimeOptions[0].MaxCapacity)
		}
	})

	t.Run("SameModeIsNoop", func(t *testing.T) {
		draft := validVotingDraft(now)
		if got := draft.WithTimeMode(TimeVoting); len(got.TimeOptions) != 2 {
			t.Errorf("expected unchanged draft, got %d options", len(got.TimeOptions))
		}
	})

	t.Run("ReceiverUntouched", func(t *testing.T) {
		draft := validVotingDraft(now)
		_ = draft.WithTimeMode(TimeFixed)
		if len(draft.TimeOptions) != 2 {
			t.Errorf("transition mutated the receiver: %d options", len(draft.TimeOptions))
		}
	})
}

func TestWithRestaurantMode(t *testing.T) {
	t.Run("VotingGetsSingleBlank", func(t *testing.T) {
		draft := NewDraft().WithRestaurantMode(RestaurantVoting)
		if len(draft.RestaurantOptions) != 1 {
			t.Fatalf("expected one blank option, got %d", len(draft.RestaurantOptions))
		}
	})

	t.Run("BackToNoneEmptiesList", func(t *testing.T) {
		draft := NewDraft().WithRestaurantMode(RestaurantVoting).AddRestaurantOption()
		draft = draft.WithRestaurantMode(RestaurantNone)
		if len(draft.RestaurantOptions) != 0 {
			t.Errorf("expected empty list under NONE, got %d", len(draft.RestaurantOptions))
		}
	})
}

func TestOptionListBoundaries(t *testing.T) {
	t.Run("AddStopsAtSix", func(t *testing.T) {
		draft := NewDraft().WithTimeMode(TimeVoting)
		for i := 0; i < 10; i++ {
			draft = draft.AddTimeOption()
		}
		if len(draft.TimeOptions) != MaxOptions {
			t.Errorf("expected %d options, got %d", MaxOptions, len(draft.TimeOptions))
		}
	})

	t.Run("RemoveStopsAtOne", func(t *testing.T) {
		draft := NewDraft().WithTimeMode(TimeVoting).AddTimeOption()
		draft = draft.RemoveTimeOption(draft.TimeOptions[0].ID)
		if len(draft.TimeOptions) != 1 {
			t.Fatalf("expected 1 option, got %d", len(draft.TimeOptions))
		}
		// Last one standing is refused silently.
		draft = draft.RemoveTimeOption(draft.TimeOptions[0].ID)
		if len(draft.TimeOptions) != 1 {
			t.Errorf("expected removal of last option to be a no-op, got %d", len(draft.TimeOptions))
		}
	})

	t.Run("RemoveUnknownIDIsNoop", func(t *testing.T) {
		draft := NewDraft().WithTimeMode(TimeVoting).AddTimeOption()
		if got := draft.RemoveTimeOption("nope"); len(got.TimeOptions) != 2 {
			t.Errorf("expected unchanged list, got %d", len(got.TimeOptions))
		}
	})

	t.Run("AddRestaurantUnderNoneIsNoop", func(t *testing.T) {
		draft := NewDraft().AddRestaurantOption()
		if len(draft.RestaurantOptions) != 0 {
			t.Errorf("expected no option added under NONE, got %d", len(draft.RestaurantOptions))
		}
	})
}

func TestDraftValidate(t *testing.T) {
	now := time.Now()

	t.Run("ValidDraftPasses", func(t *testing.T) {
		errs := validVotingDraft(now).Validate(now)
		if errs.Any() {
			t.Errorf("expected no errors, got %v", errs)
		}
	})

	t.Run("AllErrorsAccumulated", func(t *testing.T) {
		draft := Draft{
			TimeMode:       TimeVoting,
			TimeOptions:    []TimeOptionDraft{{ID: "t1"}},
			RestaurantMode: RestaurantVoting,
			RestaurantOptions: []RestaurantOptionDraft{
				{ID: "r1", Name: "  "},
			},
		}
		errs := draft.Validate(now)
		for _, field := range []string{
			"title",
			"participantIds",
			"timeOptions",
			"timeOptions.t1.startTime",
			"timeOptions.t1.endTime",
			"restaurantOptions",
			"restaurantOptions.r1.name",
			"votingDeadline",
		} {
			if _, ok := errs[field]; !ok {
				t.Errorf("expected error for %q, got fields %v", field, errs.Fields())
			}
		}
	})

	t.Run("SingleRestaurantOptionUnderVotingRejected", func(t *testing.T) {
		draft := validVotingDraft(now)
		draft.RestaurantMode = RestaurantVoting
		draft.RestaurantOptions = []RestaurantOptionDraft{{ID: "r1", Name: "Pivnice"}}
		errs := draft.Validate(now)
		if msg, ok := errs["restaurantOptions"]; !ok || !strings.Contains(msg, "between") {
			t.Errorf("expected cardinality error on restaurantOptions, got %v", errs)
		}
	})

	t.Run("CapacityRequiredUnderCapacityBased", func(t *testing.T) {
		draft := validVotingDraft(now).WithTimeMode(TimeCapacityBased)
		errs := draft.Validate(now)
		if _, ok := errs["timeOptions."+draft.TimeOptions[0].ID+".maxCapacity"]; !ok {
			t.Errorf("expected maxCapacity error, got %v", errs)
		}
	})

	t.Run("EndBeforeStartRejected", func(t *testing.T) {
		draft := validVotingDraft(now)
		draft.TimeOptions[1].EndTime = timePtr(draft.TimeOptions[1].StartTime.Add(-time.Hour))
		errs := draft.Validate(now)
		if _, ok := errs["timeOptions.t2.endTime"]; !ok {
			t.Errorf("expected ordering error on t2, got %v", errs)
		}
	})

	t.Run("DeadlineInPastRejected", func(t *testing.T) {
		draft := validVotingDraft(now)
		draft.VotingDeadline = timePtr(now.Add(-time.Minute))
		errs := draft.Validate(now)
		if _, ok := errs["votingDeadline"]; !ok {
			t.Errorf("expected votingDeadline error, got %v", errs)
		}
	})

	t.Run("NoDeadlineNeededWhenFullyFixed", func(t *testing.T) {
		start := now.Add(24 * time.Hour)
		draft := Draft{
			Title:          "Fixed dinner",
			ParticipantIDs: []uint{2},
			TimeMode:       TimeFixed,
			TimeOptions: []TimeOptionDraft{
				{ID: "t1", StartTime: timePtr(start), EndTime: timePtr(start.Add(time.Hour))},
			},
			RestaurantMode: RestaurantNone,
		}
		if errs := draft.Validate(now); errs.Any() {
			t.Errorf("expected no errors, got %v", errs)
		}
	})
}

func TestDraftNormalized(t *testing.T) {
	now := time.Now()

	t.Run("StaleDeadlineCleared", func(t *testing.T) {
		start := now.Add(24 * time.Hour)
		deadline := now.Add(time.Hour)
		draft := Draft{
			Title:          "Fixed dinner",
			ParticipantIDs: []uint{2},
			VotingDeadline: &deadline,
			TimeMode:       TimeFixed,
			TimeOptions: []TimeOptionDraft{
				{ID: "t1", StartTime: timePtr(start), EndTime: timePtr(start.Add(time.Hour))},
			},
			RestaurantMode: RestaurantNone,
		}
		if got := draft.Normalized(); got.VotingDeadline != nil {
			t.Error("expected deadline cleared on fully fixed event")
		}
	})

	t.Run("CapacityClearedOutsideCapacityMode", func(t *testing.T) {
		draft := validVotingDraft(now)
		draft.TimeOptions[0].MaxCapacity = 3
		if got := draft.Normalized(); got.TimeOptions[0].MaxCapacity != 0 {
			t.Errorf("expected capacity cleared, got %d", got.TimeOptions[0].MaxCapacity)
		}
	})

	t.Run("MissingOptionIDsAssigned", func(t *testing.T) {
		draft := validVotingDraft(now)
		draft.TimeOptions[0].ID = ""
		got := draft.Normalized()
		if got.TimeOptions[0].ID == "" {
			t.Error("expected option id to be generated")
		}
	})
}
