package services

import (
	"errors"
	"testing"

	"winetasting/internal/models"
)

func TestValidateVote(t *testing.T) {
	tests := []struct {
		name    string
		sel     VoteSelection
		wantErr error
	}{
		{"complete and distinct", VoteSelection{"p1", 4, 9, 2}, nil},
		{"first equals second", VoteSelection{"p1", 4, 4, 2}, ErrDuplicateWine},
		{"second equals third", VoteSelection{"p1", 4, 9, 9}, ErrDuplicateWine},
		{"first equals third", VoteSelection{"p1", 2, 9, 2}, ErrDuplicateWine},
		{"duplicate reported before missing", VoteSelection{"p1", 4, 4, 0}, ErrDuplicateWine},
		{"missing third", VoteSelection{"p1", 4, 9, 0}, ErrIncompleteVote},
		{"missing participant", VoteSelection{"", 4, 9, 2}, ErrIncompleteVote},
		{"nothing chosen", VoteSelection{}, ErrIncompleteVote},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vote, err := ValidateVote(tt.sel)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Expected error %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr == nil {
				want := models.Vote{ParticipantID: "p1", FirstPlace: 4, SecondPlace: 9, ThirdPlace: 2}
				if vote != want {
					t.Errorf("Expected vote %+v, got %+v", want, vote)
				}
			}
		})
	}
}

func TestVotingChoices(t *testing.T) {
	t.Run("three or more wines", func(t *testing.T) {
		p := models.Participant{ID: "p1", AssignedWines: []int{3, 8, 1, 12}}
		wines, err := VotingChoices(p)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(wines) != 4 || wines[0] != 3 || wines[3] != 12 {
			t.Errorf("Expected the assigned wines in order, got %v", wines)
		}
	})

	t.Run("fewer than three wines", func(t *testing.T) {
		p := models.Participant{ID: "p2", AssignedWines: []int{3, 8}}
		_, err := VotingChoices(p)
		if !errors.Is(err, ErrTooFewWines) {
			t.Fatalf("Expected ErrTooFewWines, got %v", err)
		}
		want := "This participant has only 2 wines. Cannot vote (need at least 3 wines for 1st, 2nd, 3rd place)."
		if err.Error() != want {
			t.Errorf("Expected message %q, got %q", want, err.Error())
		}
	})
}

func TestCheckVoteWines(t *testing.T) {
	p := models.Participant{ID: "p1", AssignedWines: []int{1, 2, 3, 4, 5}}

	if err := CheckVoteWines(p, models.Vote{FirstPlace: 5, SecondPlace: 1, ThirdPlace: 3}); err != nil {
		t.Errorf("Expected own wines to pass, got %v", err)
	}
	if err := CheckVoteWines(p, models.Vote{FirstPlace: 5, SecondPlace: 1, ThirdPlace: 17}); !errors.Is(err, ErrWineNotAssigned) {
		t.Errorf("Expected ErrWineNotAssigned, got %v", err)
	}
}

func TestParseSlots(t *testing.T) {
	tests := []struct {
		name     string
		slots    []string
		expected int
		want     []int
		wantErr  error
		wantMsg  string
	}{
		{name: "edited values kept in order", slots: []string{"7", " 3 ", "12"}, expected: 3, want: []int{7, 3, 12}},
		{name: "blank slot is a count mismatch", slots: []string{"7", "", "12"}, expected: 3, wantErr: ErrSlotCount, wantMsg: "Please provide exactly 3 wine numbers"},
		{name: "non numeric dropped", slots: []string{"7", "x", "12"}, expected: 3, wantErr: ErrSlotCount},
		{name: "extra values", slots: []string{"7", "3", "12", "1"}, expected: 3, wantErr: ErrSlotCount},
		{name: "duplicate values", slots: []string{"7", "3", "7"}, expected: 3, wantErr: ErrDuplicateSlot, wantMsg: "All wine numbers must be different"},
		{name: "above total", slots: []string{"7", "3", "21"}, expected: 3, wantErr: ErrWineOutOfRange},
		{name: "zero", slots: []string{"0", "3", "4"}, expected: 3, wantErr: ErrWineOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSlots(tt.slots, tt.expected, 20)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Expected error %v, got %v", tt.wantErr, err)
			}
			if tt.wantMsg != "" && err.Error() != tt.wantMsg {
				t.Errorf("Expected message %q, got %q", tt.wantMsg, err.Error())
			}
			if tt.wantErr != nil {
				if !IsValidationError(err) {
					t.Errorf("Expected %v to be a validation error", err)
				}
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Position %d: expected %d, got %d", i, tt.want[i], got[i])
				}
			}
		})
	}
}
