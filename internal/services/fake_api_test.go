package services

import (
	"context"
	"sync"

	"winetasting/internal/models"
)

// fakeAPI is an in-memory TournamentAPI that records what it was sent.
type fakeAPI struct {
	mu sync.Mutex

	suggestions  [][]int // handed out in order, the last one repeats
	suggestCalls int
	suggestErr   error
	suggestHook  func(call int) // runs before answering, outside the lock

	confirmed  []models.Participant
	confirmErr error

	participants    []models.Participant
	listParticipant func(call int) ([]models.Participant, error)
	listCalls       int

	votes   []models.Vote
	voteErr error

	leaderboard    []models.LeaderboardEntry
	leaderboardErr error

	stats    models.VotingStats
	statsErr error
}

func (f *fakeAPI) SuggestWines(ctx context.Context, name string, totalWines int) (*models.SuggestResponse, error) {
	f.mu.Lock()
	f.suggestCalls++
	call := f.suggestCalls
	hook := f.suggestHook
	f.mu.Unlock()

	if hook != nil {
		hook(call)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.suggestErr != nil {
		return nil, f.suggestErr
	}
	idx := min(call-1, len(f.suggestions)-1)
	wines := append([]int(nil), f.suggestions[idx]...)
	return &models.SuggestResponse{
		Participant:    models.Participant{ID: "draft-" + name, Name: name, AssignedWines: wines},
		SuggestedWines: wines,
	}, nil
}

func (f *fakeAPI) ConfirmParticipant(ctx context.Context, p models.Participant) (*models.Confirmation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.confirmErr != nil {
		return nil, f.confirmErr
	}
	f.confirmed = append(f.confirmed, p)
	return &models.Confirmation{Success: true, Message: "Participant created successfully"}, nil
}

func (f *fakeAPI) ListParticipants(ctx context.Context) ([]models.Participant, error) {
	f.mu.Lock()
	f.listCalls++
	call := f.listCalls
	hook := f.listParticipant
	participants := append([]models.Participant(nil), f.participants...)
	f.mu.Unlock()

	if hook != nil {
		return hook(call)
	}
	return participants, nil
}

func (f *fakeAPI) SubmitVote(ctx context.Context, v models.Vote) (*models.Confirmation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.voteErr != nil {
		return nil, f.voteErr
	}
	f.votes = append(f.votes, v)
	return &models.Confirmation{Success: true, Message: "Vote submitted successfully"}, nil
}

func (f *fakeAPI) Leaderboard(ctx context.Context) ([]models.LeaderboardEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.LeaderboardEntry(nil), f.leaderboard...), f.leaderboardErr
}

func (f *fakeAPI) VotingStats(ctx context.Context) (*models.VotingStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.statsErr != nil {
		return nil, f.statsErr
	}
	stats := f.stats
	return &stats, nil
}

func (f *fakeAPI) voteCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.votes)
}
