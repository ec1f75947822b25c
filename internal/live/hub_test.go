package live

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"winetasting/internal/models"
)

type fakeSource struct {
	mu          sync.Mutex
	stats       models.VotingStats
	leaderboard []models.LeaderboardEntry
	err         error
}

func (f *fakeSource) Leaderboard(ctx context.Context) ([]models.LeaderboardEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.LeaderboardEntry(nil), f.leaderboard...), f.err
}

func (f *fakeSource) VotingStats(ctx context.Context) (*models.VotingStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	s := f.stats
	return &s, nil
}

func (f *fakeSource) vote(total int, pct float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stats.TotalVotes = total
	f.stats.VotingPercentage = pct
}

func TestHub_PollBaselineAndChange(t *testing.T) {
	src := &fakeSource{stats: models.VotingStats{TotalVotes: 1, TotalParticipants: 4, VotingPercentage: 25}}
	h := NewHub(src, time.Second)
	ctx := context.Background()

	if _, changed := h.poll(ctx); changed {
		t.Error("First poll should only set the baseline")
	}
	if _, changed := h.poll(ctx); changed {
		t.Error("Unchanged state should not trigger a refresh")
	}

	src.vote(2, 50)
	msg, changed := h.poll(ctx)
	if !changed {
		t.Fatal("Expected a refresh after a new vote")
	}
	if msg.Type != "refresh" || msg.TotalVotes != 2 || msg.VotingPercentage != 50 {
		t.Errorf("Unexpected message: %+v", msg)
	}
}

func TestHub_PollError(t *testing.T) {
	src := &fakeSource{err: errors.New("connection refused")}
	h := NewHub(src, time.Second)

	if _, changed := h.poll(context.Background()); changed {
		t.Error("A failed poll must not trigger a refresh")
	}
}

func TestHub_BroadcastsToConnectedPages(t *testing.T) {
	src := &fakeSource{stats: models.VotingStats{TotalVotes: 0, TotalParticipants: 2}}
	h := NewHub(src, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(h.ServeWS))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	waitFor(t, func() bool { return h.Clients() == 1 })
	// Give the poller a few ticks to record the baseline.
	time.Sleep(50 * time.Millisecond)

	src.vote(1, 50)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg RefreshMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("Expected a refresh message: %v", err)
	}
	if msg.Type != "refresh" || msg.TotalVotes != 1 {
		t.Errorf("Unexpected message: %+v", msg)
	}

	_ = conn.Close()
	waitFor(t, func() bool { return h.Clients() == 0 })
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("Condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
