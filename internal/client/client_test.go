package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"winetasting/internal/models"
)

func TestClient_SuggestWines(t *testing.T) {
	var gotQuery, gotContentType string
	var gotBody models.SuggestRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != BasePath+"/participants/suggest" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotQuery = r.URL.Query().Get("total_wines")
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"participant":{"id":"p1","name":"Ana","assignedWines":[4,9,2]},"suggestedWines":[4,9,2]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	resp, err := c.SuggestWines(context.Background(), "Ana", 12)
	if err != nil {
		t.Fatalf("SuggestWines returned error: %v", err)
	}

	if gotQuery != "12" {
		t.Errorf("Expected total_wines=12, got %q", gotQuery)
	}
	if gotContentType != "application/json" {
		t.Errorf("Expected JSON content type, got %q", gotContentType)
	}
	if gotBody.Name != "Ana" {
		t.Errorf("Expected name Ana in body, got %q", gotBody.Name)
	}
	if resp.Participant.ID != "p1" || len(resp.SuggestedWines) != 3 {
		t.Errorf("Unexpected response: %+v", resp)
	}
}

func TestClient_ErrorDetail(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail string
	}{
		{"json detail", http.StatusBadRequest, `{"detail":"Invalid vote - check participant ID and wine assignments"}`, "Invalid vote - check participant ID and wine assignments"},
		{"plain text body", http.StatusBadRequest, "1 validation error for Vote", "1 validation error for Vote"},
		{"empty body", http.StatusInternalServerError, "", "Internal Server Error"},
		{"json without detail", http.StatusNotFound, `{"error":"x"}`, "Not Found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL, time.Second).SubmitVote(context.Background(), models.Vote{ParticipantID: "p1"})

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("Expected *APIError, got %v", err)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, apiErr.StatusCode)
			}
			if apiErr.Detail != tt.wantDetail {
				t.Errorf("Expected detail %q, got %q", tt.wantDetail, apiErr.Detail)
			}
		})
	}
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := New(srv.URL, time.Second).Leaderboard(context.Background())
	if err == nil {
		t.Fatal("Expected an error for a closed server, got nil")
	}
	if IsAPIError(err) {
		t.Errorf("Transport failure must not look like a server rejection: %v", err)
	}
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := New(srv.URL, 50*time.Millisecond).VotingStats(context.Background())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Expected deadline exceeded, got %v", err)
	}
}

func TestClient_LeaderboardKeepsServerOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"wineId":7,"totalPoints":10},{"wineId":3,"totalPoints":8},{"wineId":9,"totalPoints":8}]`))
	}))
	defer srv.Close()

	entries, err := New(srv.URL+"/", time.Second).Leaderboard(context.Background())
	if err != nil {
		t.Fatalf("Leaderboard returned error: %v", err)
	}

	want := []int{7, 3, 9}
	for i, e := range entries {
		if e.WineID != want[i] {
			t.Errorf("Position %d: expected wine %d, got %d", i, want[i], e.WineID)
		}
	}
}
