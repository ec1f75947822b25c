package services

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/logger"

	"winetasting/internal/models"
)

// TournamentAPI is the remote tournament server.
type TournamentAPI interface {
	SuggestWines(ctx context.Context, name string, totalWines int) (*models.SuggestResponse, error)
	ConfirmParticipant(ctx context.Context, p models.Participant) (*models.Confirmation, error)
	ListParticipants(ctx context.Context) ([]models.Participant, error)
	SubmitVote(ctx context.Context, v models.Vote) (*models.Confirmation, error)
	Leaderboard(ctx context.Context) ([]models.LeaderboardEntry, error)
	VotingStats(ctx context.Context) (*models.VotingStats, error)
}

// Draft is a participant between suggestion and confirmation.
type Draft struct {
	Participant    models.Participant
	SuggestedWines []int
	// Slots holds what the organizer typed, one entry per suggested wine.
	Slots      []string
	TotalWines int
	Reveal     []RevealEvent
	Settle     time.Duration
}

// NearlyFull reports whether the server could not hand out a full set of wines.
func (d Draft) NearlyFull() bool {
	return len(d.SuggestedWines) < FullAssignment
}

func (d *Draft) clone() *Draft {
	c := *d
	c.Participant.AssignedWines = append([]int(nil), d.Participant.AssignedWines...)
	c.SuggestedWines = append([]int(nil), d.SuggestedWines...)
	c.Slots = append([]string(nil), d.Slots...)
	c.Reveal = append([]RevealEvent(nil), d.Reveal...)
	return &c
}

// Flash is a one-shot message for the organizer.
type Flash struct {
	Kind string // "success" or "error"
	Text string
}

// Session holds the client state of one organizer browser.
type Session struct {
	mu sync.Mutex

	draft        *Draft
	participants []models.Participant
	flash        *Flash
	pendingVote  *VoteSelection
	totalWines   int
	latch        celebrationLatch

	suggestSeq      sequencer
	participantsSeq sequencer

	LastActivity time.Time
}

// TournamentService keeps the per-browser sessions and runs the tournament flows
// against the remote API.
type TournamentService struct {
	api TournamentAPI

	mu       sync.RWMutex
	sessions map[string]*Session // Key: tenantID
}

// NewTournamentService creates a TournamentService backed by api.
func NewTournamentService(api TournamentAPI) *TournamentService {
	return &TournamentService{
		api:      api,
		sessions: make(map[string]*Session),
	}
}

// getSession returns a session for a tenant, creating one if it doesn't exist.
func (s *TournamentService) getSession(tenantID string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, exists := s.sessions[tenantID]
	if !exists {
		session = &Session{}
		s.sessions[tenantID] = session
	}
	session.LastActivity = time.Now()
	return session
}

// Suggest requests a wine assignment for a new participant and makes it the
// tenant's draft. The number of slots follows the server's answer.
func (s *TournamentService) Suggest(ctx context.Context, tenantID, name string, totalWines int) (*Draft, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if totalWines < 1 || totalWines > MaxTotalWines {
		return nil, ErrInvalidTotalWines
	}

	return s.suggest(ctx, s.getSession(tenantID), name, totalWines)
}

// TotalWines returns the wine count of the tenant's last successful suggestion, or fallback.
func (s *TournamentService) TotalWines(tenantID string, fallback int) int {
	session := s.getSession(tenantID)
	session.mu.Lock()
	defer session.mu.Unlock()

	if session.totalWines > 0 {
		return session.totalWines
	}
	return fallback
}

// Regenerate replaces the draft with a fresh suggestion. Edits are discarded.
func (s *TournamentService) Regenerate(ctx context.Context, tenantID string) (*Draft, error) {
	session := s.getSession(tenantID)

	session.mu.Lock()
	draft := session.draft
	session.mu.Unlock()

	if draft == nil {
		return nil, ErrNoDraft
	}
	return s.suggest(ctx, session, draft.Participant.Name, draft.TotalWines)
}

func (s *TournamentService) suggest(ctx context.Context, session *Session, name string, totalWines int) (*Draft, error) {
	session.mu.Lock()
	token := session.suggestSeq.next()
	session.mu.Unlock()

	resp, err := s.api.SuggestWines(ctx, name, totalWines)
	if err != nil {
		return nil, err
	}
	if len(resp.SuggestedWines) == 0 {
		return nil, ErrNoWinesAvailable
	}

	draft := newDraft(resp, totalWines)

	session.mu.Lock()
	defer session.mu.Unlock()
	if !session.suggestSeq.apply(token) {
		logger.Infof("Dropped stale suggestion for %q", name)
		return nil, ErrStaleResponse
	}
	session.draft = draft
	session.totalWines = totalWines
	return draft.clone(), nil
}

func newDraft(resp *models.SuggestResponse, totalWines int) *Draft {
	wines := append([]int(nil), resp.SuggestedWines...)
	slots := make([]string, len(wines))
	for i, w := range wines {
		slots[i] = strconv.Itoa(w)
	}
	reveal, settle := RevealSchedule(wines)

	participant := resp.Participant
	participant.AssignedWines = append([]int(nil), wines...)

	return &Draft{
		Participant:    participant,
		SuggestedWines: wines,
		Slots:          slots,
		TotalWines:     totalWines,
		Reveal:         reveal,
		Settle:         settle,
	}
}

// Confirm validates the edited slots and stores the participant. On any
// failure the draft stays, with the organizer's edits, so they can retry.
func (s *TournamentService) Confirm(ctx context.Context, tenantID string, slots []string) (*models.Participant, error) {
	session := s.getSession(tenantID)

	session.mu.Lock()
	draft := session.draft
	if draft == nil {
		session.mu.Unlock()
		return nil, ErrNoDraft
	}
	draft.Slots = append([]string(nil), slots...)
	participant := draft.Participant
	expected := len(draft.SuggestedWines)
	totalWines := draft.TotalWines
	session.mu.Unlock()

	wines, err := ParseSlots(slots, expected, totalWines)
	if err != nil {
		return nil, err
	}
	participant.AssignedWines = wines

	if _, err := s.api.ConfirmParticipant(ctx, participant); err != nil {
		return nil, err
	}

	session.mu.Lock()
	if session.draft == draft {
		session.draft = nil
	}
	session.mu.Unlock()

	logger.Infof("Confirmed participant %s with wines %v", participant.Name, wines)
	return &participant, nil
}

// Draft returns a copy of the tenant's draft, or nil.
func (s *TournamentService) Draft(tenantID string) *Draft {
	session := s.getSession(tenantID)
	session.mu.Lock()
	defer session.mu.Unlock()

	if session.draft == nil {
		return nil
	}
	return session.draft.clone()
}

// LeaveRegistration discards the draft when the organizer navigates away.
func (s *TournamentService) LeaveRegistration(tenantID string) {
	session := s.getSession(tenantID)
	session.mu.Lock()
	session.draft = nil
	session.mu.Unlock()
}

// Participants fetches the participant list sorted by name and caches it for
// the tenant. A response older than the cached one is not applied.
func (s *TournamentService) Participants(ctx context.Context, tenantID string) ([]models.Participant, error) {
	session := s.getSession(tenantID)

	session.mu.Lock()
	token := session.participantsSeq.next()
	session.mu.Unlock()

	participants, err := s.api.ListParticipants(ctx)
	if err != nil {
		return nil, err
	}
	sorted := SortParticipants(participants)

	session.mu.Lock()
	defer session.mu.Unlock()
	if !session.participantsSeq.apply(token) {
		return append([]models.Participant(nil), session.participants...), nil
	}
	session.participants = sorted
	return append([]models.Participant(nil), sorted...), nil
}

// WineCapacity derives the occupancy chart from a fresh participant list.
func (s *TournamentService) WineCapacity(ctx context.Context, tenantID string, totalWines int) ([]WineCapacity, error) {
	participants, err := s.Participants(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return ComputeWineCapacity(participants, totalWines, MaxParticipantsPerWine), nil
}

func (s *TournamentService) findParticipant(ctx context.Context, tenantID, participantID string) (models.Participant, bool, error) {
	session := s.getSession(tenantID)

	session.mu.Lock()
	for _, p := range session.participants {
		if p.ID == participantID {
			session.mu.Unlock()
			return p, true, nil
		}
	}
	session.mu.Unlock()

	participants, err := s.Participants(ctx, tenantID)
	if err != nil {
		return models.Participant{}, false, err
	}
	for _, p := range participants {
		if p.ID == participantID {
			return p, true, nil
		}
	}
	return models.Participant{}, false, nil
}

// VotingChoices returns the participant and the wines they may rank.
func (s *TournamentService) VotingChoices(ctx context.Context, tenantID, participantID string) (models.Participant, []int, error) {
	p, ok, err := s.findParticipant(ctx, tenantID, participantID)
	if err != nil {
		return models.Participant{}, nil, err
	}
	if !ok {
		return models.Participant{}, nil, ErrUnknownParticipant
	}
	wines, err := VotingChoices(p)
	if err != nil {
		return p, nil, err
	}
	return p, wines, nil
}

// SubmitVote validates the selection and sends it. Nothing is sent when
// validation fails. The selection is kept for the form until a vote is accepted.
func (s *TournamentService) SubmitVote(ctx context.Context, tenantID string, sel VoteSelection) error {
	session := s.getSession(tenantID)

	keep := func() {
		session.mu.Lock()
		session.pendingVote = &sel
		session.mu.Unlock()
	}

	vote, err := ValidateVote(sel)
	if err != nil {
		keep()
		return err
	}

	session.mu.Lock()
	var known *models.Participant
	for i := range session.participants {
		if session.participants[i].ID == vote.ParticipantID {
			known = &session.participants[i]
			break
		}
	}
	if known != nil {
		err = CheckVoteWines(*known, vote)
	}
	session.mu.Unlock()
	if err != nil {
		keep()
		return err
	}

	if _, err := s.api.SubmitVote(ctx, vote); err != nil {
		keep()
		return err
	}

	session.mu.Lock()
	session.pendingVote = nil
	session.mu.Unlock()
	return nil
}

// PendingVote returns the selection of a vote that was not accepted yet.
func (s *TournamentService) PendingVote(tenantID string) VoteSelection {
	session := s.getSession(tenantID)
	session.mu.Lock()
	defer session.mu.Unlock()

	if session.pendingVote == nil {
		return VoteSelection{}
	}
	return *session.pendingVote
}

// Leaderboard fetches the ranked leaderboard.
func (s *TournamentService) Leaderboard(ctx context.Context) ([]RankedEntry, error) {
	entries, err := s.api.Leaderboard(ctx)
	if err != nil {
		return nil, err
	}
	return RankLeaderboard(entries), nil
}

// Progress fetches the voting stats and decides whether the completion
// celebration fires for this tenant.
func (s *TournamentService) Progress(ctx context.Context, tenantID string) (*Progress, error) {
	session := s.getSession(tenantID)

	stats, err := s.api.VotingStats(ctx)
	if err != nil {
		return nil, err
	}
	progress := &Progress{Stats: *stats}

	session.mu.Lock()
	armed := session.latch.observe(stats.VotingPercentage)
	session.mu.Unlock()
	if !armed {
		return progress, nil
	}

	entries, err := s.api.Leaderboard(ctx)
	if err != nil {
		logger.Warningf("Error loading leaderboard for celebration: %v", err)
		return progress, nil
	}

	session.mu.Lock()
	fired := session.latch.fire(len(entries))
	session.mu.Unlock()
	if fired {
		progress.Celebrate = true
		progress.Podium = RankLeaderboard(entries)[:PodiumSize]
	}
	return progress, nil
}

// SetFlash stores a one-shot message for the tenant's next page.
func (s *TournamentService) SetFlash(tenantID, kind, text string) {
	session := s.getSession(tenantID)
	session.mu.Lock()
	session.flash = &Flash{Kind: kind, Text: text}
	session.mu.Unlock()
}

// TakeFlash returns and clears the tenant's pending message.
func (s *TournamentService) TakeFlash(tenantID string) *Flash {
	session := s.getSession(tenantID)
	session.mu.Lock()
	defer session.mu.Unlock()

	f := session.flash
	session.flash = nil
	return f
}

// CleanUpInactiveSessions removes sessions idle for longer than maxIdle.
func (s *TournamentService) CleanUpInactiveSessions(maxIdle time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for tenantID, session := range s.sessions {
		if time.Since(session.LastActivity) > maxIdle {
			logger.Infof("Removing inactive session for tenant: %s", tenantID)
			delete(s.sessions, tenantID)
		}
	}
}
