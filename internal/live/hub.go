// Package live pushes change notifications to open voting pages.
//
// The hub polls the tournament API while at least one browser is connected,
// fingerprints the leaderboard and voting stats, and tells every client to
// refresh when the fingerprint changes. Clients then re-fetch their partials.
package live

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/logger"
	"github.com/gorilla/websocket"

	"winetasting/internal/models"
)

// Source is the part of the tournament API the hub watches.
type Source interface {
	Leaderboard(ctx context.Context) ([]models.LeaderboardEntry, error)
	VotingStats(ctx context.Context) (*models.VotingStats, error)
}

// RefreshMessage tells a page that the tournament state changed.
type RefreshMessage struct {
	Type             string  `json:"type"` // "refresh"
	TotalVotes       int     `json:"totalVotes"`
	VotingPercentage float64 `json:"votingPercentage"`
}

type client struct {
	conn *websocket.Conn
	send chan any
}

type Hub struct {
	source   Source
	interval time.Duration

	clients map[*client]bool
	active  atomic.Int64

	register chan *client
	unreg    chan *client
	changes  chan RefreshMessage
	done     chan struct{}

	last string // fingerprint of the last observed state
}

func NewHub(source Source, interval time.Duration) *Hub {
	return &Hub{
		source:   source,
		interval: interval,
		clients:  make(map[*client]bool),
		register: make(chan *client),
		unreg:    make(chan *client),
		changes:  make(chan RefreshMessage, 1),
		done:     make(chan struct{}),
	}
}

// Clients returns how many pages are connected.
func (h *Hub) Clients() int {
	return int(h.active.Load())
}

// Run serves the hub until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	go h.pollLoop(ctx)

	for {
		select {
		case <-ctx.Done():
			close(h.done)
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.active.Store(0)
			return

		case c := <-h.register:
			h.clients[c] = true
			h.active.Store(int64(len(h.clients)))

		case c := <-h.unreg:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.active.Store(int64(len(h.clients)))

		case msg := <-h.changes:
			h.broadcast(msg)
		}
	}
}

func (h *Hub) broadcast(msg RefreshMessage) {
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			delete(h.clients, c)
			close(c.send)
		}
	}
	h.active.Store(int64(len(h.clients)))
}

func (h *Hub) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if h.active.Load() == 0 {
				continue
			}
			if msg, changed := h.poll(ctx); changed {
				select {
				case h.changes <- msg:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// poll fetches the current state and reports whether it differs from the
// previous poll. The first observation only sets the baseline.
func (h *Hub) poll(ctx context.Context) (RefreshMessage, bool) {
	stats, err := h.source.VotingStats(ctx)
	if err != nil {
		logger.Warningf("Live refresh: error loading voting stats: %v", err)
		return RefreshMessage{}, false
	}
	entries, err := h.source.Leaderboard(ctx)
	if err != nil {
		logger.Warningf("Live refresh: error loading leaderboard: %v", err)
		return RefreshMessage{}, false
	}

	fp := fingerprint(stats, entries)
	if fp == h.last {
		return RefreshMessage{}, false
	}
	first := h.last == ""
	h.last = fp
	if first {
		return RefreshMessage{}, false
	}

	return RefreshMessage{
		Type:             "refresh",
		TotalVotes:       stats.TotalVotes,
		VotingPercentage: stats.VotingPercentage,
	}, true
}

func fingerprint(stats *models.VotingStats, entries []models.LeaderboardEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d/%d/%g|", stats.TotalVotes, stats.TotalParticipants, stats.VotingPercentage)
	for _, p := range stats.ParticipantStatus {
		fmt.Fprintf(&b, "%s:%t,", p.Name, p.HasVoted)
	}
	b.WriteByte('|')
	for _, e := range entries {
		fmt.Fprintf(&b, "%d:%d,", e.WineID, e.TotalPoints)
	}
	return b.String()
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// ServeWS upgrades the request and keeps the connection registered until it closes.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Errorf("Websocket upgrade error: %v", err)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan any, 8),
	}

	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go c.writePump()
	c.readPump(h)
}

// readPump only watches for the connection to close; pages never send anything.
func (c *client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unreg <- c:
		case <-h.done:
		}
		_ = c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}
