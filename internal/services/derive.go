package services

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"winetasting/internal/models"
)

// MaxParticipantsPerWine is how many participants can share one wine.
const MaxParticipantsPerWine = 5

// FullAssignment is the number of wines a participant gets while the tournament has room.
const FullAssignment = 5

// MaxTotalWines bounds the tournament size an organizer can enter.
const MaxTotalWines = 1000

// RankedEntry is a leaderboard row with its display rank.
type RankedEntry struct {
	Rank        int
	Medal       string
	WineID      int
	TotalPoints int
}

// RankLeaderboard assigns ranks by position. The server already ordered the
// entries; ties keep the server's order and nothing is re-sorted here.
func RankLeaderboard(entries []models.LeaderboardEntry) []RankedEntry {
	ranked := make([]RankedEntry, len(entries))
	for i, e := range entries {
		ranked[i] = RankedEntry{
			Rank:        i + 1,
			Medal:       medal(i + 1),
			WineID:      e.WineID,
			TotalPoints: e.TotalPoints,
		}
	}
	return ranked
}

func medal(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return strconv.Itoa(rank) + "."
	}
}

// CapacityBand classifies how crowded a wine is.
type CapacityBand string

const (
	BandLow    CapacityBand = "low"
	BandMedium CapacityBand = "medium"
	BandHigh   CapacityBand = "high"
	BandFull   CapacityBand = "full"
)

// WineCapacity is the occupancy of one wine.
type WineCapacity struct {
	WineID     int
	Count      int
	Max        int
	Band       CapacityBand
	Percentage float64
}

// ComputeWineCapacity counts participants per wine for every id in 1..totalWines,
// including wines nobody holds. Percentages are not clamped: an over-assigned
// wine reports more than 100.
func ComputeWineCapacity(participants []models.Participant, totalWines, maxParticipants int) []WineCapacity {
	counts := make(map[int]int)
	for _, p := range participants {
		for _, w := range p.AssignedWines {
			counts[w]++
		}
	}

	out := make([]WineCapacity, 0, max(totalWines, 0))
	for id := 1; id <= totalWines; id++ {
		count := counts[id]
		out = append(out, WineCapacity{
			WineID:     id,
			Count:      count,
			Max:        maxParticipants,
			Band:       capacityBand(count, maxParticipants),
			Percentage: float64(count) * 100 / float64(maxParticipants),
		})
	}
	return out
}

func capacityBand(count, maxParticipants int) CapacityBand {
	switch {
	case count >= maxParticipants:
		return BandFull
	case count >= 4:
		return BandHigh
	case count >= 2:
		return BandMedium
	default:
		return BandLow
	}
}

// SortParticipants returns a copy ordered by case-insensitive name.
func SortParticipants(participants []models.Participant) []models.Participant {
	sorted := append([]models.Participant(nil), participants...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].Name) < strings.ToLower(sorted[j].Name)
	})
	return sorted
}

const (
	revealLead    = 1000 * time.Millisecond
	revealStagger = 300 * time.Millisecond
	revealSettle  = 500 * time.Millisecond
)

// RevealEvent says when slot Index stops spinning and shows Value.
type RevealEvent struct {
	Index int
	Value int
	Delay time.Duration
}

// RevealSchedule lays out the staggered slot reveal for values. The returned
// duration is when the last reveal has settled and the slots become editable.
func RevealSchedule(values []int) ([]RevealEvent, time.Duration) {
	events := make([]RevealEvent, len(values))
	for i, v := range values {
		events[i] = RevealEvent{
			Index: i,
			Value: v,
			Delay: revealLead + time.Duration(i)*revealStagger,
		}
	}
	return events, revealLead + time.Duration(len(values))*revealStagger + revealSettle
}
