package models

// Participant is an entrant with the wine numbers they taste and later rank.
// AssignedWines is ordered and holds no duplicates.
type Participant struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	AssignedWines []int  `json:"assignedWines"`
}

// HasWine reports whether wine is one of the participant's assigned wines.
func (p Participant) HasWine(wine int) bool {
	for _, w := range p.AssignedWines {
		if w == wine {
			return true
		}
	}
	return false
}

// Vote is one participant's ranked top three among their assigned wines.
// First place is worth 3 points, second 2 and third 1 on the server side.
type Vote struct {
	ParticipantID string `json:"participantId"`
	FirstPlace    int    `json:"firstPlace"`
	SecondPlace   int    `json:"secondPlace"`
	ThirdPlace    int    `json:"thirdPlace"`
}

// LeaderboardEntry is a wine and its aggregated points, as ranked by the server.
type LeaderboardEntry struct {
	WineID      int `json:"wineId"`
	TotalPoints int `json:"totalPoints"`
}

// ParticipantStatus tells whether a participant has already voted.
type ParticipantStatus struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	HasVoted bool   `json:"has_voted"`
}

// VotingStats holds the tournament completion metrics.
type VotingStats struct {
	TotalVotes        int                 `json:"total_votes"`
	TotalParticipants int                 `json:"total_participants"`
	VotingPercentage  float64             `json:"voting_percentage"`
	ParticipantStatus []ParticipantStatus `json:"participant_status"`
}

// SuggestRequest is the body of a wine suggestion request.
type SuggestRequest struct {
	Name string `json:"name"`
}

// SuggestResponse carries the draft participant and the wines the server picked.
type SuggestResponse struct {
	Participant    Participant `json:"participant"`
	SuggestedWines []int       `json:"suggestedWines"`
}

// Confirmation is the acknowledgement returned for confirm and vote requests.
type Confirmation struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ErrorBody is the shape of a non-2xx API response.
type ErrorBody struct {
	Detail string `json:"detail"`
}
