package handlers

import (
	"net/http"
	"net/url"

	"winetasting/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
)

// place is one podium select on the voting form.
type place struct {
	ID     string
	Label  string
	Field  string
	Chosen int
}

func podiumPlaces(sel services.VoteSelection) []place {
	return []place{
		{ID: "first-place", Label: "🥇 1st Place", Field: "first_place", Chosen: sel.FirstPlace},
		{ID: "second-place", Label: "🥈 2nd Place", Field: "second_place", Chosen: sel.SecondPlace},
		{ID: "third-place", Label: "🥉 3rd Place", Field: "third_place", Chosen: sel.ThirdPlace},
	}
}

// ShowVotingPage renders the ballot, the voting progress and the leaderboard.
func (h *HTTPHandler) ShowVotingPage(c *gin.Context) {
	tenant := tenantID(c)
	ctx := c.Request.Context()

	// Entering the voting section abandons an unconfirmed registration.
	h.service.LeaveRegistration(tenant)

	selected := h.service.PendingVote(tenant)
	if id := c.Query("participant"); id != "" && id != selected.ParticipantID {
		selected = services.VoteSelection{ParticipantID: id}
	}

	data := gin.H{
		"title":    "Votes",
		"section":  "voting",
		"Selected": selected,
		"Places":   podiumPlaces(selected),
	}

	participants, err := h.service.Participants(ctx, tenant)
	if err != nil {
		logger.Warningf("Error loading participants: %v", err)
		data["ChoiceError"] = "Error loading participants"
	} else {
		data["Participants"] = participants
	}

	if selected.ParticipantID != "" && err == nil {
		_, wines, err := h.service.VotingChoices(ctx, tenant, selected.ParticipantID)
		if err != nil {
			data["ChoiceError"] = userMessage(err, "Error: ")
		} else {
			data["Wines"] = wines
		}
	}

	h.fillLeaderboard(c, data)
	h.fillProgress(c, data)

	h.renderPage(c, data, "voting.html")
}

// SubmitVote validates and sends the ballot.
func (h *HTTPHandler) SubmitVote(c *gin.Context) {
	tenant := tenantID(c)

	var sel services.VoteSelection
	if err := c.ShouldBind(&sel); err != nil {
		h.service.SetFlash(tenant, "error", services.ErrIncompleteVote.Error())
		c.Redirect(http.StatusSeeOther, "/voting")
		return
	}

	if err := h.service.SubmitVote(c.Request.Context(), tenant, sel); err != nil {
		h.flashError(c, err, "Error: ")
		c.Redirect(http.StatusSeeOther, "/voting?participant="+url.QueryEscape(sel.ParticipantID))
		return
	}

	logger.Infof("Vote recorded for participant %s", sel.ParticipantID)
	h.service.SetFlash(tenant, "success", "Vote submitted successfully!")
	c.Redirect(http.StatusSeeOther, "/voting")
}

// GetLeaderboardPartial returns the ranked leaderboard.
func (h *HTTPHandler) GetLeaderboardPartial(c *gin.Context) {
	data := gin.H{}
	h.fillLeaderboard(c, data)
	h.renderPartial(c, data, "leaderboard.html")
}

// GetProgressPartial returns the voting progress, with the celebration when it is due.
func (h *HTTPHandler) GetProgressPartial(c *gin.Context) {
	data := gin.H{}
	h.fillProgress(c, data)
	h.renderPartial(c, data, "progress.html")
}

func (h *HTTPHandler) fillLeaderboard(c *gin.Context, data gin.H) {
	entries, err := h.service.Leaderboard(c.Request.Context())
	if err != nil {
		logger.Warningf("Error loading leaderboard: %v", err)
		data["LeaderboardError"] = true
		return
	}
	data["Leaderboard"] = entries
}

func (h *HTTPHandler) fillProgress(c *gin.Context, data gin.H) {
	progress, err := h.service.Progress(c.Request.Context(), tenantID(c))
	if err != nil {
		logger.Warningf("Error loading voting progress: %v", err)
		data["ProgressError"] = true
		return
	}
	data["Progress"] = progress
}
