package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"winetasting/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
)

type suggestForm struct {
	Name       string `form:"name" binding:"required"`
	TotalWines int    `form:"total_wines" binding:"required,min=1,max=1000"`
}

// ShowParticipantsPage renders registration, the participant list and the capacity chart.
func (h *HTTPHandler) ShowParticipantsPage(c *gin.Context) {
	tenant := tenantID(c)
	totalWines := h.service.TotalWines(tenant, h.totalWines)

	data := gin.H{
		"title":      "Participants",
		"section":    "participants",
		"Draft":      h.service.Draft(tenant),
		"TotalWines": totalWines,
	}

	participants, err := h.service.Participants(c.Request.Context(), tenant)
	if err != nil {
		logger.Warningf("Error loading participants: %v", err)
		data["ParticipantsError"] = true
		data["CapacityError"] = true
	} else {
		data["Participants"] = participants
		data["Capacity"] = services.ComputeWineCapacity(participants, totalWines, services.MaxParticipantsPerWine)
	}

	h.renderPage(c, data, "participants.html")
}

// GetCapacityPartial returns the wine capacity chart.
func (h *HTTPHandler) GetCapacityPartial(c *gin.Context) {
	tenant := tenantID(c)
	totalWines := h.service.TotalWines(tenant, h.totalWines)
	if v, err := strconv.Atoi(c.Query("total_wines")); err == nil && v > 0 {
		totalWines = min(v, services.MaxTotalWines)
	}

	data := gin.H{"TotalWines": totalWines}
	capacity, err := h.service.WineCapacity(c.Request.Context(), tenant, totalWines)
	if err != nil {
		logger.Warningf("Error loading wine capacity: %v", err)
		data["CapacityError"] = true
	} else {
		data["Capacity"] = capacity
	}
	h.renderPartial(c, data, "capacity.html")
}

// SuggestWines handles the registration form and starts a draft.
func (h *HTTPHandler) SuggestWines(c *gin.Context) {
	var form suggestForm
	if err := c.ShouldBind(&form); err != nil {
		msg := services.ErrInvalidTotalWines.Error()
		if strings.TrimSpace(c.PostForm("name")) == "" {
			msg = services.ErrNameRequired.Error()
		}
		h.service.SetFlash(tenantID(c), "error", msg)
		c.Redirect(http.StatusSeeOther, "/participants")
		return
	}

	if _, err := h.service.Suggest(c.Request.Context(), tenantID(c), form.Name, form.TotalWines); err != nil {
		h.flashError(c, err, "Error generating wine assignment: ")
	}
	c.Redirect(http.StatusSeeOther, "/participants")
}

// RegenerateWines replaces the draft with a new suggestion.
func (h *HTTPHandler) RegenerateWines(c *gin.Context) {
	if _, err := h.service.Regenerate(c.Request.Context(), tenantID(c)); err != nil {
		h.flashError(c, err, "Error regenerating wines: ")
	}
	c.Redirect(http.StatusSeeOther, "/participants")
}

// ConfirmParticipant stores the draft with the organizer's slot values.
func (h *HTTPHandler) ConfirmParticipant(c *gin.Context) {
	tenant := tenantID(c)

	if _, err := h.service.Confirm(c.Request.Context(), tenant, c.PostFormArray("slot")); err != nil {
		h.flashError(c, err, "Error: ")
	} else {
		h.service.SetFlash(tenant, "success", "Participant added successfully!")
	}
	c.Redirect(http.StatusSeeOther, "/participants")
}
