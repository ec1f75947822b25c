package handlers

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"

	"winetasting/internal/client"
	"winetasting/internal/live"
	"winetasting/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
	"github.com/skip2/go-qrcode"
)

// HTTPHandler holds the dependencies for the HTTP handlers.
type HTTPHandler struct {
	service    *services.TournamentService
	templates  *template.Template
	hub        *live.Hub
	totalWines int
	version    string
}

// NewHTTPHandler creates a new HTTPHandler. hub may be nil, in which case the
// live refresh endpoint answers 404 and pages fall back to manual reloads.
func NewHTTPHandler(service *services.TournamentService, templates *template.Template, hub *live.Hub, totalWines int, version string) *HTTPHandler {
	return &HTTPHandler{
		service:    service,
		templates:  templates,
		hub:        hub,
		totalWines: totalWines,
		version:    version,
	}
}

// renderPage is a helper to perform a two-step template rendering.
// It first executes the content template into a buffer, then executes the main
// layout template, passing the rendered content as a variable.
func (h *HTTPHandler) renderPage(c *gin.Context, pageData gin.H, contentTmpl string) {
	pageData["Flash"] = h.service.TakeFlash(tenantID(c))

	// Step 1: Render the specific page content into a buffer.
	buf := new(bytes.Buffer)
	err := h.templates.ExecuteTemplate(buf, contentTmpl, pageData)
	if err != nil {
		logger.Errorf("Error executing content template %s: %v", contentTmpl, err)
		c.String(http.StatusInternalServerError, "Template rendering error")
		return
	}

	// Step 2: Add the rendered content to the main data map and render the layout.
	pageData["PageContent"] = template.HTML(buf.String())

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Header("Cache-Control", "no-store")
	err = h.templates.ExecuteTemplate(c.Writer, "layout.html", pageData)
	if err != nil {
		logger.Errorf("Error executing layout template: %v", err)
		c.String(http.StatusInternalServerError, "Template rendering error")
	}
}

// renderPartial renders a fragment for the live refresh requests.
func (h *HTTPHandler) renderPartial(c *gin.Context, data gin.H, tmpl string) {
	buf := new(bytes.Buffer)
	if err := h.templates.ExecuteTemplate(buf, tmpl, data); err != nil {
		logger.Errorf("Error executing template %s: %v", tmpl, err)
		c.String(http.StatusInternalServerError, "Template error")
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// RegisterPublicRoutes registers the routes that need no organizer session.
func (h *HTTPHandler) RegisterPublicRoutes(router *gin.Engine) {
	router.GET("/healthz", h.ServeHealthCheck)
	router.GET("/version", h.ServeVersion)
	router.GET("/qr", h.ServeQR)
	router.GET("/ws", h.ServeLive)
}

// RegisterTenantRoutes registers the organizer routes. They expect TenantMiddleware.
func (h *HTTPHandler) RegisterTenantRoutes(router *gin.RouterGroup) {
	router.GET("/", h.ShowIndex)
	router.GET("/participants", h.ShowParticipantsPage)
	router.GET("/participants/capacity", h.GetCapacityPartial)
	router.POST("/participants/suggest", h.SuggestWines)
	router.POST("/participants/regenerate", h.RegenerateWines)
	router.POST("/participants/confirm", h.ConfirmParticipant)
	router.GET("/voting", h.ShowVotingPage)
	router.GET("/voting/leaderboard", h.GetLeaderboardPartial)
	router.GET("/voting/progress", h.GetProgressPartial)
	router.POST("/votes", h.SubmitVote)
}

// ShowIndex sends the organizer to the registration section.
func (h *HTTPHandler) ShowIndex(c *gin.Context) {
	c.Redirect(http.StatusFound, "/participants")
}

// userMessage turns an error into the text shown to the organizer.
// Validation messages stand alone; server and transport failures get the
// action's prefix.
func userMessage(err error, prefix string) string {
	if services.IsValidationError(err) {
		return err.Error()
	}
	return prefix + err.Error()
}

// flashError records err for the next page, unless it is a dropped stale response.
func (h *HTTPHandler) flashError(c *gin.Context, err error, prefix string) {
	if errors.Is(err, services.ErrStaleResponse) {
		return
	}
	if client.IsAPIError(err) {
		logger.Warningf("%s %s rejected by the tournament api: %v", c.Request.Method, c.Request.URL.Path, err)
	} else if !services.IsValidationError(err) {
		logger.Warningf("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	h.service.SetFlash(tenantID(c), "error", userMessage(err, prefix))
}

// ServeQR returns a PNG QR code that opens the voting page, so the organizer
// can hand the ballot over to another device.
func (h *HTTPHandler) ServeQR(c *gin.Context) {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	url := scheme + "://" + c.Request.Host + "/voting"

	const qrSize = 320
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		logger.Errorf("QR generation failed: %v", err)
		c.String(http.StatusInternalServerError, "qr generation failed")
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

// ServeLive upgrades to the live refresh websocket.
func (h *HTTPHandler) ServeLive(c *gin.Context) {
	if h.hub == nil {
		c.String(http.StatusNotFound, "live refresh disabled")
		return
	}
	h.hub.ServeWS(c.Writer, c.Request)
}

func (h *HTTPHandler) ServeHealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "Ok\n")
}

func (h *HTTPHandler) ServeVersion(c *gin.Context) {
	c.String(http.StatusOK, "winetasting v%s\n", h.version)
}
