package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/focusd/internal/config"
	"github.com/GriffinCanCode/focusd/internal/controller"
	"github.com/GriffinCanCode/focusd/internal/logging"
	"github.com/GriffinCanCode/focusd/internal/types"
)

// Handlers contains all control API handlers.
type Handlers struct {
	ctrl *controller.Controller
	log  *logging.Logger
}

// NewHandlers creates a new handler set.
func NewHandlers(ctrl *controller.Controller, log *logging.Logger) *Handlers {
	return &Handlers{ctrl: ctrl, log: log}
}

type sessionRequest struct {
	Spec string `json:"spec"`
}

type stopRequest struct {
	Force bool `json:"force"`
}

type confirmRequest struct {
	Answer string `json:"answer"`
}

type workspaceRequest struct {
	Workspace int64 `json:"workspace"`
	Allow     bool  `json:"allow"`
}

type appRequest struct {
	App   string `json:"app"`
	Allow bool   `json:"allow"`
}

type exceptionRequest struct {
	Class string `json:"class"`
}

type spawnEvent struct {
	Command string `json:"command"`
}

// Root handles the service banner.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "focusd",
	})
}

// Health handles the health check.
func (h *Handlers) Health(c *gin.Context) {
	_, snap := h.ctrl.Status()
	c.JSON(http.StatusOK, gin.H{
		"status":           "healthy",
		"session_active":   snap.Active,
		"session_state":    snap.State,
		"challenge_active": h.ctrl.ChallengeActive(),
	})
}

// StartSession begins a focus session.
func (h *Handlers) StartSession(c *gin.Context) {
	var req sessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	msg, err := h.ctrl.Start(req.Spec)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    msg,
		"session_id": h.ctrl.SessionID(),
	})
}

// StopSession requests a session stop, subject to the exit challenge.
func (h *Handlers) StopSession(c *gin.Context) {
	var req stopRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	msg, stopped, err := h.ctrl.Stop(req.Force)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":           msg,
		"stopped":           stopped,
		"challenge_pending": !stopped,
	})
}

// ConfirmStop submits an exit challenge answer.
func (h *Handlers) ConfirmStop(c *gin.Context) {
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, stopped, err := h.ctrl.ConfirmStop(req.Answer)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": msg,
		"stopped": stopped,
	})
}

// PauseSession freezes the session clock.
func (h *Handlers) PauseSession(c *gin.Context) {
	msg, err := h.ctrl.Pause()
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// ResumeSession continues a paused session.
func (h *Handlers) ResumeSession(c *gin.Context) {
	msg, err := h.ctrl.Resume()
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// ToggleSession stops an active session or starts a new one.
func (h *Handlers) ToggleSession(c *gin.Context) {
	var req sessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	msg, err := h.ctrl.Toggle(req.Spec)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// SessionStatus reports the session summary and snapshot.
func (h *Handlers) SessionStatus(c *gin.Context) {
	msg, snap := h.ctrl.Status()
	c.JSON(http.StatusOK, gin.H{
		"message":    msg,
		"snapshot":   snap,
		"session_id": h.ctrl.SessionID(),
	})
}

// UpdateWorkspaces adds or removes an allowed workspace.
func (h *Handlers) UpdateWorkspaces(c *gin.Context) {
	var req workspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var (
		msg string
		err error
	)
	if req.Allow {
		msg, err = h.ctrl.AllowWorkspace(types.WorkspaceID(req.Workspace))
	} else {
		msg, err = h.ctrl.DisallowWorkspace(types.WorkspaceID(req.Workspace))
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// UpdateApps adds or removes a launch whitelist entry.
func (h *Handlers) UpdateApps(c *gin.Context) {
	var req appRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var (
		msg string
		err error
	)
	if req.Allow {
		msg, err = h.ctrl.AllowApp(req.App)
	} else {
		msg, err = h.ctrl.DisallowApp(req.App)
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// AddException exempts a window class from enforcement.
func (h *Handlers) AddException(c *gin.Context) {
	var req exceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.ctrl.AddExceptionClass(req.Class)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// WorkspaceEvent ingests a workspace-changed event from an external hook.
func (h *Handlers) WorkspaceEvent(c *gin.Context) {
	var req struct {
		Workspace int64 `json:"workspace"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.ctrl.HandleWorkspaceChange(types.WorkspaceID(req.Workspace))
	c.JSON(http.StatusOK, gin.H{"handled": true})
}

// SpawnEvent asks whether an app launch may proceed.
func (h *Handlers) SpawnEvent(c *gin.Context) {
	var req spawnEvent
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"allowed": h.ctrl.HandleSpawn(req.Command)})
}

// WindowEvent asks whether a window is exempt from enforcement.
func (h *Handlers) WindowEvent(c *gin.Context) {
	var win types.Window
	if err := c.ShouldBindJSON(&win); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"exempt": h.ctrl.WindowExempt(&win)})
}

// ReloadConfig re-reads configuration from the environment and config file.
func (h *Handlers) ReloadConfig(c *gin.Context) {
	cfg, err := config.Load()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	warnings := cfg.Validate()
	for _, w := range warnings {
		h.log.Warn("config warning", zap.String("warning", w))
	}

	h.ctrl.Reload(cfg)
	c.JSON(http.StatusOK, gin.H{
		"message":  "Configuration reloaded.",
		"warnings": warnings,
	})
}

// statusFor maps controller errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, controller.ErrSessionActive),
		errors.Is(err, controller.ErrNoSession),
		errors.Is(err, controller.ErrNotPaused),
		errors.Is(err, controller.ErrNoChallenge):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
