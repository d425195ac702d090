package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/focusd/internal/api/http"
	"github.com/GriffinCanCode/focusd/internal/api/middleware"
	"github.com/GriffinCanCode/focusd/internal/config"
	"github.com/GriffinCanCode/focusd/internal/controller"
	"github.com/GriffinCanCode/focusd/internal/host"
	"github.com/GriffinCanCode/focusd/internal/logging"
	"github.com/GriffinCanCode/focusd/internal/monitoring"
	"github.com/GriffinCanCode/focusd/internal/notify"
	"github.com/GriffinCanCode/focusd/internal/shake"
	"github.com/GriffinCanCode/focusd/internal/statefile"
	"github.com/GriffinCanCode/focusd/internal/types"
	"github.com/GriffinCanCode/focusd/internal/ws"
)

// Server wires the daemon: controller, host bridge, control API, and the
// snapshot fan-out to the state file and websocket subscribers.
type Server struct {
	cfg    *config.Config
	router *gin.Engine
	http   *http.Server

	ctrl      *controller.Controller
	hub       *ws.Hub
	hostCli   *host.Client
	stateFile *statefile.Writer

	cancelWatch context.CancelFunc
	log         *logging.Logger
}

// multiState fans snapshots out to every sink.
type multiState struct {
	sinks []controller.StateSink
}

func (m *multiState) Publish(snap types.Snapshot) error {
	var firstErr error
	for _, s := range m.sinks {
		if err := s.Publish(snap); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *multiState) Clear() error {
	var firstErr error
	for _, s := range m.sinks {
		if err := s.Clear(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// New builds a fully wired server from configuration.
func New(cfg *config.Config, log *logging.Logger) *Server {
	metrics := monitoring.New()
	stateWriter := statefile.NewWriter(cfg.StateFile)
	hub := ws.NewHub(log.Named("ws"))
	state := &multiState{sinks: []controller.StateSink{stateWriter, hub}}

	// The daemon runs fine without a compositor: enforcement decisions are
	// still served over the API, only reverts and shakes degrade to no-ops.
	hostCli, err := host.NewClient(log.Named("host"))
	if err != nil {
		log.Warn("hyprland bridge unavailable", zap.Error(err))
		hostCli = nil
	}

	sinks := []notify.Sink{notify.NewLogSink(log.Named("notify"))}
	var animator shake.Animator
	var hostIface controller.Host
	if hostCli != nil {
		sinks = append(sinks, hostCli)
		animator = hostCli
		hostIface = hostCli
	}
	if cfg.Notify.WebhookURL != "" {
		sinks = append(sinks, notify.NewWebhookSink(cfg.Notify.WebhookURL, log.Named("webhook")))
	}

	shaker := shake.New(animator, cfg.Shake.Intensity, cfg.Shake.DurationMs, cfg.Shake.FrequencyMs, log.Named("shake"))
	ctrl := controller.New(cfg, hostIface, notify.NewMulti(sinks...), state, shaker, metrics, log.Named("controller"))

	s := &Server{
		cfg:       cfg,
		ctrl:      ctrl,
		hub:       hub,
		hostCli:   hostCli,
		stateFile: stateWriter,
		log:       log,
	}
	s.router = s.buildRouter(log)
	return s
}

func (s *Server) buildRouter(log *logging.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if s.cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: s.cfg.RateLimit.RequestsPerSecond,
			Burst:             s.cfg.RateLimit.Burst,
		}))
	}

	handlers := apihttp.NewHandlers(s.ctrl, log.Named("api"))

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)
	router.GET("/metrics", monitoring.Handler())

	session := router.Group("/session")
	session.POST("/start", handlers.StartSession)
	session.POST("/stop", handlers.StopSession)
	session.POST("/confirm", handlers.ConfirmStop)
	session.POST("/pause", handlers.PauseSession)
	session.POST("/resume", handlers.ResumeSession)
	session.POST("/toggle", handlers.ToggleSession)
	session.GET("/status", handlers.SessionStatus)

	policy := router.Group("/policy")
	policy.POST("/workspaces", handlers.UpdateWorkspaces)
	policy.POST("/apps", handlers.UpdateApps)
	policy.POST("/exceptions", handlers.AddException)

	events := router.Group("/events")
	events.POST("/workspace", handlers.WorkspaceEvent)
	events.POST("/spawn", handlers.SpawnEvent)
	events.POST("/window", handlers.WindowEvent)

	router.POST("/config/reload", handlers.ReloadConfig)

	router.GET("/stream", s.hub.HandleConnection)

	return router
}

// Run starts the compositor event watcher and serves the control API until
// the listener fails or Close is called.
func (s *Server) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancelWatch = cancel
	if s.hostCli != nil {
		go s.watchEvents(ctx)
	}

	s.http = &http.Server{
		Addr:    s.cfg.Server.Addr,
		Handler: s.router,
	}

	s.log.Info("control API listening", zap.String("addr", s.cfg.Server.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// watchEvents streams compositor events into the controller, reconnecting
// with a short backoff when the socket drops.
func (s *Server) watchEvents(ctx context.Context) {
	for {
		err := s.hostCli.Listen(ctx, func(event, data string) {
			if id, ok := host.ParseWorkspaceEvent(event, data); ok {
				s.ctrl.HandleWorkspaceChange(id)
			}
		})
		if ctx.Err() != nil {
			return
		}
		s.log.Warn("compositor event stream lost, reconnecting", zap.Error(err))

		select {
		case <-ctx.Done():
			return
		case <-time.After(2 * time.Second):
		}
	}
}

// Close force-stops any active session and shuts the API down gracefully.
func (s *Server) Close() error {
	if s.cancelWatch != nil {
		s.cancelWatch()
	}

	s.ctrl.Shutdown()
	s.hub.Close()

	if s.http != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(ctx)
	}
	return nil
}
