package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"

	"testweave/internal/app"
	"testweave/internal/application/dto"
	"testweave/internal/application/port/output"
	"testweave/internal/domain/workflow"
)

// Workflow is the run entry point the server drives.
type Workflow interface {
	Execute(ctx context.Context, in dto.RunInput) *dto.RunOutput
}

// WorkflowFactory builds one workflow per run so each run gets its own
// progress notifier.
type WorkflowFactory func(notifier output.ProgressNotifier) Workflow

// Server exposes the workflow over HTTP. Runs execute asynchronously;
// progress and results stream over the WebSocket identified by the
// request's client_id.
type Server struct {
	addr        string
	factory     WorkflowFactory
	checkpoints output.CheckpointStore
	registry    *Registry
	hub         *Hub
	upgrader    websocket.Upgrader
}

// New builds a server. checkpoints may be nil to disable resume over HTTP.
func New(addr string, factory WorkflowFactory, checkpoints output.CheckpointStore) *Server {
	return &Server{
		addr:        addr,
		factory:     factory,
		checkpoints: checkpoints,
		registry:    NewRegistry(),
		hub:         NewHub(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// the server binds to loopback; cross-origin pages may talk to it
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	router := gin.New()
	router.Use(gin.Recovery())

	router.POST("/api/generate", s.handleRun(workflow.ModeGenerate))
	router.POST("/api/test", s.handleRun(workflow.ModeTest))
	router.POST("/api/resume", s.handleResume)
	router.GET("/api/runs", s.handleListRuns)
	router.DELETE("/api/runs/:id", s.handleCancelRun)
	router.GET("/ws/:client_id", s.handleWebSocket)
	router.GET("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

// ListenAndServe blocks until ctx is canceled, then shuts down draining
// in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context) error {
	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	app.GetLogger().Info("listening on %s", s.addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

type runRequest struct {
	Input         string `json:"input"`
	ClientID      string `json:"client_id"`
	MaxIterations int    `json:"max_iterations"`
}

type runAccepted struct {
	RunID string `json:"run_id"`
}

func (s *Server) handleRun(mode workflow.Mode) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req runRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}
		if strings.TrimSpace(req.Input) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "input is required"})
			return
		}
		s.launch(c, req, dto.RunInput{
			Mode:          mode,
			Input:         req.Input,
			MaxIterations: req.MaxIterations,
		})
	}
}

func (s *Server) handleResume(c *gin.Context) {
	if s.checkpoints == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "resume is not configured"})
		return
	}
	var req runRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	checkpoint, err := s.checkpoints.Load()
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if checkpoint == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no checkpoint to resume"})
		return
	}
	state, err := workflow.Resume(checkpoint, req.Input, "", app.GetLogger().Warn)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	s.launch(c, req, dto.RunInput{
		Mode:          state.Mode,
		MaxIterations: req.MaxIterations,
		Resume:        state,
	})
}

// launch starts the run in the background and answers 202 immediately.
func (s *Server) launch(c *gin.Context, req runRequest, in dto.RunInput) {
	runID := ulid.Make().String()
	runCtx := s.registry.Add(context.Background(), runID, in.Mode.String(), req.ClientID)

	notifier := output.FuncNotifier(func(step, message string) {
		s.hub.SendProgress(req.ClientID, runID, step, message)
	})
	wf := s.factory(notifier)

	go func() {
		defer s.registry.Remove(runID)
		out := wf.Execute(runCtx, in)
		if s.checkpoints != nil && out.Checkpoint != nil {
			if err := s.checkpoints.Save(out.Checkpoint); err != nil {
				app.GetLogger().Warn("failed to save checkpoint: %v", err)
			}
		}
		s.hub.SendResult(req.ClientID, runID, out)
		app.GetLogger().Info("run %s finished: %s", runID, out.Status)
	}()

	c.JSON(http.StatusAccepted, runAccepted{RunID: runID})
}

func (s *Server) handleListRuns(c *gin.Context) {
	c.JSON(http.StatusOK, s.registry.List())
}

func (s *Server) handleCancelRun(c *gin.Context) {
	if !s.registry.Cancel(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown run"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleWebSocket(c *gin.Context) {
	clientID := c.Param("client_id")
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		app.GetLogger().Warn("websocket upgrade failed: %v", err)
		return
	}
	s.hub.Register(clientID, conn)

	// reader loop exists only to observe the close
	go func() {
		defer s.hub.Unregister(clientID, conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
