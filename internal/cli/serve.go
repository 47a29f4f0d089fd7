package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/runigram/pkg/grid"
	"github.com/matzehuels/runigram/pkg/httputil"
	"github.com/matzehuels/runigram/pkg/morph"
	"github.com/matzehuels/runigram/pkg/observability"
	"github.com/matzehuels/runigram/pkg/pipeline"
	"github.com/matzehuels/runigram/pkg/ppm"
	"github.com/matzehuels/runigram/pkg/sink"
	"github.com/matzehuels/runigram/pkg/transform"

	rterrors "github.com/matzehuels/runigram/pkg/errors"
)

const (
	// sessionHeader carries the morph session ID.
	sessionHeader = "X-Session-ID"

	contentTypePPM    = "image/x-portable-pixmap"
	contentTypeNDJSON = "application/x-ndjson"

	shutdownTimeout = 10 * time.Second
)

// serveCommand creates the serve command, an HTTP API over the pipeline.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve transforms and morphs over HTTP",
		Long: `Serve transforms and morphs over HTTP.

Endpoints:
  GET  /healthz        liveness check
  POST /v1/transform   body: P3 image, query: op=... (repeatable); returns P3
  POST /v1/morph       body: JSON morph request; streams NDJSON frames

Each morph response carries its session ID in the X-Session-ID header.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.Config.Server.Addr
			}
			return c.runServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (default: config server.addr)")

	return cmd
}

// runServe serves until ctx is cancelled, then shuts down gracefully.
func (c *CLI) runServe(ctx context.Context, addr string) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	s := newServer(runner, c.Logger)
	s.maxBody = c.Config.Server.MaxBodyBytes
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}

// =============================================================================
// Server
// =============================================================================

// server holds the dependencies of the HTTP handlers.
type server struct {
	runner  *pipeline.Runner
	logger  *log.Logger
	maxBody int64
	clock   morph.Clock
}

func newServer(runner *pipeline.Runner, logger *log.Logger) *server {
	return &server{
		runner:  runner,
		logger:  logger,
		maxBody: defaultMaxBody,
		clock:   morph.SleepClock{},
	}
}

// routes builds the chi router.
func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/transform", s.handleTransform)
		r.Post("/morph", s.handleMorph)
	})
	return r
}

// observe attaches a request-scoped logger, reports HTTP hooks and logs
// every response.
func (s *server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		logger := s.logger.With("request", middleware.GetReqID(ctx))
		ctx = withLogger(ctx, logger)

		hooks := observability.HTTP()
		hooks.OnRequest(ctx, r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		hooks.OnResponse(ctx, r.Method, r.URL.Path, status, elapsed)
		logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", status, "duration", elapsed.Round(time.Millisecond))
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleTransform decodes a P3 body, applies the op query parameters in
// order and answers with the result as P3.
func (s *server) handleTransform(w http.ResponseWriter, r *http.Request) {
	ops, err := transform.ParseOps(r.URL.Query()["op"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	g, err := s.runner.Decode(r.Context(), data)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out, err := s.runner.Transform(g, ops)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentTypePPM)
	w.WriteHeader(http.StatusOK)
	_ = ppm.Encode(w, out)
}

// morphRequest is the body of POST /v1/morph. Images are P3 text; an empty
// target means the source itself.
type morphRequest struct {
	Source    string         `json:"source"`
	Target    string         `json:"target,omitempty"`
	SourceOps []transform.Op `json:"source_ops,omitempty"`
	TargetOps []transform.Op `json:"target_ops,omitempty"`
	Steps     int            `json:"steps"`
	DelayMS   int            `json:"delay_ms,omitempty"`
}

// handleMorph validates the request and streams every frame as one NDJSON
// line. Errors found before the first frame get a JSON error response;
// after that the stream is simply cut short.
func (s *server) handleMorph(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := loggerFromContext(ctx)

	var req morphRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if !errors.As(err, &tooLarge) {
			err = rterrors.Wrap(rterrors.ErrCodeMalformedInput, err, "invalid morph request")
		}
		s.fail(w, r, err)
		return
	}
	if err := rterrors.ValidateSteps(req.Steps); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.DelayMS < 0 {
		s.fail(w, r, rterrors.New(rterrors.ErrCodeInvalidParameter, "delay_ms must not be negative, got %d", req.DelayMS))
		return
	}

	source, target, err := s.prepare(ctx, &req)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	sessionID := uuid.NewString()
	w.Header().Set(sessionHeader, sessionID)
	w.Header().Set("Content-Type", contentTypeNDJSON)
	w.WriteHeader(http.StatusOK)

	res, err := morph.Play(ctx, sink.NewNDJSON(w), source, target, req.Steps,
		morph.WithSessionID(sessionID),
		morph.WithDelay(time.Duration(req.DelayMS)*time.Millisecond),
		morph.WithClock(s.clock),
		morph.WithLogger(logger),
	)
	if err != nil {
		logger.Warn("morph stream ended early", "session", sessionID, "frames", framesOf(res), "err", err)
		return
	}
	logger.Info("morph streamed", "session", sessionID, "frames", res.Frames, "elapsed", res.Elapsed.Round(time.Millisecond))
}

// prepare decodes and transforms the images of a morph request.
func (s *server) prepare(ctx context.Context, req *morphRequest) (source, target *grid.Grid, err error) {
	if req.Source == "" {
		return nil, nil, rterrors.New(rterrors.ErrCodeInvalidParameter, "source image is required")
	}
	base, err := s.runner.Decode(ctx, []byte(req.Source))
	if err != nil {
		return nil, nil, fmt.Errorf("decode source: %w", err)
	}
	targetBase := base
	if req.Target != "" {
		if targetBase, err = s.runner.Decode(ctx, []byte(req.Target)); err != nil {
			return nil, nil, fmt.Errorf("decode target: %w", err)
		}
	}
	if source, err = s.runner.Transform(base, req.SourceOps); err != nil {
		return nil, nil, fmt.Errorf("transform source: %w", err)
	}
	if target, err = s.runner.Transform(targetBase, req.TargetOps); err != nil {
		return nil, nil, fmt.Errorf("transform target: %w", err)
	}
	return source, target, nil
}

// fail writes err as a JSON error response and logs server-side failures.
func (s *server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := httputil.WriteError(w, err)
	if status >= http.StatusInternalServerError {
		loggerFromContext(r.Context()).Error("request failed", "path", r.URL.Path, "err", err)
	}
}

func framesOf(res *morph.Result) int {
	if res == nil {
		return 0
	}
	return res.Frames
}
