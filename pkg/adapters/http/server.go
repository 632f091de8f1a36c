package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/internal/compiler"
	"github.com/aretw0/turing/internal/presentation/graph"
	"github.com/aretw0/turing/internal/validator"
	"github.com/aretw0/turing/pkg/adapters/memory"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/observability"
	"github.com/aretw0/turing/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultMaxSteps caps every run served over HTTP unless overridden.
const DefaultMaxSteps = 1_000_000

// Default bounds on the trace kept for POST /run. Longer traces are truncated;
// POST /run/stream delivers them in full.
const (
	DefaultMaxTraceSteps = 10_000
	DefaultMaxTraceBytes = 16 << 20
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Server exposes compilation and execution of rule programs over HTTP.
type Server struct {
	Loader   ports.ProgramLoader
	Store    ports.ResultStore
	Metrics  *observability.Metrics
	Gatherer prometheus.Gatherer
	MaxSteps int
	// MaxTraceSteps and MaxTraceBytes bound the trace returned by POST /run.
	// Zero disables the respective bound.
	MaxTraceSteps int
	MaxTraceBytes int
	Logger        *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithStore persists every finished run.
func WithStore(store ports.ResultStore) Option {
	return func(s *Server) {
		s.Store = store
	}
}

// WithMetrics records runs into m and serves gatherer on /metrics.
func WithMetrics(m *observability.Metrics, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.Metrics = m
		s.Gatherer = gatherer
	}
}

// WithMaxSteps sets the server-wide step cap. Zero leaves runs unbounded.
func WithMaxSteps(n int) Option {
	return func(s *Server) {
		s.MaxSteps = n
	}
}

// WithTraceLimits bounds the trace returned by POST /run to at most steps
// records and roughly bytes bytes.
func WithTraceLimits(steps, bytes int) Option {
	return func(s *Server) {
		s.MaxTraceSteps = steps
		s.MaxTraceBytes = bytes
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.Logger = logger
		}
	}
}

// NewServer creates a server that resolves named programs through loader.
func NewServer(loader ports.ProgramLoader, opts ...Option) *Server {
	s := &Server{
		Loader:        loader,
		MaxSteps:      DefaultMaxSteps,
		MaxTraceSteps: DefaultMaxTraceSteps,
		MaxTraceBytes: DefaultMaxTraceBytes,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewHandler creates a new HTTP handler for the server.
func NewHandler(loader ports.ProgramLoader, opts ...Option) http.Handler {
	return NewServer(loader, opts...).Routes()
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Post("/compile", s.Compile)
	r.Post("/run", s.Run)
	r.Post("/run/stream", s.RunStream)
	r.Get("/runs/{id}", s.GetRun)
	r.Get("/programs", s.ListPrograms)
	r.Get("/programs/{name}/graph", s.GetGraph)

	if s.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, s.Logger)
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "turing-http",
		"version": turing.Version,
	}, s.Logger)
}

// Compile handles the POST /compile request.
func (s *Server) Compile(w http.ResponseWriter, r *http.Request) {
	var body CompileRequest
	if !s.decode(w, r, &body) {
		return
	}

	prog, err := compiler.Compile(body.Program)
	if err != nil {
		s.compileError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, CompileResponse{
		InitialState: prog.InitialState(),
		FinalStates:  prog.FinalStates(),
		States:       prog.States(),
		Rules:        rulesView(prog),
		Warnings:     validator.Inspect(prog),
	}, s.Logger)
}

// Run handles the POST /run request.
func (s *Server) Run(w http.ResponseWriter, r *http.Request) {
	var body RunRequest
	if !s.decode(w, r, &body) {
		return
	}

	machine, name, ok := s.machine(r.Context(), w, body)
	if !ok {
		return
	}

	var rec *memory.Recorder
	runOpts := []turing.RunOption{turing.WithHead(body.Head)}
	if body.Trace {
		// Step 0 adds one record on top of the counted steps.
		rec = memory.NewRecorder(memory.WithMaxEntries(s.traceEntries()), memory.WithMaxBytes(s.MaxTraceBytes))
		runOpts = append(runOpts, turing.WithTrace(rec))
	}

	res, err := machine.Run(r.Context(), body.Tape, runOpts...)
	if err != nil {
		s.Logger.Warn("Run interrupted", "error", err)
		writeError(w, http.StatusServiceUnavailable, err.Error(), 0, s.Logger)
		return
	}

	resp := RunResponse{Result: *res}
	if rec != nil {
		resp.Trace = rec.Lines()
		resp.TraceTruncated = rec.Truncated()
	}
	resp.ID = s.save(r.Context(), name, body, res)

	writeJSON(w, http.StatusOK, resp, s.Logger)
}

// RunStream handles the POST /run/stream request (SSE). Every configuration
// is sent as a "step" event, the diagnostic as "no_transition" and the
// summary as a final "result" event.
func (s *Server) RunStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.Logger.Error("RunStream: Streaming not supported")
		return
	}

	var body RunRequest
	if !s.decode(w, r, &body) {
		return
	}

	machine, name, ok := s.machine(r.Context(), w, body)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sink := &sseSink{w: w, flusher: flusher}
	res, err := machine.Run(r.Context(), body.Tape, turing.WithHead(body.Head), turing.WithTrace(sink))
	if err != nil {
		s.Logger.Info("SSE client disconnected", "error", err)
		return
	}

	resp := RunResponse{Result: *res, ID: s.save(r.Context(), name, body, res)}
	sink.event("result", resp)
}

// GetRun handles the GET /runs/{id} request.
func (s *Server) GetRun(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		writeError(w, http.StatusNotFound, "run storage disabled", 0, s.Logger)
		return
	}

	rec, err := s.Store.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrResultNotFound) {
			writeError(w, http.StatusNotFound, err.Error(), 0, s.Logger)
			return
		}
		s.Logger.Error("Load run failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error(), 0, s.Logger)
		return
	}
	writeJSON(w, http.StatusOK, rec, s.Logger)
}

// ListPrograms handles the GET /programs request.
func (s *Server) ListPrograms(w http.ResponseWriter, r *http.Request) {
	names, err := s.Loader.List(r.Context())
	if err != nil {
		s.Logger.Error("List programs failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error(), 0, s.Logger)
		return
	}
	writeJSON(w, http.StatusOK, names, s.Logger)
}

// GetGraph handles the GET /programs/{name}/graph request. The response is
// Mermaid flowchart text.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	src, err := s.Loader.Load(r.Context(), name)
	if err != nil {
		s.loadError(w, err)
		return
	}
	prog, err := compiler.Compile(src)
	if err != nil {
		s.compileError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := io.WriteString(w, graph.GenerateMermaid(prog, nil)); err != nil {
		s.Logger.Error("GetGraph response write failed", "error", err)
	}
}

// machine compiles the program referenced by body, writing the error
// response itself when that fails.
func (s *Server) machine(ctx context.Context, w http.ResponseWriter, body RunRequest) (*turing.Machine, string, bool) {
	if (body.Program == "") == (body.ProgramName == "") {
		writeError(w, http.StatusBadRequest, "exactly one of program and program_name is required", 0, s.Logger)
		return nil, "", false
	}
	if err := turing.CheckHead(body.Tape, body.Head); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), 0, s.Logger)
		return nil, "", false
	}

	src, name := body.Program, body.ProgramName
	if name != "" {
		var err error
		src, err = s.Loader.Load(ctx, name)
		if err != nil {
			s.loadError(w, err)
			return nil, "", false
		}
	}

	opts := []turing.Option{turing.WithMaxSteps(s.stepCap(body.MaxSteps)), turing.WithLogger(s.Logger)}
	if name != "" {
		opts = append(opts, turing.WithName(name))
	}
	if s.Metrics != nil {
		opts = append(opts, turing.WithLifecycleHooks(s.Metrics.Hooks()))
	}

	m, err := turing.New(src, opts...)
	if err != nil {
		s.compileError(w, err)
		return nil, "", false
	}
	return m, name, true
}

// traceEntries converts the step bound into a recorder entry bound.
func (s *Server) traceEntries() int {
	if s.MaxTraceSteps <= 0 {
		return 0
	}
	return s.MaxTraceSteps + 1
}

// stepCap clamps a requested bound to the server cap.
func (s *Server) stepCap(requested int) int {
	if s.MaxSteps <= 0 {
		return max(requested, 0)
	}
	if requested <= 0 || requested > s.MaxSteps {
		return s.MaxSteps
	}
	return requested
}

func (s *Server) save(ctx context.Context, name string, body RunRequest, res *domain.Result) string {
	if s.Store == nil {
		return ""
	}
	rec := &domain.RunRecord{
		ID:        uuid.NewString(),
		Program:   name,
		Input:     body.Tape,
		Head:      body.Head,
		Result:    *res,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Store.Save(ctx, rec); err != nil {
		s.Logger.Error("Save run failed", "error", err)
		return ""
	}
	return rec.ID
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v); err != nil {
		s.Logger.Warn("Invalid request body", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body", 0, s.Logger)
		return false
	}
	return true
}

func (s *Server) compileError(w http.ResponseWriter, err error) {
	var fe *domain.FormatError
	if errors.As(err, &fe) {
		writeError(w, http.StatusUnprocessableEntity, err.Error(), fe.Line, s.Logger)
		return
	}
	if errors.Is(err, domain.ErrEmptyProgram) {
		writeError(w, http.StatusUnprocessableEntity, err.Error(), 0, s.Logger)
		return
	}
	s.Logger.Error("Compile failed", "error", err)
	writeError(w, http.StatusInternalServerError, err.Error(), 0, s.Logger)
}

func (s *Server) loadError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrProgramNotFound) {
		writeError(w, http.StatusNotFound, err.Error(), 0, s.Logger)
		return
	}
	s.Logger.Error("Load program failed", "error", err)
	writeError(w, http.StatusInternalServerError, err.Error(), 0, s.Logger)
}

// -- Helpers --

func writeJSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Response encode failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string, line int, logger *slog.Logger) {
	writeJSON(w, status, ErrorResponse{Error: msg, Line: line}, logger)
}

// sseSink streams trace records as server-sent events.
type sseSink struct {
	w       io.Writer
	flusher http.Flusher
}

func (s *sseSink) Record(cfg domain.Configuration) {
	s.event("step", cfg)
}

func (s *sseSink) NoTransition(state string, symbol domain.Symbol) {
	s.event("no_transition", domain.Key{State: state, Read: symbol})
}

func (s *sseSink) event(name string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", name, data)
	s.flusher.Flush()
}
