package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/internal/compiler"
	"github.com/aretw0/turing/internal/presentation/graph"
	"github.com/aretw0/turing/pkg/adapters/memory"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// DefaultMaxSteps caps runs requested by MCP clients.
const DefaultMaxSteps = 1_000_000

// Default bounds on the trace returned by run_program.
const (
	DefaultMaxTraceSteps = 10_000
	DefaultMaxTraceBytes = 16 << 20
)

// CompileResponse describes a compiled program.
type CompileResponse struct {
	InitialState string   `json:"initial_state" jsonschema_description:"State every run starts in"`
	FinalStates  []string `json:"final_states" jsonschema_description:"States that halt the machine"`
	States       []string `json:"states" jsonschema_description:"Every state named by the program"`
	Rules        []string `json:"rules" jsonschema_description:"Effective rules after overwrites, in source order"`
}

// RunResponse reports a finished run.
type RunResponse struct {
	Result domain.Result `json:"result" jsonschema_description:"Outcome, step count and final tape"`
	Trace  []string      `json:"trace,omitempty" jsonschema_description:"Trace lines, when requested"`
	// TraceTruncated is set when the trace hit the server's trace bound.
	TraceTruncated bool `json:"trace_truncated,omitempty" jsonschema_description:"True when the trace was cut at the server bound"`
}

// Server wraps program compilation and execution and exposes them as an MCP Server.
type Server struct {
	loader    ports.ProgramLoader
	maxSteps      int
	maxTraceSteps int
	maxTraceBytes int
	logger        *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithMaxSteps sets the step cap for every run. Zero leaves runs unbounded.
func WithMaxSteps(n int) Option {
	return func(s *Server) {
		s.maxSteps = n
	}
}

// WithTraceLimits bounds returned traces to steps records and roughly bytes
// bytes. Zero disables the respective bound.
func WithTraceLimits(steps, bytes int) Option {
	return func(s *Server) {
		s.maxTraceSteps = steps
		s.maxTraceBytes = bytes
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(loader ports.ProgramLoader, opts ...Option) *Server {
	s := &Server{
		loader:    loader,
		maxSteps:      DefaultMaxSteps,
		maxTraceSteps: DefaultMaxTraceSteps,
		maxTraceBytes: DefaultMaxTraceBytes,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		mcpServer:     server.NewMCPServer("turing-mcp", turing.Version),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and shuts it down
// when ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: compile_program
	compileTool := mcp.NewTool("compile_program",
		mcp.WithDescription("Compile a rule program (one 'state read write move next' rule per line, ';' starts a comment) and describe it."),
		mcp.WithString("program", mcp.Required(), mcp.Description("Program source text")),
		mcp.WithOutputSchema[CompileResponse](),
	)
	s.mcpServer.AddTool(compileTool, mcp.NewStructuredToolHandler(s.handleCompile))

	// TOOL: run_program
	runTool := mcp.NewTool("run_program",
		mcp.WithDescription("Run a program on a tape until it halts, finds no rule, or hits the step cap."),
		mcp.WithString("program", mcp.Description("Program source text (or use program_name)")),
		mcp.WithString("program_name", mcp.Description("Name of a shipped program, e.g. multiply")),
		mcp.WithString("tape", mcp.Description("Initial tape, one symbol per character; B is blank")),
		mcp.WithNumber("head", mcp.Description("Initial head position (default 0), an integer from -1 to the tape length")),
		mcp.WithNumber("max_steps", mcp.Description("Step bound, clamped to the server cap")),
		mcp.WithBoolean("trace", mcp.Description("Include the configurations in the response, up to the server trace bound")),
		mcp.WithOutputSchema[RunResponse](),
	)
	s.mcpServer.AddTool(runTool, mcp.NewStructuredToolHandler(s.handleRun))

	// TOOL: program_graph
	s.mcpServer.AddTool(mcp.NewTool("program_graph",
		mcp.WithDescription("Render the transition graph of a program as a Mermaid flowchart."),
		mcp.WithString("program", mcp.Description("Program source text (or use program_name)")),
		mcp.WithString("program_name", mcp.Description("Name of a shipped program")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		prog, err := s.resolve(ctx, args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(graph.GenerateMermaid(prog, nil)), nil
	})
}

// Handler methods for structured tools

func (s *Server) handleCompile(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (CompileResponse, error) {
	src, _ := args["program"].(string)
	prog, err := compiler.Compile(src)
	if err != nil {
		return CompileResponse{}, err
	}

	rules := prog.Rules()
	lines := make([]string, len(rules))
	for i, r := range rules {
		lines[i] = r.String()
	}
	return CompileResponse{
		InitialState: prog.InitialState(),
		FinalStates:  prog.FinalStates(),
		States:       prog.States(),
		Rules:        lines,
	}, nil
}

func (s *Server) handleRun(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (RunResponse, error) {
	prog, err := s.resolve(ctx, args)
	if err != nil {
		return RunResponse{}, err
	}

	tape, _ := args["tape"].(string)
	head, err := headArg(args)
	if err != nil {
		return RunResponse{}, err
	}
	if err := turing.CheckHead(tape, head); err != nil {
		return RunResponse{}, err
	}
	requested, _ := args["max_steps"].(float64)
	trace, _ := args["trace"].(bool)

	name, _ := args["program_name"].(string)
	m := turing.NewFromProgram(prog,
		turing.WithName(name),
		turing.WithLogger(s.logger),
		turing.WithMaxSteps(s.stepCap(int(requested))),
	)

	var rec *memory.Recorder
	runOpts := []turing.RunOption{turing.WithHead(head)}
	if trace {
		entries := 0
		if s.maxTraceSteps > 0 {
			entries = s.maxTraceSteps + 1
		}
		rec = memory.NewRecorder(memory.WithMaxEntries(entries), memory.WithMaxBytes(s.maxTraceBytes))
		runOpts = append(runOpts, turing.WithTrace(rec))
	}

	res, err := m.Run(ctx, tape, runOpts...)
	if err != nil {
		return RunResponse{}, fmt.Errorf("run failed: %w", err)
	}

	resp := RunResponse{Result: *res}
	if rec != nil {
		resp.Trace = rec.Lines()
		resp.TraceTruncated = rec.Truncated()
	}
	return resp, nil
}

// headArg reads the optional integer "head" argument. JSON numbers arrive as
// float64, so fractional and out-of-range values are refused before conversion.
func headArg(args map[string]interface{}) (int, error) {
	raw, ok := args["head"]
	if !ok || raw == nil {
		return 0, nil
	}
	f, ok := raw.(float64)
	if !ok {
		return 0, fmt.Errorf("%w: head must be a number", domain.ErrHeadOutOfRange)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, fmt.Errorf("%w: head must be an integer, got %v", domain.ErrHeadOutOfRange, f)
	}
	return int(f), nil
}

// resolve compiles the inline program or loads the named one.
func (s *Server) resolve(ctx context.Context, args map[string]interface{}) (*domain.Program, error) {
	src, _ := args["program"].(string)
	name, _ := args["program_name"].(string)
	if (src == "") == (name == "") {
		return nil, errors.New("exactly one of program and program_name is required")
	}
	if name != "" {
		var err error
		src, err = s.loader.Load(ctx, name)
		if err != nil {
			return nil, err
		}
	}
	return compiler.Compile(src)
}

func (s *Server) stepCap(requested int) int {
	if s.maxSteps <= 0 {
		return max(requested, 0)
	}
	if requested <= 0 || requested > s.maxSteps {
		return s.maxSteps
	}
	return requested
}

func (s *Server) registerResources() {
	// EXPOSE: turing://programs
	s.mcpServer.AddResource(mcp.NewResource("turing://programs", "Shipped Programs",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		names, err := s.loader.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list programs: %w", err)
		}
		jsonBytes, _ := json.Marshal(names)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "turing://programs",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
