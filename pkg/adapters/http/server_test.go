package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/turing/internal/validator"
	"github.com/aretw0/turing/pkg/adapters/memory"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/observability"
	"github.com/aretw0/turing/pkg/programs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T, opts ...Option) http.Handler {
	t.Helper()
	return NewHandler(programs.NewRegistry(), opts...)
}

func post(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", path, bytes.NewReader(data))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthAndInfo(t *testing.T) {
	h := newTestHandler(t)

	w := get(h, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = get(h, "/info")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "turing-http")
}

func TestCompile(t *testing.T) {
	h := newTestHandler(t)

	w := post(t, h, "/compile", CompileRequest{Program: "A 0 1 r A\nA * * * halt\n"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp CompileResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "A", resp.InitialState)
	assert.Equal(t, []string{"halt"}, resp.FinalStates)
	require.Len(t, resp.Rules, 2)
	assert.Equal(t, "*", resp.Rules[1].Read)
	assert.Empty(t, resp.Warnings)

	w = post(t, h, "/compile", CompileRequest{Program: "A 0 1 r B\nA 1 1 r halt\n"})
	require.Equal(t, http.StatusOK, w.Code)
	resp = CompileResponse{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Warnings, 1)
	assert.Equal(t, validator.KindDeadEnd, resp.Warnings[0].Kind)
	assert.Equal(t, "B", resp.Warnings[0].State)
}

func TestCompile_FormatError(t *testing.T) {
	h := newTestHandler(t)

	w := post(t, h, "/compile", CompileRequest{Program: "A 0 1 r A\nA 0 1 r\n"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Line)

	w = post(t, h, "/compile", CompileRequest{Program: "; nothing\n"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCompile_InvalidBody(t *testing.T) {
	h := newTestHandler(t)
	req := httptest.NewRequest("POST", "/compile", strings.NewReader("{"))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRun_NamedProgram(t *testing.T) {
	store := memory.NewStore()
	h := newTestHandler(t, WithStore(store))

	w := post(t, h, "/run", RunRequest{ProgramName: programs.Multiply, Tape: "BB1#1$BB", Trace: true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp RunResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, domain.OutcomeHalted, resp.Result.Outcome)
	assert.Equal(t, 60, resp.Result.Steps)
	assert.Equal(t, "B1BBBBBBB", resp.Result.Tape)
	require.Len(t, resp.Trace, 61)
	assert.Equal(t, "Step 0000: State=90, Head=0, Tape=BB1#1$BB", resp.Trace[0])

	require.NotEmpty(t, resp.ID)
	w = get(h, "/runs/"+resp.ID)
	require.Equal(t, http.StatusOK, w.Code)

	var rec domain.RunRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Equal(t, programs.Multiply, rec.Program)
	assert.Equal(t, "BB1#1$BB", rec.Input)
	assert.Equal(t, 60, rec.Result.Steps)
}

func TestRun_InlineProgram(t *testing.T) {
	h := newTestHandler(t)

	w := post(t, h, "/run", RunRequest{Program: "A 0 1 r A\n", Tape: "00"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp RunResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, domain.OutcomeNoTransition, resp.Result.Outcome)
	assert.Equal(t, 3, resp.Result.Steps)
	assert.Equal(t, "11B", resp.Result.Tape)
	require.NotNil(t, resp.Result.Stuck)
	assert.Equal(t, domain.Blank, resp.Result.Stuck.Read)
	assert.Empty(t, resp.ID, "no store configured")
	assert.Empty(t, resp.Trace)
}

func TestRun_StepCap(t *testing.T) {
	h := newTestHandler(t, WithMaxSteps(5))

	w := post(t, h, "/run", RunRequest{Program: "A * * r A\n", Tape: "", MaxSteps: 100})
	require.Equal(t, http.StatusOK, w.Code)

	var resp RunResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, domain.OutcomeStepLimitExceeded, resp.Result.Outcome)
	assert.Equal(t, 5, resp.Result.Steps)

	w = post(t, h, "/run", RunRequest{Program: "A * * r A\n", MaxSteps: 2})
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Result.Steps)
}

func TestRun_BadRequests(t *testing.T) {
	h := newTestHandler(t)

	w := post(t, h, "/run", RunRequest{Tape: "1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = post(t, h, "/run", RunRequest{Program: "A 0 1 r A", ProgramName: programs.Multiply})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = post(t, h, "/run", RunRequest{ProgramName: "missing"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = post(t, h, "/run", RunRequest{Program: "A 0 1 up A"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestRun_HeadOutOfRange(t *testing.T) {
	h := newTestHandler(t)

	for _, head := range []int{20_000_000, -2, 3} {
		w := post(t, h, "/run", RunRequest{Program: "A * * * halt", Tape: "01", Head: head})
		assert.Equal(t, http.StatusBadRequest, w.Code, "head %d", head)
		assert.Contains(t, w.Body.String(), "head out of range")

		w = post(t, h, "/run/stream", RunRequest{Program: "A * * * halt", Tape: "01", Head: head})
		assert.Equal(t, http.StatusBadRequest, w.Code, "stream head %d", head)
	}

	w := post(t, h, "/run", RunRequest{Program: "A * * * halt", Tape: "01", Head: 2})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRun_TraceBound(t *testing.T) {
	t.Run("Default Bound", func(t *testing.T) {
		h := newTestHandler(t)
		w := post(t, h, "/run", RunRequest{Program: "A * * * A", Tape: strings.Repeat("1", 200), Trace: true})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Less(t, w.Body.Len(), DefaultMaxTraceBytes+(1<<20))

		var resp RunResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, domain.OutcomeStepLimitExceeded, resp.Result.Outcome)
		assert.Equal(t, DefaultMaxSteps, resp.Result.Steps)
		assert.Len(t, resp.Trace, DefaultMaxTraceSteps+1)
		assert.True(t, resp.TraceTruncated)
	})

	t.Run("Custom Bound", func(t *testing.T) {
		h := newTestHandler(t, WithTraceLimits(10, 0))
		w := post(t, h, "/run", RunRequest{Program: "A * * * A", Tape: "1", MaxSteps: 50, Trace: true})
		require.Equal(t, http.StatusOK, w.Code)

		var resp RunResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Trace, 11)
		assert.Equal(t, "Step 0010: State=A, Head=0, Tape=1", resp.Trace[10])
		assert.True(t, resp.TraceTruncated)
	})

	t.Run("Complete Trace", func(t *testing.T) {
		h := newTestHandler(t, WithTraceLimits(10, 0))
		w := post(t, h, "/run", RunRequest{ProgramName: programs.BusyBeaver2, Trace: true})
		require.Equal(t, http.StatusOK, w.Code)

		var resp RunResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Trace, 8)
		assert.False(t, resp.TraceTruncated)
		assert.NotContains(t, w.Body.String(), "trace_truncated")
	})
}

func TestRunStream(t *testing.T) {
	h := newTestHandler(t)

	w := post(t, h, "/run/stream", RunRequest{Program: "A 0 1 r A\n", Tape: "0"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	body := w.Body.String()
	assert.Equal(t, 3, strings.Count(body, "event: step\n"))
	assert.Contains(t, body, "event: no_transition\ndata: {\"state\":\"A\",\"read\":\"B\"}")
	assert.Contains(t, body, "event: result\n")
	assert.Less(t, strings.Index(body, "event: no_transition"), strings.Index(body, "event: result"))
}

func TestRuns_NotFound(t *testing.T) {
	w := get(newTestHandler(t), "/runs/abc")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = get(newTestHandler(t, WithStore(memory.NewStore())), "/runs/abc")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPrograms(t *testing.T) {
	h := newTestHandler(t)

	w := get(h, "/programs")
	require.Equal(t, http.StatusOK, w.Code)
	var names []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &names))
	assert.Contains(t, names, programs.Multiply)

	w = get(h, "/programs/"+programs.BusyBeaver2+"/graph")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "graph LR\n"))
	assert.Contains(t, w.Body.String(), `s_a(("a"))`)

	w = get(h, "/programs/nope/graph")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := newTestHandler(t, WithMetrics(observability.NewMetrics(reg), reg))

	w := post(t, h, "/run", RunRequest{ProgramName: programs.BusyBeaver2})
	require.Equal(t, http.StatusOK, w.Code)

	w = get(h, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `turing_runs_total{outcome="halted"} 1`)
	assert.Contains(t, w.Body.String(), "turing_steps_total 6")
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest("OPTIONS", "/run", nil)
	w := httptest.NewRecorder()
	newTestHandler(t).ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
