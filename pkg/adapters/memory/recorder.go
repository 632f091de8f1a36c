package memory

import (
	"sync"

	"github.com/aretw0/turing/pkg/domain"
)

// Entry is one captured trace item: either a configuration or a
// no-transition diagnostic.
type Entry struct {
	Config     *domain.Configuration
	Diagnostic *domain.Key
}

// entryOverhead approximates the bytes an entry holds besides its strings.
const entryOverhead = 64

// Recorder implements ports.TraceSink by keeping every record in memory.
// With a budget set it also implements ports.BoundedSink: once the budget is
// spent further items are dropped and Truncated reports true.
type Recorder struct {
	mu         sync.Mutex
	entries    []Entry
	bytes      int
	maxEntries int
	maxBytes   int
	truncated  bool
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithMaxEntries keeps at most n items. Zero means no limit.
func WithMaxEntries(n int) RecorderOption {
	return func(r *Recorder) {
		r.maxEntries = max(n, 0)
	}
}

// WithMaxBytes keeps items until their approximate size reaches n bytes.
// Zero means no limit.
func WithMaxBytes(n int) RecorderOption {
	return func(r *Recorder) {
		r.maxBytes = max(n, 0)
	}
}

// NewRecorder creates an empty recorder.
func NewRecorder(opts ...RecorderOption) *Recorder {
	r := &Recorder{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record appends a configuration.
func (r *Recorder) Record(cfg domain.Configuration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.add(Entry{Config: &cfg}, len(cfg.State)+len(cfg.Tape))
}

// NoTransition appends a diagnostic entry.
func (r *Recorder) NoTransition(state string, symbol domain.Symbol) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.add(Entry{Diagnostic: &domain.Key{State: state, Read: symbol}}, len(state)+len(symbol))
}

func (r *Recorder) add(e Entry, size int) {
	size += entryOverhead
	if r.truncated || r.spent() || (r.maxBytes > 0 && r.bytes+size > r.maxBytes) {
		r.truncated = true
		return
	}
	r.entries = append(r.entries, e)
	r.bytes += size
}

func (r *Recorder) spent() bool {
	return (r.maxEntries > 0 && len(r.entries) >= r.maxEntries) ||
		(r.maxBytes > 0 && r.bytes >= r.maxBytes)
}

// Full reports whether the budget is spent. The engine asks right before it
// would emit a record, so a true answer also marks the trace as truncated.
func (r *Recorder) Full() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.spent() {
		r.truncated = true
	}
	return r.truncated
}

// Truncated reports whether any item was dropped because of the budget.
func (r *Recorder) Truncated() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.truncated
}

// Entries returns all captured items in arrival order.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Configurations returns only the configuration records.
func (r *Recorder) Configurations() []domain.Configuration {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Configuration, 0, len(r.entries))
	for _, e := range r.entries {
		if e.Config != nil {
			out = append(out, *e.Config)
		}
	}
	return out
}

// Last returns the most recent configuration.
func (r *Recorder) Last() (domain.Configuration, bool) {
	cfgs := r.Configurations()
	if len(cfgs) == 0 {
		return domain.Configuration{}, false
	}
	return cfgs[len(cfgs)-1], true
}

// Lines renders the captured trace in the same text form as the file sink.
func (r *Recorder) Lines() []string {
	entries := r.Entries()
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Diagnostic != nil {
			out = append(out, domain.NoTransitionLine(e.Diagnostic.State, e.Diagnostic.Read))
			continue
		}
		out = append(out, e.Config.String())
	}
	return out
}
