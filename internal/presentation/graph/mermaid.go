package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/turing/pkg/domain"
)

// GraphOverlay contains run data to visualize on the graph.
type GraphOverlay struct {
	VisitedStates []string
	CurrentState  string
}

// OverlayFromTrace marks every state a recorded run passed through and the
// state it ended in.
func OverlayFromTrace(trace []domain.Configuration) *GraphOverlay {
	if len(trace) == 0 {
		return nil
	}
	overlay := &GraphOverlay{CurrentState: trace[len(trace)-1].State}
	for _, cfg := range trace {
		overlay.VisitedStates = append(overlay.VisitedStates, cfg.State)
	}
	return overlay
}

type edge struct {
	from, to string
	labels   []string
}

// GenerateMermaid produces a Mermaid flowchart of the program's transition graph.
// It applies semantic styling:
// - Initial state: ((Circle))
// - Final state: (((Double circle)))
// - Default: [Rectangle]
// Rules sharing the same source and target collapse into one edge whose label
// lists every read/write,move triple; wildcard rules are drawn dotted.
// It also applies overlay styles (Visited/Current) if provided.
func GenerateMermaid(prog *domain.Program, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for _, state := range prog.States() {
		opener, closer := "[", "]"
		switch {
		case state == prog.InitialState():
			opener, closer = "((", "))"
		case prog.IsFinal(state):
			opener, closer = "(((", ")))"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", sanitizeMermaidID(state), opener, escapeLabel(state), closer))
	}

	var edges []*edge
	var wild []*edge
	index := make(map[[2]string]*edge)
	for _, r := range prog.Rules() {
		label := fmt.Sprintf("%s/%s,%s", r.Read, r.Write, r.Move.Token())
		if r.IsWildcard() {
			wild = append(wild, &edge{from: r.State, to: r.NextState, labels: []string{label}})
			continue
		}
		k := [2]string{r.State, r.NextState}
		e, ok := index[k]
		if !ok {
			e = &edge{from: r.State, to: r.NextState}
			index[k] = e
			edges = append(edges, e)
		}
		e.labels = append(e.labels, label)
	}

	for _, e := range edges {
		sb.WriteString(fmt.Sprintf("    %s -- \"%s\" --> %s\n",
			sanitizeMermaidID(e.from), escapeLabel(strings.Join(e.labels, " ")), sanitizeMermaidID(e.to)))
	}
	for _, e := range wild {
		sb.WriteString(fmt.Sprintf("    %s -. \"%s\" .-> %s\n",
			sanitizeMermaidID(e.from), escapeLabel(e.labels[0]), sanitizeMermaidID(e.to)))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, state := range overlay.VisitedStates {
			safeID := sanitizeMermaidID(state)
			if !visitedSet[safeID] && state != "" {
				visitedSet[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
			}
		}

		if overlay.CurrentState != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.CurrentState)))
		}
	}

	return sb.String()
}

// sanitizeMermaidID keeps ASCII letters, digits and underscores. The s_
// prefix keeps numeric state names from clashing with Mermaid syntax.
func sanitizeMermaidID(id string) string {
	var b strings.Builder
	b.WriteString("s_")
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// escapeLabel replaces characters Mermaid treats specially inside quoted labels.
func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, "#", "#35;")
	return strings.ReplaceAll(s, "\"", "#quot;")
}
