package extensions

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/extspi-go/extspi"
	"github.com/m1gwings/treedrawer/tree"
)

// TraceDebugExtension renders a Director's build trace as a tree when
// a build fails, adapted from the teacher package's GraphDebugExtension:
// the same treedrawer-based horizontal rendering and slog.Handler
// pluggability, applied to extspi's flat build trace (grouped by
// contract) instead of a reactive executor dependency graph, which
// this domain has no equivalent of.
type TraceDebugExtension struct {
	extspi.BaseBuildExtension
	director *extspi.Director
	logger   *slog.Logger
}

// NewTraceDebugExtension creates a trace-debug BuildExtension that
// logs through logHandler whenever a build fails.
func NewTraceDebugExtension(director *extspi.Director, logHandler slog.Handler) *TraceDebugExtension {
	return &TraceDebugExtension{
		BaseBuildExtension: extspi.NewBaseBuildExtension("trace-debug"),
		director:           director,
		logger:             slog.New(logHandler),
	}
}

func (e *TraceDebugExtension) Wrap(next func() (any, error), ev extspi.BuildEvent) (any, error) {
	return next()
}

// OnError logs the Director's build trace, rendered as a tree grouped
// by contract, whenever a build fails.
func (e *TraceDebugExtension) OnError(err error, ev extspi.BuildEvent) {
	e.logger.Error("build failed",
		"contract", ev.Contract.String(),
		"name", ev.Name,
		"error", err.Error(),
		"trace", e.formatTrace())
}

// formatTrace renders e.director's build trace as a horizontal tree:
// one root per contract, one child per recorded attempt, newest last.
func (e *TraceDebugExtension) formatTrace() string {
	nodes := e.director.BuildTrace()
	if len(nodes) == 0 {
		return "\n(empty - no builds recorded)"
	}

	byContract := make(map[string][]extspi.BuildTraceNode)
	var contracts []string
	for _, n := range nodes {
		if _, ok := byContract[n.Contract]; !ok {
			contracts = append(contracts, n.Contract)
		}
		byContract[n.Contract] = append(byContract[n.Contract], n)
	}
	sort.Strings(contracts)

	root := tree.NewTree(tree.NodeString("Director " + e.director.ID()))
	for _, c := range contracts {
		contractNode := root.AddChild(tree.NodeString(c))
		for _, n := range byContract[c] {
			label := fmt.Sprintf("%s (%s, %v)", n.Name, n.Outcome, n.Duration)
			if n.Outcome == "failed" {
				label += " [FAILED]"
			}
			contractNode.AddChild(tree.NodeString(label))
		}
	}

	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(root.String())
	return sb.String()
}

// SilentHandler is a slog.Handler that discards all log output.
type SilentHandler struct{}

func NewSilentHandler() *SilentHandler { return &SilentHandler{} }

func (h *SilentHandler) Enabled(ctx context.Context, level slog.Level) bool { return false }
func (h *SilentHandler) Handle(ctx context.Context, record slog.Record) error {
	return nil
}
func (h *SilentHandler) WithAttrs(attrs []slog.Attr) slog.Handler { return h }
func (h *SilentHandler) WithGroup(name string) slog.Handler      { return h }

// HumanHandler is a slog.Handler that formats build-failure logs for
// human readability, with the trace rendered on its own block.
type HumanHandler struct {
	writer io.Writer
	level  slog.Level
}

func NewHumanHandler(writer io.Writer, level slog.Level) *HumanHandler {
	return &HumanHandler{writer: writer, level: level}
}

func (h *HumanHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *HumanHandler) Handle(ctx context.Context, record slog.Record) error {
	if record.Message != "build failed" {
		if _, err := fmt.Fprintf(h.writer, "[%s] %s\n", record.Level, record.Message); err != nil {
			return err
		}
		return nil
	}

	var contract, name, errMsg, trace string
	record.Attrs(func(a slog.Attr) bool {
		switch a.Key {
		case "contract":
			contract = a.Value.String()
		case "name":
			name = a.Value.String()
		case "error":
			errMsg = a.Value.String()
		case "trace":
			trace = a.Value.String()
		}
		return true
	})

	lines := []string{
		"",
		strings.Repeat("=", 70),
		"[TraceDebug] Build Failed",
		strings.Repeat("=", 70),
		fmt.Sprintf("Contract: %s", contract),
		fmt.Sprintf("Name: %s", name),
		fmt.Sprintf("Error: %s", errMsg),
		fmt.Sprintf("Trace:%s", trace),
		strings.Repeat("=", 70),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(h.writer, line); err != nil {
			return err
		}
	}
	return nil
}

func (h *HumanHandler) WithAttrs(attrs []slog.Attr) slog.Handler { return h }
func (h *HumanHandler) WithGroup(name string) slog.Handler      { return h }
