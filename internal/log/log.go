package log

import (
	"context"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/cottand/pixl/frontend/ir"
)

var (
	sectionsMu      sync.RWMutex
	enabledSections = []string{
		"simplify",
	}
)

var level = new(slog.LevelVar)

var LoggerOpts = &slog.HandlerOptions{
	AddSource: true,
	Level:     level,
	ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == "time" {
			return slog.Attr{}
		}
		return a
	},
}

var DefaultLogger = slog.New(&filteringHandler{underlying: ir.SlogHandler(slog.NewTextHandler(os.Stderr, LoggerOpts))})

func init() {
	level.Set(slog.LevelError)
}

// SetLevel changes the level of DefaultLogger and every logger derived from it.
func SetLevel(l slog.Level) {
	level.Set(l)
}

// EnableSections replaces the sections whose records below Warn get logged.
// A section also enables its subsections, so "simplify" enables
// "simplify.scope".
func EnableSections(sections ...string) {
	sectionsMu.Lock()
	defer sectionsMu.Unlock()
	enabledSections = slices.Clone(sections)
}

func sectionEnabled(section string) bool {
	sectionsMu.RLock()
	defer sectionsMu.RUnlock()
	return slices.ContainsFunc(enabledSections, func(enabled string) bool {
		return section == enabled || strings.HasPrefix(section, enabled+".")
	})
}

var _ slog.Handler = &filteringHandler{}

type filteringHandler struct {
	underlying slog.Handler
	// section set through WithAttrs, e.g. by logger.With("section", "facts")
	section string
}

func (f filteringHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return f.underlying.Enabled(ctx, level)
}

func (f filteringHandler) Handle(ctx context.Context, record slog.Record) error {
	if record.Level >= slog.LevelWarn {
		return f.underlying.Handle(ctx, record)
	}
	wantSection := f.section != "" && sectionEnabled(f.section)
	if !wantSection {
		record.Attrs(func(attr slog.Attr) bool {
			wantSection = attr.Key == "section" && sectionEnabled(attr.Value.String())
			// iterate as long as we have not found our section
			return !wantSection
		})
	}
	if !wantSection {
		return nil
	}
	return f.underlying.Handle(ctx, record)
}

func (f filteringHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	section := f.section
	for _, attr := range attrs {
		if attr.Key == "section" {
			section = attr.Value.String()
		}
	}
	return &filteringHandler{
		underlying: f.underlying.WithAttrs(attrs),
		section:    section,
	}
}

func (f filteringHandler) WithGroup(name string) slog.Handler {
	return &filteringHandler{
		underlying: f.underlying.WithGroup(name),
		section:    f.section,
	}
}
