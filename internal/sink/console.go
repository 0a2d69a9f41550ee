package sink

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/specialistvlad/opgrid/internal/progress"
)

// Console renders snapshots as one line per change:
//
//	LoadMods (12.5%) > Source Modification (40.0%)
type Console struct {
	w       io.Writer
	stage   *color.Color
	percent *color.Color
	done    *color.Color

	mu      sync.Mutex
	last    string
	printed bool
}

// NewConsole returns a console renderer writing to w. noColor forces plain
// output regardless of the terminal.
func NewConsole(w io.Writer, noColor bool) *Console {
	c := &Console{
		w:       w,
		stage:   color.New(color.Bold),
		percent: color.New(color.FgCyan),
		done:    color.New(color.FgGreen),
	}
	if noColor {
		c.stage.DisableColor()
		c.percent.DisableColor()
		c.done.DisableColor()
	}
	return c
}

// Sink returns the renderer as a progress.Sink. Repeated identical lines are
// skipped.
func (c *Console) Sink() progress.Sink {
	return func(_ context.Context, stages []string, fractions []float64) error {
		line := c.render(stages, fractions)

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.printed && line == c.last {
			return nil
		}
		c.last, c.printed = line, true
		_, err := fmt.Fprintln(c.w, line)
		return err
	}
}

func (c *Console) render(stages []string, fractions []float64) string {
	parts := make([]string, len(stages))
	for i, name := range stages {
		pct := c.percent
		if fractions[i] >= 1 {
			pct = c.done
		}
		parts[i] = fmt.Sprintf("%s %s", c.stage.Sprint(name), pct.Sprintf("(%.1f%%)", fractions[i]*100))
	}
	return strings.Join(parts, " > ")
}
