// Package layout computes the auto-stacking overlap for same-zone card
// rows. It is pure geometry: no game-state dependency beyond the object
// count it is handed.
package layout

import (
	"sync"
	"time"
)

// Overlap returns the per-card negative left-margin needed so count
// cards of cardWidth with gap between them fit into available width
// minus padding. Zero when the row already fits.
func Overlap(count int, cardWidth, gap, available, padding float64) float64 {
	if count <= 1 {
		return 0
	}
	natural := cardWidth*float64(count) + gap*float64(count-1)
	usable := available - padding
	if natural <= usable {
		return 0
	}
	overlap := (natural - usable) / float64(count-1)
	if overlap < 0 {
		overlap = 0
	}
	return overlap
}

// Measurer reports the rendered row geometry. FirstChildWidth returns
// false when nothing is rendered yet, in which case the engine falls
// back to base width times scale.
type Measurer interface {
	ContainerWidth() float64
	FirstChildWidth() (float64, bool)
}

type Engine struct {
	mu sync.Mutex

	measurer  Measurer
	baseWidth float64
	gap       float64
	padding   float64
	settle    time.Duration

	scale    float64
	count    int
	overlap  float64
	pending  *time.Timer
	onChange func(float64)
}

func NewEngine(m Measurer, baseWidth, gap, padding float64, settle time.Duration, onChange func(float64)) *Engine {
	return &Engine{
		measurer:  m,
		baseWidth: baseWidth,
		gap:       gap,
		padding:   padding,
		settle:    settle,
		scale:     1,
		onChange:  onChange,
	}
}

func (e *Engine) Overlap() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.overlap
}

// SetCount records a changed object count and remeasures. Callers also
// invoke it when a tap state flips, since rotation changes rendered
// width.
func (e *Engine) SetCount(n int) {
	e.mu.Lock()
	e.count = n
	e.mu.Unlock()
	e.Poke()
}

func (e *Engine) SetScale(s float64) {
	e.mu.Lock()
	e.scale = s
	e.mu.Unlock()
	e.Poke()
}

// Poke remeasures once immediately and once after the settle delay, so
// a resize is caught both before and after the layout settles.
// Superseding pokes collapse into the single pending timer.
func (e *Engine) Poke() {
	e.remeasure()
	e.mu.Lock()
	if e.pending != nil {
		e.pending.Stop()
	}
	e.pending = time.AfterFunc(e.settle, e.remeasure)
	e.mu.Unlock()
}

// Stop cancels any pending settle remeasure.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pending != nil {
		e.pending.Stop()
		e.pending = nil
	}
}

func (e *Engine) remeasure() {
	e.mu.Lock()
	width, ok := e.measurer.FirstChildWidth()
	if !ok {
		width = e.baseWidth * e.scale
	}
	next := Overlap(e.count, width, e.gap, e.measurer.ContainerWidth(), e.padding)
	changed := next != e.overlap
	e.overlap = next
	onChange := e.onChange
	e.mu.Unlock()
	if changed && onChange != nil {
		onChange(next)
	}
}
