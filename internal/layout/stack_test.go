package layout

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOverlap_ZeroWhenRowFits(t *testing.T) {
	assert.Zero(t, Overlap(3, 100, 8, 500, 16))
	assert.Zero(t, Overlap(0, 100, 8, 50, 16))
	assert.Zero(t, Overlap(1, 100, 8, 50, 16), "a single card never overlaps")
}

func TestOverlap_RowFitsAfterOverlap(t *testing.T) {
	cases := []struct {
		name      string
		count     int
		width     float64
		gap       float64
		available float64
		padding   float64
	}{
		{name: "mild overflow", count: 5, width: 100, gap: 8, available: 450, padding: 16},
		{name: "heavy overflow", count: 20, width: 100, gap: 8, available: 450, padding: 16},
		{name: "no gap", count: 7, width: 80, gap: 0, available: 300, padding: 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := Overlap(tc.count, tc.width, tc.gap, tc.available, tc.padding)
			assert.Greater(t, o, 0.0)
			// N*W - (N-1)*O <= C - padding
			occupied := tc.width*float64(tc.count) - o*float64(tc.count-1)
			assert.LessOrEqual(t, occupied, tc.available-tc.padding+1e-9)
		})
	}
}

type fakeMeasurer struct {
	mu        sync.Mutex
	container float64
	child     float64
	rendered  bool
}

func (f *fakeMeasurer) ContainerWidth() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.container
}

func (f *fakeMeasurer) FirstChildWidth() (float64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.child, f.rendered
}

func (f *fakeMeasurer) set(container, child float64, rendered bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.container, f.child, f.rendered = container, child, rendered
}

func TestEngine_EstimatesWidthBeforeFirstRender(t *testing.T) {
	m := &fakeMeasurer{container: 450}
	e := NewEngine(m, 100, 8, 16, 10*time.Millisecond, nil)
	e.SetScale(1)
	e.SetCount(5)

	want := Overlap(5, 100, 8, 450, 16) // base width x scale
	assert.InDelta(t, want, e.Overlap(), 1e-9)
}

func TestEngine_SettleRemeasureCatchesLateLayout(t *testing.T) {
	m := &fakeMeasurer{container: 450}
	e := NewEngine(m, 100, 8, 16, 20*time.Millisecond, nil)
	defer e.Stop()
	e.SetCount(5)

	// The row renders between the immediate measure and the settle one.
	m.set(450, 120, true)
	e.Poke()
	m.set(450, 90, true)

	time.Sleep(80 * time.Millisecond)
	want := Overlap(5, 90, 8, 450, 16)
	assert.InDelta(t, want, e.Overlap(), 1e-9)
}

func TestEngine_NotifiesOnChange(t *testing.T) {
	m := &fakeMeasurer{container: 450, child: 100, rendered: true}
	var mu sync.Mutex
	var got []float64
	e := NewEngine(m, 100, 8, 16, 5*time.Millisecond, func(o float64) {
		mu.Lock()
		got = append(got, o)
		mu.Unlock()
	})
	defer e.Stop()

	e.SetCount(5) // overflows: change fires
	e.SetCount(2) // fits again: overlap back to zero

	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.GreaterOrEqual(t, len(got), 2)
	assert.Greater(t, got[0], 0.0)
	assert.Zero(t, got[len(got)-1])
}
