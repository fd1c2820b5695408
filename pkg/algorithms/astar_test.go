package algorithms

import (
	"context"
	"errors"
	"testing"

	"github.com/paulmach/orb"

	"github.com/dd0wney/cluso-gridplan/pkg/metrics"
	"github.com/dd0wney/cluso-gridplan/pkg/network"
)

func mustStore(t *testing.T, elements ...network.Element) *network.Store {
	t.Helper()
	s, err := network.NewStore(elements)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return s
}

func customer(name string, x, y float64, terminal string) network.Element {
	return network.Element{Name: name, Type: network.Customer, Geometry: orb.Point{x, y}, AssignedTerminal: terminal}
}

func terminal(name string, x, y float64) network.Element {
	return network.Element{Name: name, Type: network.Terminal, Geometry: orb.Point{x, y}}
}

func transformer(name string, x, y float64) network.Element {
	return network.Element{Name: name, Type: network.Transformer, Geometry: orb.Point{x, y}}
}

func line(name string, x1, y1, x2, y2 float64) network.Element {
	return network.Element{Name: name, Type: network.Line, Geometry: orb.LineString{{x1, y1}, {x2, y2}}}
}

// twoRoutes has a northern and a southern route from c1 to r1 that only
// touch each other at their ends when the reach is below 10.
func twoRoutes(t *testing.T) *network.Store {
	return mustStore(t,
		customer("c1", 0, 0, "r1"),
		line("la1", 0, 5, 50, 5),
		line("la2", 50, 5, 100, 5),
		line("lb1", 0, -5, 50, -5),
		line("lb2", 50, -5, 100, -5),
		terminal("r1", 100, 0),
		transformer("t1", 100, -20),
	)
}

func newTestEngine(t *testing.T, store *network.Store, mutate func(*Options), options ...EngineOption) *Engine {
	t.Helper()
	opts := DefaultOptions()
	if mutate != nil {
		mutate(&opts)
	}
	e, err := NewEngine(store, opts, options...)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return e
}

func names(p Path) string {
	return p.String()
}

func TestSearch_SingleLine(t *testing.T) {
	store := mustStore(t,
		customer("c1", 0, 10, "r1"),
		line("l1", 0, 5, 10, 5),
		terminal("r1", 10, 0),
		transformer("t1", 10, -20),
	)
	e := newTestEngine(t, store, nil)

	paths, err := e.FindPaths("c1")
	if err != nil {
		t.Fatalf("FindPaths failed: %v", err)
	}
	if len(paths) != 1 {
		t.Fatalf("Expected 1 path, got %d", len(paths))
	}
	if got := names(paths[0]); got != "c1, l1, r1" {
		t.Errorf("Expected path c1, l1, r1, got %s", got)
	}
}

func TestSearch_DuplicateEpisodes(t *testing.T) {
	e := newTestEngine(t, twoRoutes(t), func(o *Options) { o.MaxConnectDistance = 8 })

	s, err := e.NewSearch("c1")
	if err != nil {
		t.Fatalf("NewSearch failed: %v", err)
	}

	p, outcome := s.Next()
	if outcome != OutcomeFound {
		t.Fatalf("episode 1 outcome = %s, want found", outcome)
	}
	if got := names(p); got != "c1, la1, la2, r1" {
		t.Errorf("episode 1 path = %s", got)
	}

	// The first acceptance pins the weights at their base value, so every
	// later episode retraces the first path.
	for i := 2; i <= 3; i++ {
		if _, outcome := s.Next(); outcome != OutcomeDuplicate {
			t.Fatalf("episode %d outcome = %s, want duplicate", i, outcome)
		}
	}
	if w := s.Weight("la1"); w != 2 {
		t.Errorf("la1 weight = %f, want 2", w)
	}
	if len(s.Paths()) != 1 {
		t.Errorf("Expected 1 recorded path, got %d", len(s.Paths()))
	}
}

func TestSearch_EscalateDuplicatesDiversifies(t *testing.T) {
	e := newTestEngine(t, twoRoutes(t), func(o *Options) {
		o.MaxConnectDistance = 8
		o.EscalateDuplicates = true
	})

	s, err := e.NewSearch("c1")
	if err != nil {
		t.Fatalf("NewSearch failed: %v", err)
	}

	if _, outcome := s.Next(); outcome != OutcomeFound {
		t.Fatalf("episode 1 outcome = %s, want found", outcome)
	}
	if _, outcome := s.Next(); outcome != OutcomeDuplicate {
		t.Fatalf("episode 2 outcome = %s, want duplicate", outcome)
	}
	if w := s.Weight("la1"); w != 6 {
		t.Errorf("la1 weight after duplicate = %f, want 6", w)
	}

	p, outcome := s.Next()
	if outcome != OutcomeFound {
		t.Fatalf("episode 3 outcome = %s, want found", outcome)
	}
	if got := names(p); got != "c1, lb1, lb2, r1" {
		t.Errorf("episode 3 path = %s", got)
	}

	if len(s.Paths()) != 2 {
		t.Errorf("Expected 2 recorded paths, got %d", len(s.Paths()))
	}
	if w := s.Weight("lb1"); w != 2 {
		t.Errorf("lb1 weight = %f, want 2", w)
	}
	if w := s.Weight("r1"); w != 18 {
		t.Errorf("r1 weight = %f, want 18", w)
	}
}

func TestSearch_ReachTooShort(t *testing.T) {
	store := mustStore(t,
		customer("c1", 0, 50, "r1"),
		line("l1", 0, 5, 10, 5),
		terminal("r1", 10, 0),
	)
	e := newTestEngine(t, store, func(o *Options) { o.MaxConnectDistance = 20 })

	s, err := e.NewSearch("c1")
	if err != nil {
		t.Fatalf("NewSearch failed: %v", err)
	}
	if _, outcome := s.Next(); outcome != OutcomeExhausted {
		t.Errorf("outcome = %s, want exhausted", outcome)
	}

	paths, err := e.FindPaths("c1")
	if err != nil {
		t.Fatalf("FindPaths failed: %v", err)
	}
	if len(paths) != 0 {
		t.Errorf("Expected no paths, got %v", paths)
	}
}

func TestSearch_NoDirectCustomerToTerminal(t *testing.T) {
	store := mustStore(t,
		customer("c1", 0, 0, "r1"),
		terminal("r1", 1, 0),
		line("far", 500, 500, 600, 500),
	)
	e := newTestEngine(t, store, nil)

	paths, err := e.FindPaths("c1")
	if err != nil {
		t.Fatalf("FindPaths failed: %v", err)
	}
	if len(paths) != 0 {
		t.Errorf("Expected no paths without a line, got %v", paths)
	}
}

func TestSearch_DistanceIsExclusive(t *testing.T) {
	store := mustStore(t,
		customer("c1", 0, 10, "r1"),
		line("l1", 0, 0, 10, 0),
		terminal("r1", 10, 5),
	)

	exact := newTestEngine(t, store, func(o *Options) { o.MaxConnectDistance = 10 })
	if paths, _ := exact.FindPaths("c1"); len(paths) != 0 {
		t.Errorf("distance equal to reach must not connect, got %v", paths)
	}

	wider := newTestEngine(t, store, func(o *Options) { o.MaxConnectDistance = 10.5 })
	if paths, _ := wider.FindPaths("c1"); len(paths) != 1 {
		t.Errorf("Expected 1 path with a wider reach, got %v", paths)
	}
}

func TestNewSearch_Errors(t *testing.T) {
	store := mustStore(t,
		customer("c1", 0, 0, "r1"),
		customer("c2", 0, 0, "missing"),
		customer("c3", 0, 0, "l1"),
		line("l1", 0, 5, 10, 5),
		terminal("r1", 10, 0),
	)
	e := newTestEngine(t, store, nil)

	tests := []struct {
		name     string
		customer string
		want     error
	}{
		{"unknown element", "nope", network.ErrElementNotFound},
		{"not a customer", "l1", ErrNotCustomer},
		{"missing terminal", "c2", ErrUnknownTerminal},
		{"terminal is a line", "c3", ErrUnknownTerminal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := e.NewSearch(tt.customer); !errors.Is(err, tt.want) {
				t.Errorf("NewSearch(%s) error = %v, want %v", tt.customer, err, tt.want)
			}
		})
	}
}

func TestNewEngine_InvalidOptions(t *testing.T) {
	store := mustStore(t, terminal("r1", 0, 0))
	bad := []func(*Options){
		func(o *Options) { o.MaxPaths = 0 },
		func(o *Options) { o.MaxConnectDistance = 0 },
		func(o *Options) { o.BaseWeight = -1 },
		func(o *Options) { o.WeightMultiplier = 0.5 },
	}
	for i, mutate := range bad {
		opts := DefaultOptions()
		mutate(&opts)
		if _, err := NewEngine(store, opts); !errors.Is(err, ErrInvalidOptions) {
			t.Errorf("case %d: error = %v, want ErrInvalidOptions", i, err)
		}
	}
}

func TestFindAllPaths(t *testing.T) {
	store := mustStore(t,
		customer("c1", 0, 10, "r1"),
		customer("c2", 20, 10, "r1"),
		customer("c3", 40, 10, "gone"),
		line("l1", 0, 5, 10, 5),
		line("l2", 10, 5, 20, 5),
		terminal("r1", 10, 0),
		transformer("t1", 10, -20),
	)
	reg := metrics.NewRegistry()

	for _, workers := range []int{1, 4} {
		e := newTestEngine(t, store, func(o *Options) { o.MaxConnectDistance = 8 },
			WithMetrics(reg), WithWorkers(workers))

		paths, err := e.FindAllPaths(context.Background())
		if err != nil {
			t.Fatalf("FindAllPaths failed: %v", err)
		}
		if len(paths) == 0 {
			t.Fatal("Expected paths")
		}

		// Results keep customer order regardless of workers.
		seenC2 := false
		for _, p := range paths {
			switch p.Customer() {
			case "c1":
				if seenC2 {
					t.Errorf("workers=%d: c1 path after c2 path", workers)
				}
			case "c2":
				seenC2 = true
			default:
				t.Errorf("workers=%d: unexpected customer %s", workers, p.Customer())
			}
		}
		if !seenC2 {
			t.Errorf("workers=%d: no path for c2", workers)
		}
	}
}

func TestFindAllPaths_Cancelled(t *testing.T) {
	e := newTestEngine(t, twoRoutes(t), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := e.FindAllPaths(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

// The legacy open list re-inserts successors; it must still honour the
// endpoint and distinctness guarantees.
func TestSearch_LegacyOpenList(t *testing.T) {
	e := newTestEngine(t, twoRoutes(t), func(o *Options) {
		o.MaxConnectDistance = 12
		o.MaxPaths = 5
		o.LegacyOpenList = true
		o.EscalateDuplicates = true
	})

	paths, err := e.FindPaths("c1")
	if err != nil {
		t.Fatalf("FindPaths failed: %v", err)
	}
	if len(paths) == 0 {
		t.Fatal("Expected at least one path in legacy mode")
	}
	for i, p := range paths {
		if p.Customer() != "c1" || p.Terminal() != "r1" {
			t.Errorf("path %d = %s has wrong endpoints", i, p)
		}
		for j := i + 1; j < len(paths); j++ {
			if p.Equal(paths[j]) {
				t.Errorf("paths %d and %d are identical: %s", i, j, p)
			}
		}
	}
}
