// Package algorithms finds several distinct routing paths from each customer
// to its designated terminal through nearby line elements.
package algorithms

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/dd0wney/cluso-gridplan/pkg/logging"
	"github.com/dd0wney/cluso-gridplan/pkg/metrics"
	"github.com/dd0wney/cluso-gridplan/pkg/network"
)

var (
	ErrNotCustomer     = errors.New("algorithms: element is not a customer")
	ErrUnknownTerminal = errors.New("algorithms: customer has no usable terminal")
	ErrInvalidOptions  = errors.New("algorithms: invalid search options")
)

// EpisodeOutcome is the result of one search episode.
type EpisodeOutcome int

const (
	// OutcomeFound means a new distinct path was accepted.
	OutcomeFound EpisodeOutcome = iota
	// OutcomeDuplicate means the episode only reached paths already recorded.
	OutcomeDuplicate
	// OutcomeExhausted means the open list emptied before the terminal was reached.
	OutcomeExhausted
)

func (o EpisodeOutcome) String() string {
	switch o {
	case OutcomeFound:
		return "found"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Engine runs multi-path searches over one element store.
type Engine struct {
	store   *network.Store
	opts    Options
	lines   []network.Element
	logger  logging.Logger
	metrics *metrics.Registry
	workers int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger. The default discards output.
func WithLogger(l logging.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithMetrics records episode outcomes into r.
func WithMetrics(r *metrics.Registry) EngineOption {
	return func(e *Engine) {
		e.metrics = r
	}
}

// WithWorkers lets FindAllPaths search up to n customers at once. Each
// customer owns its weight table, so searches share no mutable state.
func WithWorkers(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// NewEngine creates a search engine.
func NewEngine(store *network.Store, opts Options, options ...EngineOption) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}

	e := &Engine{
		store:   store,
		opts:    opts,
		lines:   store.OfType(network.Line),
		logger:  logging.NewNopLogger(),
		workers: 1,
	}
	for _, opt := range options {
		opt(e)
	}
	e.logger = e.logger.With(logging.Component("search"))
	return e, nil
}

// Options returns the engine's options.
func (e *Engine) Options() Options {
	return e.opts
}

// Search is one customer's search session. Its weight table persists across
// episodes and is discarded with the session.
type Search struct {
	engine     *Engine
	start      network.Element
	target     network.Element
	candidates []network.Element
	weights    map[string]float64
	paths      []Path
	episodes   int
}

// NewSearch opens a search session for customer.
func (e *Engine) NewSearch(customer string) (*Search, error) {
	start, err := e.store.Lookup(customer)
	if err != nil {
		return nil, err
	}
	if start.Type != network.Customer {
		return nil, fmt.Errorf("%w: %s is a %s", ErrNotCustomer, customer, start.Type)
	}

	target, ok := e.store.Get(start.AssignedTerminal)
	if !ok || target.Type != network.Terminal {
		return nil, fmt.Errorf("%w: customer %s names %q", ErrUnknownTerminal, customer, start.AssignedTerminal)
	}

	candidates := make([]network.Element, 0, len(e.lines)+1)
	candidates = append(candidates, e.lines...)
	candidates = append(candidates, target)

	return &Search{
		engine:     e,
		start:      start,
		target:     target,
		candidates: candidates,
		weights:    make(map[string]float64),
	}, nil
}

// Paths returns the distinct paths accepted so far, in discovery order.
func (s *Search) Paths() []Path {
	out := make([]Path, len(s.paths))
	copy(out, s.paths)
	return out
}

// Episodes returns how many episodes the session has run.
func (s *Search) Episodes() int {
	return s.episodes
}

// Weight returns the current edge cost of an element in this session.
func (s *Search) Weight(name string) float64 {
	if w, ok := s.weights[name]; ok {
		return w
	}
	return s.engine.opts.BaseWeight
}

// Next runs one episode. A found path is recorded and its elements become
// more expensive for later episodes.
func (s *Search) Next() (Path, EpisodeOutcome) {
	s.episodes++
	opts := s.engine.opts

	startNode := newNode(nil, s.start, 0)
	startNode.h = startNode.distance(s.target)
	startNode.f = startNode.h

	open := []*node{startNode}
	closed := make(map[string]bool)
	closedCount := 0
	sawDuplicate := false

	for len(open) > 0 {
		cur, idx := open[0], 0
		for i, n := range open {
			if n.f < cur.f {
				cur, idx = n, i
			}
		}
		open = append(open[:idx], open[idx+1:]...)
		closed[cur.name()] = true
		closedCount++

		if cur.name() == s.target.Name {
			p := cur.trace()
			if !containsPath(s.paths, p) {
				s.accept(p)
				return p, OutcomeFound
			}
			if !sawDuplicate && opts.EscalateDuplicates {
				s.escalate(p)
			}
			sawDuplicate = true
			if !opts.LegacyOpenList {
				return Path{}, OutcomeDuplicate
			}
			// Legacy open lists may still hold other entries for the target.
			continue
		}

		for _, cand := range s.candidates {
			if closed[cand.Name] || cand.Name == cur.name() {
				continue
			}
			if cur.distance(cand) >= opts.MaxConnectDistance {
				continue
			}
			// No direct customer to terminal hop.
			if closedCount == 1 && cand.Name == s.target.Name {
				continue
			}

			child := newNode(cur, cand, s.Weight(cand.Name))
			tempG := child.g + cur.g + cur.distance(cand)

			if opts.LegacyOpenList {
				child.h = cur.distance(s.target)
				for _, o := range open {
					if o.is(child) && tempG < o.g {
						o.g = tempG
						o.f = o.g + o.h
						o.parent = cur
					}
				}
				child.g = tempG
				child.f = child.g + child.h
				open = append(open, child)
				continue
			}

			child.h = child.distance(s.target)
			if existing := findOpen(open, child); existing != nil {
				if tempG < existing.g {
					existing.g = tempG
					existing.f = existing.g + existing.h
					existing.parent = cur
				}
				continue
			}
			child.g = tempG
			child.f = child.g + child.h
			open = append(open, child)
		}
	}

	if sawDuplicate {
		return Path{}, OutcomeDuplicate
	}
	return Path{}, OutcomeExhausted
}

func (s *Search) accept(p Path) {
	s.paths = append(s.paths, p)
	s.escalate(p)
}

// escalate pins unused elements of p at the base weight and multiplies the
// weight of elements already used.
func (s *Search) escalate(p Path) {
	for _, name := range p.Names() {
		if w, ok := s.weights[name]; ok {
			s.weights[name] = w * s.engine.opts.WeightMultiplier
		} else {
			s.weights[name] = s.engine.opts.BaseWeight
		}
	}
}

func findOpen(open []*node, n *node) *node {
	for _, o := range open {
		if o.is(n) {
			return o
		}
	}
	return nil
}

// FindPaths runs MaxPaths episodes for customer and returns the distinct
// paths found. Duplicate and exhausted episodes yield nothing.
func (e *Engine) FindPaths(customer string) ([]Path, error) {
	s, err := e.NewSearch(customer)
	if err != nil {
		return nil, err
	}

	log := e.logger.With(logging.Customer(customer), logging.Terminal(s.target.Name))
	for i := 0; i < e.opts.MaxPaths; i++ {
		p, outcome := s.Next()
		e.metrics.RecordEpisode(outcome.String())
		if outcome == OutcomeFound {
			log.Debug("search episode finished",
				logging.Episode(i+1),
				logging.String("outcome", outcome.String()),
				logging.String("path", p.String()),
				logging.Float64("length", p.Length()))
			continue
		}
		log.Debug("search episode finished",
			logging.Episode(i+1),
			logging.String("outcome", outcome.String()))
	}

	paths := s.Paths()
	e.metrics.RecordCustomerSearch(len(paths))
	return paths, nil
}

// FindAllPaths searches every customer in store order and concatenates the
// results in that order. Customers without a usable terminal are logged and
// skipped; they end up with no paths.
func (e *Engine) FindAllPaths(ctx context.Context) ([]Path, error) {
	customers := e.store.Names(network.Customer)
	results := make([][]Path, len(customers))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, c := range customers {
		i, c := i, c
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			paths, err := e.FindPaths(c)
			if errors.Is(err, ErrUnknownTerminal) {
				e.logger.Warn("customer skipped", logging.Customer(c), logging.Error(err))
				e.metrics.RecordCustomerSkipped()
				return nil
			}
			if err != nil {
				return fmt.Errorf("find paths for %s: %w", c, err)
			}
			results[i] = paths
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	all := make([]Path, 0)
	for _, paths := range results {
		all = append(all, paths...)
	}
	return all, nil
}
