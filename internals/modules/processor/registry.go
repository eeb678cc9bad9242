package processor

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

const (
	DefaultID    = "default"
	HTTPStatusID = "http_status"
)

var ErrUnknownProcessor = errors.New("unknown processor")

type Definition struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// Registry maps processor ids to processors. It is filled at startup and
// only read afterwards.
type Registry struct {
	mu         sync.RWMutex
	processors map[string]Processor
	logger     *zerolog.Logger
}

func NewRegistry(logger *zerolog.Logger) *Registry {
	l := logger.With().Str("component", "processor.registry").Logger()
	return &Registry{
		processors: make(map[string]Processor),
		logger:     &l,
	}
}

func (r *Registry) Register(p Processor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID() == "" {
		return errors.New("processor id must not be empty")
	}
	if _, exists := r.processors[p.ID()]; exists {
		return fmt.Errorf("processor %q already registered", p.ID())
	}
	r.processors[p.ID()] = p
	return nil
}

func (r *Registry) MustRegister(ps ...Processor) {
	for _, p := range ps {
		if err := r.Register(p); err != nil {
			panic(err)
		}
	}
}

// Resolve returns the processor registered under id. An empty or unknown
// id resolves to the default processor; the unknown case is logged.
func (r *Registry) Resolve(id string) Processor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if id != "" {
		if p, ok := r.processors[id]; ok {
			return p
		}
		r.logger.Warn().
			Str("processor_id", id).
			Str("fallback", DefaultID).
			Msg("unknown processor, falling back to default")
	}
	return r.processors[DefaultID]
}

// Lookup is the strict form of Resolve.
func (r *Registry) Lookup(id string) (Processor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if id == "" {
		id = DefaultID
	}
	p, ok := r.processors[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProcessor, id)
	}
	return p, nil
}

func (r *Registry) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]Definition, 0, len(r.processors))
	for _, p := range r.processors {
		defs = append(defs, Definition{ID: p.ID(), Label: p.Label(), Description: p.Description()})
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
	return defs
}
