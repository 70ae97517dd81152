package causality

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"FCCMonitorAPI/internal/logger"
)

// OverrideKey is the settings key under which an imported graph is persisted.
const OverrideKey = "fcc.causality.graph"

// KeyValueStore persists opaque values by key.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Store owns the active causality graph. The zero value is not usable; use NewStore.
type Store struct {
	kv    KeyValueStore
	log   *logger.Logger
	mu    sync.RWMutex
	graph Graph
}

// NewStore returns a store holding the default graph. Call Load to apply a persisted override.
func NewStore(kv KeyValueStore, log *logger.Logger) *Store {
	return &Store{
		kv:    kv,
		log:   log,
		graph: DefaultGraph(),
	}
}

// Load applies the persisted override if there is one. A missing or unreadable
// override leaves the default graph in place and is only logged.
func (s *Store) Load(ctx context.Context) {
	raw, found, err := s.kv.Get(ctx, OverrideKey)
	if err != nil {
		s.log.Warn("Failed to read causality override, using default graph: %v", err)
		return
	}
	if !found {
		s.log.Info("No causality override stored, using default graph (%d links)", len(defaultLinks))
		return
	}

	g, err := ParseGraph(raw)
	if err != nil {
		s.log.Error("Stored causality override is invalid, using default graph: %v", err)
		return
	}

	s.mu.Lock()
	s.graph = g
	s.mu.Unlock()

	s.log.Info("Loaded causality override: version=%s, links=%d", g.Version, len(g.Links))
}

// Graph returns a copy of the active graph.
func (s *Store) Graph() Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph.Clone()
}

// FindCausalChain resolves target against the active graph.
func (s *Store) FindCausalChain(target string) []Link {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return FindCausalChain(s.graph, target)
}

// Export serialises the active graph.
func (s *Store) Export() ([]byte, error) {
	g := s.Graph()
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal causality graph: %w", err)
	}
	return data, nil
}

// Import replaces the active graph with data and persists it. On any error the
// active graph is unchanged.
func (s *Store) Import(ctx context.Context, data []byte) (Graph, error) {
	g, err := ParseGraph(data)
	if err != nil {
		s.log.Warn("Rejected causality import: %v", err)
		return Graph{}, err
	}

	normalized, err := json.Marshal(g)
	if err != nil {
		return Graph{}, fmt.Errorf("failed to marshal causality graph: %w", err)
	}
	if err := s.kv.Put(ctx, OverrideKey, normalized); err != nil {
		return Graph{}, fmt.Errorf("failed to persist causality graph: %w", err)
	}

	s.mu.Lock()
	s.graph = g
	s.mu.Unlock()

	s.log.Info("Imported causality graph: version=%s, links=%d", g.Version, len(g.Links))
	return g.Clone(), nil
}

// Reset restores the default graph and removes the persisted override.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	s.graph = DefaultGraph()
	s.mu.Unlock()

	if err := s.kv.Delete(ctx, OverrideKey); err != nil {
		return fmt.Errorf("failed to clear causality override: %w", err)
	}

	s.log.Info("Causality graph reset to default")
	return nil
}
