package service

import (
	"context"

	"FCCMonitorAPI/internal/causality"
	"FCCMonitorAPI/internal/logger"
	"FCCMonitorAPI/internal/metrics"
	"FCCMonitorAPI/internal/models"
	"FCCMonitorAPI/internal/websocket"
)

// TagSource provides the current state of all tags.
type TagSource interface {
	Snapshot() map[string]models.Tag
}

// ChainLink is a causal link annotated with whether its cause is currently abnormal.
type ChainLink struct {
	causality.Link
	Critical bool `json:"critical"`
}

type CausalChain struct {
	TagID    string      `json:"tag_id"`
	Links    []ChainLink `json:"links"`
	Upstream []string    `json:"upstream"`
}

type GraphSummary struct {
	Version string `json:"version"`
	Links   int    `json:"links"`
}

type ICausalityService interface {
	Chain(tagID string) CausalChain
	Export() ([]byte, error)
	Import(ctx context.Context, data []byte) (GraphSummary, error)
	Reset(ctx context.Context) (GraphSummary, error)
}

type CausalityService struct {
	store *causality.Store
	tags  TagSource
	hub   Broadcaster
	log   *logger.Logger
}

func NewCausalityService(store *causality.Store, tags TagSource, hub Broadcaster, log *logger.Logger) *CausalityService {
	return &CausalityService{
		store: store,
		tags:  tags,
		hub:   orNop(hub),
		log:   log,
	}
}

// Chain resolves the upstream chain of tagID against the active graph.
// A tag with no recorded causes yields an empty chain.
func (s *CausalityService) Chain(tagID string) CausalChain {
	links := s.store.FindCausalChain(tagID)

	var current map[string]models.Tag
	if s.tags != nil {
		current = s.tags.Snapshot()
	}

	out := CausalChain{
		TagID:    tagID,
		Links:    make([]ChainLink, 0, len(links)),
		Upstream: causality.UpstreamTags(links),
	}
	for _, l := range links {
		out.Links = append(out.Links, ChainLink{Link: l, Critical: causality.IsCriticalLink(l, current)})
	}
	return out
}

func (s *CausalityService) Graph() causality.Graph {
	return s.store.Graph()
}

func (s *CausalityService) Export() ([]byte, error) {
	return s.store.Export()
}

// Import replaces the active graph. Invalid documents leave the graph untouched
// and return an error wrapping causality.ErrInvalidGraph.
func (s *CausalityService) Import(ctx context.Context, data []byte) (GraphSummary, error) {
	g, err := s.store.Import(ctx, data)
	if err != nil {
		metrics.GraphImport(false)
		return GraphSummary{}, err
	}

	metrics.GraphImport(true)
	summary := GraphSummary{Version: g.Version, Links: len(g.Links)}
	s.hub.Broadcast(websocket.TypeCausalityUpdated, summary)
	return summary, nil
}

// Reset restores the built-in graph.
func (s *CausalityService) Reset(ctx context.Context) (GraphSummary, error) {
	if err := s.store.Reset(ctx); err != nil {
		return GraphSummary{}, err
	}

	g := s.store.Graph()
	summary := GraphSummary{Version: g.Version, Links: len(g.Links)}
	s.hub.Broadcast(websocket.TypeCausalityUpdated, summary)
	s.log.Info("Causality graph reset by request")
	return summary, nil
}
