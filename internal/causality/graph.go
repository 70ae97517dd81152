// Package causality holds the FCC cause→effect graph and resolves upstream causal chains.
package causality

import (
	"encoding/json"
	"errors"
	"fmt"
)

// DefaultVersion is the version of the built-in graph.
const DefaultVersion = "1.0"

var ErrInvalidGraph = errors.New("invalid causality graph")

// Link states that changes in From tend to cause changes in To.
// Contribution is the share of To's variance attributed to From, 0..100.
type Link struct {
	From         string  `json:"from"`
	To           string  `json:"to"`
	Contribution float64 `json:"contribution"`
}

type Graph struct {
	Version string `json:"version"`
	Links   []Link `json:"links"`
}

var defaultLinks = []Link{
	{From: "FI-101", To: "TI-101", Contribution: 65},
	{From: "TI-201", To: "TI-101", Contribution: 30},
	{From: "TI-101", To: "PI-101", Contribution: 55},
	{From: "FI-101", To: "PI-101", Contribution: 35},
	{From: "TI-101", To: "TI-102", Contribution: 70},
	{From: "FI-102", To: "TI-102", Contribution: 25},
	{From: "PI-101", To: "PI-201", Contribution: 40},
	{From: "FI-201", To: "PI-201", Contribution: 45},
	{From: "FI-201", To: "AI-201", Contribution: 60},
	{From: "TI-202", To: "AI-201", Contribution: 25},
	{From: "FI-201", To: "TI-202", Contribution: 50},
	{From: "PI-101", To: "LI-101", Contribution: 30},
	{From: "FI-102", To: "LI-101", Contribution: 55},
	{From: "FI-301", To: "LI-101", Contribution: 20},
	{From: "PI-201", To: "DPI-101", Contribution: 50},
	{From: "DPI-101", To: "FI-102", Contribution: 40},
	{From: "TI-102", To: "TI-301", Contribution: 60},
	{From: "TI-301", To: "PI-301", Contribution: 45},
	{From: "TI-301", To: "LI-301", Contribution: 35},
	{From: "PI-301", To: "LI-301", Contribution: 25},
}

// DefaultGraph returns a fresh copy of the built-in FCC graph.
func DefaultGraph() Graph {
	links := make([]Link, len(defaultLinks))
	copy(links, defaultLinks)
	return Graph{Version: DefaultVersion, Links: links}
}

// Clone returns a copy whose link slice can be modified independently.
func (g Graph) Clone() Graph {
	links := make([]Link, len(g.Links))
	copy(links, g.Links)
	return Graph{Version: g.Version, Links: links}
}

// Validate checks that every link names both ends and has a contribution in 0..100.
func (g Graph) Validate() error {
	if g.Links == nil {
		return fmt.Errorf("%w: missing links", ErrInvalidGraph)
	}
	for i, l := range g.Links {
		if l.From == "" || l.To == "" {
			return fmt.Errorf("%w: link %d has an empty endpoint", ErrInvalidGraph, i)
		}
		if l.Contribution < 0 || l.Contribution > 100 {
			return fmt.Errorf("%w: link %d contribution %.1f out of range", ErrInvalidGraph, i, l.Contribution)
		}
	}
	return nil
}

// ParseGraph decodes and validates a JSON graph document.
func ParseGraph(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, fmt.Errorf("%w: %v", ErrInvalidGraph, err)
	}
	if err := g.Validate(); err != nil {
		return Graph{}, err
	}
	if g.Version == "" {
		g.Version = DefaultVersion
	}
	return g, nil
}
