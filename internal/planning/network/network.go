// Package network builds the directed supply-chain graph and enumerates
// ranked multi-leg paths from the manufacturing node to each demand node.
package network

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/planengine/planengine/internal/domain"
)

// Leg is one hop of an enumerated route.
type Leg struct {
	Route domain.Route
}

// Path is a ranked, multi-leg candidate route from the manufacturing node
// to a destination.
type Path struct {
	Nodes       []string // ordered node IDs, origin first
	Legs        []Leg
	TotalTransitDays float64
	TotalCostPerUnit float64
	Hops        int
}

// Graph is a directed multigraph over domain.Route edges.
type Graph struct {
	nodes map[string]domain.Node
	// outgoing[nodeID] = routes leaving that node
	outgoing map[string][]domain.Route
}

// Build constructs a Graph from a node list and route list.
func Build(nodes []domain.Node, routes []domain.Route) *Graph {
	g := &Graph{
		nodes:    make(map[string]domain.Node, len(nodes)),
		outgoing: make(map[string][]domain.Route),
	}
	for _, n := range nodes {
		g.nodes[n.ID] = n
	}
	for _, r := range routes {
		g.outgoing[r.OriginNodeID] = append(g.outgoing[r.OriginNodeID], r)
	}
	return g
}

// Node looks up a node by ID.
func (g *Graph) Node(id string) (domain.Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// EnumerationResult is the outcome of enumerating paths to one destination:
// either a ranked path list, or a recorded failure. An unreachable
// destination does not abort the rest of the enumeration.
type EnumerationResult struct {
	DestinationNodeID string
	Paths             []Path
	Unreachable       bool
}

// EnumeratePaths enumerates up to maxPerDestination simple paths from
// originID to each destination in destinationIDs, ranked by total cost
// (ties broken by fewer hops, then shorter transit). Destinations are
// enumerated concurrently (bounded by errgroup) since path search per
// destination is independent CPU-bound work.
func EnumeratePaths(ctx context.Context, g *Graph, originID string, destinationIDs []string, maxPerDestination int) ([]EnumerationResult, error) {
	results := make([]EnumerationResult, len(destinationIDs))

	grp, _ := errgroup.WithContext(ctx)
	grp.SetLimit(8)

	for i, dest := range destinationIDs {
		i, dest := i, dest
		grp.Go(func() error {
			paths := g.simplePaths(originID, dest, maxPerDestination)
			results[i] = EnumerationResult{
				DestinationNodeID: dest,
				Paths:             paths,
				Unreachable:       len(paths) == 0,
			}
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// simplePaths performs a bounded DFS enumerating simple (no repeated node)
// paths from origin to dest, then ranks and truncates to max.
func (g *Graph) simplePaths(origin, dest string, max int) []Path {
	if max <= 0 {
		max = 1
	}
	var found []Path
	visited := map[string]bool{origin: true}

	var walk func(current string, nodes []string, legs []Leg, transit, cost float64)
	walk = func(current string, nodes []string, legs []Leg, transit, cost float64) {
		if current == dest && len(legs) > 0 {
			pathNodes := append([]string(nil), nodes...)
			pathLegs := append([]Leg(nil), legs...)
			found = append(found, Path{
				Nodes:            pathNodes,
				Legs:             pathLegs,
				TotalTransitDays: transit,
				TotalCostPerUnit: cost,
				Hops:             len(pathLegs),
			})
			return
		}
		for _, r := range g.outgoing[current] {
			if visited[r.DestinationNodeID] {
				continue
			}
			visited[r.DestinationNodeID] = true
			walk(r.DestinationNodeID,
				append(nodes, r.DestinationNodeID),
				append(legs, Leg{Route: r}),
				transit+r.TransitDays,
				cost+r.CostPerUnit)
			delete(visited, r.DestinationNodeID)
		}
	}
	walk(origin, []string{origin}, nil, 0, 0)

	sort.Slice(found, func(i, j int) bool {
		a, b := found[i], found[j]
		if a.TotalCostPerUnit != b.TotalCostPerUnit {
			return a.TotalCostPerUnit < b.TotalCostPerUnit
		}
		if a.Hops != b.Hops {
			return a.Hops < b.Hops
		}
		return a.TotalTransitDays < b.TotalTransitDays
	})

	if len(found) > max {
		found = found[:max]
	}
	return found
}
