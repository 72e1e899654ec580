// Package nodes owns the set of known peer devices. The registry holds
// the only authoritative Node records; everything else stores node ids
// and queries back here for current display data.
package nodes

import (
	"fmt"
	"sort"
	"strings"

	"meshdeck/internal/mesh"
)

// PositionSource resolves the operator's explicitly configured
// coordinate, or nil when none is configured. Injected so the registry
// never reaches into global configuration.
type PositionSource func() *mesh.Coordinate

// Registry is the single writer of node records. Not safe for
// concurrent use on its own; the engine serializes access.
type Registry struct {
	nodes    map[mesh.NodeID]*mesh.Node
	ownID    mesh.NodeID
	operator PositionSource
}

// NewRegistry builds an empty registry. pos may be nil when the
// operator has no configured position.
func NewRegistry(ownID mesh.NodeID, pos PositionSource) *Registry {
	if pos == nil {
		pos = func() *mesh.Coordinate { return nil }
	}
	return &Registry{
		nodes:    make(map[mesh.NodeID]*mesh.Node),
		ownID:    ownID,
		operator: pos,
	}
}

// OwnID returns the operator's node id.
func (r *Registry) OwnID() mesh.NodeID { return r.ownID }

// Upsert inserts a first sighting or merges a repeat sighting, then
// refreshes the node's distance. Always succeeds.
func (r *Registry) Upsert(n mesh.Node) {
	if existing, ok := r.nodes[n.ID]; ok {
		merged := mesh.MergeNode(*existing, n)
		*existing = merged
	} else {
		dup := n
		r.nodes[n.ID] = &dup
	}
	r.RecalculateDistance(n.ID)

	// A position update on the own node shifts every other distance.
	if n.ID == r.ownID && n.Position != nil {
		r.RecalculateAll()
	}
}

// Lookup returns a copy of the node record, or false if unknown.
func (r *Registry) Lookup(id mesh.NodeID) (mesh.Node, bool) {
	n, ok := r.nodes[id]
	if !ok {
		return mesh.Node{}, false
	}
	return *n, true
}

// Len returns the number of known nodes.
func (r *Registry) Len() int { return len(r.nodes) }

// FilteredList returns copies of all nodes sorted case-insensitively by
// display name. A non-empty query restricts the list to nodes whose
// name, short name, hex id, or note contains it, case-insensitively.
func (r *Registry) FilteredList(query string) []mesh.Node {
	query = strings.ToLower(strings.TrimSpace(query))

	out := make([]mesh.Node, 0, len(r.nodes))
	for _, n := range r.nodes {
		if query != "" && !matches(*n, query) {
			continue
		}
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].DisplayName()) < strings.ToLower(out[j].DisplayName())
	})
	return out
}

func matches(n mesh.Node, query string) bool {
	for _, field := range []string{n.LongName, n.ShortName, n.ID.Hex(), n.Note} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

// effectiveOwnPosition resolves the coordinate distances are measured
// from: the configured operator position first, then the own node's
// reported GPS, then nothing.
func (r *Registry) effectiveOwnPosition() *mesh.Coordinate {
	if pos := r.operator(); pos != nil {
		return pos
	}
	if own, ok := r.nodes[r.ownID]; ok && own.Position != nil {
		return own.Position
	}
	return nil
}

// RecalculateDistance refreshes one node's derived distance. With no
// resolvable own coordinate or no position on the node, the distance
// is reset to "no data" rather than left stale.
func (r *Registry) RecalculateDistance(id mesh.NodeID) {
	n, ok := r.nodes[id]
	if !ok {
		return
	}
	origin := r.effectiveOwnPosition()
	if origin == nil || n.Position == nil {
		n.DistanceM = nil
		return
	}
	d := mesh.Haversine(*origin, *n.Position)
	n.DistanceM = &d
}

// RecalculateAll refreshes every node's distance; called after the
// own-coordinate source changes.
func (r *Registry) RecalculateAll() {
	for id := range r.nodes {
		r.RecalculateDistance(id)
	}
}

// ClearSignalMetrics drops transient link-quality readings on every
// node while keeping identity, names, and position. Used by soft reset
// when the radio link drops.
func (r *Registry) ClearSignalMetrics() {
	for _, n := range r.nodes {
		n.SNR = nil
		n.RSSI = nil
	}
}

// Reset removes all nodes.
func (r *Registry) Reset() {
	r.nodes = make(map[mesh.NodeID]*mesh.Node)
}

// palette holds the colors dealt out to nodes and conversations,
// stable per id across the session.
var palette = []string{
	"#8BE9FD", "#50FA7B", "#FFB86C", "#FF79C6",
	"#BD93F9", "#F1FA8C", "#FF5555", "#5AF78E",
}

// ColorFor returns a stable display color for the node id. Nodes carry
// no color on the wire, so one is derived from the id.
func ColorFor(id mesh.NodeID) string {
	return palette[uint32(id)%uint32(len(palette))]
}

// Label returns the display name for id, or a synthetic "Node !hex"
// label when the node is unknown.
func (r *Registry) Label(id mesh.NodeID) string {
	if n, ok := r.nodes[id]; ok {
		return n.DisplayName()
	}
	return fmt.Sprintf("Node %s", id.Hex())
}
