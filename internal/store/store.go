// Package store provides the client side of the two external services the
// importer writes to: the object store (one JSON document per event) and the
// graph layer (hierarchy nodes and containment edges). Both are consumed
// behind the Store capability interface so the importer and query engine can
// run against the in-memory fake in tests.
package store

import (
	"context"
)

// ObjectMeta is attached to a stored object via the X-Metadata header.
type ObjectMeta struct {
	Type    string `json:"type"`
	UID     string `json:"uid"`
	Summary string `json:"summary"`
	Date    string `json:"date"`
}

// ObjectRef addresses one stored object.
type ObjectRef struct {
	ID  string
	URL string
}

// Schema describes a node class registered with the graph layer.
type Schema struct {
	ClassName   string            `json:"class_name"`
	ParentClass string            `json:"parent_class"`
	Attributes  map[string]string `json:"attributes"`
	Description string            `json:"description"`
}

// Node is a graph layer node.
type Node struct {
	ID         string         `json:"node_id"`
	Class      string         `json:"class_name"`
	Name       string         `json:"name"`
	Attributes map[string]any `json:"attributes"`
}

// Filter is a single attribute comparison for FindNodes. All filters in one
// call are combined with AND.
type Filter struct {
	Attribute string `json:"attribute"`
	Operator  string `json:"operator"`
	Value     string `json:"value"`
}

// Related pairs a neighboring node with the edge type that reaches it.
type Related struct {
	Relationship string `json:"relationship"`
	Node         Node   `json:"node"`
}

// Store is the capability surface the importer and query engine consume.
// Remote implements it over HTTP; Memory implements it in-process.
type Store interface {
	// PutObject persists one JSON document and returns its address.
	PutObject(ctx context.Context, payload []byte, meta ObjectMeta) (ObjectRef, error)
	// GetObject fetches a stored document by id.
	GetObject(ctx context.Context, id string) ([]byte, error)

	// RegisterSchema registers a node class. Registering an existing class
	// is not an error.
	RegisterSchema(ctx context.Context, s Schema) error
	// CreateNode creates a node and returns its id.
	CreateNode(ctx context.Context, class, name string, attrs map[string]any) (string, error)
	// UpdateNode replaces a node's attributes.
	UpdateNode(ctx context.Context, id string, attrs map[string]any) error
	// CreateEdge creates a containment edge between two nodes.
	CreateEdge(ctx context.Context, from, to, edgeType string) error
	// FindNodes returns all nodes of a class matching the filters.
	FindNodes(ctx context.Context, class string, filters []Filter) ([]Node, error)
	// Related returns the outgoing neighbors of a node.
	Related(ctx context.Context, nodeID string) ([]Related, error)
}

// Eq builds an equality filter.
func Eq(attribute, value string) Filter {
	return Filter{Attribute: attribute, Operator: "==", Value: value}
}

// UpsertNode looks a node up by its composite key filters, creating it when
// absent and refreshing its attributes when present. Attribute refresh is
// what keeps event_count aggregates from drifting: every import writes the
// freshly recomputed counts over whatever a previous run stored. It reports
// whether the node was created.
func UpsertNode(ctx context.Context, s Store, class, name string, key []Filter, attrs map[string]any) (string, bool, error) {
	existing, err := s.FindNodes(ctx, class, key)
	if err != nil {
		return "", false, err
	}
	if len(existing) > 0 {
		id := existing[0].ID
		if err := s.UpdateNode(ctx, id, attrs); err != nil {
			return "", false, err
		}
		return id, false, nil
	}
	id, err := s.CreateNode(ctx, class, name, attrs)
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}
