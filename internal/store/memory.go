package store

import (
	"context"
	"fmt"
	"sync"
)

type memEdge struct {
	From, To, Type string
}

// Memory is an in-process Store used in tests and for dry runs. Object
// writes are addressed by the metadata UID so that re-importing the same
// events overwrites instead of duplicating, matching the uid-based dedupe
// the importer relies on.
type Memory struct {
	mu sync.Mutex

	objects     map[string][]byte // object id -> payload
	objectByUID map[string]string // event uid -> object id
	schemas     map[string]Schema
	nodes       map[string]Node
	nodeOrder   []string
	edges       []memEdge
	nextID      int
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		objects:     make(map[string][]byte),
		objectByUID: make(map[string]string),
		schemas:     make(map[string]Schema),
		nodes:       make(map[string]Node),
	}
}

func (m *Memory) PutObject(_ context.Context, payload []byte, meta ObjectMeta) (ObjectRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.objectByUID[meta.UID]
	if !ok {
		m.nextID++
		id = fmt.Sprintf("obj-%04d", m.nextID)
		if meta.UID != "" {
			m.objectByUID[meta.UID] = id
		}
	}
	cp := make([]byte, len(payload))
	copy(cp, payload)
	m.objects[id] = cp
	return ObjectRef{ID: id, URL: "memory://objects/" + id}, nil
}

func (m *Memory) GetObject(_ context.Context, id string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	payload, ok := m.objects[id]
	if !ok {
		return nil, &StoreError{Op: "memory.get_object", Err: ErrNotFound}
	}
	return payload, nil
}

func (m *Memory) RegisterSchema(_ context.Context, s Schema) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// Re-registering is fine, same as the remote 400 tolerance.
	m.schemas[s.ClassName] = s
	return nil
}

func (m *Memory) CreateNode(_ context.Context, class, name string, attrs map[string]any) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	id := fmt.Sprintf("node-%04d", m.nextID)
	cp := make(map[string]any, len(attrs))
	for k, v := range attrs {
		cp[k] = v
	}
	m.nodes[id] = Node{ID: id, Class: class, Name: name, Attributes: cp}
	m.nodeOrder = append(m.nodeOrder, id)
	return id, nil
}

func (m *Memory) UpdateNode(_ context.Context, id string, attrs map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.nodes[id]
	if !ok {
		return &StoreError{Op: "memory.update_node", Err: ErrNotFound}
	}
	cp := make(map[string]any, len(attrs))
	for k, v := range attrs {
		cp[k] = v
	}
	n.Attributes = cp
	m.nodes[id] = n
	return nil
}

func (m *Memory) CreateEdge(_ context.Context, from, to, edgeType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.nodes[from]; !ok {
		return &StoreError{Op: "memory.create_edge", Err: ErrNotFound}
	}
	if _, ok := m.nodes[to]; !ok {
		return &StoreError{Op: "memory.create_edge", Err: ErrNotFound}
	}
	e := memEdge{From: from, To: to, Type: edgeType}
	for _, existing := range m.edges {
		if existing == e {
			return nil
		}
	}
	m.edges = append(m.edges, e)
	return nil
}

func (m *Memory) FindNodes(_ context.Context, class string, filters []Filter) ([]Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Node
	for _, id := range m.nodeOrder {
		n := m.nodes[id]
		if n.Class != class {
			continue
		}
		if matchesFilters(n, filters) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *Memory) Related(_ context.Context, nodeID string) ([]Related, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.nodes[nodeID]; !ok {
		return nil, &StoreError{Op: "memory.related", Err: ErrNotFound}
	}
	var out []Related
	for _, e := range m.edges {
		if e.From != nodeID {
			continue
		}
		out = append(out, Related{Relationship: e.Type, Node: m.nodes[e.To]})
	}
	return out, nil
}

// Counts reports store totals, useful for idempotence assertions in tests.
func (m *Memory) Counts() (objects, nodes, edges int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects), len(m.nodes), len(m.edges)
}

func matchesFilters(n Node, filters []Filter) bool {
	for _, f := range filters {
		v, ok := n.Attributes[f.Attribute]
		if !ok {
			return false
		}
		// Attribute values may be int, float64 (JSON round trip) or string;
		// compare their canonical string forms.
		if f.Operator != "==" || canonical(v) != f.Value {
			return false
		}
	}
	return true
}

func canonical(v any) string {
	if f, ok := v.(float64); ok && f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprint(v)
}

var _ Store = (*Memory)(nil)
