package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Graph is the HTTP client for the graph layer service.
type Graph struct {
	base  string
	token string
	hc    *http.Client
}

// NewGraph creates a graph layer client for the given base URL. All
// requests carry Bearer auth when token is non-empty.
func NewGraph(base, token string, timeout time.Duration) *Graph {
	return &Graph{
		base:  strings.TrimRight(base, "/"),
		token: token,
		hc:    newHTTPClient(timeout),
	}
}

func (c *Graph) headers() map[string]string {
	h := map[string]string{"Content-Type": "application/json"}
	if c.token != "" {
		h["Authorization"] = "Bearer " + c.token
	}
	return h
}

func (c *Graph) url(endpoint string) string {
	return c.base + "/api/v1" + endpoint
}

// RegisterSchema registers a node class. The service answers 400 for an
// already-registered class; that is treated as success.
func (c *Graph) RegisterSchema(ctx context.Context, s Schema) error {
	if s.ParentClass == "" {
		s.ParentClass = "Thing"
	}
	body, err := json.Marshal(s)
	if err != nil {
		return err
	}
	err = doJSON(ctx, c.hc, "graph.register_schema", http.MethodPost, c.url("/schemas"), c.headers(), body, nil)
	var serr *StoreError
	if errors.As(err, &serr) && serr.Status == http.StatusBadRequest {
		// Already registered.
		return nil
	}
	return err
}

// CreateNode creates a node and returns its id.
func (c *Graph) CreateNode(ctx context.Context, class, name string, attrs map[string]any) (string, error) {
	body, err := json.Marshal(map[string]any{
		"class_name": class,
		"name":       name,
		"attributes": attrs,
	})
	if err != nil {
		return "", err
	}
	var resp struct {
		NodeID string `json:"node_id"`
	}
	if err := doJSON(ctx, c.hc, "graph.create_node", http.MethodPost, c.url("/nodes"), c.headers(), body, &resp); err != nil {
		return "", err
	}
	return resp.NodeID, nil
}

// UpdateNode replaces a node's attributes.
func (c *Graph) UpdateNode(ctx context.Context, id string, attrs map[string]any) error {
	body, err := json.Marshal(map[string]any{"attributes": attrs})
	if err != nil {
		return err
	}
	return doJSON(ctx, c.hc, "graph.update_node", http.MethodPut, c.url("/nodes/"+id), c.headers(), body, nil)
}

// CreateEdge creates a typed edge between two nodes.
func (c *Graph) CreateEdge(ctx context.Context, from, to, edgeType string) error {
	body, err := json.Marshal(map[string]any{
		"from_node_id": from,
		"to_node_id":   to,
		"edge_type":    edgeType,
		"attributes":   map[string]any{},
	})
	if err != nil {
		return err
	}
	return doJSON(ctx, c.hc, "graph.create_edge", http.MethodPost, c.url("/edges"), c.headers(), body, nil)
}

// FindNodes returns all nodes of class matching the filters (AND logic).
func (c *Graph) FindNodes(ctx context.Context, class string, filters []Filter) ([]Node, error) {
	payload := map[string]any{}
	if len(filters) > 0 {
		payload["filter"] = map[string]any{
			"filters": filters,
			"logic":   "AND",
		}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Count int    `json:"count"`
		Nodes []Node `json:"nodes"`
	}
	endpoint := fmt.Sprintf("/filter/by-class/%s", class)
	if err := doJSON(ctx, c.hc, "graph.filter", http.MethodPost, c.url(endpoint), c.headers(), body, &resp); err != nil {
		return nil, err
	}
	return resp.Nodes, nil
}

// Related returns the outgoing neighbors of a node.
func (c *Graph) Related(ctx context.Context, nodeID string) ([]Related, error) {
	var resp struct {
		RelatedCount int       `json:"related_count"`
		Related      []Related `json:"related"`
	}
	endpoint := fmt.Sprintf("/query/related/%s?direction=outgoing", nodeID)
	if err := doJSON(ctx, c.hc, "graph.related", http.MethodGet, c.url(endpoint), c.headers(), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Related, nil
}
