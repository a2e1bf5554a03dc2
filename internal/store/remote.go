package store

import (
	"context"
	"time"
)

// Remote implements Store over the two HTTP services.
type Remote struct {
	objects *Objects
	graph   *Graph
}

// RemoteConfig carries the connection settings for both services.
type RemoteConfig struct {
	ObjectStoreURL   string
	ObjectStoreToken string
	GraphLayerURL    string
	GraphLayerToken  string
	Timeout          time.Duration
}

// NewRemote builds a Store backed by the real services.
func NewRemote(cfg RemoteConfig) *Remote {
	return &Remote{
		objects: NewObjects(cfg.ObjectStoreURL, cfg.ObjectStoreToken, cfg.Timeout),
		graph:   NewGraph(cfg.GraphLayerURL, cfg.GraphLayerToken, cfg.Timeout),
	}
}

func (r *Remote) PutObject(ctx context.Context, payload []byte, meta ObjectMeta) (ObjectRef, error) {
	return r.objects.Put(ctx, payload, meta)
}

func (r *Remote) GetObject(ctx context.Context, id string) ([]byte, error) {
	return r.objects.Get(ctx, id)
}

func (r *Remote) RegisterSchema(ctx context.Context, s Schema) error {
	return r.graph.RegisterSchema(ctx, s)
}

func (r *Remote) CreateNode(ctx context.Context, class, name string, attrs map[string]any) (string, error) {
	return r.graph.CreateNode(ctx, class, name, attrs)
}

func (r *Remote) UpdateNode(ctx context.Context, id string, attrs map[string]any) error {
	return r.graph.UpdateNode(ctx, id, attrs)
}

func (r *Remote) CreateEdge(ctx context.Context, from, to, edgeType string) error {
	return r.graph.CreateEdge(ctx, from, to, edgeType)
}

func (r *Remote) FindNodes(ctx context.Context, class string, filters []Filter) ([]Node, error) {
	return r.graph.FindNodes(ctx, class, filters)
}

func (r *Remote) Related(ctx context.Context, nodeID string) ([]Related, error) {
	return r.graph.Related(ctx, nodeID)
}

var _ Store = (*Remote)(nil)
