package store

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestObjectsPut(t *testing.T) {
	var gotToken, gotMeta, gotContentType string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/objects" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotToken = r.Header.Get("X-API-Token")
		gotMeta = r.Header.Get("X-Metadata")
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		json.NewEncoder(w).Encode(map[string]string{"object_id": "abc123"})
	}))
	defer srv.Close()

	c := NewObjects(srv.URL, "secret", time.Second)
	ref, err := c.Put(context.Background(), []byte(`{"uid":"x1"}`), ObjectMeta{
		Type: "calendar_event", UID: "x1", Summary: "Termin", Date: "2026-02-23",
	})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	if ref.ID != "abc123" {
		t.Errorf("ref.ID = %q, want abc123", ref.ID)
	}
	if want := srv.URL + "/api/v1/objects/abc123"; ref.URL != want {
		t.Errorf("ref.URL = %q, want %q", ref.URL, want)
	}
	if gotToken != "secret" {
		t.Errorf("X-API-Token = %q, want secret", gotToken)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
	if string(gotBody) != `{"uid":"x1"}` {
		t.Errorf("body = %s", gotBody)
	}

	var meta ObjectMeta
	if err := json.Unmarshal([]byte(gotMeta), &meta); err != nil {
		t.Fatalf("X-Metadata not JSON: %v", err)
	}
	if meta.UID != "x1" || meta.Type != "calendar_event" || meta.Date != "2026-02-23" {
		t.Errorf("X-Metadata = %+v", meta)
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{name: "validation failure", status: 422, want: ErrRejected},
		{name: "server error", status: 500, want: ErrRejected},
		{name: "missing", status: 404, want: ErrNotFound},
		{name: "bad gateway", status: 502, want: ErrUnavailable},
		{name: "gateway timeout", status: 504, want: ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c := NewObjects(srv.URL, "", time.Second)
			_, err := c.Put(context.Background(), []byte(`{}`), ObjectMeta{UID: "x"})
			if !errors.Is(err, tt.want) {
				t.Fatalf("status %d: err = %v, want %v", tt.status, err, tt.want)
			}
			var serr *StoreError
			if !errors.As(err, &serr) || serr.Status != tt.status {
				t.Fatalf("status %d: missing StoreError context: %v", tt.status, err)
			}
		})
	}
}

func TestTransportFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on

	c := NewObjects(srv.URL, "", time.Second)
	_, err := c.Put(context.Background(), []byte(`{}`), ObjectMeta{UID: "x"})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestGraphCreateNodeAndEdge(t *testing.T) {
	type nodeReq struct {
		ClassName  string         `json:"class_name"`
		Name       string         `json:"name"`
		Attributes map[string]any `json:"attributes"`
	}
	var gotNode nodeReq
	var gotAuth string
	var gotEdge map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		switch r.URL.Path {
		case "/api/v1/nodes":
			json.NewDecoder(r.Body).Decode(&gotNode)
			json.NewEncoder(w).Encode(map[string]string{"node_id": "node-1"})
		case "/api/v1/edges":
			json.NewDecoder(r.Body).Decode(&gotEdge)
			json.NewEncoder(w).Encode(map[string]string{"edge_id": "edge-1"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	g := NewGraph(srv.URL, "tok", time.Second)
	ctx := context.Background()

	id, err := g.CreateNode(ctx, "Day", "2026-02-23", map[string]any{"date": "2026-02-23"})
	if err != nil {
		t.Fatalf("CreateNode: %v", err)
	}
	if id != "node-1" {
		t.Errorf("node id = %q", id)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("Authorization = %q, want Bearer tok", gotAuth)
	}
	if gotNode.ClassName != "Day" || gotNode.Name != "2026-02-23" {
		t.Errorf("node request = %+v", gotNode)
	}

	if err := g.CreateEdge(ctx, "node-1", "node-2", "has_event"); err != nil {
		t.Fatalf("CreateEdge: %v", err)
	}
	if gotEdge["from_node_id"] != "node-1" || gotEdge["to_node_id"] != "node-2" || gotEdge["edge_type"] != "has_event" {
		t.Errorf("edge request = %+v", gotEdge)
	}
}

func TestGraphRegisterSchemaToleratesExisting(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The service answers 400 for an already-registered class.
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	g := NewGraph(srv.URL, "tok", time.Second)
	if err := g.RegisterSchema(context.Background(), Schema{ClassName: "Day"}); err != nil {
		t.Fatalf("RegisterSchema on 400 = %v, want nil", err)
	}
}

func TestGraphFindNodesRequestShape(t *testing.T) {
	var gotPath string
	var gotPayload map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotPayload)
		json.NewEncoder(w).Encode(map[string]any{
			"count": 1,
			"nodes": []map[string]any{{
				"node_id": "node-7", "class_name": "Day", "name": "2026-02-23",
				"attributes": map[string]any{"date": "2026-02-23"},
			}},
		})
	}))
	defer srv.Close()

	g := NewGraph(srv.URL, "", time.Second)
	nodes, err := g.FindNodes(context.Background(), "Day", []Filter{Eq("date", "2026-02-23")})
	if err != nil {
		t.Fatalf("FindNodes: %v", err)
	}
	if gotPath != "/api/v1/filter/by-class/Day" {
		t.Errorf("path = %q", gotPath)
	}
	filter, ok := gotPayload["filter"].(map[string]any)
	if !ok {
		t.Fatalf("payload missing filter: %v", gotPayload)
	}
	if filter["logic"] != "AND" {
		t.Errorf("logic = %v, want AND", filter["logic"])
	}
	if len(nodes) != 1 || nodes[0].ID != "node-7" {
		t.Fatalf("nodes = %+v", nodes)
	}
}

func TestGraphRelated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/query/related/node-7" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("direction") != "outgoing" {
			t.Errorf("direction = %q", r.URL.Query().Get("direction"))
		}
		json.NewEncoder(w).Encode(map[string]any{
			"related_count": 1,
			"related": []map[string]any{{
				"relationship": "has_event",
				"node": map[string]any{
					"node_id": "node-8", "class_name": "Event", "name": "Termin",
					"attributes": map[string]any{"uid": "x1"},
				},
			}},
		})
	}))
	defer srv.Close()

	g := NewGraph(srv.URL, "", time.Second)
	related, err := g.Related(context.Background(), "node-7")
	if err != nil {
		t.Fatalf("Related: %v", err)
	}
	if len(related) != 1 || related[0].Relationship != "has_event" || related[0].Node.ID != "node-8" {
		t.Fatalf("related = %+v", related)
	}
}
