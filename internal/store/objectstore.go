package store

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
)

var errMissingObjectID = errors.New("response missing object_id")

// Objects is the HTTP client for the object store service.
type Objects struct {
	base  string
	token string
	hc    *http.Client
}

// NewObjects creates an object store client for the given base URL. token
// is optional; when set it is sent as X-API-Token on every request.
func NewObjects(base, token string, timeout time.Duration) *Objects {
	return &Objects{
		base:  strings.TrimRight(base, "/"),
		token: token,
		hc:    newHTTPClient(timeout),
	}
}

// ObjectURL returns the canonical address of a stored object.
func (c *Objects) ObjectURL(id string) string {
	return c.base + "/api/v1/objects/" + id
}

// Put stores one JSON payload and returns its object reference.
func (c *Objects) Put(ctx context.Context, payload []byte, meta ObjectMeta) (ObjectRef, error) {
	headers := map[string]string{
		"Content-Type": "application/json",
	}
	if c.token != "" {
		headers["X-API-Token"] = c.token
	}
	if metaJSON, err := json.Marshal(meta); err == nil {
		headers["X-Metadata"] = string(metaJSON)
	}

	var resp struct {
		ObjectID string `json:"object_id"`
	}
	err := doJSON(ctx, c.hc, "objectstore.put", http.MethodPost, c.base+"/api/v1/objects", headers, payload, &resp)
	if err != nil {
		return ObjectRef{}, err
	}
	if resp.ObjectID == "" {
		return ObjectRef{}, &StoreError{Op: "objectstore.put", Err: ErrRejected, Cause: errMissingObjectID}
	}
	return ObjectRef{ID: resp.ObjectID, URL: c.ObjectURL(resp.ObjectID)}, nil
}

// Get fetches a stored object by id.
func (c *Objects) Get(ctx context.Context, id string) ([]byte, error) {
	var raw json.RawMessage
	headers := map[string]string{}
	if c.token != "" {
		headers["X-API-Token"] = c.token
	}
	if err := doJSON(ctx, c.hc, "objectstore.get", http.MethodGet, c.ObjectURL(id), headers, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
