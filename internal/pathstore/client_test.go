package pathstore

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dgallion1/pdfstruct/internal/structure"
)

// fakeKV is a minimal in-memory pathstore.
type fakeKV struct {
	mu    sync.Mutex
	nodes map[string]json.RawMessage
	auth  string
}

func newFakeKV(t *testing.T) (*fakeKV, *httptest.Server) {
	kv := &fakeKV{nodes: map[string]json.RawMessage{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		kv.mu.Lock()
		defer kv.mu.Unlock()
		kv.auth = r.Header.Get("Authorization")
		key := strings.TrimPrefix(r.URL.Path, "/kv/")
		switch r.Method {
		case http.MethodPut:
			var req struct {
				Value json.RawMessage `json:"value"`
			}
			body, _ := io.ReadAll(r.Body)
			if err := json.Unmarshal(body, &req); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			kv.nodes[key] = req.Value
			w.WriteHeader(http.StatusCreated)
		case http.MethodGet:
			v, ok := kv.nodes[key]
			if !ok {
				http.NotFound(w, r)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{"key_path": key, "value": v})
		case http.MethodDelete:
			for k := range kv.nodes {
				if k == key || (r.URL.Query().Get("children") == "true" && strings.HasPrefix(k, key+"/")) {
					delete(kv.nodes, k)
				}
			}
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	t.Cleanup(srv.Close)
	return kv, srv
}

func TestPublishAndUnpublish(t *testing.T) {
	kv, srv := newFakeKV(t)
	c := NewClient(srv.URL+"/", "secret")
	defer c.Close()
	ctx := context.Background()

	r := structure.NewResult()
	r.Metadata = structure.NewMetadata(4, "Jane Doe", "Guide")
	r.Sections = []structure.Section{{Heading: "Chapter 1 Intro", Content: []string{}}}
	r.TOC = []string{"Contents"}
	r.Recount()

	sum := NewSummary("a1", "guide.pdf", r, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	if err := c.PublishStructure(ctx, "u1", "d1", sum); err != nil {
		t.Fatal(err)
	}
	if kv.auth != "Bearer secret" {
		t.Errorf("auth header = %q", kv.auth)
	}

	node, err := c.GetNode(ctx, StructurePath("u1", "d1"))
	if err != nil || node == nil {
		t.Fatalf("get node: %v %v", node, err)
	}
	value, _ := json.Marshal(node.Value)
	var got Summary
	if err := json.Unmarshal(value, &got); err != nil {
		t.Fatal(err)
	}
	if got.AnalysisID != "a1" || got.Pages != 4 || len(got.Headings) != 1 || got.Headings[0] != "Chapter 1 Intro" {
		t.Errorf("summary = %+v", got)
	}
	if got.CreatedAt != "2026-02-01T00:00:00Z" {
		t.Errorf("created_at = %q", got.CreatedAt)
	}

	if err := c.UnpublishDocument(ctx, "u1", "d1"); err != nil {
		t.Fatal(err)
	}
	node, err = c.GetNode(ctx, StructurePath("u1", "d1"))
	if err != nil || node != nil {
		t.Errorf("expected node removed, got %v %v", node, err)
	}
}

func TestPutNode_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k")
	err := c.PutNode(context.Background(), "a/b", NodeRequest{Value: 1})
	if err == nil || !strings.Contains(err.Error(), "status 403") {
		t.Fatalf("expected status error, got %v", err)
	}
}
