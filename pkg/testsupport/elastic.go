package testsupport

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
)

// RecordedRequest is one request received by a FakeElastic.
type RecordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Body   []byte
}

// FakeElastic is an httptest server that answers the small part of the
// Elasticsearch REST API the search client uses: document get, search and
// ping. Search responses are canned per index.
type FakeElastic struct {
	server *httptest.Server

	mu       sync.Mutex
	docs     map[string]map[string]json.RawMessage
	searches map[string][]byte
	status   int
	requests []RecordedRequest
}

// NewFakeElastic starts a server that is closed when the test ends.
func NewFakeElastic(t testing.TB) *FakeElastic {
	t.Helper()

	f := &FakeElastic{
		docs:     map[string]map[string]json.RawMessage{},
		searches: map[string][]byte{},
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

// URL returns the server address.
func (f *FakeElastic) URL() string {
	return f.server.URL
}

// AddDocument stores source as document id of index.
func (f *FakeElastic) AddDocument(index, id string, source []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.docs[index] == nil {
		f.docs[index] = map[string]json.RawMessage{}
	}
	f.docs[index][id] = json.RawMessage(source)
}

// SetSearchResponse makes every search on index answer with body.
func (f *FakeElastic) SetSearchResponse(index string, body []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches[index] = body
}

// FailWith makes every request answer with status. Zero restores normal
// behaviour.
func (f *FakeElastic) FailWith(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = status
}

// Requests returns the requests received so far.
func (f *FakeElastic) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RecordedRequest(nil), f.requests...)
}

// LastRequest returns the most recent request or fails the test.
func (f *FakeElastic) LastRequest(t testing.TB) RecordedRequest {
	t.Helper()
	reqs := f.Requests()
	if len(reqs) == 0 {
		t.Fatal("fake elasticsearch received no requests")
	}
	return reqs[len(reqs)-1]
}

func (f *FakeElastic) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.requests = append(f.requests, RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Body:   body,
	})
	status := f.status
	f.mu.Unlock()

	// the client refuses to talk to servers without this header
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	if status != 0 {
		writeJSON(w, status, map[string]any{
			"error":  map[string]any{"type": "fake_failure", "reason": "injected"},
			"status": status,
		})
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case r.URL.Path == "/" || r.URL.Path == "":
		writeJSON(w, http.StatusOK, map[string]any{"version": map[string]any{"number": "8.17.0"}})
	case len(parts) == 3 && parts[1] == "_doc":
		f.handleGet(w, parts[0], parts[2])
	case len(parts) == 2 && parts[1] == "_search":
		f.handleSearch(w, parts[0])
	default:
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "unsupported path " + r.URL.Path})
	}
}

func (f *FakeElastic) handleGet(w http.ResponseWriter, index, id string) {
	f.mu.Lock()
	docs, indexExists := f.docs[index]
	source, found := docs[id]
	f.mu.Unlock()

	if !indexExists {
		writeIndexNotFound(w, index)
		return
	}
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]any{"_index": index, "_id": id, "found": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"_index": index, "_id": id, "found": true, "_source": source})
}

func (f *FakeElastic) handleSearch(w http.ResponseWriter, index string) {
	f.mu.Lock()
	body, ok := f.searches[index]
	f.mu.Unlock()

	if !ok {
		writeIndexNotFound(w, index)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func writeIndexNotFound(w http.ResponseWriter, index string) {
	writeJSON(w, http.StatusNotFound, map[string]any{
		"error": map[string]any{
			"type":   "index_not_found_exception",
			"reason": "no such index [" + index + "]",
		},
		"status": http.StatusNotFound,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
