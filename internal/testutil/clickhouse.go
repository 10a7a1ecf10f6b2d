package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// FakeClickHouse is an httptest server speaking enough of the ClickHouse HTTP
// interface for unit tests. Every request body is recorded; responses are
// picked by the first registered substring that the query contains. Unmatched
// FORMAT JSON queries get an empty result set, everything else an empty 200.
type FakeClickHouse struct {
	*httptest.Server

	mu        sync.Mutex
	queries   []string
	responses []fakeResponse
}

type fakeResponse struct {
	contains string
	status   int
	body     string
}

// NewFakeClickHouse starts a fake server that is closed when the test completes.
func NewFakeClickHouse(t testing.TB) *FakeClickHouse {
	t.Helper()

	f := &FakeClickHouse{}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))

	t.Cleanup(f.Close)

	return f
}

// Respond registers a raw response for queries containing the given text.
func (f *FakeClickHouse) Respond(contains string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.responses = append(f.responses, fakeResponse{contains: contains, status: status, body: body})
}

// RespondRows registers a FORMAT JSON result for queries containing the given text.
func (f *FakeClickHouse) RespondRows(t testing.TB, contains string, rows ...interface{}) {
	t.Helper()

	if rows == nil {
		rows = []interface{}{}
	}

	body, err := json.Marshal(map[string]interface{}{
		"data": rows,
		"rows": len(rows),
	})
	if err != nil {
		t.Fatalf("failed to marshal fake rows: %v", err)
	}

	f.Respond(contains, http.StatusOK, string(body))
}

// Queries returns every query received so far.
func (f *FakeClickHouse) Queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, len(f.queries))
	copy(out, f.queries)

	return out
}

func (f *FakeClickHouse) handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	query := string(body)

	f.mu.Lock()
	f.queries = append(f.queries, query)

	resp := fakeResponse{status: http.StatusOK}
	if strings.HasSuffix(query, "FORMAT JSON") {
		resp.body = `{"data":[],"rows":0}`
	}

	for _, candidate := range f.responses {
		if strings.Contains(query, candidate.contains) {
			resp = candidate
			break
		}
	}
	f.mu.Unlock()

	w.WriteHeader(resp.status)
	_, _ = w.Write([]byte(resp.body))
}
