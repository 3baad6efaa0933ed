package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/Skotchmaster/beauty_shop/internal/models"
	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeES struct {
	mu       sync.Mutex
	requests []string
	bodies   map[string]string
	search   string
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	f.bodies[r.Method+" "+r.URL.Path] = string(b)
	f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/_search"):
		_, _ = w.Write([]byte(f.search))
	case r.Method == http.MethodDelete:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"result":"not_found"}`))
	default:
		_, _ = w.Write([]byte(`{"result":"created"}`))
	}
}

func newFake(t *testing.T, searchBody string) (*fakeES, *ESSearcher) {
	t.Helper()
	f := &fakeES{bodies: map[string]string{}, search: searchBody}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return f, NewESSearcher(es, "")
}

func TestESSearcher_IndexAndDelete(t *testing.T) {
	t.Parallel()

	f, s := newFake(t, `{}`)
	p := &models.Product{
		ID:       uuid.New(),
		Name:     "Silk Foundation",
		Brand:    "Glow",
		Category: models.CategoryFace,
		Shades:   []models.Shade{{Name: "Ivory"}, {Name: "Honey"}},
	}

	require.NoError(t, s.Index(context.Background(), p))
	require.NoError(t, s.Delete(context.Background(), p.ID), "404 on delete is not an error")

	key := "PUT /products/_doc/" + p.ID.String()
	require.Contains(t, f.bodies, key)
	var doc document
	require.NoError(t, json.Unmarshal([]byte(f.bodies[key]), &doc))
	assert.Equal(t, []string{"Ivory", "Honey"}, doc.Shades)
	assert.Equal(t, "Face", doc.Category)
}

func TestESSearcher_Search(t *testing.T) {
	t.Parallel()

	a, b := uuid.New(), uuid.New()
	resp := `{"hits":{"total":{"value":2},"hits":[` +
		`{"_source":{"id":"` + a.String() + `"}},` +
		`{"_source":{"id":"not-an-id"}},` +
		`{"_source":{"id":"` + b.String() + `"}}]}}`
	f, s := newFake(t, resp)

	total, ids, err := s.Search(context.Background(), "fondation", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, []uuid.UUID{a, b}, ids)

	var q map[string]any
	require.NoError(t, json.Unmarshal([]byte(f.bodies["POST /products/_search"]), &q))
	mm := q["query"].(map[string]any)["multi_match"].(map[string]any)
	assert.Equal(t, "fondation", mm["query"])
	assert.Equal(t, "AUTO", mm["fuzziness"])
}
