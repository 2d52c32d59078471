package filehash

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redelk-project/alarmd/internal/config"
	"github.com/redelk-project/alarmd/internal/module"
	"github.com/redelk-project/alarmd/internal/search"
)

const searchResponse = `{
  "hits": {
    "total": {"value": 2, "relation": "eq"},
    "hits": [
      {"_id": "h1", "_index": "rtops-2026.08.26", "_source": {
        "file": {"hash": {"md5": "d41d8cd98f00b204e9800998ecf8427e"}},
        "host": "implant-a"
      }},
      {"_id": "h2", "_index": "rtops-2026.08.25", "_source": {
        "host": "implant-b"
      }}
    ]
  }
}`

func newTestAlarm(t *testing.T, handler http.HandlerFunc) (module.Alarm, *string) {
	t.Helper()
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := search.New(search.Config{URL: srv.URL})
	require.NoError(t, err)

	a, err := New(&module.Deps{Search: client, Config: &config.Config{}})
	require.NoError(t, err)
	return a, &gotBody
}

func TestNewRequiresSearchClient(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
	_, err = New(&module.Deps{})
	require.Error(t, err)
}

func TestRun(t *testing.T) {
	a, gotBody := newTestAlarm(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rtops-*/_search", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(searchResponse))
	})

	rs, err := a.Run(context.Background())
	require.NoError(t, err)

	assert.Contains(t, *gotBody, `"exists"`)
	assert.Contains(t, *gotBody, defaultHashField)
	assert.Contains(t, *gotBody, submodule, "already-tagged documents are excluded")

	assert.Equal(t, 2, rs.Hits.Total)
	assert.Equal(t, []string{defaultHashField}, rs.GroupBy)

	// Only the hit actually carrying the hash field gets a mutation.
	require.Contains(t, rs.Mutations, "h1")
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", rs.Mutations["h1"]["hash"])
	assert.Equal(t, "rtops-2026.08.26", rs.Mutations["h1"]["source_index"])
	assert.NotContains(t, rs.Mutations, "h2")
}

func TestRunSearchError(t *testing.T) {
	a, _ := newTestAlarm(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"shard failure"}`))
	})

	_, err := a.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "filehash")
}

func TestConfiguredIndexAndField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/custom-*/_search", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"hits":{"total":{"value":0},"hits":[]}}`))
	}))
	t.Cleanup(srv.Close)

	client, err := search.New(search.Config{URL: srv.URL})
	require.NoError(t, err)

	cfg := &config.Config{Alarms: map[string]config.ModuleConfig{
		name: {Enabled: true, Settings: map[string]string{
			"index":      "custom-*",
			"hash_field": "file.hash.sha256",
		}},
	}}
	a, err := New(&module.Deps{Search: client, Config: cfg})
	require.NoError(t, err)

	rs, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"file.hash.sha256"}, rs.GroupBy)
	assert.Zero(t, rs.Hits.Total)
}
