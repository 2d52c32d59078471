package useragent

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

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"curl", "gobuster", "ffuf"}, splitList("curl, gobuster ,ffuf"))
	assert.Equal(t, []string{"curl"}, splitList("curl,,  ,"))
	assert.Empty(t, splitList(" , "))
}

func TestRunQueriesBlocklist(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/redirtraffic-*/_search", r.URL.Path)
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
		  "hits": {
		    "total": {"value": 1, "relation": "eq"},
		    "hits": [
		      {"_id": "h1", "_index": "redirtraffic-2026.08.26", "_source": {
		        "source": {"ip": "203.0.113.7"},
		        "http": {"request": {"useragent": "nikto"}}
		      }}
		    ]
		  }
		}`))
	}))
	t.Cleanup(srv.Close)

	client, err := search.New(search.Config{URL: srv.URL})
	require.NoError(t, err)

	a, err := New(&module.Deps{Search: client, Config: &config.Config{}})
	require.NoError(t, err)

	rs, err := a.Run(context.Background())
	require.NoError(t, err)

	for _, ua := range defaultBlocklist {
		assert.Contains(t, gotBody, ua)
	}
	assert.Contains(t, gotBody, submodule, "already-tagged documents are excluded")

	assert.Equal(t, 1, rs.Hits.Total)
	assert.Equal(t, []string{"source.ip"}, rs.GroupBy)
	assert.Empty(t, rs.Mutations)
}

func TestConfiguredBlocklistReplacesDefault(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"hits":{"total":{"value":0},"hits":[]}}`))
	}))
	t.Cleanup(srv.Close)

	client, err := search.New(search.Config{URL: srv.URL})
	require.NoError(t, err)

	cfg := &config.Config{Alarms: map[string]config.ModuleConfig{
		name: {Enabled: true, Settings: map[string]string{"useragents": "gobuster,ffuf"}},
	}}
	a, err := New(&module.Deps{Search: client, Config: cfg})
	require.NoError(t, err)

	_, err = a.Run(context.Background())
	require.NoError(t, err)

	assert.Contains(t, gotBody, "gobuster")
	assert.Contains(t, gotBody, "ffuf")
	assert.NotContains(t, gotBody, "nikto")
}

func TestNewRequiresSearchClient(t *testing.T) {
	_, err := New(&module.Deps{})
	require.Error(t, err)
}
