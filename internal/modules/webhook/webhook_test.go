package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redelk-project/alarmd/internal/config"
	"github.com/redelk-project/alarmd/internal/hits"
	"github.com/redelk-project/alarmd/internal/module"
)

func depsWithURL(url string) *module.Deps {
	return &module.Deps{
		Config: &config.Config{
			Notifications: map[string]config.ModuleConfig{
				name: {Enabled: true, Settings: map[string]string{"url": url}},
			},
		},
	}
}

func TestNewRequiresURL(t *testing.T) {
	_, err := New(&module.Deps{Config: &config.Config{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "url")
}

func TestSendAlarmPostsPayload(t *testing.T) {
	var gotUA string
	var got hits.AlarmPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	t.Cleanup(srv.Close)

	c, err := New(depsWithURL(srv.URL))
	require.NoError(t, err)

	payload := &hits.AlarmPayload{
		Alarm:     "useragent",
		Submodule: "alarm_useragent",
		Total:     2,
		GroupBy:   []string{"source.ip"},
		Groups: []*hits.HitGroup{
			{Key: map[string]string{"source.ip": "10.0.0.1"}, Hits: []*hits.Hit{{ID: "h1"}, {ID: "h2"}}},
		},
	}
	require.NoError(t, c.SendAlarm(context.Background(), payload))

	assert.Equal(t, userAgent, gotUA)
	assert.Equal(t, "useragent", got.Alarm)
	assert.Equal(t, 2, got.Total)
	require.Len(t, got.Groups, 1)
	assert.Equal(t, "10.0.0.1", got.Groups[0].Key["source.ip"])
}

func TestSendAlarmRejectsNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	c, err := New(depsWithURL(srv.URL))
	require.NoError(t, err)

	err = c.SendAlarm(context.Background(), &hits.AlarmPayload{Alarm: "filehash"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}
