package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGeocoder(t *testing.T, body string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "key-1", r.URL.Query().Get("apikey"))
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL, "key-1")
}

func TestResolveBestMatch(t *testing.T) {
	c := newTestGeocoder(t, `{"response":{"GeoObjectCollection":{"featureMember":[
		{"GeoObject":{"Point":{"pos":"37.6173 55.7558"}}},
		{"GeoObject":{"Point":{"pos":"30.3351 59.9343"}}}
	]}}}`)

	p, found, err := c.Resolve(context.Background(), "Moscow, Red Square")
	require.NoError(t, err)
	assert.True(t, found)
	assert.InDelta(t, 37.6173, p.Lon, 1e-9)
	assert.InDelta(t, 55.7558, p.Lat, 1e-9)
}

func TestResolveEmptyResultIsNotAnError(t *testing.T) {
	c := newTestGeocoder(t, `{"response":{"GeoObjectCollection":{"featureMember":[]}}}`)

	_, found, err := c.Resolve(context.Background(), "gibberish")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestResolveMalformedPosition(t *testing.T) {
	c := newTestGeocoder(t, `{"response":{"GeoObjectCollection":{"featureMember":[
		{"GeoObject":{"Point":{"pos":"not coordinates here"}}}
	]}}}`)

	_, _, err := c.Resolve(context.Background(), "anywhere")
	assert.Error(t, err)
}

func TestResolveServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, _, err := New(srv.URL, "k").Resolve(context.Background(), "anywhere")
	assert.Error(t, err)
}
