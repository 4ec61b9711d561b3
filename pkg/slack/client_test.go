package slack

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	c := New("xoxb-token")
	c.APIURL = server.URL
	return c
}

func TestSend(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat.postMessage", r.URL.Path)
		assert.Equal(t, "Bearer xoxb-token", r.Header.Get("Authorization"))

		var payload map[string]string
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &payload))
		assert.Equal(t, "#releases", payload["channel"])
		assert.Equal(t, "Release 1.2.3 is live", payload["text"])
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))

	assert.NoError(t, c.Send("#releases", "Release 1.2.3 is live"))
}

func TestSendAPIError(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false,"error":"channel_not_found"}`))
	}))

	err := c.Send("#nope", "message")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel_not_found")
}

func TestSendDryRun(t *testing.T) {
	var calls atomic.Int32
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	c.DryRun = true

	assert.NoError(t, c.Send("#releases", "message"))
	assert.Equal(t, int32(0), calls.Load())
}
