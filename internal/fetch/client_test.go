package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Fetch(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/xml")
		w.Write([]byte(`<properties/>`))
	}))
	defer srv.Close()

	c := NewClient(Config{UserAgent: "test-agent"})
	data, err := c.Fetch(context.Background(), srv.URL+"/feed.xml")
	require.NoError(t, err)
	assert.Equal(t, `<properties/>`, string(data))
	assert.Equal(t, "test-agent", gotUA)
}

func TestClient_FetchStatusError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewClient(Config{}).Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Equal(t, 1, calls, "no retry expected")
}

func TestClient_FetchTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 100)))
	}))
	defer srv.Close()

	c := NewClient(Config{MaxBodyBytes: 10})
	_, err := c.Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrTooLarge)

	c = NewClient(Config{MaxBodyBytes: 100})
	data, err := c.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, data, 100)
}

func TestClient_FetchInvalidURL(t *testing.T) {
	_, err := NewClient(Config{}).Fetch(context.Background(), "://bad")
	assert.Error(t, err)
}

func TestClient_FetchTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(Config{Timeout: 50 * time.Millisecond})
	_, err := c.Fetch(context.Background(), srv.URL)
	assert.Error(t, err)
}
