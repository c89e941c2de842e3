package ipfs

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justicantus/mediagate/common/config"
	"github.com/justicantus/mediagate/common/logger"
)

func testClient(apiURL, gatewayURL string) *Client {
	return New(config.StorageConfig{
		AddEndpoint:     apiURL,
		GatewayEndpoint: gatewayURL + "/",
		APIKey:          "project-id",
		APISecret:       "project-secret",
		Timeout:         2 * time.Second,
	}, logger.New("error", "text"))
}

func TestPublish(t *testing.T) {
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v0/add", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("pin"))

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "project-id", user)
		assert.Equal(t, "project-secret", pass)

		file, _, err := r.FormFile("file")
		require.NoError(t, err)
		gotBody, err = io.ReadAll(file)
		require.NoError(t, err)

		w.Write([]byte(`{"Name":"file","Hash":"QmTestHash123","Size":"42"}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL, srv.URL)

	cid, err := c.Publish(context.Background(), asReader(t, []byte("envelope bytes")))
	require.NoError(t, err)
	assert.Equal(t, "QmTestHash123", cid)
	assert.Equal(t, []byte("envelope bytes"), gotBody)
}

func TestPublishRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "basic auth required", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := testClient(srv.URL, srv.URL)

	_, err := c.Publish(context.Background(), asReader(t, []byte("x")))
	assert.ErrorIs(t, err, ErrStoreRejected)
}

func TestPublishUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := testClient(srv.URL, srv.URL)

	_, err := c.Publish(context.Background(), asReader(t, []byte("x")))
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/QmSomeCid", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "project-id", user)
		assert.Equal(t, "project-secret", pass)

		w.Write([]byte("stored ciphertext"))
	}))
	defer srv.Close()

	c := testClient(srv.URL, srv.URL)

	path, cleanup, err := c.Fetch(context.Background(), "QmSomeCid")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("stored ciphertext"), data)

	cleanup()
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFetchScratchPathsAreUnique(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("data"))
	}))
	defer srv.Close()

	c := testClient(srv.URL, srv.URL)

	p1, cleanup1, err := c.Fetch(context.Background(), "QmA")
	require.NoError(t, err)
	defer cleanup1()
	p2, cleanup2, err := c.Fetch(context.Background(), "QmA")
	require.NoError(t, err)
	defer cleanup2()

	assert.NotEqual(t, p1, p2)
}

func TestFetchRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := testClient(srv.URL, srv.URL)

	_, _, err := c.Fetch(context.Background(), "QmMissing")
	assert.ErrorIs(t, err, ErrStoreRejected)
}

func TestFetchUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := testClient(srv.URL, srv.URL)

	_, _, err := c.Fetch(context.Background(), "QmGone")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func asReader(t *testing.T, b []byte) io.Reader {
	t.Helper()
	return bytes.NewReader(b)
}
