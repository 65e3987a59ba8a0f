package recordings

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithoutEndpointIsDisabled(t *testing.T) {
	p, err := New(Config{})
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestNewRequiresBucket(t *testing.T) {
	_, err := New(Config{Endpoint: "localhost:9000"})
	assert.Error(t, err)
}

func TestURLIsSignedOffline(t *testing.T) {
	p, err := New(Config{
		Endpoint:  "localhost:9000",
		AccessKey: "minio",
		SecretKey: "minio123",
		Bucket:    "call-recordings",
		TTL:       10 * time.Minute,
	})
	require.NoError(t, err)

	raw, err := p.URL(context.Background(), "/recordings/CALL-0001.mp3")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/call-recordings/recordings/CALL-0001.mp3", u.Path)
	q := u.Query()
	assert.Equal(t, "600", q.Get("X-Amz-Expires"))
	assert.NotEmpty(t, q.Get("X-Amz-Signature"))
	assert.Equal(t, "audio/mpeg", q.Get("response-content-type"))
}

func TestURLRejectsEmptyKey(t *testing.T) {
	p, err := New(Config{Endpoint: "localhost:9000", Bucket: "b"})
	require.NoError(t, err)
	_, err = p.URL(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrNoKey)
}

func TestPingChecksBucket(t *testing.T) {
	exists := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		if !exists {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	p, err := New(Config{Endpoint: u.Host, AccessKey: "minio", SecretKey: "minio123", Bucket: "call-recordings"})
	require.NoError(t, err)

	assert.NoError(t, p.Ping(context.Background()))

	exists = false
	err = p.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}
