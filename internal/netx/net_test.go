package netx

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadPresignedURL(t *testing.T) {
	t.Run("200 OK", func(t *testing.T) {
		var gotMethod, gotQuery string
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotQuery = r.URL.RawQuery
			_, _ = w.Write([]byte(`[{"name":"Rome"}]`))
		}))
		defer ts.Close()

		var buf bytes.Buffer
		n, err := DownloadPresignedURL(context.Background(), ts.Client(), ts.URL+"/exports/x.json?X-Amz-Signature=abc", &buf)
		require.NoError(t, err)
		assert.Equal(t, int64(17), n)
		assert.Equal(t, `[{"name":"Rome"}]`, buf.String())
		assert.Equal(t, http.MethodGet, gotMethod)
		assert.Equal(t, "X-Amz-Signature=abc", gotQuery)
	})

	t.Run("non-200", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte("expired"))
		}))
		defer ts.Close()

		var buf bytes.Buffer
		_, err := DownloadPresignedURL(context.Background(), nil, ts.URL, &buf)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "download failed: 403")
		assert.Contains(t, err.Error(), "expired")
		assert.Zero(t, buf.Len())
	})

	t.Run("network error", func(t *testing.T) {
		ts := httptest.NewServer(http.NotFoundHandler())
		ts.Close()

		_, err := DownloadPresignedURL(context.Background(), nil, ts.URL, &bytes.Buffer{})
		require.Error(t, err)
		assert.NotContains(t, err.Error(), "download failed")
	})
}
