package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageWork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			_, _ = w.Write([]byte("<html>hello</html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := NewClient(5 * time.Second)

	t.Run("success", func(t *testing.T) {
		value, err := PageWork{Client: client, URL: srv.URL + "/ok"}.Invoke(context.Background())
		require.NoError(t, err)

		summary, ok := value.(PageSummary)
		require.True(t, ok)
		assert.Equal(t, http.StatusOK, summary.StatusCode)
		assert.Equal(t, int64(len("<html>hello</html>")), summary.Bytes)
	})

	t.Run("non-2xx is an error", func(t *testing.T) {
		_, err := PageWork{Client: client, URL: srv.URL + "/missing"}.Invoke(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 404")
	})
}
