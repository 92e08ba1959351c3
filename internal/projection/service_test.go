package projection

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewService(newTestIngester(t)).RegisterRoutes(r)
	return r
}

func doGet(t *testing.T, r *gin.Engine, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestHandleGetBucket(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name      string
		target    string
		wantCount int64
		wantTotal int64
	}{
		{"known key", "/v1/aggregates/Network%201/Loan%20Product%201/Mar", 2, 1500},
		{"other network", "/v1/aggregates/Network%202/Loan%20Product%201/Mar", 1, 1122},
		{"unknown key", "/v1/aggregates/Network%203/Loan%20Product%201/Mar", 0, 0},
		{"case sensitive", "/v1/aggregates/network%201/Loan%20Product%201/Mar", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doGet(t, r, tt.target)
			require.Equal(t, http.StatusOK, w.Code)

			var got BucketRow
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			require.Equal(t, tt.wantCount, got.Count)
			require.Equal(t, tt.wantTotal, got.Total)
		})
	}
}

func TestHandleListBuckets(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name     string
		target   string
		wantSize int
	}{
		{"no filter", "/v1/aggregates", 3},
		{"by network", "/v1/aggregates?network=Network%201", 2},
		{"by month", "/v1/aggregates?month=Mar", 2},
		{"by all", "/v1/aggregates?network=Network%201&product=Loan%20Product%202&month=Apr", 1},
		{"no match", "/v1/aggregates?network=Nope", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doGet(t, r, tt.target)
			require.Equal(t, http.StatusOK, w.Code)

			var got BucketListResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			require.Equal(t, tt.wantSize, got.Size)
			require.Len(t, got.Buckets, tt.wantSize)
		})
	}
}

func TestNewService_NilQuerierPanics(t *testing.T) {
	require.Panics(t, func() { NewService(nil) })
}
