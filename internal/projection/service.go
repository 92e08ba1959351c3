package projection

import (
	"net/http"

	httperr "github.com/aevon-lab/loan-aggregator/internal/core/errors"
	"github.com/gin-gonic/gin"
)

// Service serves read-only queries over a finished ingestion run.
// It must only be registered once ingestion has returned.
type Service struct {
	q Querier
}

// NewService creates a projection service over q.
func NewService(q Querier) *Service {
	if q == nil {
		panic("projection: querier must not be nil")
	}
	return &Service{q: q}
}

// RegisterRoutes registers the query routes on r.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/aggregates", s.HandleListBuckets)
	r.GET("/v1/aggregates/:network/:product/:month", s.HandleGetBucket)
}

// HandleListBuckets handles GET /v1/aggregates?network=&product=&month=
func (s *Service) HandleListBuckets(c *gin.Context) {
	var query BucketQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidQueryError,
			Message:   "Invalid query parameters",
			Details:   err.Error(),
		})
		return
	}

	rows := toRows(s.q.Entries(), query)
	c.JSON(http.StatusOK, BucketListResponse{Buckets: rows, Size: len(rows)})
}

// HandleGetBucket handles GET /v1/aggregates/:network/:product/:month.
// Unknown keys answer 200 with zero count and total.
func (s *Service) HandleGetBucket(c *gin.Context) {
	var key BucketKey
	if err := c.ShouldBindUri(&key); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidQueryError,
			Message:   "Invalid path parameters",
			Details:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, BucketRow{
		Network: key.Network,
		Product: key.Product,
		Month:   key.Month,
		Count:   s.q.Count(key.Network, key.Product, key.Month),
		Total:   s.q.Total(key.Network, key.Product, key.Month),
	})
}
