package projection

// BucketRow is one (network, product, month) aggregate in a report or API response.
type BucketRow struct {
	Network string `json:"network" yaml:"network"`
	Product string `json:"product" yaml:"product"`
	Month   string `json:"month" yaml:"month"`
	Count   int64  `json:"count" yaml:"count"`
	Total   int64  `json:"total" yaml:"total"`
}

// Report is the rendered result of an ingestion run.
type Report struct {
	Records int64       `json:"records" yaml:"records"`
	Skipped int64       `json:"skipped" yaml:"skipped"`
	Buckets []BucketRow `json:"buckets" yaml:"buckets"`
}

// BucketQuery filters the bucket listing. Empty fields match everything.
type BucketQuery struct {
	Network string `form:"network"`
	Product string `form:"product"`
	Month   string `form:"month"`
}

// BucketKey addresses a single bucket by path.
type BucketKey struct {
	Network string `uri:"network" binding:"required"`
	Product string `uri:"product" binding:"required"`
	Month   string `uri:"month" binding:"required"`
}

// BucketListResponse is returned by the bucket listing endpoint.
type BucketListResponse struct {
	Buckets []BucketRow `json:"buckets"`
	Size    int         `json:"size"`
}
