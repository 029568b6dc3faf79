package classify

import (
	"strings"

	"rayenna-crm/internal/filter"
)

// Bucket names a classification a listing can be restricted to.
type Bucket string

const (
	BucketAll          Bucket = ""
	BucketRevenue      Bucket = "revenue"
	BucketPipeline     Bucket = "pipeline"
	BucketOpenPipeline Bucket = "open_pipeline"
)

func ParseBucket(s string) (Bucket, bool) {
	switch b := Bucket(strings.ToLower(strings.TrimSpace(s))); b {
	case BucketAll, BucketRevenue, BucketPipeline, BucketOpenPipeline:
		return b, true
	}
	return "", false
}

// ForBucket derives the predicate for b from base.
func ForBucket(base filter.Predicate, b Bucket) filter.Predicate {
	switch b {
	case BucketRevenue:
		return Revenue(base)
	case BucketPipeline:
		return Pipeline(base)
	case BucketOpenPipeline:
		return OpenPipeline(base)
	}
	return base
}
