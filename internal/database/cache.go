package database

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"nutrialert/internal/metrics"
)

// MetricsCache keeps each user's most recent HealthMetrics record in memory
// so dashboard reads skip the database on the hot path. Records are immutable
// once computed, so the only invalidation is replacement on a new calculation.
type MetricsCache struct {
	cache *lru.Cache[string, *metrics.HealthMetrics]
}

func NewMetricsCache(size int) (*MetricsCache, error) {
	c, err := lru.New[string, *metrics.HealthMetrics](size)
	if err != nil {
		return nil, err
	}
	return &MetricsCache{cache: c}, nil
}

func (c *MetricsCache) Latest(userID string) (*metrics.HealthMetrics, bool) {
	return c.cache.Get(userID)
}

func (c *MetricsCache) Put(rec *metrics.HealthMetrics) {
	c.cache.Add(rec.UserID, rec)
}
