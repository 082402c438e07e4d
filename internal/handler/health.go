package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const healthProbeTimeout = 3 * time.Second

// Health probes the Postgres and Redis backends and reports per-dependency
// state. Returns 503 when any dependency is down so load balancers can pull
// the instance out of rotation.
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthProbeTimeout)
		defer cancel()

		checks := gin.H{
			"postgres": probePostgres(ctx, db),
			"redis":    probeRedis(ctx, rdb),
		}

		status := "ok"
		code := http.StatusOK
		for _, state := range checks {
			if state != "up" {
				status = "degraded"
				code = http.StatusServiceUnavailable
			}
		}

		c.JSON(code, gin.H{
			"status": status,
			"checks": checks,
		})
	}
}

func probePostgres(ctx context.Context, db *gorm.DB) string {
	sqlDB, err := db.DB()
	if err != nil || sqlDB.PingContext(ctx) != nil {
		return "down"
	}
	return "up"
}

func probeRedis(ctx context.Context, rdb *redis.Client) string {
	if rdb.Ping(ctx).Err() != nil {
		return "down"
	}
	return "up"
}
