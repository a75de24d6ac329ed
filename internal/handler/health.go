package handler

import (
	"context"
	"net/http"
	"time"

	"calhaforte/internal/infra"
	"calhaforte/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health returns a JSON health check response.
// Checks DB and Redis connectivity plus the renderer circuit breaker state
// and the notification dead-letter depth; never exposes credentials or
// internals.
func Health(db *gorm.DB, rdb *redis.Client, renderer *infra.RendererClient, pool *worker.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "connected"
		if rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		body := gin.H{
			"ok":    status == http.StatusOK,
			"db":    dbStatus,
			"redis": redisStatus,
		}
		if renderer != nil {
			body["renderer_breaker"] = renderer.Breaker().State().String()
		}
		if pool != nil {
			if depth, err := pool.DeadLetterDepth(ctx, worker.QueueNotify); err == nil {
				body["notify_dlq_depth"] = depth
			}
		}
		c.JSON(status, body)
	}
}
