package handler

import (
	"context"
	"net/http"
	"time"

	"cotizador/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health returns a JSON health check response.
// Checks DB and Redis connectivity; never exposes credentials or internals.
// Redis is optional: without it the service runs uncached and "redis" is
// reported as "disabled".
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		body := gin.H{"db": dbStatus, "redis": "disabled"}
		if rdb != nil {
			body["redis"] = "connected"
			if rdb.Ping(ctx).Err() != nil {
				body["redis"] = "error"
			} else if n, err := worker.DLQLength(ctx, rdb, worker.QueueExportacion); err == nil {
				body["dlq_exportacion"] = n
			}
		}

		status := http.StatusOK
		if dbStatus != "connected" || body["redis"] == "error" {
			status = http.StatusServiceUnavailable
		}
		body["ok"] = status == http.StatusOK
		c.JSON(status, body)
	}
}
