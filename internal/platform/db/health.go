package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// PoolStats is a snapshot of connection pool statistics.
type PoolStats struct {
	TotalConns    int32 `json:"total_conns"`
	IdleConns     int32 `json:"idle_conns"`
	AcquiredConns int32 `json:"acquired_conns"`
	MaxConns      int32 `json:"max_conns"`
}

// Health reports database reachability plus pool statistics.
type Health struct {
	Status  string    `json:"status"`
	Latency string    `json:"latency,omitempty"`
	Error   string    `json:"error,omitempty"`
	Pool    PoolStats `json:"pool"`
}

// CheckHealth pings the database and collects pool statistics.
func CheckHealth(ctx context.Context, pool *pgxpool.Pool) Health {
	stat := pool.Stat()
	h := Health{
		Pool: PoolStats{
			TotalConns:    stat.TotalConns(),
			IdleConns:     stat.IdleConns(),
			AcquiredConns: stat.AcquiredConns(),
			MaxConns:      stat.MaxConns(),
		},
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	if err := pool.Ping(pingCtx); err != nil {
		h.Status = "unhealthy"
		h.Error = err.Error()
		return h
	}

	h.Status = "healthy"
	h.Latency = time.Since(start).String()
	return h
}

// HealthHandler returns an echo handler serving the database health report.
// Responds 503 when the database is unreachable.
func HealthHandler(pool *pgxpool.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		h := CheckHealth(c.Request().Context(), pool)
		code := 200
		if h.Status != "healthy" {
			code = 503
		}
		return c.JSON(code, h)
	}
}
