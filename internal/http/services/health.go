package services

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/taskhub/internal/cache"
	"github.com/dropDatabas3/taskhub/internal/http/dto"
	"github.com/dropDatabas3/taskhub/internal/observability/logger"
)

// Pinger es cualquier dependencia con health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// cacheStatser lo implementan los clientes de internal/cache.
type cacheStatser interface {
	Stats(ctx context.Context) (cache.Stats, error)
}

type HealthService interface {
	// Check retorna ok=false solo si la base no responde. Un cache caído
	// degrada el componente pero no el estado global.
	Check(ctx context.Context) (resp dto.HealthResponse, ok bool)
}

type healthService struct {
	db      Pinger
	cache   Pinger
	started time.Time
	now     func() time.Time
	timeout time.Duration
}

// NewHealthService acepta cache nil (sin reporte de componente).
func NewHealthService(db, cache Pinger, started time.Time) HealthService {
	return &healthService{db: db, cache: cache, started: started, now: time.Now, timeout: 2 * time.Second}
}

func (s *healthService) Check(ctx context.Context) (dto.HealthResponse, bool) {
	now := s.now()
	resp := dto.HealthResponse{
		Uptime:    now.Sub(s.started).Seconds(),
		Timestamp: now.UTC().Format(time.RFC3339Nano),
	}

	pctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var dbErr, cacheErr error
	var g errgroup.Group
	g.Go(func() error {
		if s.db == nil {
			dbErr = errors.New("no database")
			return nil
		}
		dbErr = s.db.Ping(pctx)
		return nil
	})
	if s.cache != nil {
		g.Go(func() error {
			cacheErr = s.cache.Ping(pctx)
			return nil
		})
	}
	_ = g.Wait()

	if s.cache != nil {
		resp.Components = map[string]string{"cache": "ok"}
		if cacheErr != nil {
			logger.From(ctx).Warn("cache health check failed", logger.Err(cacheErr))
			resp.Components["cache"] = "fail"
		} else if sc, ok := s.cache.(cacheStatser); ok {
			resp.Cache = cacheStats(pctx, sc)
		}
	}

	if dbErr != nil {
		logger.From(ctx).Warn("database health check failed", logger.Err(dbErr))
		resp.Status = "fail"
		resp.Message = "Database is not connected"
		return resp, false
	}
	resp.Status = "ok"
	resp.Message = "Connected to Task Management API"
	resp.Database = "connected"
	return resp, true
}

func cacheStats(ctx context.Context, sc cacheStatser) *dto.CacheStats {
	st, err := sc.Stats(ctx)
	if err != nil {
		logger.From(ctx).Debug("cache stats unavailable", logger.Err(err))
		return nil
	}
	return &dto.CacheStats{
		Driver:     st.Driver,
		Keys:       st.Keys,
		UsedMemory: st.UsedMemory,
		Hits:       st.Hits,
		Misses:     st.Misses,
	}
}
