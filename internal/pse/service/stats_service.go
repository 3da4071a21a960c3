package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/arifsuz/pre-shipment-system/internal/pse/entity"
	"github.com/arifsuz/pre-shipment-system/internal/pse/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	statsCacheKey = "pse:stats"
	statsCacheTTL = 30 * time.Second
)

// Stats is the dashboard summary.
type Stats struct {
	TotalShipments int64 `json:"totalShipments"`
	Approved       int64 `json:"approved"`
	InProcess      int64 `json:"inProcess"`
	Draft          int64 `json:"draft"`
	TotalCompanies int64 `json:"totalCompanies"`
	TotalUsers     int64 `json:"totalUsers"`
}

// StatsService computes dashboard counts, cached in redis when available.
type StatsService struct {
	repos  *repository.Repositories
	rdb    *redis.Client
	logger *zap.Logger
}

func NewStatsService(repos *repository.Repositories, rdb *redis.Client, logger *zap.Logger) *StatsService {
	return &StatsService{repos: repos, rdb: rdb, logger: logger}
}

func (s *StatsService) Get(ctx context.Context) (*Stats, error) {
	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, statsCacheKey).Bytes(); err == nil {
			var cached Stats
			if json.Unmarshal(raw, &cached) == nil {
				return &cached, nil
			}
		}
	}

	stats, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if raw, err := json.Marshal(stats); err == nil {
			if err := s.rdb.Set(ctx, statsCacheKey, raw, statsCacheTTL).Err(); err != nil {
				s.logger.Debug("cache stats failed", zap.Error(err))
			}
		}
	}
	return stats, nil
}

func (s *StatsService) compute(ctx context.Context) (*Stats, error) {
	var (
		stats Stats
		err   error
	)
	counts := []struct {
		dst *int64
		fn  func() (int64, error)
	}{
		{&stats.TotalShipments, func() (int64, error) { return s.repos.Shipment.CountByStatus(ctx, "") }},
		{&stats.Approved, func() (int64, error) { return s.repos.Shipment.CountByStatus(ctx, entity.ShipmentStatusApproved) }},
		{&stats.InProcess, func() (int64, error) { return s.repos.Shipment.CountByStatus(ctx, entity.ShipmentStatusInProcess) }},
		{&stats.Draft, func() (int64, error) { return s.repos.Shipment.CountByStatus(ctx, entity.ShipmentStatusDraft) }},
		{&stats.TotalCompanies, func() (int64, error) { return s.repos.Company.Count(ctx) }},
		{&stats.TotalUsers, func() (int64, error) { return s.repos.User.Count(ctx) }},
	}
	for _, c := range counts {
		if *c.dst, err = c.fn(); err != nil {
			return nil, err
		}
	}
	return &stats, nil
}
