package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/cache"
	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/domain"
	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/forecast"
	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/repository"
	"golang.org/x/sync/errgroup"
)

// ErrNoRepository is returned when a stored snapshot is requested but no
// database is configured.
var ErrNoRepository = errors.New("forecast: no snapshot repository configured")

type ForecastService struct {
	repo   repository.SnapshotRepository
	cache  cache.ForecastCache
	engine *forecast.Engine
}

func NewForecastService(repo repository.SnapshotRepository, cacheImpl cache.ForecastCache, engine *forecast.Engine) *ForecastService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopForecastCache()
	}
	if engine == nil {
		engine = forecast.NewEngine(forecast.DefaultConfig())
	}
	return &ForecastService{repo: repo, cache: cacheImpl, engine: engine}
}

// GetReport forecasts the snapshot selected by filter, serving repeated
// filters from the cache.
func (s *ForecastService) GetReport(ctx context.Context, filter domain.ForecastFilter) (*domain.ForecastReport, error) {
	if s.repo == nil {
		return nil, ErrNoRepository
	}

	key := cache.FilterKey(filter)
	if report, ok, err := s.cache.GetReport(ctx, key); err == nil && ok {
		return report, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("forecast: cache get report failed")
	}

	var (
		items   []domain.InventoryItem
		records []domain.RawTransaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.repo.GetInventoryItems(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		records, err = s.repo.GetRawTransactions(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	report := s.engine.AnalyzeRaw(items, records, filter.AsOf, filter.TopN)

	log.Info().
		Int("items", len(items)).
		Int("transactions", len(records)).
		Int("skipped", report.SkippedTransactions).
		Int("predictions", len(report.Predictions)).
		Bool("sufficient", report.Sufficiency.HasSufficientData).
		Msg("forecast: report computed")

	if err := s.cache.SetReport(ctx, key, &report); err != nil {
		log.Warn().Err(err).Msg("forecast: cache set report failed")
	}

	return &report, nil
}

// Evaluate forecasts an inline snapshot. Reports are cached by content hash,
// so resubmitting the same payload is a cache hit.
func (s *ForecastService) Evaluate(ctx context.Context, req domain.EvaluateRequest) (*domain.ForecastReport, error) {
	normalized := s.engine.Normalize(req.Transactions)
	snapshot := domain.Snapshot{
		Items:        req.Items,
		Transactions: normalized.Events,
		AsOf:         req.AsOf,
	}

	topN := req.TopN
	if topN <= 0 {
		topN = s.engine.Config().TopN
	}
	key := fmt.Sprintf("%s:top_n=%d", cache.SnapshotKey(forecast.SnapshotKey(snapshot)), topN)

	if report, ok, err := s.cache.GetReport(ctx, key); err == nil && ok {
		return report, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("forecast: cache get evaluation failed")
	}

	report := s.engine.Analyze(snapshot, topN)
	report.SkippedTransactions = normalized.Skipped

	if err := s.cache.SetReport(ctx, key, &report); err != nil {
		log.Warn().Err(err).Msg("forecast: cache set evaluation failed")
	}

	return &report, nil
}

// Invalidate drops every cached report, e.g. after a new import.
func (s *ForecastService) Invalidate(ctx context.Context) error {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		return fmt.Errorf("invalidate forecast cache: %w", err)
	}
	return nil
}

func (s *ForecastService) Config() forecast.Config {
	return s.engine.Config()
}
