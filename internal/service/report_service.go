package service

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/openevent/runsheet-api/internal/dto"
	"github.com/openevent/runsheet-api/internal/models"
	"github.com/openevent/runsheet-api/internal/repository"
)

// ReportService aggregates the post-event punctuality report for one
// schedule variant across all days.
type ReportService interface {
	Summary(ctx context.Context, variant string) (dto.ReportSummary, error)
}

type reportService struct {
	activities       repository.ActivityRepository
	cache            *redis.Client
	cacheTTL         time.Duration
	toleranceMinutes int
	logger           zerolog.Logger
	now              func() time.Time
}

// NewReportService constructs the report aggregator. toleranceMinutes is the
// report on-time band, independent of the live tracker tolerance.
func NewReportService(activities repository.ActivityRepository, cache *redis.Client, ttl time.Duration, toleranceMinutes int, logger zerolog.Logger) ReportService {
	return &reportService{
		activities:       activities,
		cache:            cache,
		cacheTTL:         ttl,
		toleranceMinutes: toleranceMinutes,
		logger:           logger.With().Str("component", "report_service").Logger(),
		now:              time.Now,
	}
}

func (s *reportService) Summary(ctx context.Context, variant string) (dto.ReportSummary, error) {
	cacheKey := "reports:summary:" + variant
	tracer := otel.Tracer("github.com/openevent/runsheet-api/internal/service/report")
	ctx, span := tracer.Start(ctx, "report.aggregate")
	span.SetAttributes(attribute.String("report.cache_key", cacheKey))
	defer span.End()

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey).Result()
		if err == nil {
			var summary dto.ReportSummary
			if unmarshalErr := json.Unmarshal([]byte(cached), &summary); unmarshalErr == nil {
				summary.CacheHit = true
				span.SetAttributes(attribute.Bool("report.cache_hit", true))
				return summary, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read report cache")
			span.RecordError(err)
		}
	}

	activities, err := s.activities.ListAll(ctx, variant)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list_activities_failed")
		return dto.ReportSummary{}, storeErr("report summary", err)
	}

	summary := buildReportSummary(variant, activities, s.toleranceMinutes, s.now())
	span.SetAttributes(
		attribute.Int("report.total_activities", summary.Total),
		attribute.Int("report.completed", summary.Completed),
	)

	if s.cache != nil {
		payload, err := json.Marshal(summary)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store report cache")
				span.RecordError(err)
			}
		}
	}

	return summary, nil
}

// buildReportSummary is a pure function of the activity snapshot; running it
// twice over the same snapshot yields identical figures.
func buildReportSummary(variant string, activities []models.Activity, toleranceMinutes int, now time.Time) dto.ReportSummary {
	summary := dto.ReportSummary{
		Variant:     variant,
		Total:       len(activities),
		GeneratedAt: now.UTC(),
	}

	type typeBucket struct {
		completed  int
		sumPlanned int
		sumActual  int
	}
	type dayBucket struct {
		completed  int
		onTime     int
		sumPlanned int
		sumActual  int
	}
	byType := map[string]*typeBucket{}
	byDay := map[models.EventDay]*dayBucket{}

	onTimeCompleted := 0
	var largest *dto.ActivityInsight

	for _, activity := range activities {
		switch activity.ExecutionStatus {
		case models.StatusCompleted:
			summary.Completed++
		case models.StatusSkipped:
			summary.Skipped++
		case models.StatusInProgress:
			summary.InProgress++
		default:
			summary.Pending++
		}

		if activity.PlannedDurationMinutes != nil {
			summary.PlannedTotalMinutes += *activity.PlannedDurationMinutes
		}

		if activity.ExecutionStatus != models.StatusCompleted {
			continue
		}

		if activity.ActualDurationMinutes != nil {
			summary.ActualTotalMinutes += *activity.ActualDurationMinutes
		}

		tb := byType[activity.Type]
		if tb == nil {
			tb = &typeBucket{}
			byType[activity.Type] = tb
		}
		db := byDay[activity.Day]
		if db == nil {
			db = &dayBucket{}
			byDay[activity.Day] = db
		}
		tb.completed++
		db.completed++
		if activity.PlannedDurationMinutes != nil {
			tb.sumPlanned += *activity.PlannedDurationMinutes
			db.sumPlanned += *activity.PlannedDurationMinutes
		}
		if activity.ActualDurationMinutes != nil {
			tb.sumActual += *activity.ActualDurationMinutes
			db.sumActual += *activity.ActualDurationMinutes
		}

		diff, ok := activity.DurationDiffMinutes()
		if !ok {
			continue
		}
		if diff >= -toleranceMinutes && diff <= toleranceMinutes {
			onTimeCompleted++
			db.onTime++
		}
		if diff > 0 && (largest == nil || diff > largest.DiffMinutes) {
			largest = &dto.ActivityInsight{
				ActivityID:  activity.ID,
				Title:       activity.Title,
				Day:         activity.Day,
				DiffMinutes: diff,
			}
		}
	}

	summary.OverallDiffMinutes = summary.ActualTotalMinutes - summary.PlannedTotalMinutes
	if summary.Completed > 0 {
		summary.PunctualityRate = int(math.Round(float64(onTimeCompleted) / float64(summary.Completed) * 100))
	}

	typeNames := make([]string, 0, len(byType))
	for name := range byType {
		typeNames = append(typeNames, name)
	}
	sort.Strings(typeNames)
	summary.ByType = make([]dto.TypeSummary, 0, len(typeNames))
	for _, name := range typeNames {
		tb := byType[name]
		summary.ByType = append(summary.ByType, dto.TypeSummary{
			Type:           name,
			Completed:      tb.completed,
			PlannedMinutes: tb.sumPlanned,
			ActualMinutes:  tb.sumActual,
			AvgDiffMinutes: int(math.Round(float64(tb.sumActual-tb.sumPlanned) / float64(tb.completed))),
		})
	}

	summary.ByDay = make([]dto.DaySummary, 0, len(byDay))
	var best *dto.DayInsight
	for _, day := range models.EventDays() {
		db := byDay[day]
		if db == nil {
			continue
		}
		summary.ByDay = append(summary.ByDay, dto.DaySummary{
			Day:            day,
			PlannedMinutes: db.sumPlanned,
			ActualMinutes:  db.sumActual,
			DiffMinutes:    db.sumActual - db.sumPlanned,
		})
		percent := int(math.Round(float64(db.onTime) / float64(db.completed) * 100))
		if best == nil || percent > best.OnTimePercent {
			best = &dto.DayInsight{Day: day, OnTimePercent: percent}
		}
	}

	summary.LargestOverrun = largest
	summary.BestDay = best

	return summary
}
