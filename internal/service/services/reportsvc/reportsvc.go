package reportsvc

import (
	"context"
	"fmt"
	"time"

	"github.com/campuseats/canteen/internal/dal/interfaces/iorderrepo"
	"github.com/campuseats/canteen/internal/dal/postgres"
	"github.com/campuseats/canteen/internal/dal/uow"
	"github.com/campuseats/canteen/internal/service/models/order"
	"github.com/spf13/viper"
)

type unitOfWork interface {
	OrderRepository() iorderrepo.IOrderRepository
}

// ReportService computes per-shop operational metrics from committed order
// state. Pure reads, no transaction needed.
type ReportService struct {
	pgClient   *postgres.Client
	uowFactory func() unitOfWork
	location   *time.Location
}

func (s *ReportService) newUOW() unitOfWork {
	if s.uowFactory != nil {
		return s.uowFactory()
	}

	return uow.NewUnitOfWork(s.pgClient)
}

// option is a function that configures the ReportService.
type option func(*ReportService)

// MustNewReportService creates a new ReportService. The reporting time zone
// comes from config (reports.timezone) and defaults to UTC: a "day" is that
// zone's 24-hour window.
func MustNewReportService(opts ...option) *ReportService {
	location := time.UTC
	if name := viper.GetString("reports.timezone"); name != "" {
		loc, err := time.LoadLocation(name)
		if err != nil {
			panic("invalid reports.timezone: " + err.Error())
		}
		location = loc
	}

	s := &ReportService{location: location}
	for _, opt := range opts {
		opt(s)
	}

	if s.pgClient == nil && s.uowFactory == nil {
		panic("report service requires a postgres client or a unit of work factory")
	}

	return s
}

// WithPostgresClient sets the Postgres client for the ReportService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *ReportService) {
		s.pgClient = pgClient
	}
}

// WithUnitOfWorkFactory overrides the store, used in tests.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWorkFactory(factory func() unitOfWork) option {
	return func(s *ReportService) {
		s.uowFactory = factory
	}
}

// WithLocation overrides the reporting time zone.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithLocation(loc *time.Location) option {
	return func(s *ReportService) {
		s.location = loc
	}
}

// DailySummary returns one shop's order count, accepted revenue and pending
// count for the given date.
func (s *ReportService) DailySummary(
	ctx context.Context,
	shopOwnerID int64,
	date time.Time,
) (order.DailySummary, error) {
	year, month, day := date.In(s.location).Date()
	from := time.Date(year, month, day, 0, 0, 0, 0, s.location)
	to := from.AddDate(0, 0, 1)

	summary, err := s.newUOW().OrderRepository().DailySummary(ctx, shopOwnerID, from, to)
	if err != nil {
		return order.DailySummary{}, fmt.Errorf("failed to compute daily summary: %w", err)
	}

	return summary, nil
}
