package service

import (
	"log/slog"

	"financial-ledger/internal/domain"
)

// DashboardService computes the running credit/debit totals shown on the
// summary tiles. It shares the query engine's filter grammar.
type DashboardService struct {
	store  domain.TransactionStore
	logger *slog.Logger
}

func NewDashboardService(store domain.TransactionStore, logger *slog.Logger) *DashboardService {
	return &DashboardService{
		store:  store,
		logger: logger,
	}
}

// Summarize returns totals for the transactions matching the filter. The
// store computes everything from one consistent read, never from
// independently-timed sub-queries.
func (s *DashboardService) Summarize(filter domain.Filter) (*domain.Summary, error) {
	summary, err := s.store.Summarize(filter)
	if err != nil {
		s.logger.Error("Failed to compute dashboard summary", "error", err)
		return nil, err
	}
	return summary, nil
}
