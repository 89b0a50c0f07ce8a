package application

import (
	"context"

	"go.uber.org/zap"

	"github.com/loca-mat/service-rental/internal/domain/rental"
)

// RevenueReportDTO summarizes revenue over the trailing 30 days.
type RevenueReportDTO struct {
	TotalCents int64 `json:"total_cents"`
}

// ReportService produces operational reports for fleet managers.
type ReportService struct {
	store  rental.InventoryStore
	logger *zap.Logger
}

// NewReportService creates a new ReportService.
func NewReportService(store rental.InventoryStore, logger *zap.Logger) *ReportService {
	return &ReportService{store: store, logger: logger}
}

// OverdueContracts lists ongoing contracts whose end date has passed without
// a recorded return.
func (s *ReportService) OverdueContracts(ctx context.Context) ([]ContractDTO, error) {
	contracts, err := s.store.OverdueContracts(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]ContractDTO, len(contracts))
	for i, c := range contracts {
		dtos[i] = toContractDTO(c, nil)
	}
	return dtos, nil
}

// RevenueLast30Days sums non-cancelled contract prices created in the last
// 30 days.
func (s *ReportService) RevenueLast30Days(ctx context.Context) (*RevenueReportDTO, error) {
	total, err := s.store.RevenueLast30Days(ctx)
	if err != nil {
		return nil, err
	}
	return &RevenueReportDTO{TotalCents: total}, nil
}

// TopItemsByRevenue lists the items that generated the most revenue
// month-to-date.
func (s *ReportService) TopItemsByRevenue(ctx context.Context, limit int) ([]rental.ItemRevenue, error) {
	if limit <= 0 {
		limit = 5
	}
	return s.store.TopItemsByRevenue(ctx, limit)
}
