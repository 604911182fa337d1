package service

import (
	"context"
	"fmt"

	"crm-backend/internal/repository"
)

// --- DTOs ---

type DashboardStatistics struct {
	QuoteCount       int64   `json:"quote_count"`
	TotalQuoteProfit float64 `json:"total_quote_profit"`
	OrderCount       int64   `json:"order_count"`
	TotalOrderValue  float64 `json:"total_order_value"`
}

// --- Interface ---

type StatisticsService interface {
	Dashboard(ctx context.Context) (DashboardStatistics, error)
}

type statisticsService struct {
	quoteRepo repository.QuoteRepository
	orderRepo repository.CustomerOrderRepository
}

func NewStatisticsService(quoteRepo repository.QuoteRepository, orderRepo repository.CustomerOrderRepository) StatisticsService {
	return &statisticsService{quoteRepo: quoteRepo, orderRepo: orderRepo}
}

// --- Implementation ---

func (s *statisticsService) Dashboard(ctx context.Context) (DashboardStatistics, error) {
	var stats DashboardStatistics
	var err error

	if stats.QuoteCount, err = s.quoteRepo.Count(ctx); err != nil {
		return DashboardStatistics{}, fmt.Errorf("failed to count quotes: %w", err)
	}
	if stats.TotalQuoteProfit, err = s.quoteRepo.SumTotalProfit(ctx); err != nil {
		return DashboardStatistics{}, fmt.Errorf("failed to sum quote profit: %w", err)
	}
	if stats.OrderCount, err = s.orderRepo.Count(ctx); err != nil {
		return DashboardStatistics{}, fmt.Errorf("failed to count orders: %w", err)
	}
	if stats.TotalOrderValue, err = s.orderRepo.SumTotalValue(ctx); err != nil {
		return DashboardStatistics{}, fmt.Errorf("failed to sum order value: %w", err)
	}

	return stats, nil
}
