package repository

import (
	"context"

	"crm-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuoteRepository interface {
	Create(ctx context.Context, quote *model.Quote) error
	FindByIDWithLines(ctx context.Context, id uuid.UUID) (*model.Quote, error)
	List(ctx context.Context, customer string, page, limit int) ([]model.Quote, int64, error)
	CountByPrefix(ctx context.Context, prefix string) (int64, error)
	SumTotalProfit(ctx context.Context) (float64, error)
	Count(ctx context.Context) (int64, error)
}

type quoteRepository struct {
	db *gorm.DB
}

func NewQuoteRepository(db *gorm.DB) QuoteRepository {
	return &quoteRepository{db: db}
}

func (r *quoteRepository) Create(ctx context.Context, quote *model.Quote) error {
	return GetDB(ctx, r.db).Create(quote).Error
}

func (r *quoteRepository) FindByIDWithLines(ctx context.Context, id uuid.UUID) (*model.Quote, error) {
	var quote model.Quote
	err := GetDB(ctx, r.db).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("no asc") }).
		First(&quote, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *quoteRepository) List(ctx context.Context, customer string, page, limit int) ([]model.Quote, int64, error) {
	var quotes []model.Quote
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Quote{})
	if customer != "" {
		query = query.Where("customer ILIKE ?", "%"+customer+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&quotes).Error; err != nil {
		return nil, 0, err
	}
	return quotes, total, nil
}

func (r *quoteRepository) CountByPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Quote{}).Where("quote_no LIKE ?", prefix+"%").Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *quoteRepository) SumTotalProfit(ctx context.Context) (float64, error) {
	var sum float64
	err := GetDB(ctx, r.db).Model(&model.Quote{}).
		Select("COALESCE(SUM(total_profit), 0)").Scan(&sum).Error
	return sum, err
}

func (r *quoteRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Quote{}).Count(&count).Error
	return count, err
}
