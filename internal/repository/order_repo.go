package repository

import (
	"context"

	"crm-backend/internal/model"

	"gorm.io/gorm"
)

type CustomerOrderRepository interface {
	Create(ctx context.Context, order *model.CustomerOrder) error
	FindByPONumber(ctx context.Context, poNumber string) (*model.CustomerOrder, error)
	List(ctx context.Context, status string, page, limit int) ([]model.CustomerOrder, int64, error)
	Update(ctx context.Context, order *model.CustomerOrder) error
	SumTotalValue(ctx context.Context) (float64, error)
	Count(ctx context.Context) (int64, error)
}

type customerOrderRepository struct {
	db *gorm.DB
}

func NewCustomerOrderRepository(db *gorm.DB) CustomerOrderRepository {
	return &customerOrderRepository{db: db}
}

func (r *customerOrderRepository) Create(ctx context.Context, order *model.CustomerOrder) error {
	return GetDB(ctx, r.db).Create(order).Error
}

func (r *customerOrderRepository) FindByPONumber(ctx context.Context, poNumber string) (*model.CustomerOrder, error) {
	var order model.CustomerOrder
	if err := GetDB(ctx, r.db).First(&order, "po_number = ?", poNumber).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *customerOrderRepository) List(ctx context.Context, status string, page, limit int) ([]model.CustomerOrder, int64, error) {
	var orders []model.CustomerOrder
	var total int64

	query := GetDB(ctx, r.db).Model(&model.CustomerOrder{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *customerOrderRepository) Update(ctx context.Context, order *model.CustomerOrder) error {
	return GetDB(ctx, r.db).Save(order).Error
}

func (r *customerOrderRepository) SumTotalValue(ctx context.Context) (float64, error) {
	var sum float64
	err := GetDB(ctx, r.db).Model(&model.CustomerOrder{}).
		Select("COALESCE(SUM(total_value), 0)").Scan(&sum).Error
	return sum, err
}

func (r *customerOrderRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.CustomerOrder{}).Count(&count).Error
	return count, err
}
