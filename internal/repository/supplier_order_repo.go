package repository

import (
	"context"

	"crm-backend/internal/model"

	"gorm.io/gorm"
)

type SupplierOrderRepository interface {
	Create(ctx context.Context, order *model.SupplierOrder) error
	List(ctx context.Context, supplier string, page, limit int) ([]model.SupplierOrder, int64, error)
}

type supplierOrderRepository struct {
	db *gorm.DB
}

func NewSupplierOrderRepository(db *gorm.DB) SupplierOrderRepository {
	return &supplierOrderRepository{db: db}
}

func (r *supplierOrderRepository) Create(ctx context.Context, order *model.SupplierOrder) error {
	return GetDB(ctx, r.db).Create(order).Error
}

func (r *supplierOrderRepository) List(ctx context.Context, supplier string, page, limit int) ([]model.SupplierOrder, int64, error) {
	var orders []model.SupplierOrder
	var total int64

	query := GetDB(ctx, r.db).Model(&model.SupplierOrder{})
	if supplier != "" {
		query = query.Where("supplier ILIKE ?", "%"+supplier+"%")
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
