package repository

import (
	"context"

	"crm-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CatalogRepository interface {
	// UpsertBatch inserts or overwrites one batch keyed on specs. Each
	// call is its own atomic statement; omitColumns lets the caller drop
	// columns the remote schema rejects.
	UpsertBatch(ctx context.Context, items []model.CatalogItem, omitColumns ...string) error
	List(ctx context.Context, search string, page, limit int) ([]model.CatalogItem, int64, error)
	FindAll(ctx context.Context) ([]model.CatalogItem, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.CatalogItem, error)
	UpdateImage(ctx context.Context, id uuid.UUID, ref string) error
	DeleteAll(ctx context.Context) error
}

type catalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) UpsertBatch(ctx context.Context, items []model.CatalogItem, omitColumns ...string) error {
	if len(items) == 0 {
		return nil
	}
	tx := GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "specs"}},
		UpdateAll: true,
	})
	if len(omitColumns) > 0 {
		tx = tx.Omit(omitColumns...)
	}
	return tx.Create(&items).Error
}

func (r *catalogRepository) List(ctx context.Context, search string, page, limit int) ([]model.CatalogItem, int64, error) {
	var items []model.CatalogItem
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.CatalogItem{})
	if search != "" {
		like := "%" + search + "%"
		query = query.Where(
			"item_code ILIKE ? OR item_name ILIKE ? OR specs ILIKE ? OR supplier ILIKE ?",
			like, like, like, like,
		)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	// Sort by the sheet's No column numerically; non-numeric No sinks to
	// the bottom.
	err := query.
		Order("NULLIF(regexp_replace(no, '[^0-9]', '', 'g'), '')::numeric NULLS LAST").
		Offset(offset).Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *catalogRepository) FindAll(ctx context.Context) ([]model.CatalogItem, error) {
	var items []model.CatalogItem
	if err := GetDB(ctx, r.db).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *catalogRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.CatalogItem, error) {
	var item model.CatalogItem
	if err := GetDB(ctx, r.db).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *catalogRepository) UpdateImage(ctx context.Context, id uuid.UUID, ref string) error {
	return GetDB(ctx, r.db).Model(&model.CatalogItem{}).Where("id = ?", id).Update("images", ref).Error
}

func (r *catalogRepository) DeleteAll(ctx context.Context) error {
	return GetDB(ctx, r.db).Where("1 = 1").Delete(&model.CatalogItem{}).Error
}
