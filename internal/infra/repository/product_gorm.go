package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type VariantGormRepository struct {
	db *gorm.DB
}

// DI
func NewVariantGormRepository(db *gorm.DB) *VariantGormRepository {
	return &VariantGormRepository{db: db}
}

// 販売中のバリアントを商品込みで取得（商品が非公開/削除済みなら ErrNotFound）
func (r *VariantGormRepository) FindActiveByID(ctx context.Context, id int64) (model.ProductVariant, error) {
	var v model.ProductVariant

	err := r.db.WithContext(ctx).
		Joins("Product").
		Where("product_variants.id = ? AND product_variants.is_active = ?", id, true).
		Where(`"Product".is_active = ?`, true).
		First(&v).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.ProductVariant{}, repo.ErrNotFound
	}
	if err != nil {
		return model.ProductVariant{}, err
	}
	return v, nil
}

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// 売れるバリアントだけ読み込む
func sellableVariants(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ? AND stock_qty > 0", true).Order("id asc")
}

// 公開商品を新しい順に1ページ分
func (r *ProductGormRepository) ListActive(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	base := r.db.WithContext(ctx).Model(&model.Product{}).Where("is_active = ?", true)
	if q.Featured {
		base = base.Where("is_featured = ?", true)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return []model.Product{}, 0, err
	}

	var items []model.Product
	if err := base.Session(&gorm.Session{}).
		Preload("Variants", sellableVariants).
		Order("created_at desc").
		Order("id desc").
		Limit(q.Limit).
		Offset((q.Page - 1) * q.Limit).
		Find(&items).Error; err != nil {
		return []model.Product{}, 0, err
	}

	return items, total, nil
}

func (r *ProductGormRepository) FindActiveBySlug(ctx context.Context, slug string) (model.Product, error) {
	var p model.Product

	err := r.db.WithContext(ctx).
		Preload("Variants", sellableVariants).
		Where("slug = ? AND is_active = ?", slug, true).
		First(&p).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// 削除済みの行もスラッグを持っているので Unscoped で見る
func (r *ProductGormRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Unscoped().
		Model(&model.Product{}).
		Where("slug = ?", slug).
		Count(&count).Error
	return count > 0, err
}

func (r *ProductGormRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// バリアントの在庫数を上書き
func (r *ProductGormRepository) UpdateVariantStock(ctx context.Context, variantID int64, stock int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.ProductVariant{}).
		Where("id = ?", variantID).
		Update("stock_qty", stock)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
