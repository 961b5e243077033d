package properties

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minpaku-suite/minpaku-backend/pkg/db/models"
	pkgerrors "github.com/minpaku-suite/minpaku-backend/pkg/errors"
	"github.com/minpaku-suite/minpaku-backend/pkg/pagination"
)

// Repository persists property listings.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Find(ctx context.Context, id uuid.UUID) (*models.Property, error)
	Save(ctx context.Context, property *models.Property) error
	List(ctx context.Context, page pagination.Params) ([]models.Property, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Find(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	var property models.Property
	if err := r.db.WithContext(ctx).First(&property, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "property not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load property")
	}
	return &property, nil
}

func (r *repository) Save(ctx context.Context, property *models.Property) error {
	if property.ID == uuid.Nil {
		property.ID = uuid.New()
		property.CreatedAt = time.Now().UTC()
		return r.db.WithContext(ctx).Create(property).Error
	}
	return r.db.WithContext(ctx).Save(property).Error
}

func (r *repository) List(ctx context.Context, page pagination.Params) ([]models.Property, error) {
	page = page.Normalize()

	var list []models.Property
	err := r.db.WithContext(ctx).
		Model(&models.Property{}).
		Order("name ASC, id ASC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Property{}, "id = ?", id).Error
}
