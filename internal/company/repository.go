// File: internal/company/repository.go
package company

import (
	"context"
	"errors"
	"strings"

	"github.com/ShIIIrochka/SecondStagePROD/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for company data operations.
type Repository interface {
	Create(ctx context.Context, company *Company) error
	FindByEmail(ctx context.Context, email string) (*Company, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Company, error)
	// FindNamesByIDs resolves company display names in one query, for the
	// promocode views that carry company_name.
	FindNamesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM company repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, company *Company) error {
	company.Email = strings.ToLower(strings.TrimSpace(company.Email))
	err := r.db.WithContext(ctx).Create(company).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "unique constraint") {
			return common.ErrConflict.WithDetails("This email is already registered.")
		}
		return err
	}
	return nil
}

func (r *gormRepository) FindByEmail(ctx context.Context, email string) (*Company, error) {
	var company Company
	normalized := strings.ToLower(strings.TrimSpace(email))
	err := r.db.WithContext(ctx).First(&company, "email = ?", normalized).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Company not found.")
		}
		return nil, err
	}
	return &company, nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*Company, error) {
	var company Company
	err := r.db.WithContext(ctx).First(&company, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Company not found.")
		}
		return nil, err
	}
	return &company, nil
}

func (r *gormRepository) FindNamesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	var rows []Company
	err := r.db.WithContext(ctx).Select("id", "name").Where("id IN ?", ids).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		names[row.ID] = row.Name
	}
	return names, nil
}
