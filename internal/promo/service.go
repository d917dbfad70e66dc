// File: internal/promo/service.go
package promo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ShIIIrochka/SecondStagePROD/internal/common"
	"github.com/ShIIIrochka/SecondStagePROD/internal/company"
)

// Service defines the interface for company-facing promocode logic.
type Service interface {
	Create(ctx context.Context, companyID uuid.UUID, req CreatePromoRequest) (uuid.UUID, error)
	List(ctx context.Context, companyID uuid.UUID, q ListQuery) ([]PromoReadOnly, int64, error)
	Get(ctx context.Context, companyID, promoID uuid.UUID) (*PromoReadOnly, error)
	Update(ctx context.Context, companyID, promoID uuid.UUID, req UpdatePromoRequest) (*PromoReadOnly, error)
}

type service struct {
	repo      Repository
	companies company.Repository
	logger    *zap.Logger
}

// NewService creates a new promocode service.
func NewService(repo Repository, companies company.Repository, logger *zap.Logger) Service {
	return &service{
		repo:      repo,
		companies: companies,
		logger:    logger,
	}
}

// Create stores a promocode with its targeting categories and, for UNIQUE
// mode, the submitted values in issue order.
func (s *service) Create(ctx context.Context, companyID uuid.UUID, req CreatePromoRequest) (uuid.UUID, error) {
	if err := validateTarget(req.Target); err != nil {
		return uuid.Nil, err
	}
	if req.ImageURL != nil && !common.IsAbsoluteURL(*req.ImageURL) {
		return uuid.Nil, common.NewValidationAPIError(map[string]string{
			"image_url": "must be an absolute URL",
		})
	}
	if req.Mode == ModeUnique && *req.MaxCount != 1 {
		return uuid.Nil, common.NewValidationAPIError(map[string]string{
			"max_count": "must be exactly 1 for UNIQUE mode",
		})
	}

	newPromo := &Promocode{
		CompanyID:   companyID,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		AgeFrom:     req.Target.AgeFrom,
		AgeUntil:    req.Target.AgeUntil,
		Country:     req.Target.Country,
		ActiveFrom:  req.ActiveFrom,
		ActiveUntil: req.ActiveUntil,
		Mode:        req.Mode,
		MaxCount:    *req.MaxCount,
		PromoCommon: req.PromoCommon,
	}
	for _, name := range req.Target.Categories {
		newPromo.Categories = append(newPromo.Categories, PromoCategory{Name: name})
	}
	for i, value := range req.PromoUnique {
		newPromo.UniqueCodes = append(newPromo.UniqueCodes, PromoUniqueCode{Position: i, Value: value})
	}

	if err := s.repo.Create(ctx, newPromo); err != nil {
		s.logger.Error("Failed to create promocode", zap.Error(err), zap.String("companyID", companyID.String()))
		return uuid.Nil, err
	}

	s.logger.Info("Promocode created",
		zap.String("promoID", newPromo.ID.String()),
		zap.String("companyID", companyID.String()),
		zap.String("mode", newPromo.Mode))
	return newPromo.ID, nil
}

// List pages the company's promocodes. The returned total reflects the
// country filter, not the page size.
func (s *service) List(ctx context.Context, companyID uuid.UUID, q ListQuery) ([]PromoReadOnly, int64, error) {
	owner, err := s.companies.FindByID(ctx, companyID)
	if err != nil {
		return nil, 0, err
	}

	promos, total, err := s.repo.ListByCompany(ctx, companyID, q)
	if err != nil {
		s.logger.Error("Failed to list promocodes", zap.Error(err), zap.String("companyID", companyID.String()))
		return nil, 0, err
	}

	views, err := s.buildReadOnly(ctx, promos, owner.Name)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// Get returns one promocode, refusing promocodes owned by someone else.
func (s *service) Get(ctx context.Context, companyID, promoID uuid.UUID) (*PromoReadOnly, error) {
	found, err := s.repo.FindByID(ctx, promoID, true)
	if err != nil {
		return nil, err
	}
	if found.CompanyID != companyID {
		return nil, common.ErrForbidden.WithDetails("This promocode belongs to another company.")
	}

	owner, err := s.companies.FindByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	views, err := s.buildReadOnly(ctx, []Promocode{*found}, owner.Name)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Update applies the provided fields and returns the refreshed view.
// Target scalars only change when sent; a categories list replaces the
// stored set wholesale. The resulting state must stay coherent: a UNIQUE
// promocode hands out exactly one stored value per user.
func (s *service) Update(ctx context.Context, companyID, promoID uuid.UUID, req UpdatePromoRequest) (*PromoReadOnly, error) {
	found, err := s.repo.FindByID(ctx, promoID, true)
	if err != nil {
		return nil, err
	}
	if found.CompanyID != companyID {
		return nil, common.ErrForbidden.WithDetails("This promocode belongs to another company.")
	}

	if err := validateTarget(req.Target); err != nil {
		return nil, err
	}
	if req.ImageURL != nil && !common.IsAbsoluteURL(*req.ImageURL) {
		return nil, common.NewValidationAPIError(map[string]string{
			"image_url": "must be an absolute URL",
		})
	}

	if req.Description != nil {
		found.Description = *req.Description
	}
	if req.ImageURL != nil {
		found.ImageURL = req.ImageURL
	}
	if req.ActiveFrom != nil {
		found.ActiveFrom = req.ActiveFrom
	}
	if req.ActiveUntil != nil {
		found.ActiveUntil = req.ActiveUntil
	}
	if req.Mode != nil {
		found.Mode = *req.Mode
	}
	if req.MaxCount != nil {
		found.MaxCount = *req.MaxCount
	}

	replaceCategories := false
	if req.Target != nil {
		if req.Target.AgeFrom != nil {
			found.AgeFrom = req.Target.AgeFrom
		}
		if req.Target.AgeUntil != nil {
			found.AgeUntil = req.Target.AgeUntil
		}
		if req.Target.Country != nil {
			found.Country = req.Target.Country
		}
		if req.Target.Categories != nil {
			replaceCategories = true
			found.Categories = make([]PromoCategory, 0, len(req.Target.Categories))
			for _, name := range req.Target.Categories {
				found.Categories = append(found.Categories, PromoCategory{PromoID: found.ID, Name: name})
			}
		}
	}

	if found.Mode == ModeUnique && found.MaxCount != 1 {
		return nil, common.NewValidationAPIError(map[string]string{
			"max_count": "must be exactly 1 for UNIQUE mode",
		})
	}

	if err := s.repo.Update(ctx, found, replaceCategories); err != nil {
		s.logger.Error("Failed to update promocode", zap.Error(err), zap.String("promoID", promoID.String()))
		return nil, err
	}

	updated, err := s.repo.FindByID(ctx, promoID, true)
	if err != nil {
		return nil, err
	}
	owner, err := s.companies.FindByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	views, err := s.buildReadOnly(ctx, []Promocode{*updated}, owner.Name)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Promocode updated", zap.String("promoID", promoID.String()))
	return &views[0], nil
}

// buildReadOnly decorates promocodes with engagement counters and the
// current activity flag. All promos must belong to the named company.
func (s *service) buildReadOnly(ctx context.Context, promos []Promocode, companyName string) ([]PromoReadOnly, error) {
	ids := make([]uuid.UUID, len(promos))
	for i := range promos {
		ids[i] = promos[i].ID
	}

	likes, err := s.repo.CountLikes(ctx, ids)
	if err != nil {
		return nil, err
	}
	activations, err := s.repo.CountActivations(ctx, ids)
	if err != nil {
		return nil, err
	}
	uniqueCounts, err := s.repo.CountUniqueCodes(ctx, ids)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	views := make([]PromoReadOnly, 0, len(promos))
	for i := range promos {
		p := &promos[i]
		active := IsActive(p, activations[p.ID], uniqueCounts[p.ID], now)
		views = append(views, *NewPromoReadOnly(p, companyName, likes[p.ID], activations[p.ID], active))
	}
	return views, nil
}

// validateTarget enforces the cross-field target rules shared by create
// and update payloads.
func validateTarget(t *Target) error {
	if t == nil {
		return nil
	}
	if t.AgeFrom != nil && t.AgeUntil != nil && *t.AgeFrom > *t.AgeUntil {
		return common.NewValidationAPIError(map[string]string{
			"target.age_from": "must be less than or equal to age_until",
		})
	}
	if len(t.Categories) == 1 && t.Categories[0] == "" {
		return common.NewValidationAPIError(map[string]string{
			"target.categories": "must not be a single empty value",
		})
	}
	return nil
}
