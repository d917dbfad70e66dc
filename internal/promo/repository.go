// File: internal/promo/repository.go
package promo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ShIIIrochka/SecondStagePROD/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListQuery narrows and pages a company's promocode listing.
type ListQuery struct {
	Limit     int
	Offset    int
	SortBy    string   // "active_from" or "active_until"; empty means newest first
	Countries []string // matched case-insensitively; promos without a country always pass
}

// DigestStats is a point-in-time engagement snapshot used by the
// scheduled digest job.
type DigestStats struct {
	TotalPromos    int64
	NewLikes       int64
	NewComments    int64
	NewActivations int64
}

// Repository defines the interface for promocode data operations. It also
// owns the engagement records (likes, activations, comments) since they
// live in the promocode's tables.
type Repository interface {
	Create(ctx context.Context, promo *Promocode) error
	FindByID(ctx context.Context, id uuid.UUID, preloadAssociations bool) (*Promocode, error)
	// FindByIDs loads the given promocodes in one query, without
	// associations. Missing IDs are silently absent from the result.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Promocode, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID, q ListQuery) ([]Promocode, int64, error)
	// ListForFeed returns every promocode, newest first, optionally narrowed
	// to those carrying the given category. Audience and activity filtering
	// happen in the service layer.
	ListForFeed(ctx context.Context, category string) ([]Promocode, error)
	Update(ctx context.Context, promo *Promocode, replaceCategories bool) error

	CountLikes(ctx context.Context, promoIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	CountActivations(ctx context.Context, promoIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	CountComments(ctx context.Context, promoIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	CountUniqueCodes(ctx context.Context, promoIDs []uuid.UUID) (map[uuid.UUID]int64, error)

	AddLike(ctx context.Context, userID, promoID uuid.UUID) error
	RemoveLike(ctx context.Context, userID, promoID uuid.UUID) error
	LikedByUser(ctx context.Context, userID uuid.UUID, promoIDs []uuid.UUID) (map[uuid.UUID]bool, error)

	// FindActivation returns nil when the user has not activated the
	// promocode; absence is a normal state, not an error.
	FindActivation(ctx context.Context, userID, promoID uuid.UUID) (*PromoActivation, error)
	CreateActivation(ctx context.Context, activation *PromoActivation) error
	ActivatedByUser(ctx context.Context, userID uuid.UUID, promoIDs []uuid.UUID) (map[uuid.UUID]bool, error)
	ListActivationsByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]PromoActivation, int64, error)
	// UniqueCodeAt returns the value at the given position in issue order.
	UniqueCodeAt(ctx context.Context, promoID uuid.UUID, index int) (*PromoUniqueCode, error)

	CreateComment(ctx context.Context, comment *PromoComment) error
	FindComment(ctx context.Context, promoID, commentID uuid.UUID) (*PromoComment, error)
	ListComments(ctx context.Context, promoID uuid.UUID, limit, offset int) ([]PromoComment, int64, error)
	UpdateComment(ctx context.Context, comment *PromoComment) error
	DeleteComment(ctx context.Context, commentID uuid.UUID) error

	DigestStats(ctx context.Context, since time.Time) (DigestStats, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM promocode repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// preloader applies the promocode associations, with unique values kept in
// submission order so positions stay meaningful.
func (r *gormRepository) preloader(query *gorm.DB) *gorm.DB {
	return query.Preload("Categories").
		Preload("UniqueCodes", func(db *gorm.DB) *gorm.DB {
			return db.Order("promo_unique_codes.position ASC")
		})
}

// Create inserts a promocode together with its categories and unique values
// in one transaction.
func (r *gormRepository) Create(ctx context.Context, promo *Promocode) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(promo).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "unique constraint") {
				return common.ErrConflict.WithDetails("A conflicting promocode already exists.")
			}
			return fmt.Errorf("failed to create promocode: %w", err)
		}
		return nil
	})
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID, preloadAssociations bool) (*Promocode, error) {
	var promo Promocode
	query := r.db.WithContext(ctx)
	if preloadAssociations {
		query = r.preloader(query)
	}
	err := query.First(&promo, "promocodes.id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Promocode not found.")
		}
		return nil, err
	}
	return &promo, nil
}

func (r *gormRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Promocode, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var promos []Promocode
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&promos).Error
	if err != nil {
		return nil, err
	}
	return promos, nil
}

// ListByCompany pages a company's promocodes. The total reported alongside
// the page is counted after the country filter so pagination headers match
// what the filter lets through.
func (r *gormRepository) ListByCompany(ctx context.Context, companyID uuid.UUID, q ListQuery) ([]Promocode, int64, error) {
	var promos []Promocode
	var totalItems int64

	dbQuery := r.db.WithContext(ctx).Model(&Promocode{}).Where("company_id = ?", companyID)

	if len(q.Countries) > 0 {
		lowered := make([]string, len(q.Countries))
		for i, c := range q.Countries {
			lowered[i] = strings.ToLower(c)
		}
		// Promos without a country target every audience and are always kept.
		dbQuery = dbQuery.Where("LOWER(country) IN ? OR country IS NULL", lowered)
	}

	if err := dbQuery.Count(&totalItems).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count promocodes: %w", err)
	}

	switch q.SortBy {
	case "active_from":
		dbQuery = dbQuery.Order("(active_from IS NULL) ASC, active_from DESC, created_at DESC")
	case "active_until":
		dbQuery = dbQuery.Order("(active_until IS NULL) ASC, active_until DESC, created_at DESC")
	default:
		dbQuery = dbQuery.Order("created_at DESC")
	}

	dbQuery = r.preloader(dbQuery).Limit(q.Limit).Offset(q.Offset)
	if err := dbQuery.Find(&promos).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list promocodes: %w", err)
	}
	return promos, totalItems, nil
}

func (r *gormRepository) ListForFeed(ctx context.Context, category string) ([]Promocode, error) {
	dbQuery := r.db.WithContext(ctx).Model(&Promocode{})
	if category != "" {
		dbQuery = dbQuery.Where(
			"EXISTS (SELECT 1 FROM promo_categories pc WHERE pc.promo_id = promocodes.id AND LOWER(pc.name) = LOWER(?))",
			category,
		)
	}

	var promos []Promocode
	err := dbQuery.Order("created_at DESC").Find(&promos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load promocode feed: %w", err)
	}
	return promos, nil
}

// Update saves the promocode's own columns and, when asked, swaps the
// category rows for the ones on the model. Unique values are immutable
// after creation and are never touched here.
func (r *gormRepository) Update(ctx context.Context, promo *Promocode, replaceCategories bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(promo).Error; err != nil {
			return fmt.Errorf("failed to update promocode: %w", err)
		}

		if replaceCategories {
			if err := tx.Where("promo_id = ?", promo.ID).Delete(&PromoCategory{}).Error; err != nil {
				return fmt.Errorf("failed to clear promocode categories: %w", err)
			}
			for i := range promo.Categories {
				promo.Categories[i].ID = uuid.Nil
				promo.Categories[i].PromoID = promo.ID
			}
			if len(promo.Categories) > 0 {
				if err := tx.Create(&promo.Categories).Error; err != nil {
					return fmt.Errorf("failed to recreate promocode categories: %w", err)
				}
			}
		}
		return nil
	})
}

// promoCount carries one GROUP BY row for the batch counters.
type promoCount struct {
	PromoID uuid.UUID
	Total   int64
}

func (r *gormRepository) countByPromo(ctx context.Context, model interface{}, promoIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(promoIDs))
	if len(promoIDs) == 0 {
		return counts, nil
	}

	var rows []promoCount
	err := r.db.WithContext(ctx).Model(model).
		Select("promo_id, COUNT(*) AS total").
		Where("promo_id IN ?", promoIDs).
		Group("promo_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.PromoID] = row.Total
	}
	return counts, nil
}

func (r *gormRepository) CountLikes(ctx context.Context, promoIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	return r.countByPromo(ctx, &PromoLike{}, promoIDs)
}

func (r *gormRepository) CountActivations(ctx context.Context, promoIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	return r.countByPromo(ctx, &PromoActivation{}, promoIDs)
}

func (r *gormRepository) CountComments(ctx context.Context, promoIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	return r.countByPromo(ctx, &PromoComment{}, promoIDs)
}

func (r *gormRepository) CountUniqueCodes(ctx context.Context, promoIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	return r.countByPromo(ctx, &PromoUniqueCode{}, promoIDs)
}

// AddLike records a like, ignoring repeats from the same user.
func (r *gormRepository) AddLike(ctx context.Context, userID, promoID uuid.UUID) error {
	like := PromoLike{UserID: userID, PromoID: promoID}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error
	if err != nil {
		return fmt.Errorf("failed to add like: %w", err)
	}
	return nil
}

// RemoveLike deletes a like if present. Removing an absent like is a no-op.
func (r *gormRepository) RemoveLike(ctx context.Context, userID, promoID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND promo_id = ?", userID, promoID).
		Delete(&PromoLike{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove like: %w", result.Error)
	}
	return nil
}

func (r *gormRepository) LikedByUser(ctx context.Context, userID uuid.UUID, promoIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	return r.flagsByPromo(ctx, &PromoLike{}, userID, promoIDs)
}

func (r *gormRepository) ActivatedByUser(ctx context.Context, userID uuid.UUID, promoIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	return r.flagsByPromo(ctx, &PromoActivation{}, userID, promoIDs)
}

func (r *gormRepository) flagsByPromo(ctx context.Context, model interface{}, userID uuid.UUID, promoIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	flags := make(map[uuid.UUID]bool, len(promoIDs))
	if len(promoIDs) == 0 {
		return flags, nil
	}

	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(model).
		Where("user_id = ? AND promo_id IN ?", userID, promoIDs).
		Pluck("promo_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		flags[id] = true
	}
	return flags, nil
}

func (r *gormRepository) FindActivation(ctx context.Context, userID, promoID uuid.UUID) (*PromoActivation, error) {
	var activation PromoActivation
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND promo_id = ?", userID, promoID).
		First(&activation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &activation, nil
}

func (r *gormRepository) CreateActivation(ctx context.Context, activation *PromoActivation) error {
	err := r.db.WithContext(ctx).Create(activation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "unique constraint") {
			return common.ErrConflict.WithDetails("This promocode was already activated.")
		}
		return fmt.Errorf("failed to record activation: %w", err)
	}
	return nil
}

func (r *gormRepository) ListActivationsByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]PromoActivation, int64, error) {
	var activations []PromoActivation
	var totalItems int64

	dbQuery := r.db.WithContext(ctx).Model(&PromoActivation{}).Where("user_id = ?", userID)
	if err := dbQuery.Count(&totalItems).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count activations: %w", err)
	}

	err := dbQuery.Order("created_at DESC").Limit(limit).Offset(offset).Find(&activations).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list activations: %w", err)
	}
	return activations, totalItems, nil
}

func (r *gormRepository) UniqueCodeAt(ctx context.Context, promoID uuid.UUID, index int) (*PromoUniqueCode, error) {
	var code PromoUniqueCode
	err := r.db.WithContext(ctx).
		Where("promo_id = ?", promoID).
		Order("position ASC").
		Offset(index).
		Take(&code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("No unique values are left for this promocode.")
		}
		return nil, err
	}
	return &code, nil
}

func (r *gormRepository) CreateComment(ctx context.Context, comment *PromoComment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

func (r *gormRepository) FindComment(ctx context.Context, promoID, commentID uuid.UUID) (*PromoComment, error) {
	var comment PromoComment
	err := r.db.WithContext(ctx).
		Where("id = ? AND promo_id = ?", commentID, promoID).
		First(&comment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Comment not found.")
		}
		return nil, err
	}
	return &comment, nil
}

func (r *gormRepository) ListComments(ctx context.Context, promoID uuid.UUID, limit, offset int) ([]PromoComment, int64, error) {
	var comments []PromoComment
	var totalItems int64

	dbQuery := r.db.WithContext(ctx).Model(&PromoComment{}).Where("promo_id = ?", promoID)
	if err := dbQuery.Count(&totalItems).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count comments: %w", err)
	}

	err := dbQuery.Order("created_at DESC").Limit(limit).Offset(offset).Find(&comments).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, totalItems, nil
}

func (r *gormRepository) UpdateComment(ctx context.Context, comment *PromoComment) error {
	if err := r.db.WithContext(ctx).Save(comment).Error; err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}
	return nil
}

func (r *gormRepository) DeleteComment(ctx context.Context, commentID uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&PromoComment{}, "id = ?", commentID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete comment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Comment not found.")
	}
	return nil
}

// DigestStats gathers totals for the scheduled engagement digest.
func (r *gormRepository) DigestStats(ctx context.Context, since time.Time) (DigestStats, error) {
	var stats DigestStats
	db := r.db.WithContext(ctx)

	if err := db.Model(&Promocode{}).Count(&stats.TotalPromos).Error; err != nil {
		return stats, fmt.Errorf("failed to count promocodes: %w", err)
	}
	if err := db.Model(&PromoLike{}).Where("created_at >= ?", since).Count(&stats.NewLikes).Error; err != nil {
		return stats, fmt.Errorf("failed to count likes: %w", err)
	}
	if err := db.Model(&PromoComment{}).Where("created_at >= ?", since).Count(&stats.NewComments).Error; err != nil {
		return stats, fmt.Errorf("failed to count comments: %w", err)
	}
	if err := db.Model(&PromoActivation{}).Where("created_at >= ?", since).Count(&stats.NewActivations).Error; err != nil {
		return stats, fmt.Errorf("failed to count activations: %w", err)
	}
	return stats, nil
}
