// File: internal/promo/model.go
package promo

import (
	"strings"
	"time"

	"github.com/ShIIIrochka/SecondStagePROD/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Promocode modes.
const (
	ModeCommon = "COMMON"
	ModeUnique = "UNIQUE"
)

// Promocode is the GORM model for a company promocode.
type Promocode struct {
	common.BaseModel
	CompanyID   uuid.UUID `gorm:"type:uuid;not null;index:idx_promocodes_company_id" json:"company_id"`
	Description string    `gorm:"type:varchar(300);not null" json:"description"`
	ImageURL    *string   `gorm:"type:varchar(350)" json:"image_url,omitempty"`
	AgeFrom     *int      `gorm:"column:age_from" json:"age_from,omitempty"`
	AgeUntil    *int      `gorm:"column:age_until" json:"age_until,omitempty"`
	Country     *string   `gorm:"type:varchar(2)" json:"country,omitempty"`
	ActiveFrom  *string   `gorm:"type:varchar(10)" json:"active_from,omitempty"`
	ActiveUntil *string   `gorm:"type:varchar(10)" json:"active_until,omitempty"`
	Mode        string    `gorm:"type:varchar(10);not null" json:"mode"`
	MaxCount    int       `gorm:"not null" json:"max_count"`
	PromoCommon *string   `gorm:"type:varchar(30)" json:"promo_common,omitempty"`

	Categories  []PromoCategory   `gorm:"foreignKey:PromoID;constraint:OnDelete:CASCADE;" json:"-"`
	UniqueCodes []PromoUniqueCode `gorm:"foreignKey:PromoID;constraint:OnDelete:CASCADE;" json:"-"`
}

// TableName specifies the table name for the Promocode model.
func (Promocode) TableName() string {
	return "promocodes"
}

// PromoCategory is one targeting category attached to a promocode.
type PromoCategory struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PromoID uuid.UUID `gorm:"type:uuid;not null;index:idx_promo_categories_promo_id" json:"promo_id"`
	Name    string    `gorm:"type:varchar(255);not null" json:"name"`
}

// TableName specifies the table name for the PromoCategory model.
func (PromoCategory) TableName() string {
	return "promo_categories"
}

// BeforeCreate will set a UUID rather than relying on database defaults.
func (c *PromoCategory) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}

// PromoUniqueCode is one issuable value of a UNIQUE-mode promocode.
// Position preserves the order values were submitted in, which is the
// order they are handed out in.
type PromoUniqueCode struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PromoID  uuid.UUID `gorm:"type:uuid;not null;index:idx_promo_unique_codes_promo_id" json:"promo_id"`
	Position int       `gorm:"not null;default:0" json:"position"`
	Value    string    `gorm:"type:varchar(255);not null" json:"value"`
}

// TableName specifies the table name for the PromoUniqueCode model.
func (PromoUniqueCode) TableName() string {
	return "promo_unique_codes"
}

// BeforeCreate will set a UUID rather than relying on database defaults.
func (u *PromoUniqueCode) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return
}

// PromoLike records that a user liked a promocode. The composite primary
// key makes a repeated like a no-op.
type PromoLike struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	PromoID   uuid.UUID `gorm:"type:uuid;primaryKey;index:idx_promo_likes_promo_id" json:"promo_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the PromoLike model.
func (PromoLike) TableName() string {
	return "promo_likes"
}

// PromoActivation records the value a user was issued for a promocode.
// A user activates a given promocode at most once; repeat attempts are
// answered with the stored value.
type PromoActivation struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	PromoID   uuid.UUID `gorm:"type:uuid;primaryKey;index:idx_promo_activations_promo_id" json:"promo_id"`
	Value     string    `gorm:"type:varchar(255);not null" json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the PromoActivation model.
func (PromoActivation) TableName() string {
	return "promo_activations"
}

// PromoComment is a user comment under a promocode.
type PromoComment struct {
	common.BaseModel
	PromoID  uuid.UUID `gorm:"type:uuid;not null;index:idx_promo_comments_promo_id" json:"promo_id"`
	AuthorID uuid.UUID `gorm:"type:uuid;not null" json:"author_id"`
	Text     string    `gorm:"type:varchar(1000);not null" json:"text"`
}

// TableName specifies the table name for the PromoComment model.
func (PromoComment) TableName() string {
	return "promo_comments"
}

// --- DTOs ---

// Target describes the audience a promocode is aimed at.
type Target struct {
	AgeFrom    *int     `json:"age_from,omitempty" binding:"omitempty,gte=0,lte=100"`
	AgeUntil   *int     `json:"age_until,omitempty" binding:"omitempty,gte=0,lte=100"`
	Country    *string  `json:"country,omitempty" binding:"omitempty,len=2"`
	Categories []string `json:"categories,omitempty"`
}

// CreatePromoRequest is the payload for creating a promocode.
type CreatePromoRequest struct {
	Description string   `json:"description" binding:"required,min=10,max=300"`
	ImageURL    *string  `json:"image_url" binding:"omitempty,max=350"`
	Target      *Target  `json:"target" binding:"required"`
	ActiveFrom  *string  `json:"active_from" binding:"omitempty,datetime=2006-01-02"`
	ActiveUntil *string  `json:"active_until" binding:"omitempty,datetime=2006-01-02"`
	Mode        string   `json:"mode" binding:"required,oneof=COMMON UNIQUE"`
	MaxCount    *int     `json:"max_count" binding:"required,gte=0"`
	PromoCommon *string  `json:"promo_common" binding:"omitempty,max=30"`
	PromoUnique []string `json:"promo_unique" binding:"omitempty,max=5000"`
}

// UpdatePromoRequest is the payload for partially updating a promocode.
// Stored unique values and the shared value are fixed at creation time.
type UpdatePromoRequest struct {
	Description *string `json:"description" binding:"omitempty,min=10,max=300"`
	ImageURL    *string `json:"image_url" binding:"omitempty,max=350"`
	Target      *Target `json:"target"`
	ActiveFrom  *string `json:"active_from" binding:"omitempty,datetime=2006-01-02"`
	ActiveUntil *string `json:"active_until" binding:"omitempty,datetime=2006-01-02"`
	Mode        *string `json:"mode" binding:"omitempty,oneof=COMMON UNIQUE"`
	MaxCount    *int    `json:"max_count" binding:"omitempty,gte=0"`
}

// PromoReadOnly is the company-facing representation of a promocode.
type PromoReadOnly struct {
	PromoID     uuid.UUID `json:"promo_id"`
	CompanyID   uuid.UUID `json:"company_id"`
	CompanyName string    `json:"company_name"`
	Description string    `json:"description"`
	ImageURL    *string   `json:"image_url,omitempty"`
	Target      Target    `json:"target"`
	MaxCount    int       `json:"max_count"`
	ActiveFrom  *string   `json:"active_from,omitempty"`
	ActiveUntil *string   `json:"active_until,omitempty"`
	Mode        string    `json:"mode"`
	PromoCommon *string   `json:"promo_common,omitempty"`
	PromoUnique []string  `json:"promo_unique,omitempty"`
	LikeCount   int64     `json:"like_count"`
	UsedCount   int64     `json:"used_count"`
	Active      bool      `json:"active"`
}

// NewPromoReadOnly assembles the company-facing view of a promocode.
func NewPromoReadOnly(p *Promocode, companyName string, likeCount, usedCount int64, active bool) *PromoReadOnly {
	categories := make([]string, 0, len(p.Categories))
	for _, c := range p.Categories {
		categories = append(categories, c.Name)
	}

	var uniqueValues []string
	if len(p.UniqueCodes) > 0 {
		uniqueValues = make([]string, 0, len(p.UniqueCodes))
		for _, u := range p.UniqueCodes {
			uniqueValues = append(uniqueValues, u.Value)
		}
	}

	return &PromoReadOnly{
		PromoID:     p.ID,
		CompanyID:   p.CompanyID,
		CompanyName: companyName,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		Target: Target{
			AgeFrom:    p.AgeFrom,
			AgeUntil:   p.AgeUntil,
			Country:    p.Country,
			Categories: categories,
		},
		MaxCount:    p.MaxCount,
		ActiveFrom:  p.ActiveFrom,
		ActiveUntil: p.ActiveUntil,
		Mode:        p.Mode,
		PromoCommon: p.PromoCommon,
		PromoUnique: uniqueValues,
		LikeCount:   likeCount,
		UsedCount:   usedCount,
		Active:      active,
	}
}

// IsActive reports whether a promocode can currently be activated.
// Day strings in the 2006-01-02 layout compare lexicographically in
// calendar order, so the window check needs no parsing.
func IsActive(p *Promocode, activations, uniqueValues int64, today time.Time) bool {
	day := today.Format(common.DayFormat)
	if p.ActiveFrom != nil && *p.ActiveFrom != "" && day < *p.ActiveFrom {
		return false
	}
	if p.ActiveUntil != nil && *p.ActiveUntil != "" && day > *p.ActiveUntil {
		return false
	}

	switch p.Mode {
	case ModeCommon:
		return activations < int64(p.MaxCount)
	case ModeUnique:
		return activations < uniqueValues
	}
	return true
}

// MatchesTarget reports whether a promocode is aimed at a user with the
// given age and country. Zero age bounds behave as unset, and a promocode
// without a country targets every country.
func MatchesTarget(p *Promocode, age int, country string) bool {
	if p.AgeFrom != nil && *p.AgeFrom > 0 && age < *p.AgeFrom {
		return false
	}
	if p.AgeUntil != nil && *p.AgeUntil > 0 && age > *p.AgeUntil {
		return false
	}
	if p.Country != nil && *p.Country != "" && !strings.EqualFold(*p.Country, country) {
		return false
	}
	return true
}
