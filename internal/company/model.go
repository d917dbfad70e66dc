// File: internal/company/model.go
package company

import (
	"github.com/google/uuid"

	"github.com/ShIIIrochka/SecondStagePROD/internal/common"
)

// Company represents the B2B account model in the database.
type Company struct {
	common.BaseModel
	Name         string `gorm:"type:varchar(50);not null"`
	Email        string `gorm:"type:varchar(120);not null;uniqueIndex:idx_companies_email,unique"`
	PasswordHash string `gorm:"type:varchar(255);not null"`
}

// TableName specifies the table name for the Company model.
func (Company) TableName() string {
	return "companies"
}

// --- DTOs ---

// SignUpRequest is the payload for registering a company.
type SignUpRequest struct {
	Name     string `json:"name" binding:"required,min=5,max=50"`
	Email    string `json:"email" binding:"required,email,min=8,max=120"`
	Password string `json:"password" binding:"required,min=8,max=60"`
}

// SignInRequest is the payload for authenticating a company.
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email,min=8,max=120"`
	Password string `json:"password" binding:"required,min=8,max=60"`
}

// TokenForm is the OAuth2-style form accepted by the bare token endpoint.
type TokenForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// SignUpResponse returns the fresh token together with the company ID so the
// caller can start issuing promocodes right away.
type SignUpResponse struct {
	Token     string    `json:"token"`
	CompanyID uuid.UUID `json:"company_id"`
}
