// File: internal/user/model.go
package user

import (
	"github.com/ShIIIrochka/SecondStagePROD/internal/common"
)

// User represents the B2C account model in the database.
type User struct {
	common.BaseModel
	Name         string  `gorm:"type:varchar(100);not null"`
	Surname      string  `gorm:"type:varchar(120);not null"`
	Email        string  `gorm:"type:varchar(120);not null;uniqueIndex:idx_users_email,unique"`
	AvatarURL    *string `gorm:"type:varchar(350)"`
	PasswordHash string  `gorm:"type:varchar(255);not null"`
	Age          int     `gorm:"not null"`
	Country      string  `gorm:"type:varchar(2);not null"`
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}

// --- DTOs ---

// TargetSettings carries the attributes promocode targeting matches against.
type TargetSettings struct {
	Age     int    `json:"age" binding:"gte=0,lte=100"`
	Country string `json:"country" binding:"required,len=2"`
}

// SignUpRequest is the payload for registering a user.
type SignUpRequest struct {
	Name      string         `json:"name" binding:"required,min=1,max=100"`
	Surname   string         `json:"surname" binding:"required,min=1,max=120"`
	Email     string         `json:"email" binding:"required,email,min=8,max=120"`
	AvatarURL *string        `json:"avatar_url" binding:"omitempty,max=350"`
	Other     TargetSettings `json:"other"`
	Password  string         `json:"password" binding:"required,min=8,max=60"`
}

// SignInRequest is the payload for authenticating a user.
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email,min=8,max=120"`
	Password string `json:"password" binding:"required,min=8,max=60"`
}

// UpdateRequest is the partial payload for editing the profile. Email and
// targeting settings cannot be changed once registered.
type UpdateRequest struct {
	Name      *string `json:"name" binding:"omitempty,min=1,max=100"`
	Surname   *string `json:"surname" binding:"omitempty,min=1,max=120"`
	AvatarURL *string `json:"avatar_url" binding:"omitempty,max=350"`
	Password  *string `json:"password" binding:"omitempty,min=8,max=60"`
}

// Profile is the user's own view of the account. The password hash never
// leaves the model.
type Profile struct {
	Name      string         `json:"name"`
	Surname   string         `json:"surname"`
	Email     string         `json:"email"`
	AvatarURL *string        `json:"avatar_url,omitempty"`
	Other     TargetSettings `json:"other"`
}

// ToProfile converts a User model to its Profile view.
func ToProfile(u *User) *Profile {
	return &Profile{
		Name:      u.Name,
		Surname:   u.Surname,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		Other: TargetSettings{
			Age:     u.Age,
			Country: u.Country,
		},
	}
}
