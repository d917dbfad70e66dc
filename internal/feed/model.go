// File: internal/feed/model.go
package feed

import (
	"github.com/google/uuid"
)

// PromoForUser is the user-facing representation of a promocode. It
// carries engagement counters plus the caller's own like and activation
// state, but never the redeemable values.
type PromoForUser struct {
	PromoID           uuid.UUID `json:"promo_id"`
	CompanyID         uuid.UUID `json:"company_id"`
	CompanyName       string    `json:"company_name"`
	Description       string    `json:"description"`
	ImageURL          *string   `json:"image_url,omitempty"`
	Active            bool      `json:"active"`
	IsActivatedByUser bool      `json:"is_activated_by_user"`
	LikeCount         int64     `json:"like_count"`
	IsLikedByUser     bool      `json:"is_liked_by_user"`
	CommentCount      int64     `json:"comment_count"`
}

// Author is the public face of a comment writer.
type Author struct {
	Name      string  `json:"name"`
	Surname   string  `json:"surname"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// CommentView is the user-facing shape of one comment. Date is the
// creation time in RFC 3339, also after edits.
type CommentView struct {
	ID     uuid.UUID `json:"id"`
	Text   string    `json:"text"`
	Date   string    `json:"date"`
	Author Author    `json:"author"`
}

// CommentRequest carries the text for creating or editing a comment.
type CommentRequest struct {
	Text string `json:"text" binding:"required,min=10,max=1000"`
}

// FeedQuery narrows and pages the user's promocode feed.
type FeedQuery struct {
	Limit    int
	Offset   int
	Category string
	Active   *bool // when set, keep only promos whose activity flag matches
}
