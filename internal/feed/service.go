// File: internal/feed/service.go
package feed

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ShIIIrochka/SecondStagePROD/internal/common"
	"github.com/ShIIIrochka/SecondStagePROD/internal/company"
	"github.com/ShIIIrochka/SecondStagePROD/internal/promo"
	"github.com/ShIIIrochka/SecondStagePROD/internal/user"
)

// Service defines the interface for the user-facing promocode surface:
// the feed, activation, likes, comments and the activation history.
type Service interface {
	Feed(ctx context.Context, userID uuid.UUID, q FeedQuery) ([]PromoForUser, int64, error)
	GetPromo(ctx context.Context, userID, promoID uuid.UUID) (*PromoForUser, error)
	History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]PromoForUser, int64, error)

	Like(ctx context.Context, userID, promoID uuid.UUID) error
	Unlike(ctx context.Context, userID, promoID uuid.UUID) error
	Activate(ctx context.Context, userID, promoID uuid.UUID) (string, error)

	AddComment(ctx context.Context, userID, promoID uuid.UUID, text string) (*CommentView, error)
	GetComment(ctx context.Context, promoID, commentID uuid.UUID) (*CommentView, error)
	ListComments(ctx context.Context, promoID uuid.UUID, limit, offset int) ([]CommentView, int64, error)
	UpdateComment(ctx context.Context, userID, promoID, commentID uuid.UUID, text string) (*CommentView, error)
	DeleteComment(ctx context.Context, userID, promoID, commentID uuid.UUID) error
}

type service struct {
	promos    promo.Repository
	users     user.Repository
	companies company.Repository
	logger    *zap.Logger
}

// NewService creates a new feed service.
func NewService(promos promo.Repository, users user.Repository, companies company.Repository, logger *zap.Logger) Service {
	return &service{
		promos:    promos,
		users:     users,
		companies: companies,
		logger:    logger,
	}
}

// Feed assembles the caller's promocode feed. The category narrows in the
// database; audience and activity filters run in memory, and the total
// reported alongside the page counts everything that survived them.
func (s *service) Feed(ctx context.Context, userID uuid.UUID, q FeedQuery) ([]PromoForUser, int64, error) {
	caller, err := s.findCaller(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	promos, err := s.promos.ListForFeed(ctx, q.Category)
	if err != nil {
		s.logger.Error("Failed to load feed", zap.Error(err), zap.String("userID", userID.String()))
		return nil, 0, err
	}

	matched := make([]promo.Promocode, 0, len(promos))
	for i := range promos {
		if promo.MatchesTarget(&promos[i], caller.Age, caller.Country) {
			matched = append(matched, promos[i])
		}
	}

	views, err := s.buildUserViews(ctx, userID, matched)
	if err != nil {
		return nil, 0, err
	}

	if q.Active != nil {
		kept := make([]PromoForUser, 0, len(views))
		for _, v := range views {
			if v.Active == *q.Active {
				kept = append(kept, v)
			}
		}
		views = kept
	}

	total := int64(len(views))
	return common.Paginate(views, q.Limit, q.Offset), total, nil
}

// GetPromo returns the user-facing view of one promocode. Unlike the feed
// it does not filter by audience; a promo aimed elsewhere is still visible.
func (s *service) GetPromo(ctx context.Context, userID, promoID uuid.UUID) (*PromoForUser, error) {
	found, err := s.promos.FindByID(ctx, promoID, false)
	if err != nil {
		return nil, err
	}

	views, err := s.buildUserViews(ctx, userID, []promo.Promocode{*found})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// History pages the promocodes the user has activated, most recent first.
func (s *service) History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]PromoForUser, int64, error) {
	activations, total, err := s.promos.ListActivationsByUser(ctx, userID, limit, offset)
	if err != nil {
		s.logger.Error("Failed to load activation history", zap.Error(err), zap.String("userID", userID.String()))
		return nil, 0, err
	}

	ids := make([]uuid.UUID, 0, len(activations))
	for _, a := range activations {
		ids = append(ids, a.PromoID)
	}
	promos, err := s.promos.FindByIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	views, err := s.buildUserViews(ctx, userID, promos)
	if err != nil {
		return nil, 0, err
	}

	// Keep activation order; FindByIDs does not preserve it.
	byID := make(map[uuid.UUID]PromoForUser, len(views))
	for _, v := range views {
		byID[v.PromoID] = v
	}
	ordered := make([]PromoForUser, 0, len(activations))
	for _, a := range activations {
		if v, ok := byID[a.PromoID]; ok {
			ordered = append(ordered, v)
		}
	}
	return ordered, total, nil
}

// Like records the caller's like. Liking twice is a no-op.
func (s *service) Like(ctx context.Context, userID, promoID uuid.UUID) error {
	if _, err := s.promos.FindByID(ctx, promoID, false); err != nil {
		return err
	}
	return s.promos.AddLike(ctx, userID, promoID)
}

// Unlike removes the caller's like. Removing an absent like is a no-op.
func (s *service) Unlike(ctx context.Context, userID, promoID uuid.UUID) error {
	if _, err := s.promos.FindByID(ctx, promoID, false); err != nil {
		return err
	}
	return s.promos.RemoveLike(ctx, userID, promoID)
}

// Activate issues a promocode value to the caller. A COMMON promo hands
// out its shared value; a UNIQUE promo hands out the next unissued value
// in submission order. Repeat activations return the value already issued.
func (s *service) Activate(ctx context.Context, userID, promoID uuid.UUID) (string, error) {
	caller, err := s.findCaller(ctx, userID)
	if err != nil {
		return "", err
	}
	found, err := s.promos.FindByID(ctx, promoID, false)
	if err != nil {
		return "", err
	}

	if existing, err := s.promos.FindActivation(ctx, userID, promoID); err != nil {
		return "", err
	} else if existing != nil {
		return existing.Value, nil
	}

	if !promo.MatchesTarget(found, caller.Age, caller.Country) {
		return "", common.ErrForbidden.WithDetails("This promocode is not aimed at you.")
	}

	activations, err := s.promos.CountActivations(ctx, []uuid.UUID{promoID})
	if err != nil {
		return "", err
	}
	uniqueCounts, err := s.promos.CountUniqueCodes(ctx, []uuid.UUID{promoID})
	if err != nil {
		return "", err
	}
	if !promo.IsActive(found, activations[promoID], uniqueCounts[promoID], time.Now()) {
		return "", common.ErrForbidden.WithDetails("This promocode cannot be used right now.")
	}

	var value string
	switch found.Mode {
	case promo.ModeCommon:
		if found.PromoCommon != nil {
			value = *found.PromoCommon
		}
	case promo.ModeUnique:
		code, err := s.promos.UniqueCodeAt(ctx, promoID, int(activations[promoID]))
		if err != nil {
			// Lost a race for the last value between the activity check
			// and the pick.
			if apiErr, ok := common.IsAPIError(err); ok && apiErr.StatusCode == http.StatusNotFound {
				return "", common.ErrForbidden.WithDetails("This promocode cannot be used right now.")
			}
			return "", err
		}
		value = code.Value
	}

	activation := &promo.PromoActivation{UserID: userID, PromoID: promoID, Value: value}
	if err := s.promos.CreateActivation(ctx, activation); err != nil {
		// The caller racing themselves lands on the composite key; answer
		// with whichever value won.
		if apiErr, ok := common.IsAPIError(err); ok && apiErr.StatusCode == http.StatusConflict {
			if existing, ferr := s.promos.FindActivation(ctx, userID, promoID); ferr == nil && existing != nil {
				return existing.Value, nil
			}
		}
		return "", err
	}

	s.logger.Info("Promocode activated",
		zap.String("promoID", promoID.String()),
		zap.String("userID", userID.String()))
	return value, nil
}

// AddComment stores a comment under a promocode and returns its view.
func (s *service) AddComment(ctx context.Context, userID, promoID uuid.UUID, text string) (*CommentView, error) {
	caller, err := s.findCaller(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.promos.FindByID(ctx, promoID, false); err != nil {
		return nil, err
	}

	comment := &promo.PromoComment{PromoID: promoID, AuthorID: userID, Text: text}
	if err := s.promos.CreateComment(ctx, comment); err != nil {
		s.logger.Error("Failed to create comment", zap.Error(err), zap.String("promoID", promoID.String()))
		return nil, err
	}

	view := newCommentView(comment, Author{
		Name:      caller.Name,
		Surname:   caller.Surname,
		AvatarURL: caller.AvatarURL,
	})
	return &view, nil
}

// GetComment returns one comment scoped to the promocode in the path.
func (s *service) GetComment(ctx context.Context, promoID, commentID uuid.UUID) (*CommentView, error) {
	if _, err := s.promos.FindByID(ctx, promoID, false); err != nil {
		return nil, err
	}
	comment, err := s.promos.FindComment(ctx, promoID, commentID)
	if err != nil {
		return nil, err
	}

	views, err := s.buildCommentViews(ctx, []promo.PromoComment{*comment})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListComments pages a promocode's comments, newest first.
func (s *service) ListComments(ctx context.Context, promoID uuid.UUID, limit, offset int) ([]CommentView, int64, error) {
	if _, err := s.promos.FindByID(ctx, promoID, false); err != nil {
		return nil, 0, err
	}

	comments, total, err := s.promos.ListComments(ctx, promoID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	views, err := s.buildCommentViews(ctx, comments)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// UpdateComment rewrites the text of the caller's own comment.
func (s *service) UpdateComment(ctx context.Context, userID, promoID, commentID uuid.UUID, text string) (*CommentView, error) {
	caller, err := s.findCaller(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.promos.FindByID(ctx, promoID, false); err != nil {
		return nil, err
	}
	comment, err := s.promos.FindComment(ctx, promoID, commentID)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != userID {
		return nil, common.ErrForbidden.WithDetails("You can only edit your own comments.")
	}

	comment.Text = text
	if err := s.promos.UpdateComment(ctx, comment); err != nil {
		s.logger.Error("Failed to update comment", zap.Error(err), zap.String("commentID", commentID.String()))
		return nil, err
	}

	view := newCommentView(comment, Author{
		Name:      caller.Name,
		Surname:   caller.Surname,
		AvatarURL: caller.AvatarURL,
	})
	return &view, nil
}

// DeleteComment removes the caller's own comment.
func (s *service) DeleteComment(ctx context.Context, userID, promoID, commentID uuid.UUID) error {
	if _, err := s.promos.FindByID(ctx, promoID, false); err != nil {
		return err
	}
	comment, err := s.promos.FindComment(ctx, promoID, commentID)
	if err != nil {
		return err
	}
	if comment.AuthorID != userID {
		return common.ErrForbidden.WithDetails("You can only delete your own comments.")
	}
	return s.promos.DeleteComment(ctx, commentID)
}

// buildUserViews decorates promocodes with counters and the caller's own
// engagement flags, batched so a feed page costs a fixed number of queries.
func (s *service) buildUserViews(ctx context.Context, userID uuid.UUID, promos []promo.Promocode) ([]PromoForUser, error) {
	ids := make([]uuid.UUID, len(promos))
	companyIDs := make([]uuid.UUID, 0, len(promos))
	seen := make(map[uuid.UUID]bool, len(promos))
	for i := range promos {
		ids[i] = promos[i].ID
		if !seen[promos[i].CompanyID] {
			seen[promos[i].CompanyID] = true
			companyIDs = append(companyIDs, promos[i].CompanyID)
		}
	}

	likes, err := s.promos.CountLikes(ctx, ids)
	if err != nil {
		return nil, err
	}
	activations, err := s.promos.CountActivations(ctx, ids)
	if err != nil {
		return nil, err
	}
	uniqueCounts, err := s.promos.CountUniqueCodes(ctx, ids)
	if err != nil {
		return nil, err
	}
	comments, err := s.promos.CountComments(ctx, ids)
	if err != nil {
		return nil, err
	}
	liked, err := s.promos.LikedByUser(ctx, userID, ids)
	if err != nil {
		return nil, err
	}
	activated, err := s.promos.ActivatedByUser(ctx, userID, ids)
	if err != nil {
		return nil, err
	}
	names, err := s.companies.FindNamesByIDs(ctx, companyIDs)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	views := make([]PromoForUser, 0, len(promos))
	for i := range promos {
		p := &promos[i]
		views = append(views, PromoForUser{
			PromoID:           p.ID,
			CompanyID:         p.CompanyID,
			CompanyName:       names[p.CompanyID],
			Description:       p.Description,
			ImageURL:          p.ImageURL,
			Active:            promo.IsActive(p, activations[p.ID], uniqueCounts[p.ID], now),
			IsActivatedByUser: activated[p.ID],
			LikeCount:         likes[p.ID],
			IsLikedByUser:     liked[p.ID],
			CommentCount:      comments[p.ID],
		})
	}
	return views, nil
}

// buildCommentViews resolves comment authors in one batch. A comment whose
// author vanished keeps an empty author rather than failing the page.
func (s *service) buildCommentViews(ctx context.Context, comments []promo.PromoComment) ([]CommentView, error) {
	authorIDs := make([]uuid.UUID, 0, len(comments))
	seen := make(map[uuid.UUID]bool, len(comments))
	for _, cm := range comments {
		if !seen[cm.AuthorID] {
			seen[cm.AuthorID] = true
			authorIDs = append(authorIDs, cm.AuthorID)
		}
	}

	authors, err := s.users.FindByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]user.User, len(authors))
	for _, u := range authors {
		byID[u.ID] = u
	}

	views := make([]CommentView, 0, len(comments))
	for i := range comments {
		var author Author
		if u, ok := byID[comments[i].AuthorID]; ok {
			author = Author{Name: u.Name, Surname: u.Surname, AvatarURL: u.AvatarURL}
		}
		views = append(views, newCommentView(&comments[i], author))
	}
	return views, nil
}

func newCommentView(comment *promo.PromoComment, author Author) CommentView {
	return CommentView{
		ID:     comment.ID,
		Text:   comment.Text,
		Date:   comment.CreatedAt.Format(time.RFC3339),
		Author: author,
	}
}

// findCaller resolves the authenticated subject to a stored user. A token
// whose account no longer exists is treated as unauthorized.
func (s *service) findCaller(ctx context.Context, userID uuid.UUID) (*user.User, error) {
	caller, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if apiErr, ok := common.IsAPIError(err); ok && apiErr.StatusCode == http.StatusNotFound {
			return nil, common.ErrUnauthorized.WithDetails("Account no longer exists.")
		}
		return nil, err
	}
	return caller, nil
}
