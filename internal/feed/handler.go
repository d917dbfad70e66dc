// File: internal/feed/handler.go
package feed

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ShIIIrochka/SecondStagePROD/internal/common"
)

// Handler struct holds dependencies for the user-facing promocode handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new feed handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes sets up the user-facing promocode routes. Every route
// requires a user token. The history route is registered before the
// parameterized promo routes; gin resolves the static segment first.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, userAuthMW gin.HandlerFunc) {
	userGroup := router.Group("/user")
	userGroup.Use(userAuthMW)
	{
		userGroup.GET("/feed", h.feed)
		userGroup.GET("/promo/history", h.history)
		userGroup.GET("/promo/:id", h.getPromo)
		userGroup.POST("/promo/:id/like", h.like)
		userGroup.DELETE("/promo/:id/like", h.unlike)
		userGroup.POST("/promo/:id/activate", h.activate)
		userGroup.POST("/promo/:id/comments", h.addComment)
		userGroup.GET("/promo/:id/comments", h.listComments)
		userGroup.GET("/promo/:id/comments/:comment_id", h.getComment)
		userGroup.PUT("/promo/:id/comments/:comment_id", h.updateComment)
		userGroup.DELETE("/promo/:id/comments/:comment_id", h.deleteComment)
	}
}

func (h *Handler) feed(c *gin.Context) {
	userID := common.GetSubjectIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("User not authenticated."))
		return
	}

	limit, offset, err := common.GetLimitOffset(c, common.DefaultFeedLimit, 0)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	var active *bool
	if raw := c.Query("active"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			common.RespondWithError(c, common.NewValidationAPIError(map[string]string{
				"active": "must be a boolean",
			}))
			return
		}
		active = &parsed
	}

	q := FeedQuery{
		Limit:    limit,
		Offset:   offset,
		Category: c.Query("category"),
		Active:   active,
	}
	views, total, err := h.service.Feed(c.Request.Context(), userID, q)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	common.SetTotalCountHeader(c, total)
	c.JSON(http.StatusOK, views)
}

func (h *Handler) history(c *gin.Context) {
	userID := common.GetSubjectIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("User not authenticated."))
		return
	}

	limit, offset, err := common.GetLimitOffset(c, common.DefaultFeedLimit, 0)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	views, total, err := h.service.History(c.Request.Context(), userID, limit, offset)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	common.SetTotalCountHeader(c, total)
	c.JSON(http.StatusOK, views)
}

func (h *Handler) getPromo(c *gin.Context) {
	userID := common.GetSubjectIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("User not authenticated."))
		return
	}

	promoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid promocode ID format."))
		return
	}

	view, err := h.service.GetPromo(c.Request.Context(), userID, promoID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) like(c *gin.Context) {
	userID := common.GetSubjectIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("User not authenticated."))
		return
	}

	promoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid promocode ID format."))
		return
	}

	if err := h.service.Like(c.Request.Context(), userID, promoID); err != nil {
		common.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.StatusOK)
}

func (h *Handler) unlike(c *gin.Context) {
	userID := common.GetSubjectIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("User not authenticated."))
		return
	}

	promoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid promocode ID format."))
		return
	}

	if err := h.service.Unlike(c.Request.Context(), userID, promoID); err != nil {
		common.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.StatusOK)
}

func (h *Handler) activate(c *gin.Context) {
	userID := common.GetSubjectIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("User not authenticated."))
		return
	}

	promoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid promocode ID format."))
		return
	}

	value, err := h.service.Activate(c.Request.Context(), userID, promoID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"promo": value})
}

func (h *Handler) addComment(c *gin.Context) {
	userID := common.GetSubjectIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("User not authenticated."))
		return
	}

	promoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid promocode ID format."))
		return
	}

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Comment create: invalid request body", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	view, err := h.service.AddComment(c.Request.Context(), userID, promoID, req.Text)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *Handler) listComments(c *gin.Context) {
	promoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid promocode ID format."))
		return
	}

	limit, offset, err := common.GetLimitOffset(c, common.DefaultFeedLimit, 0)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	views, total, err := h.service.ListComments(c.Request.Context(), promoID, limit, offset)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	common.SetTotalCountHeader(c, total)
	c.JSON(http.StatusOK, views)
}

func (h *Handler) getComment(c *gin.Context) {
	promoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid promocode ID format."))
		return
	}
	commentID, err := uuid.Parse(c.Param("comment_id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid comment ID format."))
		return
	}

	view, err := h.service.GetComment(c.Request.Context(), promoID, commentID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) updateComment(c *gin.Context) {
	userID := common.GetSubjectIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("User not authenticated."))
		return
	}

	promoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid promocode ID format."))
		return
	}
	commentID, err := uuid.Parse(c.Param("comment_id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid comment ID format."))
		return
	}

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Comment update: invalid request body", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	view, err := h.service.UpdateComment(c.Request.Context(), userID, promoID, commentID, req.Text)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) deleteComment(c *gin.Context) {
	userID := common.GetSubjectIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("User not authenticated."))
		return
	}

	promoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid promocode ID format."))
		return
	}
	commentID, err := uuid.Parse(c.Param("comment_id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid comment ID format."))
		return
	}

	if err := h.service.DeleteComment(c.Request.Context(), userID, promoID, commentID); err != nil {
		common.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.StatusOK)
}
