// File: internal/promo/handler.go
package promo

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ShIIIrochka/SecondStagePROD/internal/common"
)

// Handler struct holds dependencies for company promocode handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new promocode handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes sets up the company-facing promocode routes. Every route
// requires a company token.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, companyAuthMW gin.HandlerFunc) {
	promoGroup := router.Group("/business/promo")
	promoGroup.Use(companyAuthMW)
	{
		promoGroup.POST("", h.create)
		promoGroup.GET("", h.list)
		promoGroup.GET("/:id", h.get)
		promoGroup.PATCH("/:id", h.update)
	}
}

func (h *Handler) create(c *gin.Context) {
	companyID := common.GetSubjectIDFromContext(c)
	if companyID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Company not authenticated."))
		return
	}

	var req CreatePromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Promocode create: invalid request body", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	id, err := h.service.Create(c.Request.Context(), companyID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *Handler) list(c *gin.Context) {
	companyID := common.GetSubjectIDFromContext(c)
	if companyID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Company not authenticated."))
		return
	}

	limit, offset, err := common.GetLimitOffset(c, common.DefaultBusinessLimit, common.MaxBusinessLimit)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	sortBy := c.Query("sort_by")
	if sortBy != "" && sortBy != "active_from" && sortBy != "active_until" {
		common.RespondWithError(c, common.NewValidationAPIError(map[string]string{
			"sort_by": "must be one of active_from, active_until",
		}))
		return
	}

	q := ListQuery{
		Limit:     limit,
		Offset:    offset,
		SortBy:    sortBy,
		Countries: c.QueryArray("country"),
	}
	views, total, err := h.service.List(c.Request.Context(), companyID, q)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	common.SetTotalCountHeader(c, total)
	c.JSON(http.StatusOK, views)
}

func (h *Handler) get(c *gin.Context) {
	companyID := common.GetSubjectIDFromContext(c)
	if companyID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Company not authenticated."))
		return
	}

	promoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid promocode ID format."))
		return
	}

	view, err := h.service.Get(c.Request.Context(), companyID, promoID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) update(c *gin.Context) {
	companyID := common.GetSubjectIDFromContext(c)
	if companyID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Company not authenticated."))
		return
	}

	promoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid promocode ID format."))
		return
	}

	var req UpdatePromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Promocode update: invalid request body", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	view, err := h.service.Update(c.Request.Context(), companyID, promoID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
