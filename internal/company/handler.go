// File: internal/company/handler.go
package company

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ShIIIrochka/SecondStagePROD/internal/common"
)

// Handler struct holds dependencies for company handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new company handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes sets up the company account routes. All of them are public;
// the promocode routes carry their own middleware.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	businessGroup := router.Group("/business")
	{
		businessGroup.POST("/auth/sign-up", h.signUp)
		businessGroup.POST("/auth/sign-in", h.signIn)
		businessGroup.POST("/token", h.issueToken)
	}
}

func (h *Handler) signUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Company sign-up: invalid request body", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	resp, err := h.service.SignUp(c.Request.Context(), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) signIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	token, err := h.service.SignIn(c.Request.Context(), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// issueToken answers the OAuth2 password form with the bare token string.
func (h *Handler) issueToken(c *gin.Context) {
	var form TokenForm
	if err := c.ShouldBind(&form); err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Both username and password form fields are required."))
		return
	}

	token, err := h.service.IssueToken(c.Request.Context(), form)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, token)
}
