package handlers

import (
	"github.com/gin-gonic/gin"

	"shoptill/internal/domain/auth"
	"shoptill/internal/infrastructure/http/v1/dto"
)

// AuthHandler handles operator sign-in endpoints.
type AuthHandler struct {
	*BaseHandler
	service *auth.Service
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(base *BaseHandler, service *auth.Service) *AuthHandler {
	return &AuthHandler{BaseHandler: base, service: service}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	session, err := h.service.Login(c.Request.Context(), auth.Credentials{
		Code: req.Code,
		PIN:  req.PIN,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, session)
}

// CreateOperator handles POST /auth/operators (manager only).
func (h *AuthHandler) CreateOperator(c *gin.Context) {
	var req dto.CreateOperatorRequest
	if !h.BindJSON(c, &req) {
		return
	}

	op, err := h.service.CreateOperator(c.Request.Context(), req.Code, req.Name, req.PIN, req.IsManager)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, op.ID.String())
}

// ChangePIN handles POST /auth/change-pin.
func (h *AuthHandler) ChangePIN(c *gin.Context) {
	var req dto.ChangePINRequest
	if !h.BindJSON(c, &req) {
		return
	}

	code := h.OperatorCode(c)
	if err := h.service.ChangePIN(c.Request.Context(), code, req.CurrentPIN, req.NewPIN); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "pin changed")
}
