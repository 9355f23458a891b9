package controller

import (
	"errors"

	"mathdojo_backend/internal/model"
	"mathdojo_backend/internal/service"
	"mathdojo_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
}

func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

// RegisterParentRequest defines model for parent registration
// swagger:model RegisterParentRequest
type RegisterParentRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// RegisterParent godoc
// @Summary Register a parent account
// @Tags auth
// @Accept json
// @Produce json
// @Param body body RegisterParentRequest true "parent registration"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/auth/register [post]
func (c *AuthController) RegisterParent(ctx *gin.Context) {
	var req RegisterParentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user := &model.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}
	if err := c.AuthService.RegisterParent(user); err != nil {
		if errors.Is(err, util.ErrEmailRegistered) {
			util.Conflict(ctx, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, gin.H{"id": user.ID})
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginParent godoc
// @Summary Parent login
// @Tags auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "credentials"
// @Success 200 {object} util.Response
// @Failure 401 {object} util.Response
// @Router /api/auth/login [post]
func (c *AuthController) LoginParent(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	token, user, err := c.AuthService.LoginParent(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, util.ErrInvalidCredential) || errors.Is(err, util.ErrPermissionDenied) {
			util.Unauthorized(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"token": token, "user": user})
}

// RegisterKidRequest defines model for kid registration
// swagger:model RegisterKidRequest
type RegisterKidRequest struct {
	Name string `json:"name" binding:"required"`
	Pin  string `json:"pin" binding:"required,len=4,numeric"`
}

// RegisterKid godoc
// @Summary Register a kid under the authenticated parent
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body RegisterKidRequest true "kid registration"
// @Success 201 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/auth/kids [post]
func (c *AuthController) RegisterKid(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req RegisterKidRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	kid, err := c.AuthService.RegisterKid(claims.UserID, req.Name, req.Pin)
	if err != nil {
		if errors.Is(err, util.ErrNameTaken) {
			util.Conflict(ctx, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, kid)
}

type KidLoginRequest struct {
	ParentEmail string `json:"parentEmail" binding:"required,email"`
	Name        string `json:"name" binding:"required"`
	Pin         string `json:"pin" binding:"required"`
}

// LoginKid godoc
// @Summary Kid login with name and PIN
// @Tags auth
// @Accept json
// @Produce json
// @Param body body KidLoginRequest true "kid credentials"
// @Success 200 {object} util.Response
// @Failure 401 {object} util.Response
// @Router /api/auth/kids/login [post]
func (c *AuthController) LoginKid(ctx *gin.Context) {
	var req KidLoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	token, kid, err := c.AuthService.LoginKid(req.ParentEmail, req.Name, req.Pin)
	if err != nil {
		if errors.Is(err, util.ErrInvalidCredential) || errors.Is(err, util.ErrPermissionDenied) {
			util.Unauthorized(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"token": token, "user": kid})
}

// Me godoc
// @Summary Current account
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/auth/me [get]
func (c *AuthController) Me(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	util.Success(ctx, user)
}
