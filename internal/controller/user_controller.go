package controller

import (
	"strconv"

	"mathdojo_backend/internal/service"
	"mathdojo_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{UserService: userService}
}

func parseUintParam(ctx *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid "+name)
		return 0, false
	}
	return uint(v), true
}

// GetProfile godoc
// @Summary Current user's profile
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.User}
// @Router /api/users/me [get]
func (c *UserController) GetProfile(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	user, err := c.UserService.GetUserByID(claims.UserID)
	if err != nil {
		util.MapServiceError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

type UpdateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email" binding:"omitempty,email"`
}

// UpdateProfile godoc
// @Summary Update display name and, for parents, email
// @Tags user
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body UpdateProfileRequest true "profile fields"
// @Success 200 {object} util.Response{data=model.User}
// @Router /api/users/me [put]
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.UserService.UpdateProfile(claims.UserID, req.Name, req.Email)
	if err != nil {
		util.MapServiceError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// ListKids godoc
// @Summary Kid accounts owned by the authenticated parent
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.User}
// @Router /api/users/kids [get]
func (c *UserController) ListKids(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	kids, err := c.UserService.ListKids(claims.UserID)
	if err != nil {
		util.MapServiceError(ctx, err)
		return
	}
	util.Success(ctx, kids)
}

type ChangePinRequest struct {
	Pin string `json:"pin" binding:"required,len=4,numeric"`
}

// ChangePin godoc
// @Summary Change a kid's PIN
// @Tags user
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param kidId path int true "kid id"
// @Param body body ChangePinRequest true "new PIN"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/users/kids/{kidId}/pin [put]
func (c *UserController) ChangePin(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	kidID, ok := parseUintParam(ctx, "kidId")
	if !ok {
		return
	}

	var req ChangePinRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.UserService.ChangePin(claims.UserID, kidID, req.Pin); err != nil {
		if err == util.ErrPermissionDenied {
			util.Forbidden(ctx)
		} else {
			util.MapServiceError(ctx, err)
		}
		return
	}
	util.Success(ctx, gin.H{"updated": true})
}

// UploadAvatar godoc
// @Summary Upload a profile avatar image
// @Tags user
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param avatar formData file true "image file"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /api/users/me/avatar [post]
func (c *UserController) UploadAvatar(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	header, err := ctx.FormFile("avatar")
	if err != nil {
		util.BadRequest(ctx, "avatar file is required")
		return
	}

	url, err := c.UserService.UploadAvatar(ctx.Request.Context(), claims.UserID, header)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Success(ctx, gin.H{"avatar": url})
}
