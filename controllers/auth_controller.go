package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"

	"github.com/cppla/carquest/middleware"
	"github.com/cppla/carquest/repositories"
	"github.com/cppla/carquest/utils"
)

// namePolicy strips any markup from user supplied display names.
var namePolicy = bluemonday.StrictPolicy()

// AuthController handles registration, login, and the current-user profile.
type AuthController struct {
	users *repositories.UserRepository
}

// NewAuthController creates an AuthController.
func NewAuthController(users *repositories.UserRepository) *AuthController {
	return &AuthController{users: users}
}

// Register handles account creation with bcrypt hashing. The issued token is
// returned immediately so the client lands logged in.
func (a *AuthController) Register(ctx *gin.Context) {
	type request struct {
		Name     string `json:"name" binding:"required,max=64"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6,max=72"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "missing required fields")
		return
	}

	name := strings.TrimSpace(namePolicy.Sanitize(req.Name))
	if name == "" {
		utils.Error(ctx, http.StatusBadRequest, "missing required fields")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "internal server error")
		return
	}

	user, err := a.users.Create(name, req.Email, hash)
	if err != nil {
		if errors.Is(err, repositories.ErrEmailTaken) {
			utils.Error(ctx, http.StatusConflict, "email already registered")
			return
		}
		utils.Sugar.Errorf("register: create user failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "internal server error")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Email, utils.TokenDuration)
	if err != nil {
		utils.Sugar.Errorf("register: token generation failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "internal server error")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
}

// Login verifies user credentials and issues a JWT. Unknown email and wrong
// password produce the same response.
func (a *AuthController) Login(ctx *gin.Context) {
	type request struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "missing required fields")
		return
	}

	user, err := a.users.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			utils.Error(ctx, http.StatusUnauthorized, "invalid email or password")
			return
		}
		utils.Sugar.Errorf("login: lookup failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "internal server error")
		return
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Email, utils.TokenDuration)
	if err != nil {
		utils.Sugar.Errorf("login: token generation failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "internal server error")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// Me returns the profile of the authenticated user. The account may have been
// deleted after the token was issued.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := a.users.GetByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			utils.Error(ctx, http.StatusNotFound, "user not found")
			return
		}
		utils.Sugar.Errorf("me: lookup failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "internal server error")
		return
	}

	ctx.JSON(http.StatusOK, user)
}

func getUserID(ctx *gin.Context) (uint, bool) {
	v, ok := ctx.Get(middleware.ContextUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
