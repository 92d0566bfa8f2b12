package handler

import (
	"errors"
	"net/http"

	"github.com/RigelNana/edumarket/gateway/middleware"
	"github.com/RigelNana/edumarket/pkg/session"
	authservice "github.com/RigelNana/edumarket/services/auth-service/service"
	"github.com/RigelNana/edumarket/services/auth-service/utils"
	resourceservice "github.com/RigelNana/edumarket/services/resource-service/service"
	userservice "github.com/RigelNana/edumarket/services/user-service/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	auth authservice.AuthService
	log  *logrus.Logger
}

func NewAuthHandler(auth authservice.AuthService, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

func sessionView(sess session.Session) gin.H {
	switch s := sess.(type) {
	case session.User:
		return gin.H{"kind": s.Kind(), "id": s.ID, "email": s.Email, "name": s.Name, "display_name": s.DisplayName()}
	case session.Admin:
		return gin.H{"kind": s.Kind(), "id": s.ID, "email": s.Email, "display_name": s.Email}
	default:
		return nil
	}
}

func sessionUserID(sess session.Session) uuid.UUID {
	switch s := sess.(type) {
	case session.User:
		return s.ID
	case session.Admin:
		return s.ID
	default:
		return uuid.Nil
	}
}

func (h *AuthHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, authservice.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, userservice.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, authservice.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, authservice.ErrAccountSuspended):
		c.JSON(http.StatusForbidden, gin.H{"error": "This account has been suspended."})
	case errors.Is(err, utils.ErrInvalidToken), errors.Is(err, utils.ErrExpiredToken), errors.Is(err, authservice.ErrSessionExpired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "redirect": "/login"})
	default:
		h.log.WithError(err).WithField("path", c.FullPath()).Error("auth request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// Register expects name,email,password
// POST /api/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	u, err := h.auth.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": u, "message": "registered", "redirect": "/login"})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login opens a user session
// POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	h.login(c, session.KindUser, "/dashboard")
}

// AdminLogin opens an admin session
// POST /api/admin/login
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	h.login(c, session.KindAdmin, "/admin")
}

func (h *AuthHandler) login(c *gin.Context, kind session.Kind, redirect string) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req.Email, req.Password, kind)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":      res.Token,
		"expires_at": res.ExpiresAt,
		"session":    sessionView(res.Session),
		"redirect":   redirect,
	})
}

// Logout 删除会话
// POST /api/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	if err := h.auth.Logout(c.Request.Context(), middleware.BearerToken(c)); err != nil {
		h.respondError(c, err)
		return
	}

	notice := resourceservice.Notice{Title: "Logged out successfully", Description: "You have been logged out of Edu Market."}
	if session.IsAdmin(sess) {
		notice = resourceservice.Notice{Title: "Admin logged out", Description: "You have been logged out of the admin panel."}
	}
	c.JSON(http.StatusOK, gin.H{"notice": notice, "redirect": "/"})
}

// Me 返回当前会话
// GET /api/me
func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"session": sessionView(middleware.CurrentSession(c))})
}

// ChangePassword
// PUT /api/me/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	id := sessionUserID(middleware.CurrentSession(c))
	if err := h.auth.ChangePassword(c.Request.Context(), id, req.OldPassword, req.NewPassword); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}
