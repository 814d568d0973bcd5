package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"fieldstock/app"
	"fieldstock/auth"
	"fieldstock/models"
)

type AuthController struct{ *Srv }

func NewAuthController(s *Srv) *AuthController { return &AuthController{Srv: s} }

func (ac *AuthController) Login(c *gin.Context) {
	var in struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	u, err := ac.Repo.FindUserByUsername(c.Request.Context(), in.Username)
	if err != nil || !u.Active ||
		bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
		c.JSON(http.StatusUnauthorized, app.H{"error": "invalid credentials"})
		return
	}

	token, err := auth.GenerateToken(ac.Cfg.Auth.JWTSecret, u.ID, u.OrgID, u.Username, u.IsAdmin, ac.Cfg.Auth.TokenTTL)
	if err != nil {
		ac.writeErr(c, err)
		return
	}
	_ = ac.Repo.TouchUserLogin(c.Request.Context(), u.ID)
	c.JSON(http.StatusOK, app.H{"token": token, "user": u})
}

// CreateUser is admin-only user provisioning.
func (ac *AuthController) CreateUser(c *gin.Context) {
	var in struct {
		Username     string `json:"username" binding:"required"`
		DisplayName  string `json:"displayName"`
		Password     string `json:"password" binding:"required"`
		IsAdmin      bool   `json:"isAdmin"`
		IsTechnician bool   `json:"isTechnician"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		ac.writeErr(c, err)
		return
	}
	u := &models.User{
		Username:     in.Username,
		DisplayName:  in.DisplayName,
		PasswordHash: string(hash),
		IsAdmin:      in.IsAdmin,
		IsTechnician: in.IsTechnician,
	}
	if err := ac.Repo.CreateUser(c.Request.Context(), app.Scope(c), u); err != nil {
		ac.writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}
