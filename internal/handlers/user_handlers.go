package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/01moynul/farinez-golang/internal/models"
	"github.com/01moynul/farinez-golang/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// --- Credential Validation ---

type ValidateInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ValidateCredentials is the handler for POST /api/auth/validate.
// Wrong credentials are not an HTTP error: the answer is {valid:false}.
func (h *Handlers) ValidateCredentials(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input ValidateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Usuario y contraseña son obligatorios"})
		return
	}

	// 2. --- Find User By Username ---
	user, err := h.Users.GetByUsername(c.Request.Context(), strings.TrimSpace(input.Username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusOK, gin.H{"valid": false})
			return
		}
		h.Log.WithError(err).Error("lookup user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno del servidor"})
		return
	}

	// 3. --- Check Password ---
	password := models.Password{Hash: user.PasswordHash}
	match, err := password.Matches(input.Password)
	if err != nil {
		h.Log.WithError(err).WithField("username", user.Username).Warn("password hash check failed")
		c.JSON(http.StatusOK, gin.H{"valid": false})
		return
	}
	if !match {
		c.JSON(http.StatusOK, gin.H{"valid": false})
		return
	}

	// 4. --- Generate JWT ---
	token, err := h.Auth.GenerateToken(user.Username, user.Role)
	if err != nil {
		h.Log.WithError(err).Error("sign token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno del servidor"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"tipo":  user.Role,
		"token": token,
	})
}

// --- Admin: Users ---

// ListUsers handles GET /api/usuarios?nombre=&tipo=
func (h *Handlers) ListUsers(c *gin.Context) {
	filter := store.UserFilter{
		Name: c.Query("nombre"),
		Role: c.Query("tipo"),
	}
	if filter.Role == "all" {
		filter.Role = ""
	}

	users, err := h.Users.List(c.Request.Context(), filter)
	if err != nil {
		h.storeFailure(c, err, "", "Error al cargar los usuarios")
		return
	}
	c.JSON(http.StatusOK, users)
}

type CreateUserInput struct {
	Name     string `json:"nombre" binding:"required"`
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"tipo" binding:"required,oneof=administrador operador cliente"`
}

// CreateUser handles POST /api/usuarios. Only administrators reach it.
func (h *Handlers) CreateUser(c *gin.Context) {
	var input CreateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	username := strings.TrimSpace(input.Username)
	if _, err := h.Users.GetByUsername(c.Request.Context(), username); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "El usuario ya existe"})
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		h.storeFailure(c, err, "", "Error al crear el usuario")
		return
	}

	var password models.Password
	if err := password.Set(input.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al crear el usuario"})
		return
	}

	user, err := h.Users.Create(c.Request.Context(), models.User{
		Name:         strings.TrimSpace(input.Name),
		Username:     username,
		Email:        strings.TrimSpace(input.Email),
		Role:         input.Role,
		PasswordHash: password.Hash,
	})
	if err != nil {
		h.storeFailure(c, err, "", "Error al crear el usuario")
		return
	}

	h.Log.WithFields(logrus.Fields{"username": user.Username, "tipo": user.Role}).Info("user created")
	c.JSON(http.StatusCreated, user)
}
