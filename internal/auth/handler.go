package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/todo-api/internal/apierr"
	"github.com/yourusername/todo-api/internal/storage"
)

type loginRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

type signupRequest struct {
	Username string `json:"username" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

type userResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Login は POST /token のハンドラーです。
// OAuth2 のパスワードフローと同じく form で username/password を受け取ります（JSON も可）。
func (m *Manager) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		apierr.Respond(c, apierr.New(apierr.CodeInvalidInput, "username and password are required"))
		return
	}

	user, err := m.authenticate(c.Request.Context(), strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			m.logger.Printf("login lookup failed: %v", err)
			apierr.Respond(c, err)
			return
		}
		apierr.Respond(c, apierr.New(apierr.CodeInvalidCredentials, "Incorrect username or password"))
		return
	}

	token, err := m.tokens.Issue(user.ID, user.Role)
	if err != nil {
		m.logger.Printf("failed to issue token user=%d: %v", user.ID, err)
		apierr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"expires_in":   int(m.tokens.TTL().Seconds()),
	})
}

// Signup は POST /signup のハンドラーです。作成されるのは一般ユーザーのみです。
func (m *Manager) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.New(apierr.CodeInvalidInput, "username, a valid email and a password of 8 to 128 characters are required"))
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		apierr.Respond(c, apierr.New(apierr.CodeInvalidInput, "username must not be blank"))
		return
	}

	hash, err := m.hasher.Hash(req.Password)
	if err != nil {
		m.logger.Printf("failed to hash password: %v", err)
		apierr.Respond(c, err)
		return
	}

	user := &storage.User{
		Username:     username,
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hash,
		Role:         storage.RoleRegularUser,
	}
	if err := m.users.CreateUser(c.Request.Context(), user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			apierr.Respond(c, apierr.New(apierr.CodeUserExists, "Username or email already exists"))
			return
		}
		m.logger.Printf("failed to create user: %v", err)
		apierr.Respond(c, apierr.Wrap(apierr.CodePersistenceUnavailable, "An error occurred while creating the user", err))
		return
	}

	c.JSON(http.StatusCreated, userResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	})
}

// Identify は GET /identify のハンドラーです。RequireToken の後に配置します。
func (m *Manager) Identify(c *gin.Context) {
	p, ok := PrincipalFrom(c)
	if !ok {
		apierr.Respond(c, apierr.New(apierr.CodeUnauthorized, "Not authenticated"))
		return
	}
	c.JSON(http.StatusOK, userResponse{
		ID:       p.UserID,
		Username: p.Username,
		Email:    p.Email,
	})
}
