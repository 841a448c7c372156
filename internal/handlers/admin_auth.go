package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"qancha/internal/middleware"
)

type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AdminCredentials identifies the single site administrator.
type AdminCredentials struct {
	Email        string
	PasswordHash string
}

func AdminLogin(admin AdminCredentials, jwtSecret string, accessTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/login"

		var req AdminLoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		emailMatches := subtle.ConstantTimeCompare([]byte(email), []byte(admin.Email)) == 1

		// bcrypt runs for every attempt, matching email or not.
		passwordErr := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password))
		if !emailMatches || passwordErr != nil {
			zap.S().Warnf("[%s] failed login for %q", route, email)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		claims := jwt.MapClaims{
			"sub":   email,
			"role":  "admin",
			"email": email,
			"iat":   time.Now().Unix(),
			"exp":   time.Now().Add(accessTTL).Unix(),
		}

		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		signed, err := token.SignedString([]byte(jwtSecret))
		if err != nil {
			zap.S().Errorf("[%s] token signing failed: %v", route, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"token":     signed,
			"expiresIn": int64(accessTTL.Seconds()),
		})
	}
}

func AdminMe() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, _ := c.Get(middleware.ClaimsKey)
		c.JSON(http.StatusOK, gin.H{"ok": true, "claims": claims})
	}
}
