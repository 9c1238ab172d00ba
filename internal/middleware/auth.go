package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

// Context keys set by Authentication
const (
	UserIDKey   = "user_id"
	UsernameKey = "username"
	EmailKey    = "email"
	ClaimsKey   = "claims"
)

// Session cookies. AccessTokenCookie is read when no Authorization header is sent.
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// TokenType tells access and refresh tokens apart
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

var errWrongTokenType = errors.New("wrong token type")

// Claims represents JWT claims
type Claims struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	Email     string    `json:"email,omitempty"`
	TokenType TokenType `json:"token_type"`
	jwt.RegisteredClaims
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret       string
	Issuer          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// AuthService signs and verifies access and refresh tokens
type AuthService struct {
	config *AuthConfig
	now    func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(config *AuthConfig) *AuthService {
	if config.AccessTokenTTL == 0 {
		config.AccessTokenTTL = 24 * time.Hour
	}
	if config.RefreshTokenTTL == 0 {
		config.RefreshTokenTTL = 10 * 24 * time.Hour
	}
	if config.Issuer == "" {
		config.Issuer = "inventory-api"
	}
	return &AuthService{config: config, now: time.Now}
}

// SetSessionCookies stores both tokens as HTTP-only cookies
func (a *AuthService) SetSessionCookies(c *gin.Context, accessToken, refreshToken string, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessTokenCookie, accessToken, int(a.config.AccessTokenTTL.Seconds()), "/", "", secure, true)
	c.SetCookie(RefreshTokenCookie, refreshToken, int(a.config.RefreshTokenTTL.Seconds()), "/", "", secure, true)
}

// ClearSessionCookies expires both session cookies
func (a *AuthService) ClearSessionCookies(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessTokenCookie, "", -1, "/", "", secure, true)
	c.SetCookie(RefreshTokenCookie, "", -1, "/", "", secure, true)
}

func (a *AuthService) sign(claims *Claims, ttl time.Duration) (string, error) {
	now := a.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Issuer:    a.config.Issuer,
		Subject:   claims.UserID,
		ID:        fmt.Sprintf("%s-%d", claims.TokenType, now.UnixNano()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(a.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// GenerateAccessToken issues a short-lived token carrying the user identity
func (a *AuthService) GenerateAccessToken(userID, username, email string) (string, error) {
	return a.sign(&Claims{
		UserID:    userID,
		Username:  username,
		Email:     email,
		TokenType: TokenTypeAccess,
	}, a.config.AccessTokenTTL)
}

// GenerateRefreshToken issues a long-lived token carrying only the user id
func (a *AuthService) GenerateRefreshToken(userID string) (string, error) {
	return a.sign(&Claims{
		UserID:    userID,
		TokenType: TokenTypeRefresh,
	}, a.config.RefreshTokenTTL)
}

// ValidateToken validates a JWT token of the given type and returns the claims
func (a *AuthService) ValidateToken(tokenString string, tokenType TokenType) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(a.config.JWTSecret), nil
	}, jwt.WithIssuer(a.config.Issuer))

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.TokenType != tokenType {
		return nil, errWrongTokenType
	}
	return claims, nil
}

// ValidateRefreshToken returns the user id of a valid refresh token
func (a *AuthService) ValidateRefreshToken(tokenString string) (string, error) {
	claims, err := a.ValidateToken(tokenString, TokenTypeRefresh)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

// bearerToken returns the token from "Authorization: Bearer <token>" or the
// access token cookie
func bearerToken(c *gin.Context) (string, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}

	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie != "" {
		return cookie, true
	}
	return "", false
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error":   "unauthorized",
		"message": message,
	})
}

// Authentication middleware that validates access tokens
func Authentication(authService *AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			unauthorized(c, "Unauthorized request")
			return
		}

		claims, err := authService.ValidateToken(tokenString, TokenTypeAccess)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"error":      err.Error(),
				"path":       c.Request.URL.Path,
				"request_id": c.GetString(RequestIDKey),
			}).Warn("Token validation failed")

			unauthorized(c, "Invalid access token")
			return
		}

		// Store user information in context
		c.Set(UserIDKey, claims.UserID)
		c.Set(UsernameKey, claims.Username)
		c.Set(EmailKey, claims.Email)
		c.Set(ClaimsKey, claims)

		logrus.WithFields(logrus.Fields{
			"user_id": claims.UserID,
			"path":    c.Request.URL.Path,
		}).Debug("User authenticated successfully")

		c.Next()
	}
}

// GetUserID returns the authenticated user's id
func GetUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(UserIDKey)
	return userID, userID != ""
}
