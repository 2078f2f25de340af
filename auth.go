package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"eventhub-backend/internal/store"
)

const tokenTTL = 24 * time.Hour

func jwtSecret() []byte {
	if AppConfig.JWTSecret == "" {
		return []byte("defaultsecret")
	}
	return []byte(AppConfig.JWTSecret)
}

func GenerateToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret())
}

// ParseToken validates an HS256 token and returns its user_id claim.
func ParseToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token claims")
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", errors.New("token has no user_id")
	}
	return userID, nil
}

// ========================
// SIGNUP HANDLER
// ========================

func Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := Store.Signup(c.Request.Context(), store.SignupInput{
		Role:         store.Role(req.Role),
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		ProfilePhoto: req.ProfilePhoto,
		DOB:          req.DOB,
		Gender:       req.Gender,
		Interests:    req.Interests,
		OrgCategory:  req.OrgCategory,
	})
	if err != nil {
		storeError(c, err)
		return
	}

	token, err := GenerateToken(user.ID)
	if err != nil {
		jsonError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Signup successful",
		"user":    safeUser(user),
		"token":   token,
	})
}

// ========================
// LOGIN HANDLER
// ========================

func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := Store.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		storeError(c, err)
		return
	}

	token, err := GenerateToken(user.ID)
	if err != nil {
		jsonError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": safeUser(user)})
}

// Logout clears the stored session pointer. Issued tokens stay valid until
// they expire.
func Logout(c *gin.Context) {
	if err := Store.Logout(c.Request.Context()); err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// ForgotPassword reports whether a reset link would go out. No mail is sent.
func ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, "Please enter a valid email")
		return
	}

	if _, err := Store.GetUserByEmail(c.Request.Context(), req.Email); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(c, http.StatusNotFound, "Email not found in our system")
			return
		}
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset link sent to your email!"})
}
