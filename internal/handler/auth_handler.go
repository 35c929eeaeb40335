package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"userdir-service/internal/httperr"
	"userdir-service/internal/model"
	"userdir-service/pkg/database"
	"userdir-service/pkg/jwtutil"
	"userdir-service/pkg/logger"
	"userdir-service/prometheus"
)

// Login verifies the credentials, signs a session claim and sets it as an
// HTTP-only access_token cookie. The returned user never includes the
// password column.
func Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return httperr.New(http.StatusBadRequest, "invalid request")
	}

	req.Email = strings.ToLower(req.Email)

	stopQuery := prometheus.TrackDBOperation("query")
	var user model.User
	result := database.GetDB().Where("email = ?", req.Email).First(&user)
	stopQuery()
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			log.Error("User not found", zap.String("email", req.Email))
			prometheus.RecordAuthError("user_not_found")
			return httperr.New(http.StatusBadRequest, "User not found!")
		}
		return result.Error
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		log.Error("Invalid password", zap.String("email", req.Email))
		prometheus.RecordAuthError("login_failure")
		return httperr.InvalidCredentials("Wrong Credentials!")
	}

	token, err := jwtutil.GenerateToken(&user)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return err
	}

	// Session cookie: HTTP-only, no explicit expiry
	c.SetCookie(&http.Cookie{
		Name:     "access_token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
	})

	prometheus.IncreaseActiveSessions()
	log.Info("User logged in", zap.String("email", user.Email), zap.Bool("is_admin", user.IsAdmin))

	return c.JSON(http.StatusOK, user)
}

// Register creates a new account. The route is gated by the admin-only
// middleware; the create flow itself is shared with the directory endpoint.
func Register(c echo.Context) error {
	prometheus.RegisterCounter.Inc()
	return insertUser(c, "Registration was successful.")
}
