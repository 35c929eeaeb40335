package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"userdir-service/internal/httperr"
	"userdir-service/internal/model"
	"userdir-service/pkg/database"
	"userdir-service/pkg/logger"
	"userdir-service/prometheus"
)

// bcryptCost is the work factor applied to every stored password
const bcryptCost = 10

// UserRequest defines the structure for user creation and full-update requests
type UserRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber int    `json:"phoneNumber"`
	IsAdmin     bool   `json:"isAdmin"`
}

// patchColumns maps the JSON fields a PATCH request may supply to their
// database columns. Anything else in the body (id, timestamps) is ignored.
var patchColumns = map[string]string{
	"name":        "name",
	"email":       "email",
	"password":    "password",
	"phoneNumber": "phone_number",
	"isAdmin":     "is_admin",
}

// insertUser holds the shared create flow: normalize the email, reject
// duplicates, hash the password and write the record. Registration and the
// directory create endpoint differ only in their success message.
func insertUser(c echo.Context, successMessage string) error {
	log := logger.FromContext(c)

	var req UserRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse user creation request", zap.Error(err))
		return httperr.New(http.StatusBadRequest, "invalid request")
	}

	if req.Email == "" || req.Password == "" {
		log.Error("Incomplete user data",
			zap.String("email", req.Email),
			zap.Bool("password_provided", req.Password != ""))
		return httperr.New(http.StatusBadRequest, "email and password are required")
	}

	req.Email = strings.ToLower(req.Email)

	// Check if the email already exists
	stopQuery := prometheus.TrackDBOperation("query")
	var existing model.User
	result := database.GetDB().Where("email = ?", req.Email).First(&existing)
	stopQuery()
	if result.Error == nil {
		log.Error("Email already exists", zap.String("email", req.Email))
		prometheus.RecordAuthError("email_already_exists")
		return httperr.Conflict("Email already exists.")
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return result.Error
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return err
	}

	user := model.User{
		Name:        req.Name,
		Email:       req.Email,
		Password:    string(hashedPassword),
		PhoneNumber: req.PhoneNumber,
		IsAdmin:     req.IsAdmin,
	}

	stopInsert := prometheus.TrackDBOperation("insert")
	result = database.GetDB().Create(&user)
	stopInsert()
	if result.Error != nil {
		// The unique index is the backstop for two concurrent creates that
		// both passed the existence check.
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			log.Error("Email already exists", zap.String("email", req.Email))
			prometheus.RecordAuthError("email_already_exists")
			return httperr.Conflict("Email already exists.")
		}
		log.Error("Failed to create user", zap.Error(result.Error))
		return result.Error
	}

	log.Info("User created", zap.Uint("id", user.ID), zap.String("email", user.Email))
	return c.JSON(http.StatusCreated, echo.Map{
		"message": successMessage,
		"user":    user,
	})
}

// CreateUser creates a new user through the directory endpoint
func CreateUser(c echo.Context) error {
	prometheus.RecordUserOperation("create")
	return insertUser(c, "User created successfully.")
}

// GetUsers returns all users, newest first
func GetUsers(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordUserOperation("list")

	stopQuery := prometheus.TrackDBOperation("query")
	users := []model.User{}
	result := database.GetDB().Order("created_at DESC").Find(&users)
	stopQuery()
	if result.Error != nil {
		log.Error("Failed to retrieve users", zap.Error(result.Error))
		return result.Error
	}

	return c.JSON(http.StatusOK, users)
}

// GetUser returns a single user by id
func GetUser(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordUserOperation("get")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return httperr.NotFound("User not found!")
	}

	stopQuery := prometheus.TrackDBOperation("query")
	var user model.User
	result := database.GetDB().First(&user, id)
	stopQuery()
	if result.Error != nil {
		log.Warn("User not found", zap.Uint64("id", id))
		return httperr.NotFound("User not found!")
	}

	return c.JSON(http.StatusOK, user)
}

// UpdateUser replaces a user record. A full replace always supplies email
// and password; the password is re-hashed unconditionally.
func UpdateUser(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordUserOperation("replace")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return httperr.NotFound("User not found!")
	}

	// Check that the id exists first
	stopQuery := prometheus.TrackDBOperation("query")
	var user model.User
	result := database.GetDB().First(&user, id)
	stopQuery()
	if result.Error != nil {
		log.Warn("User not found", zap.Uint64("id", id))
		return httperr.NotFound("User not found!")
	}

	var req UserRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse user update request", zap.Error(err))
		return httperr.New(http.StatusBadRequest, "invalid request")
	}

	if req.Email == "" || req.Password == "" {
		log.Error("Incomplete replace request", zap.Uint64("id", id))
		return httperr.New(http.StatusBadRequest, "email and password are required")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return err
	}

	updates := map[string]interface{}{
		"name":         req.Name,
		"email":        strings.ToLower(req.Email),
		"password":     string(hashedPassword),
		"phone_number": req.PhoneNumber,
		"is_admin":     req.IsAdmin,
	}

	stopUpdate := prometheus.TrackDBOperation("update")
	result = database.GetDB().Model(&model.User{}).Where("id = ?", id).Updates(updates)
	stopUpdate()
	if result.Error != nil {
		log.Error("Failed to update user", zap.Uint64("id", id), zap.Error(result.Error))
		return result.Error
	}

	var updated model.User
	if err := database.GetDB().First(&updated, id).Error; err != nil {
		return err
	}

	log.Info("User updated", zap.Uint64("id", id))
	return c.JSON(http.StatusOK, echo.Map{
		"message":     "User updated successfully.",
		"updatedUser": updated,
		"count":       result.RowsAffected,
	})
}

// PatchUser applies a partial update: only supplied fields change, the email
// is lowercased only if present and the password re-hashed only if present.
func PatchUser(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordUserOperation("patch")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return httperr.NotFound("User not found!")
	}

	stopQuery := prometheus.TrackDBOperation("query")
	var user model.User
	result := database.GetDB().First(&user, id)
	stopQuery()
	if result.Error != nil {
		log.Warn("User not found", zap.Uint64("id", id))
		return httperr.NotFound("User not found!")
	}

	var body map[string]interface{}
	if err := c.Bind(&body); err != nil {
		log.Error("Failed to parse user patch request", zap.Error(err))
		return httperr.New(http.StatusBadRequest, "invalid request")
	}

	updates := map[string]interface{}{}
	for field, column := range patchColumns {
		value, ok := body[field]
		if !ok {
			continue
		}
		updates[column] = value
	}

	if email, ok := updates["email"]; ok {
		s, ok := email.(string)
		if !ok {
			return httperr.New(http.StatusBadRequest, "invalid email")
		}
		updates["email"] = strings.ToLower(s)
	}

	if password, ok := updates["password"]; ok {
		s, ok := password.(string)
		if !ok {
			return httperr.New(http.StatusBadRequest, "invalid password")
		}
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(s), bcryptCost)
		if err != nil {
			log.Error("Failed to hash password", zap.Error(err))
			return err
		}
		updates["password"] = string(hashedPassword)
	}

	if len(updates) > 0 {
		stopUpdate := prometheus.TrackDBOperation("update")
		result := database.GetDB().Model(&model.User{}).Where("id = ?", id).Updates(updates)
		stopUpdate()
		if result.Error != nil {
			log.Error("Failed to patch user", zap.Uint64("id", id), zap.Error(result.Error))
			return result.Error
		}
	}

	var updated model.User
	if err := database.GetDB().First(&updated, id).Error; err != nil {
		return err
	}

	log.Info("User patched", zap.Uint64("id", id))
	return c.JSON(http.StatusOK, echo.Map{
		"message":     "User updated successfully.",
		"updatedUser": updated,
	})
}

// DeleteUser permanently removes a user
func DeleteUser(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordUserOperation("delete")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return httperr.NotFound("User not found!")
	}

	stopQuery := prometheus.TrackDBOperation("query")
	var user model.User
	result := database.GetDB().First(&user, id)
	stopQuery()
	if result.Error != nil {
		log.Warn("User not found", zap.Uint64("id", id))
		return httperr.NotFound("User not found!")
	}

	stopDelete := prometheus.TrackDBOperation("delete")
	result = database.GetDB().Delete(&model.User{}, id)
	stopDelete()
	if result.Error != nil {
		log.Error("Failed to delete user", zap.Uint64("id", id), zap.Error(result.Error))
		return result.Error
	}

	log.Info("User deleted", zap.Uint64("id", id))
	return c.JSON(http.StatusAccepted, echo.Map{
		"message": "User deleted!",
	})
}
