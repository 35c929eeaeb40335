package handler

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"userdir-service/internal/httperr"
	"userdir-service/pkg/database"
)

// setupMockDB wires the package-level database handle to a sqlmock-backed
// gorm instance. SkipDefaultTransaction keeps single-statement writes free
// of BEGIN/COMMIT so expectations stay simple.
func setupMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError:         true,
	})
	if err != nil {
		t.Fatalf("gorm.Open error: %v", err)
	}

	database.DB = gormDB
	t.Cleanup(func() {
		database.DB = nil
		sqlDB.Close()
	})
	return mock
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = httperr.Handler
	e.POST("/auth/login", Login)
	e.POST("/auth/register", Register)
	e.POST("/users", CreateUser)
	e.GET("/users", GetUsers)
	e.GET("/users/:id", GetUser)
	e.PUT("/users/:id", UpdateUser)
	e.PATCH("/users/:id", PatchUser)
	e.DELETE("/users/:id", DeleteUser)
	return e
}

func doJSON(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req = httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func userColumns() []string {
	return []string{"id", "name", "email", "password", "phone_number", "is_admin", "created_at", "updated_at"}
}

func userRow(id int, name, email, password string, isAdmin bool) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(userColumns()).
		AddRow(id, name, email, password, 123456, isAdmin, now, now)
}

func hash(t *testing.T, plaintext string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt error: %v", err)
	}
	return string(h)
}
