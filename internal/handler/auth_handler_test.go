package handler

import (
	"encoding/json"
	"net/http"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userdir-service/pkg/jwtutil"
)

const selectByEmail = `SELECT \* FROM "users" WHERE email = \$1`

func TestLogin_UserNotFound(t *testing.T) {
	mock := setupMockDB(t)
	mock.ExpectQuery(selectByEmail).
		WithArgs("ghost@example.com", 1).
		WillReturnRows(sqlmock.NewRows(userColumns()))

	rec := doJSON(newTestEcho(), http.MethodPost, "/auth/login",
		`{"email":"Ghost@Example.com","password":"whatever"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "User not found!")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_WrongPassword(t *testing.T) {
	mock := setupMockDB(t)
	mock.ExpectQuery(selectByEmail).
		WithArgs("alice@example.com", 1).
		WillReturnRows(userRow(1, "Alice", "alice@example.com", hash(t, "right"), false))

	rec := doJSON(newTestEcho(), http.MethodPost, "/auth/login",
		`{"email":"alice@example.com","password":"wrong"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Wrong Credentials!")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_Success(t *testing.T) {
	mock := setupMockDB(t)
	mock.ExpectQuery(selectByEmail).
		WithArgs("alice@example.com", 1).
		WillReturnRows(userRow(1, "Alice", "alice@example.com", hash(t, "right"), true))

	rec := doJSON(newTestEcho(), http.MethodPost, "/auth/login",
		`{"email":"Alice@Example.COM","password":"right"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// The response carries the user without the password field
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "alice@example.com", body["email"])
	assert.NotContains(t, body, "password")

	// The cookie carries a signed claim matching the user
	res := rec.Result()
	var token string
	for _, cookie := range res.Cookies() {
		if cookie.Name == "access_token" {
			token = cookie.Value
			assert.True(t, cookie.HttpOnly, "access_token cookie must be HTTP-only")
		}
	}
	require.NotEmpty(t, token, "access_token cookie not set")

	claims, err := jwtutil.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(1), claims.ID)
	assert.Equal(t, "Alice", claims.Name)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.True(t, claims.IsAdmin)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_DuplicateEmail(t *testing.T) {
	mock := setupMockDB(t)
	mock.ExpectQuery(selectByEmail).
		WithArgs("alice@example.com", 1).
		WillReturnRows(userRow(1, "Alice", "alice@example.com", "x", false))

	// Case-insensitive: the mixed-case email collides with the stored one
	rec := doJSON(newTestEcho(), http.MethodPost, "/auth/register",
		`{"name":"Alice","email":"ALICE@example.com","password":"p","phoneNumber":1}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email already exists.")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_Success(t *testing.T) {
	mock := setupMockDB(t)
	mock.ExpectQuery(selectByEmail).
		WithArgs("new@example.com", 1).
		WillReturnRows(sqlmock.NewRows(userColumns()))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "users"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	rec := doJSON(newTestEcho(), http.MethodPost, "/auth/register",
		`{"name":"New","email":"New@Example.com","password":"p","phoneNumber":1}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body struct {
		Message string                 `json:"message"`
		User    map[string]interface{} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Registration was successful.", body.Message)
	assert.Equal(t, "new@example.com", body.User["email"])
	assert.NotContains(t, body.User, "password")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_MissingFields(t *testing.T) {
	setupMockDB(t)

	rec := doJSON(newTestEcho(), http.MethodPost, "/auth/register",
		`{"name":"NoCreds"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
