package rest_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/interfaces/rest"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/auth"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/constants"
)

func userRow(t *testing.T, email, password, role string, active bool) *sqlmock.Rows {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	return sqlmock.NewRows([]string{
		"id", "email", "name", "password_hash", "role", "is_active", "last_login_at", "created_at", "updated_at",
	}).AddRow(
		"user-1", email, "Kim Archive", hash, role, active, nil,
		[]byte("2024-05-01 10:00:00"), []byte("2024-05-01 10:00:00"),
	)
}

func TestAuthHandler_Login(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Success", func(t *testing.T) {
		svcMgr, mock := newServiceManager(t)
		handler := rest.NewAuthHandler(svcMgr)

		mock.ExpectQuery("SELECT (.+) FROM users WHERE email = \\?").
			WithArgs("kim@archive.local").
			WillReturnRows(userRow(t, "kim@archive.local", "Sunroof22", "editor", true))
		mock.ExpectExec("INSERT INTO sessions").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE users SET last_login_at = NOW\\(\\)").
			WithArgs("user-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		reqBody, _ := json.Marshal(map[string]string{"email": "kim@archive.local", "password": "Sunroof22"})
		c.Request = httptest.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(reqBody))

		handler.Login(c)

		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, true, body["success"])
		assert.NotEmpty(t, body["token"])
		user, ok := body["user"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "editor", user["role"])

		// The issued token round-trips through our own validator
		claims, err := auth.ValidateToken(body["token"].(string))
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.User.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Wrong Password", func(t *testing.T) {
		svcMgr, mock := newServiceManager(t)
		handler := rest.NewAuthHandler(svcMgr)

		mock.ExpectQuery("SELECT (.+) FROM users WHERE email = \\?").
			WithArgs("kim@archive.local").
			WillReturnRows(userRow(t, "kim@archive.local", "Sunroof22", "editor", true))

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		reqBody, _ := json.Marshal(map[string]string{"email": "kim@archive.local", "password": "wrong"})
		c.Request = httptest.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(reqBody))

		handler.Login(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Disabled Account", func(t *testing.T) {
		svcMgr, mock := newServiceManager(t)
		handler := rest.NewAuthHandler(svcMgr)

		mock.ExpectQuery("SELECT (.+) FROM users WHERE email = \\?").
			WithArgs("kim@archive.local").
			WillReturnRows(userRow(t, "kim@archive.local", "Sunroof22", "editor", false))

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		reqBody, _ := json.Marshal(map[string]string{"email": "kim@archive.local", "password": "Sunroof22"})
		c.Request = httptest.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(reqBody))

		handler.Login(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Account is disabled")
	})

	t.Run("Invalid Email Format", func(t *testing.T) {
		svcMgr, _ := newServiceManager(t)
		handler := rest.NewAuthHandler(svcMgr)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		reqBody, _ := json.Marshal(map[string]string{"email": "not-an-email", "password": "x"})
		c.Request = httptest.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(reqBody))

		handler.Login(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthHandler_GetMe(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svcMgr, _ := newServiceManager(t)
	handler := rest.NewAuthHandler(svcMgr)

	t.Run("Authenticated", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Set(constants.ContextKeyUser, auth.UserSession{ID: "user-1", Name: "Kim", Email: "kim@archive.local", Role: "admin"})
		c.Request = httptest.NewRequest("GET", "/api/auth/me", nil)

		handler.GetMe(c)

		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		user, ok := body["user"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "kim@archive.local", user["email"])
	})

	t.Run("No User", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest("GET", "/api/auth/me", nil)

		handler.GetMe(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
