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

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/application/services"
	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/config"
	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/infrastructure/database"
	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/interfaces/rest"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/auth"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/constants"
)

// newServiceManager wires the full service graph over sqlmock. Workers are
// never started, so no goroutines outlive the test.
func newServiceManager(t *testing.T) (*services.ServiceManager, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return services.NewServiceManager(database.NewWithDB(db), config.Config{}), mock
}

func carRow() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "make", "model", "year", "trim", "vin", "color", "interior_color", "mileage", "mileage_unit",
		"price_asking", "price_sold", "engine", "transmission", "horsepower", "status", "condition", "location",
		"description", "client_contact_id", "primary_image_id", "created_at", "updated_at",
	}).AddRow(
		"car-1", "Porsche", "911", 1973, nil, nil, nil, nil, nil, "mi",
		nil, nil, nil, nil, nil, "available", nil, nil,
		nil, nil, nil, []byte("2024-05-01 10:00:00"), []byte("2024-05-01 10:00:00"),
	)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestCarHandler_GetCar(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svcMgr, mock := newServiceManager(t)
	handler := rest.NewCarHandler(svcMgr)

	t.Run("Success", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest("GET", "/api/cars/car-1", nil)
		c.Params = gin.Params{{Key: "id", Value: "car-1"}}

		mock.ExpectQuery("SELECT (.+) FROM cars WHERE id = \\?").
			WithArgs("car-1").WillReturnRows(carRow())

		handler.GetCar(c)

		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		car, ok := body["car"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "Porsche", car["make"])
	})

	t.Run("Not Found", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest("GET", "/api/cars/missing", nil)
		c.Params = gin.Params{{Key: "id", Value: "missing"}}

		mock.ExpectQuery("SELECT (.+) FROM cars WHERE id = \\?").
			WithArgs("missing").WillReturnRows(sqlmock.NewRows([]string{"id"}))

		handler.GetCar(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "NOT_FOUND", body["code"])
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCarHandler_ListCars(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svcMgr, mock := newServiceManager(t)
	handler := rest.NewCarHandler(svcMgr)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/cars?status=available&limit=2", nil)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM cars").
		WithArgs("available").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT (.+) FROM cars WHERE is_deleted = 0 AND status = \\?").
		WithArgs("available", 2, 0).
		WillReturnRows(carRow())

	handler.ListCars(c)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(1), body["total"])
	cars, ok := body["cars"].([]interface{})
	require.True(t, ok)
	assert.Len(t, cars, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCarHandler_ListCarsRejectsBadStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svcMgr, mock := newServiceManager(t)
	handler := rest.NewCarHandler(svcMgr)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/cars?status=exploded", nil)

	handler.ListCars(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCarHandler_CreateCar(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svcMgr, mock := newServiceManager(t)
	handler := rest.NewCarHandler(svcMgr)

	t.Run("No User", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest("POST", "/api/cars", bytes.NewBufferString(`{}`))

		handler.CreateCar(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Validation Error", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Set(constants.ContextKeyUser, auth.UserSession{ID: "user-1", Role: "editor"})

		reqBody, _ := json.Marshal(services.CreateCarRequest{Make: "Benz", Model: "Motorwagen", Year: 1702})
		c.Request = httptest.NewRequest("POST", "/api/cars", bytes.NewBuffer(reqBody))

		handler.CreateCar(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "VALIDATION_ERROR", body["code"])
	})

	t.Run("Success", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Set(constants.ContextKeyUser, auth.UserSession{ID: "user-1", Role: "editor"})

		reqBody, _ := json.Marshal(services.CreateCarRequest{Make: "Porsche", Model: "911", Year: 1973})
		c.Request = httptest.NewRequest("POST", "/api/cars", bytes.NewBuffer(reqBody))

		// Row and domain event commit atomically
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO cars").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO outbox_events").
			WithArgs(sqlmock.AnyArg(), "car.created", sqlmock.AnyArg(), "pending").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		handler.CreateCar(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "Car created successfully", body["message"])
		car, ok := body["car"].(map[string]interface{})
		require.True(t, ok)
		assert.NotEmpty(t, car["id"])
		assert.Equal(t, "available", car["status"])
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCarHandler_DeleteCar(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svcMgr, mock := newServiceManager(t)
	handler := rest.NewCarHandler(svcMgr)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set(constants.ContextKeyUser, auth.UserSession{ID: "user-1", Role: "admin"})
	c.Request = httptest.NewRequest("DELETE", "/api/cars/car-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "car-1"}}

	mock.ExpectQuery("SELECT (.+) FROM cars WHERE id = \\?").
		WithArgs("car-1").WillReturnRows(carRow())
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE cars SET is_deleted = 1").
		WithArgs("car-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO outbox_events").
		WithArgs(sqlmock.AnyArg(), "car.deleted", sqlmock.AnyArg(), "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	handler.DeleteCar(c)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Car deleted successfully", body["message"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
