package persistence

import (
	"context"
	"fmt"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func carRow() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "make", "model", "year", "trim", "vin", "color", "interior_color", "mileage", "mileage_unit",
		"price_asking", "price_sold", "engine", "transmission", "horsepower", "status", "condition", "location",
		"description", "client_contact_id", "primary_image_id", "created_at", "updated_at",
	}).AddRow(
		"car-1", "Porsche", "911", 1973, "Carrera RS", "9113600886", "Grand Prix White", nil, 48200, "mi",
		189000.0, nil, "2.7L flat-six", "5-speed manual", 210, "available", "excellent", "Hangar 3",
		nil, nil, nil, []byte("2024-05-01 10:00:00"), []byte("2024-05-02 09:30:00"),
	)
}

func TestCarGetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCarRepository(db)

	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ? AND is_deleted = 0 LIMIT 1", carColumns, constants.TableCars)

	mock.ExpectQuery(regexp.QuoteMeta(query)).WithArgs("car-1").WillReturnRows(carRow())

	car, err := repo.GetByID(context.Background(), "car-1")
	assert.NoError(t, err)
	require.NotNil(t, car)
	assert.Equal(t, "Porsche", car.Make)
	assert.Equal(t, 1973, car.Year)
	require.NotNil(t, car.PriceAsking)
	assert.Equal(t, 189000.0, *car.PriceAsking)
	assert.Nil(t, car.PriceSold)
	assert.Equal(t, "1973 Porsche 911", car.DisplayName())
}

func TestCarGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCarRepository(db)

	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ? AND is_deleted = 0 LIMIT 1", carColumns, constants.TableCars)

	mock.ExpectQuery(regexp.QuoteMeta(query)).WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	car, err := repo.GetByID(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, car)
}

func TestCarList(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCarRepository(db)

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE is_deleted = 0 AND status = ?", constants.TableCars)
	dataQuery := fmt.Sprintf("SELECT %s FROM %s WHERE is_deleted = 0 AND status = ? ORDER BY created_at DESC LIMIT ? OFFSET ?",
		carColumns, constants.TableCars)

	mock.ExpectQuery(regexp.QuoteMeta(countQuery)).WithArgs("available").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(dataQuery)).WithArgs("available", 50, 0).
		WillReturnRows(carRow())

	cars, total, err := repo.List(context.Background(), CarFilter{Status: "available"})
	assert.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, cars, 1)
	assert.Equal(t, "car-1", cars[0].ID)
}

func TestCarListRejectsUnknownSortColumn(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCarRepository(db)

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE is_deleted = 0", constants.TableCars)
	// "vin; DROP TABLE" is not whitelisted so the query falls back to created_at
	dataQuery := fmt.Sprintf("SELECT %s FROM %s WHERE is_deleted = 0 ORDER BY created_at ASC LIMIT ? OFFSET ?",
		carColumns, constants.TableCars)

	mock.ExpectQuery(regexp.QuoteMeta(countQuery)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta(dataQuery)).WithArgs(50, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, _, err = repo.List(context.Background(), CarFilter{Sort: "vin; DROP TABLE cars", Dir: "asc"})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCarVINExists(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCarRepository(db)

	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE vin = ? AND id != ? AND is_deleted = 0)", constants.TableCars)

	mock.ExpectQuery(regexp.QuoteMeta(query)).WithArgs("9113600886", "").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.VINExists(context.Background(), "9113600886", "")
	assert.NoError(t, err)
	assert.True(t, exists)
}

func TestCarUpdateEscapesCondition(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCarRepository(db)

	query := fmt.Sprintf("UPDATE %s SET `condition` = ?, updated_at = ? WHERE id = ? AND is_deleted = 0", constants.TableCars)

	mock.ExpectExec(regexp.QuoteMeta(query)).WithArgs("driver", sqlmock.AnyArg(), "car-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Update(context.Background(), "car-1", map[string]interface{}{"condition": "driver"})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCarSoftDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCarRepository(db)

	query := fmt.Sprintf("UPDATE %s SET is_deleted = 1, updated_at = NOW() WHERE id = ?", constants.TableCars)

	mock.ExpectExec(regexp.QuoteMeta(query)).WithArgs("car-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.SoftDelete(context.Background(), "car-1")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
