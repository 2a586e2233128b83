package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/domain/models"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/constants"
)

// CarFilter narrows and orders a car listing
type CarFilter struct {
	Status  string
	Make    string
	YearMin int
	YearMax int
	Sort    string
	Dir     string
	Limit   int
	Offset  int
}

// carSortColumns whitelists ORDER BY targets; anything else falls back to created_at
var carSortColumns = map[string]bool{
	"created_at":   true,
	"updated_at":   true,
	"year":         true,
	"make":         true,
	"model":        true,
	"price_asking": true,
	"mileage":      true,
	"status":       true,
}

type CarRepository struct {
	db *sql.DB
}

func NewCarRepository(db *sql.DB) *CarRepository {
	return &CarRepository{db: db}
}

const carColumns = `id, make, model, year, trim, vin, color, interior_color, mileage, mileage_unit,
	price_asking, price_sold, engine, transmission, horsepower, status, ` + "`condition`" + `, location,
	description, client_contact_id, primary_image_id, created_at, updated_at`

func scanCar(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.Car, error) {
	var c models.Car
	var trim, vin, color, interior, engine, transmission, condition, location, description, clientID, primaryImage sql.NullString
	var mileage, horsepower sql.NullInt64
	var priceAsking, priceSold sql.NullFloat64
	var createdRaw, updatedRaw []byte

	err := scanner.Scan(
		&c.ID, &c.Make, &c.Model, &c.Year, &trim, &vin, &color, &interior, &mileage, &c.MileageUnit,
		&priceAsking, &priceSold, &engine, &transmission, &horsepower, &c.Status, &condition, &location,
		&description, &clientID, &primaryImage, &createdRaw, &updatedRaw)
	if err != nil {
		return nil, err
	}

	c.Trim = strPtr(trim)
	c.VIN = strPtr(vin)
	c.Color = strPtr(color)
	c.InteriorColor = strPtr(interior)
	c.Mileage = intPtr(mileage)
	c.PriceAsking = floatPtr(priceAsking)
	c.PriceSold = floatPtr(priceSold)
	c.Engine = strPtr(engine)
	c.Transmission = strPtr(transmission)
	c.Horsepower = intPtr(horsepower)
	c.Condition = strPtr(condition)
	c.Location = strPtr(location)
	c.Description = strPtr(description)
	c.ClientContactID = strPtr(clientID)
	c.PrimaryImageID = strPtr(primaryImage)
	c.CreatedAt = parseTime(createdRaw)
	c.UpdatedAt = parseTime(updatedRaw)
	return &c, nil
}

// Create inserts a new car record
func (r *CarRepository) Create(ctx context.Context, c *models.Car) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, make, model, year, trim, vin, color, interior_color, mileage, mileage_unit,
			price_asking, price_sold, engine, transmission, horsepower, status, `+"`condition`"+`, location,
			description, client_contact_id, primary_image_id, is_deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, NOW(), NOW())
	`, constants.TableCars)

	_, err := executorFor(ctx, r.db).ExecContext(ctx, query,
		c.ID, c.Make, c.Model, c.Year, c.Trim, c.VIN, c.Color, c.InteriorColor, c.Mileage, c.MileageUnit,
		c.PriceAsking, c.PriceSold, c.Engine, c.Transmission, c.Horsepower, c.Status, c.Condition, c.Location,
		c.Description, c.ClientContactID, c.PrimaryImageID)
	return err
}

// GetByID fetches a live (not soft-deleted) car, nil if absent
func (r *CarRepository) GetByID(ctx context.Context, id string) (*models.Car, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ? AND is_deleted = 0 LIMIT 1", carColumns, constants.TableCars)
	c, err := scanCar(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// List returns cars matching the filter plus the unpaginated total
func (r *CarRepository) List(ctx context.Context, f CarFilter) ([]*models.Car, int, error) {
	where := []string{"is_deleted = 0"}
	args := []interface{}{}

	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.Make != "" {
		where = append(where, "make = ?")
		args = append(args, f.Make)
	}
	if f.YearMin > 0 {
		where = append(where, "year >= ?")
		args = append(args, f.YearMin)
	}
	if f.YearMax > 0 {
		where = append(where, "year <= ?")
		args = append(args, f.YearMax)
	}

	whereSQL := strings.Join(where, " AND ")

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", constants.TableCars, whereSQL)
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sort := f.Sort
	if !carSortColumns[sort] {
		sort = "created_at"
	}
	dir := "DESC"
	if strings.EqualFold(f.Dir, "asc") {
		dir = "ASC"
	}

	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY %s %s LIMIT ? OFFSET ?",
		carColumns, constants.TableCars, whereSQL, sort, dir)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	cars := make([]*models.Car, 0)
	for rows.Next() {
		c, err := scanCar(rows)
		if err != nil {
			continue
		}
		cars = append(cars, c)
	}
	return cars, total, rows.Err()
}

// Update applies a column map to a car record
func (r *CarRepository) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}

	setClauses := []string{}
	args := []interface{}{}

	for k, v := range updates {
		col := k
		if col == "condition" {
			col = "`condition`"
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = ?", col))
		args = append(args, v)
	}

	setClauses = append(setClauses, "updated_at = ?")
	args = append(args, time.Now())

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ? AND is_deleted = 0",
		constants.TableCars, strings.Join(setClauses, ", "))
	args = append(args, id)

	_, err := executorFor(ctx, r.db).ExecContext(ctx, query, args...)
	return err
}

// SoftDelete hides a car without losing its media history
func (r *CarRepository) SoftDelete(ctx context.Context, id string) error {
	query := fmt.Sprintf("UPDATE %s SET is_deleted = 1, updated_at = NOW() WHERE id = ?", constants.TableCars)
	_, err := executorFor(ctx, r.db).ExecContext(ctx, query, id)
	return err
}

// ClearPrimaryImage detaches a deleted image from any car that fronted it
func (r *CarRepository) ClearPrimaryImage(ctx context.Context, imageID string) error {
	query := fmt.Sprintf("UPDATE %s SET primary_image_id = NULL, updated_at = NOW() WHERE primary_image_id = ?", constants.TableCars)
	_, err := executorFor(ctx, r.db).ExecContext(ctx, query, imageID)
	return err
}

// VINExists reports whether another live car already carries the VIN
func (r *CarRepository) VINExists(ctx context.Context, vin, excludeID string) (bool, error) {
	var exists bool
	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE vin = ? AND id != ? AND is_deleted = 0)", constants.TableCars)
	err := r.db.QueryRowContext(ctx, query, vin, excludeID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// SearchLike is the cheap SQL prefilter feeding fuzzy re-ranking
func (r *CarRepository) SearchLike(ctx context.Context, q string, limit int) ([]*models.Car, error) {
	pattern := "%" + q + "%"
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE is_deleted = 0 AND (make LIKE ? OR model LIKE ? OR trim LIKE ? OR vin LIKE ? OR CAST(year AS CHAR) LIKE ?)
		ORDER BY updated_at DESC
		LIMIT ?
	`, carColumns, constants.TableCars)

	rows, err := r.db.QueryContext(ctx, query, pattern, pattern, pattern, pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cars := make([]*models.Car, 0)
	for rows.Next() {
		c, err := scanCar(rows)
		if err != nil {
			continue
		}
		cars = append(cars, c)
	}
	return cars, rows.Err()
}
