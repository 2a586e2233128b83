package services

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/infrastructure/persistence"
)

func newInventoryFixture(t *testing.T) (*InventoryService, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := NewInventoryService(
		persistence.NewContainerRepository(db),
		persistence.NewInventoryRepository(db),
		persistence.NewContactRepository(db),
	)
	return svc, mock
}

func inventoryItemRow(id string, checkedOutTo interface{}) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "category", "container_id", "manufacturer", "model_number", "serial_number",
		"quantity", "item_condition", "notes", "checked_out_to", "checked_out_at", "created_at", "updated_at",
	}).AddRow(
		id, "RED Komodo", "camera", nil, "RED", nil, "KOMODO-0042",
		1, "good", nil, checkedOutTo, nil, []byte("2024-03-01 12:00:00"), []byte("2024-03-01 12:00:00"),
	)
}

func inventoryContactRow(id string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "first_name", "last_name", "email", "phone", "role", "company", "notes", "status", "created_at", "updated_at",
	}).AddRow(
		id, "Ana", "Reyes", nil, nil, "photographer", nil, nil, "active",
		[]byte("2024-01-01 00:00:00"), []byte("2024-01-01 00:00:00"),
	)
}

func TestCheckoutItem(t *testing.T) {
	svc, mock := newInventoryFixture(t)

	mock.ExpectQuery("SELECT (.+) FROM inventory_items WHERE id = \\?").WithArgs("item-1").
		WillReturnRows(inventoryItemRow("item-1", nil))
	mock.ExpectQuery("SELECT (.+) FROM contacts WHERE id = \\?").WithArgs("contact-1").
		WillReturnRows(inventoryContactRow("contact-1"))
	mock.ExpectExec("UPDATE inventory_items SET checked_out_to = \\?, checked_out_at = \\?").
		WithArgs("contact-1", sqlmock.AnyArg(), "item-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT (.+) FROM inventory_items WHERE id = \\?").WithArgs("item-1").
		WillReturnRows(inventoryItemRow("item-1", "contact-1"))

	item, err := svc.CheckoutItem(context.Background(), "item-1", "contact-1")
	require.NoError(t, err)
	require.NotNil(t, item.CheckedOutTo)
	assert.Equal(t, "contact-1", *item.CheckedOutTo)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckoutItemAlreadyHeld(t *testing.T) {
	svc, mock := newInventoryFixture(t)

	mock.ExpectQuery("SELECT (.+) FROM inventory_items WHERE id = \\?").WithArgs("item-1").
		WillReturnRows(inventoryItemRow("item-1", "contact-9"))
	mock.ExpectQuery("SELECT (.+) FROM contacts WHERE id = \\?").WithArgs("contact-1").
		WillReturnRows(inventoryContactRow("contact-1"))

	// The guard clause matches no rows: someone else holds the item
	mock.ExpectExec("UPDATE inventory_items SET checked_out_to = \\?, checked_out_at = \\?").
		WithArgs("contact-1", sqlmock.AnyArg(), "item-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := svc.CheckoutItem(context.Background(), "item-1", "contact-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already checked out to contact-9")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckoutItemRequiresContact(t *testing.T) {
	svc, mock := newInventoryFixture(t)

	mock.ExpectQuery("SELECT (.+) FROM inventory_items WHERE id = \\?").WithArgs("item-1").
		WillReturnRows(inventoryItemRow("item-1", nil))

	_, err := svc.CheckoutItem(context.Background(), "item-1", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Contact is required")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckinItem(t *testing.T) {
	svc, mock := newInventoryFixture(t)

	mock.ExpectQuery("SELECT (.+) FROM inventory_items WHERE id = \\?").WithArgs("item-1").
		WillReturnRows(inventoryItemRow("item-1", "contact-1"))
	mock.ExpectExec("UPDATE inventory_items SET checked_out_to = NULL").WithArgs("item-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT (.+) FROM inventory_items WHERE id = \\?").WithArgs("item-1").
		WillReturnRows(inventoryItemRow("item-1", nil))

	item, err := svc.CheckinItem(context.Background(), "item-1")
	require.NoError(t, err)
	assert.Nil(t, item.CheckedOutTo)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckinFreeItemIsNoop(t *testing.T) {
	svc, mock := newInventoryFixture(t)

	mock.ExpectQuery("SELECT (.+) FROM inventory_items WHERE id = \\?").WithArgs("item-1").
		WillReturnRows(inventoryItemRow("item-1", nil))

	item, err := svc.CheckinItem(context.Background(), "item-1")
	require.NoError(t, err)
	assert.Nil(t, item.CheckedOutTo)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteContainerRefusesWhenOccupied(t *testing.T) {
	svc, mock := newInventoryFixture(t)

	containerRow := sqlmock.NewRows([]string{
		"id", "name", "container_type", "location", "description", "is_active", "created_at", "updated_at",
	}).AddRow("cont-1", "Pelican 1650", "pelican", "van", nil, true,
		[]byte("2024-01-01 00:00:00"), []byte("2024-01-01 00:00:00"))

	mock.ExpectQuery("SELECT (.+) FROM containers WHERE id = \\?").WithArgs("cont-1").
		WillReturnRows(containerRow)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM inventory_items WHERE container_id = \\?").WithArgs("cont-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	err := svc.DeleteContainer(context.Background(), "cont-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 items stored in it")
	assert.NoError(t, mock.ExpectationsWereMet())
}
