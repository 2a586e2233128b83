package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/errors"
)

func strp(s string) *string { return &s }

func TestNormalizeSortDir(t *testing.T) {
	dir, ok := normalizeSortDir("")
	assert.True(t, ok)
	assert.Equal(t, "ASC", dir)

	dir, ok = normalizeSortDir("DESC")
	assert.True(t, ok)
	assert.Equal(t, "DESC", dir)

	dir, ok = normalizeSortDir("Asc")
	assert.True(t, ok)
	assert.Equal(t, "ASC", dir)

	_, ok = normalizeSortDir("sideways")
	assert.False(t, ok)
}

// Validation runs before any repository access, so a nil repo is safe here.
func TestCreateViewRejectsBadInput(t *testing.T) {
	svc := NewSavedViewService(nil)
	ctx := context.Background()

	_, err := svc.CreateView(ctx, "u1", SavedViewRequest{Name: strp("mine")})
	assert.True(t, errors.IsValidation(err))

	_, err = svc.CreateView(ctx, "u1", SavedViewRequest{Entity: strp("spaceships"), Name: strp("mine")})
	assert.True(t, errors.IsValidation(err))

	_, err = svc.CreateView(ctx, "u1", SavedViewRequest{Entity: strp("cars"), Name: strp("   ")})
	assert.True(t, errors.IsValidation(err))

	_, err = svc.CreateView(ctx, "u1", SavedViewRequest{
		Entity: strp("cars"), Name: strp("mine"), SortField: strp("vin"),
	})
	assert.True(t, errors.IsValidation(err), "vin is not a sortable column")

	_, err = svc.CreateView(ctx, "u1", SavedViewRequest{
		Entity: strp("cars"), Name: strp("mine"), SortField: strp("year"), SortDir: strp("sideways"),
	})
	assert.True(t, errors.IsValidation(err))
}

func TestCreateViewCompilesFilterAtSaveTime(t *testing.T) {
	svc := NewSavedViewService(nil)
	ctx := context.Background()

	// Unknown column for the cars entity
	_, err := svc.CreateView(ctx, "u1", SavedViewRequest{
		Entity: strp("cars"), Name: strp("mine"), FilterExpr: strp(`secret == 1`),
	})
	assert.True(t, errors.IsValidation(err))

	// Unparseable expression
	_, err = svc.CreateView(ctx, "u1", SavedViewRequest{
		Entity: strp("cars"), Name: strp("mine"), FilterExpr: strp(`status == `),
	})
	assert.True(t, errors.IsValidation(err))
}

func TestViewEntitiesWhitelistShape(t *testing.T) {
	names := ViewEntityNames()
	assert.Len(t, names, 6)

	for name, meta := range viewEntities {
		assert.NotEmpty(t, meta.table, name)
		assert.NotEmpty(t, meta.baseClause, name)
		assert.NotEmpty(t, meta.filterable, name)
		assert.NotEmpty(t, meta.sortable, name)
	}
}
