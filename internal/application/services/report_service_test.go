package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/constants"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/errors"
)

func TestValidateQueryAppendsLimitWhenMissing(t *testing.T) {
	svc := NewReportService(nil)

	got, err := svc.ValidateQuery("SELECT make, COUNT(*) FROM cars GROUP BY make")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(got, fmt.Sprintf("LIMIT %d", constants.ReportDefaultLimit)), got)
}

func TestValidateQueryKeepsExistingLimit(t *testing.T) {
	svc := NewReportService(nil)

	got, err := svc.ValidateQuery("SELECT id FROM cars LIMIT 5")
	require.NoError(t, err)
	assert.Contains(t, got, "LIMIT 5")
	assert.NotContains(t, got, fmt.Sprintf("LIMIT %d", constants.ReportDefaultLimit))
}

func TestValidateQueryCapsOversizedLimit(t *testing.T) {
	svc := NewReportService(nil)

	got, err := svc.ValidateQuery("SELECT id FROM cars LIMIT 100000")
	require.NoError(t, err)
	assert.Contains(t, got, fmt.Sprintf("LIMIT %d", constants.ReportMaxRows))
	assert.NotContains(t, got, "100000")
}

func TestValidateQueryRejectsNonSelect(t *testing.T) {
	svc := NewReportService(nil)

	for _, q := range []string{
		"DELETE FROM cars",
		"UPDATE cars SET status = 'sold'",
		"INSERT INTO cars (id) VALUES ('x')",
		"DROP TABLE cars",
	} {
		_, err := svc.ValidateQuery(q)
		assert.True(t, errors.IsValidation(err), q)
	}
}

func TestValidateQueryRejectsMultipleStatements(t *testing.T) {
	svc := NewReportService(nil)

	_, err := svc.ValidateQuery("SELECT id FROM cars; SELECT id FROM contacts")
	assert.True(t, errors.IsValidation(err))
}

func TestValidateQueryEnforcesTableAllowList(t *testing.T) {
	svc := NewReportService(nil)

	_, err := svc.ValidateQuery("SELECT * FROM users")
	assert.True(t, errors.IsValidation(err))

	// Disallowed tables hide inside subqueries too
	_, err = svc.ValidateQuery("SELECT * FROM cars WHERE id IN (SELECT user_id FROM sessions)")
	assert.True(t, errors.IsValidation(err))

	_, err = svc.ValidateQuery("SELECT c.make, d.title FROM cars c JOIN deliverables d ON d.car_id = c.id")
	assert.NoError(t, err)
}

func TestValidateQueryRejectsGarbage(t *testing.T) {
	svc := NewReportService(nil)

	_, err := svc.ValidateQuery("")
	assert.True(t, errors.IsValidation(err))

	_, err = svc.ValidateQuery("SELEKT shiny FROM chrome")
	assert.True(t, errors.IsValidation(err))
}
