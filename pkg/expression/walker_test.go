package expression

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToSQL(t *testing.T) {
	tests := []struct {
		name         string
		expression   string
		expectedSQL  string
		expectedArgs []interface{}
		expectError  bool
	}{
		{
			name:         "simple equality",
			expression:   "year == 1973",
			expectedSQL:  "(year = ?)",
			expectedArgs: []interface{}{1973},
		},
		{
			name:         "simple greater than",
			expression:   "mileage > 50000",
			expectedSQL:  "(mileage > ?)",
			expectedArgs: []interface{}{50000},
		},
		{
			name:         "string literal",
			expression:   "status == 'available'",
			expectedSQL:  "(status = ?)",
			expectedArgs: []interface{}{"available"},
		},
		{
			name:         "logical AND",
			expression:   "year >= 1990 && status == 'available'",
			expectedSQL:  "((year >= ?) AND (status = ?))",
			expectedArgs: []interface{}{1990, "available"},
		},
		{
			name:         "logical OR",
			expression:   "status == 'pending' || status == 'sold'",
			expectedSQL:  "((status = ?) OR (status = ?))",
			expectedArgs: []interface{}{"pending", "sold"},
		},
		{
			name:         "mixed logic with float",
			expression:   "(price_asking > 25000.5 || year < 1980) && status != 'archived'",
			expectedSQL:  "(((price_asking > ?) OR (year < ?)) AND (status != ?))",
			expectedArgs: []interface{}{25000.5, 1980, "archived"},
		},
		{
			name:         "function UPPER",
			expression:   "UPPER(make) == 'PORSCHE'",
			expectedSQL:  "(UPPER(make) = ?)",
			expectedArgs: []interface{}{"PORSCHE"},
		},
		{
			name:         "function LEN",
			expression:   "LEN(vin) > 10",
			expectedSQL:  "(CHAR_LENGTH(vin) > ?)",
			expectedArgs: []interface{}{10},
		},
		{
			name:         "function TODAY",
			expression:   "release_date > TODAY()",
			expectedSQL:  "(release_date > CURDATE())",
			expectedArgs: []interface{}{},
		},
		{
			name:         "function DATE_ADD",
			expression:   "scheduled_at < DATE_ADD(TODAY(), 30)",
			expectedSQL:  "(scheduled_at < DATE_ADD(CURDATE(), INTERVAL ? DAY))",
			expectedArgs: []interface{}{30},
		},
		{
			name:         "null comparison IS NULL",
			expression:   "vin == null",
			expectedSQL:  "(vin IS NULL)",
			expectedArgs: []interface{}{},
		},
		{
			name:         "null comparison IS NOT NULL",
			expression:   "car_id != null",
			expectedSQL:  "(car_id IS NOT NULL)",
			expectedArgs: []interface{}{},
		},
		{
			name:         "CONTAINS becomes LIKE",
			expression:   "CONTAINS(model, '911')",
			expectedSQL:  "model LIKE ?",
			expectedArgs: []interface{}{"%911%"},
		},
		{
			name:         "STARTS_WITH becomes prefix LIKE",
			expression:   "STARTS_WITH(make, 'Mer')",
			expectedSQL:  "make LIKE ?",
			expectedArgs: []interface{}{"Mer%"},
		},
		{
			name:         "ENDS_WITH becomes suffix LIKE",
			expression:   "ENDS_WITH(model, 'Turbo')",
			expectedSQL:  "model LIKE ?",
			expectedArgs: []interface{}{"%Turbo"},
		},
		{
			name:        "unknown function rejected",
			expression:  "DROP_TABLE(cars)",
			expectError: true,
		},
		{
			name:        "CONTAINS with non-string pattern rejected",
			expression:  "CONTAINS(model, 911)",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := ToSQL(tt.expression)

			if tt.expectError {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.expectedSQL, sql)
			assert.Equal(t, tt.expectedArgs, args)
		})
	}
}

func TestToSQLForFields(t *testing.T) {
	carFields := []string{"make", "model", "year", "status", "price_asking"}

	t.Run("allowed fields pass", func(t *testing.T) {
		sql, args, err := ToSQLForFields("year > 1990 && status == 'available'", carFields)
		assert.NoError(t, err)
		assert.Equal(t, "((year > ?) AND (status = ?))", sql)
		assert.Equal(t, []interface{}{1990, "available"}, args)
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		_, _, err := ToSQLForFields("password == 'x'", carFields)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unknown field")
	})

	t.Run("unknown field inside function rejected", func(t *testing.T) {
		_, _, err := ToSQLForFields("UPPER(secret) == 'X'", carFields)
		assert.Error(t, err)
	})

	t.Run("null literal is not treated as a field", func(t *testing.T) {
		sql, _, err := ToSQLForFields("price_asking != null", carFields)
		assert.NoError(t, err)
		assert.Equal(t, "(price_asking IS NOT NULL)", sql)
	})
}
