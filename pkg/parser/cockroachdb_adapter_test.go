package parser

import (
	"testing"

	"go-ysql/pkg/database"
	"go-ysql/pkg/sqlerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCockroachValidator_Validate(t *testing.T) {
	validator := NewCockroachValidator()
	assert.Equal(t, database.PostgreSQL, validator.DatabaseType())

	tests := []struct {
		name    string
		sql     string
		wantErr bool
	}{
		{"simple select", "SELECT id, name FROM users WHERE age > 18", false},
		{"insert returning", "INSERT INTO users (name) VALUES ('John') RETURNING id", false},
		{"limit offset", "SELECT * FROM users ORDER BY id LIMIT 10 OFFSET 20", false},
		{"double quoted identifier", `SELECT "id" FROM "t_order_0"`, false},
		{"mysql backticks rejected", "SELECT `id` FROM t_order", true},
		{"two statements", "SELECT 1; SELECT 2", true},
		{"blank", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.Validate(tt.sql)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, sqlerr.IsParse(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCockroachValidator_ExtractTables(t *testing.T) {
	validator := NewCockroachValidator()

	tests := []struct {
		name       string
		sql        string
		wantTables []string
	}{
		{
			name:       "single table select",
			sql:        "SELECT * FROM users",
			wantTables: []string{"users"},
		},
		{
			name:       "join",
			sql:        "SELECT u.name, o.total FROM users u JOIN orders o ON u.id = o.user_id",
			wantTables: []string{"users", "orders"},
		},
		{
			name:       "union all",
			sql:        "SELECT a FROM t_0 UNION ALL SELECT a FROM t_1",
			wantTables: []string{"t_0", "t_1"},
		},
		{
			name:       "insert",
			sql:        "INSERT INTO users (name) VALUES ('John')",
			wantTables: []string{"users"},
		},
		{
			name:       "update",
			sql:        "UPDATE users SET name = 'Jane' WHERE id = 1",
			wantTables: []string{"users"},
		},
		{
			name:       "delete",
			sql:        "DELETE FROM users WHERE age < 18",
			wantTables: []string{"users"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tables, err := validator.ExtractTables(tt.sql)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.wantTables, tables)
		})
	}
}

func TestCockroachValidator_StatementType(t *testing.T) {
	validator := NewCockroachValidator()

	typ, err := validator.StatementType("UPDATE users SET a = 1")
	require.NoError(t, err)
	assert.Equal(t, SQLTypeUpdate, typ)

	typ, err = validator.StatementType("DROP TABLE users")
	require.NoError(t, err)
	assert.Equal(t, SQLTypeDrop, typ)
}
