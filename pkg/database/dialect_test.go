package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGlobalDialectRegistry(t *testing.T) {
	// MySQL 方言
	mysqlDialect, err := GlobalDialectRegistry.GetDialect(MySQL)
	assert.NoError(t, err)
	assert.NotNil(t, mysqlDialect)
	assert.Equal(t, "`", mysqlDialect.GetQuoteCharacter())
	assert.Equal(t, MySQL, mysqlDialect.GetDatabaseType())

	// PostgreSQL 方言
	pgDialect, err := GlobalDialectRegistry.GetDialect(PostgreSQL)
	assert.NoError(t, err)
	assert.NotNil(t, pgDialect)
	assert.Equal(t, "\"", pgDialect.GetQuoteCharacter())
	assert.Equal(t, PostgreSQL, pgDialect.GetDatabaseType())

	// 不支持的数据库类型
	_, err = GlobalDialectRegistry.GetDialect(DatabaseType("unsupported"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database type")
}

func TestGlobalDatabaseTypeRegistry(t *testing.T) {
	tests := []struct {
		name     string
		expected DatabaseType
	}{
		{"mysql", MySQL},
		{"TiDB", MySQL},
		{"mariadb", MySQL},
		{"postgres", PostgreSQL},
		{" PostgreSQL ", PostgreSQL},
		{"cockroachdb", PostgreSQL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dbType, err := GlobalDatabaseTypeRegistry.GetDatabaseType(tt.name)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, dbType)
		})
	}

	_, err := GlobalDatabaseTypeRegistry.GetDatabaseType("oracle")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database")
}

func TestGetSupportedNames(t *testing.T) {
	names := GlobalDatabaseTypeRegistry.GetSupportedNames()
	assert.Contains(t, names, "mysql")
	assert.Contains(t, names, "postgres")
	assert.IsIncreasing(t, names)
}

func TestQuoteIdentifier(t *testing.T) {
	mysql := &MySQLDialect{}
	assert.Equal(t, "`t_order`", mysql.QuoteIdentifier("t_order"))
	assert.Equal(t, "`we``ird`", mysql.QuoteIdentifier("we`ird"))

	pg := &PostgreSQLDialect{}
	assert.Equal(t, `"t_order"`, pg.QuoteIdentifier("t_order"))
	assert.Equal(t, `"a""b"`, pg.QuoteIdentifier(`a"b`))
}
