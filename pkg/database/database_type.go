package database

import (
	"fmt"
	"sort"
	"strings"
)

// DatabaseType 数据库类型
type DatabaseType string

const (
	MySQL      DatabaseType = "mysql"
	PostgreSQL DatabaseType = "postgresql"
)

// DatabaseTypeRegistry 数据库类型注册表，按名称（驱动名或别名）查找类型
type DatabaseTypeRegistry struct {
	types map[string]DatabaseType
}

// NewDatabaseTypeRegistry 创建数据库类型注册表
func NewDatabaseTypeRegistry() *DatabaseTypeRegistry {
	registry := &DatabaseTypeRegistry{
		types: make(map[string]DatabaseType),
	}

	registry.Register("mysql", MySQL)
	registry.Register("mariadb", MySQL)
	registry.Register("tidb", MySQL)
	registry.Register("postgres", PostgreSQL)
	registry.Register("postgresql", PostgreSQL)
	registry.Register("pg", PostgreSQL)
	registry.Register("cockroach", PostgreSQL)
	registry.Register("cockroachdb", PostgreSQL)

	return registry
}

// Register 注册数据库类型
func (r *DatabaseTypeRegistry) Register(name string, dbType DatabaseType) {
	r.types[strings.ToLower(name)] = dbType
}

// GetDatabaseType 根据名称获取数据库类型
func (r *DatabaseTypeRegistry) GetDatabaseType(name string) (DatabaseType, error) {
	dbType, exists := r.types[strings.ToLower(strings.TrimSpace(name))]
	if !exists {
		return "", fmt.Errorf("unsupported database: %s", name)
	}
	return dbType, nil
}

// GetSupportedNames 获取支持的名称列表（已排序）
func (r *DatabaseTypeRegistry) GetSupportedNames() []string {
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DatabaseDialect 数据库方言接口
type DatabaseDialect interface {
	// GetQuoteCharacter 获取标识符引用字符
	GetQuoteCharacter() string

	// QuoteIdentifier 引用标识符，内部出现的引用字符会被转义
	QuoteIdentifier(name string) string

	// GetDatabaseType 获取数据库类型
	GetDatabaseType() DatabaseType
}

// MySQLDialect MySQL 方言
type MySQLDialect struct{}

func (d *MySQLDialect) GetQuoteCharacter() string {
	return "`"
}

func (d *MySQLDialect) QuoteIdentifier(name string) string {
	return quote(name, d.GetQuoteCharacter())
}

func (d *MySQLDialect) GetDatabaseType() DatabaseType {
	return MySQL
}

// PostgreSQLDialect PostgreSQL 方言
type PostgreSQLDialect struct{}

func (d *PostgreSQLDialect) GetQuoteCharacter() string {
	return "\""
}

func (d *PostgreSQLDialect) QuoteIdentifier(name string) string {
	return quote(name, d.GetQuoteCharacter())
}

func (d *PostgreSQLDialect) GetDatabaseType() DatabaseType {
	return PostgreSQL
}

func quote(name, q string) string {
	return q + strings.ReplaceAll(name, q, q+q) + q
}

// DialectRegistry 方言注册表
type DialectRegistry struct {
	dialects map[DatabaseType]DatabaseDialect
}

// NewDialectRegistry 创建方言注册表
func NewDialectRegistry() *DialectRegistry {
	registry := &DialectRegistry{
		dialects: make(map[DatabaseType]DatabaseDialect),
	}

	registry.Register(MySQL, &MySQLDialect{})
	registry.Register(PostgreSQL, &PostgreSQLDialect{})

	return registry
}

// Register 注册方言
func (r *DialectRegistry) Register(dbType DatabaseType, dialect DatabaseDialect) {
	r.dialects[dbType] = dialect
}

// GetDialect 获取方言
func (r *DialectRegistry) GetDialect(dbType DatabaseType) (DatabaseDialect, error) {
	dialect, exists := r.dialects[dbType]
	if !exists {
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}
	return dialect, nil
}

// 全局注册表实例
var (
	GlobalDatabaseTypeRegistry = NewDatabaseTypeRegistry()
	GlobalDialectRegistry      = NewDialectRegistry()
)
