package parser

import (
	"fmt"
	"sort"
	"sync"

	"go-ysql/pkg/database"
)

// Validator 严格语法校验器接口，基于完整的 AST 解析器
type Validator interface {
	// Validate 校验 SQL 是否为单条合法语句
	Validate(sql string) error

	// ExtractTables 从 AST 中提取表名
	ExtractTables(sql string) ([]string, error)

	// StatementType 返回语句类型
	StatementType(sql string) (SQLType, error)

	// DatabaseType 校验器对应的数据库类型
	DatabaseType() database.DatabaseType
}

// ValidatorFactory 按数据库类型创建校验器
type ValidatorFactory struct {
	mu       sync.RWMutex
	creators map[database.DatabaseType]func() Validator
}

// NewValidatorFactory 创建校验器工厂并注册内置校验器
func NewValidatorFactory() *ValidatorFactory {
	factory := &ValidatorFactory{
		creators: make(map[database.DatabaseType]func() Validator),
	}

	factory.Register(database.MySQL, func() Validator { return NewTiDBValidator() })
	factory.Register(database.PostgreSQL, func() Validator { return NewCockroachValidator() })

	return factory
}

// Register 注册校验器构造函数
func (f *ValidatorFactory) Register(dbType database.DatabaseType, creator func() Validator) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creators[dbType] = creator
}

// Create 创建指定数据库类型的校验器
func (f *ValidatorFactory) Create(dbType database.DatabaseType) (Validator, error) {
	f.mu.RLock()
	creator, exists := f.creators[dbType]
	f.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("no validator registered for database type %s", dbType)
	}
	return creator(), nil
}

// SupportedTypes 已注册的数据库类型
func (f *ValidatorFactory) SupportedTypes() []database.DatabaseType {
	f.mu.RLock()
	defer f.mu.RUnlock()

	types := make([]database.DatabaseType, 0, len(f.creators))
	for t := range f.creators {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// DefaultValidatorFactory 全局校验器工厂
var DefaultValidatorFactory = NewValidatorFactory()

// NewValidator 使用全局工厂创建校验器
func NewValidator(dbType database.DatabaseType) (Validator, error) {
	return DefaultValidatorFactory.Create(dbType)
}

// NewValidatorByName 按数据库名称（mysql、postgres、tidb 等）创建校验器
func NewValidatorByName(name string) (Validator, error) {
	dbType, err := database.GlobalDatabaseTypeRegistry.GetDatabaseType(name)
	if err != nil {
		return nil, err
	}
	return NewValidator(dbType)
}
