// Package procedure 生成分批删除历史数据的 MySQL 存储过程。
//
// 生成过程只是文本模板拼接，不解析也不执行 SQL；所有配置值按原样内联为标识符或字面量，
// 生成结果供开发者审阅后手工执行。
package procedure

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"go-ysql/pkg/sqlerr"
)

const (
	DefaultPrimaryKeyField  = "id"
	DefaultTimeField        = "create_time"
	DefaultLimitSize        = 1000
	DefaultProcedureComment = "batch delete historical data"
	defaultProcedurePrefix  = "DropHistoryDataByLimit"
)

// Config 存储过程配置
type Config struct {
	ProcedureName        string `yaml:"procedureName"`
	MainTableName        string `yaml:"mainTableName"`
	PrimaryKeyField      string `yaml:"primaryKeyField"`
	TimeField            string `yaml:"timeField"`
	LimitSize            int    `yaml:"limitSize"`
	MinID                int64  `yaml:"minId"`
	CreateTimeEnd        string `yaml:"createTimeEnd"`
	AddLogTable          bool   `yaml:"addLogTable"`
	AddTempTable         bool   `yaml:"addTempTable"`
	CustomWhereCondition string `yaml:"customWhereCondition,omitempty"`
	ProcedureComment     string `yaml:"procedureComment"`
}

// DefaultConfig 默认配置，表名、过程名与截止时间需要调用方填写
func DefaultConfig() Config {
	return Config{
		PrimaryKeyField:  DefaultPrimaryKeyField,
		TimeField:        DefaultTimeField,
		LimitSize:        DefaultLimitSize,
		AddLogTable:      true,
		AddTempTable:     true,
		ProcedureComment: DefaultProcedureComment,
	}
}

// Validate 校验必填字段与每批行数
func (c Config) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"procedure name", c.ProcedureName},
		{"main table name", c.MainTableName},
		{"primary key field", c.PrimaryKeyField},
		{"time field", c.TimeField},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return sqlerr.Configf("%s must not be blank", r.field)
		}
	}

	if c.LimitSize <= 0 {
		return sqlerr.Configf("limit size must be greater than 0, got %d", c.LimitSize)
	}

	if strings.TrimSpace(c.CreateTimeEnd) == "" {
		return sqlerr.Configf("create time end must not be blank")
	}

	return nil
}

// ValidateIdentifiers 对过程名、表名、字段名与截止时间做格式检查
func (c Config) ValidateIdentifiers() error {
	if err := ValidateProcedureName(c.ProcedureName); err != nil {
		return err
	}
	if err := ValidateTableName(c.MainTableName); err != nil {
		return err
	}
	if err := ValidateFieldName(c.PrimaryKeyField); err != nil {
		return err
	}
	if err := ValidateFieldName(c.TimeField); err != nil {
		return err
	}
	return ValidateTimeFormat(c.CreateTimeEnd)
}

// Summary 单行配置摘要
func (c Config) Summary() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("procedure: %s, ", c.ProcedureName))
	sb.WriteString(fmt.Sprintf("table: %s, ", c.MainTableName))
	sb.WriteString(fmt.Sprintf("primary key: %s, ", c.PrimaryKeyField))
	sb.WriteString(fmt.Sprintf("time field: %s, ", c.TimeField))
	sb.WriteString(fmt.Sprintf("rows per batch: %d, ", c.LimitSize))
	sb.WriteString(fmt.Sprintf("start id: %d, ", c.MinID))
	sb.WriteString(fmt.Sprintf("end time: %s", c.CreateTimeEnd))
	if strings.TrimSpace(c.CustomWhereCondition) != "" {
		sb.WriteString(fmt.Sprintf(", extra condition: %s", c.CustomWhereCondition))
	}
	return sb.String()
}

// DefaultProcedureName 按表名生成默认过程名
func DefaultProcedureName(tableName string) string {
	return defaultProcedurePrefix + "_" + tableName
}

// ValidateProcedureName 过程名只允许字母、数字、下划线，且不能以数字开头
func ValidateProcedureName(name string) error {
	return validateIdentifier("procedure name", name)
}

// ValidateTableName 表名格式检查
func ValidateTableName(name string) error {
	return validateIdentifier("table name", name)
}

// ValidateFieldName 字段名格式检查
func ValidateFieldName(name string) error {
	return validateIdentifier("field name", name)
}

func validateIdentifier(what, name string) error {
	if strings.TrimSpace(name) == "" {
		return sqlerr.Configf("%s must not be blank", what)
	}

	var invalid []rune
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			invalid = append(invalid, r)
		}
	}
	if len(invalid) > 0 {
		return sqlerr.Configf("%s contains invalid characters: %q", what, string(invalid))
	}

	if unicode.IsDigit([]rune(name)[0]) {
		return sqlerr.Configf("%s must not start with a digit", what)
	}
	return nil
}

var timePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),
	regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`),
	regexp.MustCompile(`^\d{4}/\d{2}/\d{2}$`),
	regexp.MustCompile(`^\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2}$`),
}

// ValidateTimeFormat 截止时间支持 YYYY-MM-DD、YYYY-MM-DD HH:MM:SS 及斜杠分隔形式
func ValidateTimeFormat(s string) error {
	if strings.TrimSpace(s) == "" {
		return sqlerr.Configf("time must not be blank")
	}
	for _, p := range timePatterns {
		if p.MatchString(s) {
			return nil
		}
	}
	return sqlerr.Configf("invalid time %q, expected YYYY-MM-DD or YYYY-MM-DD HH:MM:SS", s)
}
