package parser

import (
	"regexp"
	"strings"

	"go-ysql/pkg/sqlerr"

	"github.com/samber/lo"
)

// SQLType SQL 语句类型
type SQLType string

const (
	SQLTypeSelect SQLType = "SELECT"
	SQLTypeInsert SQLType = "INSERT"
	SQLTypeUpdate SQLType = "UPDATE"
	SQLTypeDelete SQLType = "DELETE"
	SQLTypeCreate SQLType = "CREATE"
	SQLTypeDrop   SQLType = "DROP"
	SQLTypeAlter  SQLType = "ALTER"
	SQLTypeOther  SQLType = "UNKNOWN"
)

// clauseKeywords 表名之前可能出现的子句关键字
const clauseKeywords = `(?:FROM|JOIN|UPDATE|INSERT\s+INTO|DELETE\s+FROM)`

const identifier = `[a-zA-Z_][a-zA-Z0-9_]*`

// tablePattern 匹配子句关键字后的表名，允许 schema.table 形式
var tablePattern = regexp.MustCompile(
	`(?i)\b` + clauseKeywords + `\s+(` + identifier + `(?:\.` + identifier + `)?)\b`,
)

// statementKeywords 判断 SQL 形态时认可的关键字
var statementKeywords = []string{"SELECT", "INSERT", "UPDATE", "DELETE", "CREATE", "DROP", "ALTER"}

// SQLParser 基于正则的轻量 SQL 解析器
//
// 只处理单语句、单 FROM 子句的 SQL，不构建语法树。
type SQLParser struct {
	keywords map[string]bool
}

// NewSQLParser 创建 SQL 解析器
func NewSQLParser() *SQLParser {
	parser := &SQLParser{
		keywords: make(map[string]bool),
	}

	// 用于过滤误识别为表名的关键字
	keywords := []string{
		"select", "from", "where", "join", "left", "right", "inner", "outer",
		"group", "by", "order", "having", "limit", "offset", "union", "all",
		"insert", "update", "delete", "into", "set", "values", "create", "drop",
		"table", "index", "view", "database", "schema", "user", "grant", "revoke",
		"alter", "truncate", "explain", "describe", "show", "use", "commit", "rollback",
	}

	for _, keyword := range keywords {
		parser.keywords[keyword] = true
	}

	return parser
}

// DefaultParser 默认解析器实例，只读使用，可并发调用
var DefaultParser = NewSQLParser()

// ExtractTableReferences 按出现顺序提取所有表引用（包含重复）
func (p *SQLParser) ExtractTableReferences(sql string) []string {
	var tables []string

	code := codePositions(sql)
	for _, match := range tablePattern.FindAllStringSubmatchIndex(sql, -1) {
		if !code[match[0]] {
			continue
		}
		name := strings.TrimSpace(sql[match[2]:match[3]])
		if name == "" || p.IsKeyword(name) {
			continue
		}
		// schema.table 只保留表名部分
		if idx := strings.LastIndex(name, "."); idx >= 0 {
			name = name[idx+1:]
		}
		tables = append(tables, name)
	}

	return tables
}

// ExtractTableNames 提取去重后的表名，保持首次出现顺序
func (p *SQLParser) ExtractTableNames(sql string) []string {
	return lo.Uniq(p.ExtractTableReferences(sql))
}

// ReplaceTableName 替换子句关键字后的表名
//
// 只替换紧跟 FROM、JOIN、UPDATE、INSERT INTO、DELETE FROM 的表名，
// WHERE 条件、字符串字面量、注释、列限定符中的同名文本保持不变。
func (p *SQLParser) ReplaceTableName(sql, oldTableName, newTableName string) string {
	if oldTableName == "" {
		return sql
	}

	pattern := regexp.MustCompile(
		`(?i)\b(` + clauseKeywords + `\s+(?:` + identifier + `\.)?)` + regexp.QuoteMeta(oldTableName) + `\b`,
	)

	code := codePositions(sql)
	var sb strings.Builder
	last := 0

	for _, match := range pattern.FindAllStringSubmatchIndex(sql, -1) {
		if !code[match[0]] {
			continue
		}
		sb.WriteString(sql[last:match[3]])
		sb.WriteString(newTableName)
		last = match[1]
	}

	sb.WriteString(sql[last:])
	return sb.String()
}

// codePositions 标记不在字符串字面量、注释内的字节
func codePositions(sql string) []bool {
	code := make([]bool, len(sql))
	scanCode(sql, 0, func(i, _ int) bool {
		code[i] = true
		return true
	})
	return code
}

// ValidateSQL 校验 SQL 的基本形态：非空、包含语句关键字、括号成对
//
// 这不是语法检查，严格检查见 Validator。
func (p *SQLParser) ValidateSQL(sql string) error {
	trimmed := strings.TrimSpace(sql)
	if trimmed == "" {
		return sqlerr.Parsef("sql statement must not be blank")
	}

	upper := strings.ToUpper(trimmed)
	hasKeyword := lo.SomeBy(statementKeywords, func(k string) bool {
		return strings.Contains(upper, k)
	})
	if !hasKeyword {
		return sqlerr.Parsef("sql statement contains no recognized keyword (SELECT, INSERT, UPDATE, DELETE, CREATE, DROP, ALTER)")
	}

	open := strings.Count(trimmed, "(")
	closed := strings.Count(trimmed, ")")
	if open != closed {
		return sqlerr.Parsef("unbalanced parentheses in sql statement: %d '(' vs %d ')'", open, closed)
	}

	return nil
}

// DetermineSQLType 确定 SQL 类型
func (p *SQLParser) DetermineSQLType(sql string) SQLType {
	sql = strings.TrimSpace(strings.ToUpper(sql))

	for _, t := range []SQLType{
		SQLTypeSelect, SQLTypeInsert, SQLTypeUpdate, SQLTypeDelete,
		SQLTypeCreate, SQLTypeDrop, SQLTypeAlter,
	} {
		if strings.HasPrefix(sql, string(t)) {
			return t
		}
	}

	return SQLTypeOther
}

// IsKeyword 检查是否为保留关键字
func (p *SQLParser) IsKeyword(word string) bool {
	return p.keywords[strings.ToLower(word)]
}

// ExtractTableNames 使用默认解析器提取表名
func ExtractTableNames(sql string) []string {
	return DefaultParser.ExtractTableNames(sql)
}

// ReplaceTableName 使用默认解析器替换表名
func ReplaceTableName(sql, oldTableName, newTableName string) string {
	return DefaultParser.ReplaceTableName(sql, oldTableName, newTableName)
}

// ValidateSQL 使用默认解析器校验 SQL
func ValidateSQL(sql string) error {
	return DefaultParser.ValidateSQL(sql)
}

// DetermineSQLType 使用默认解析器确定 SQL 类型
func DetermineSQLType(sql string) SQLType {
	return DefaultParser.DetermineSQLType(sql)
}
