package parser

import (
	"strings"

	"go-ysql/pkg/database"
	"go-ysql/pkg/sqlerr"

	"github.com/cockroachdb/cockroachdb-parser/pkg/sql/parser"
	"github.com/cockroachdb/cockroachdb-parser/pkg/sql/sem/tree"
	"github.com/samber/lo"
)

// CockroachValidator 基于 CockroachDB Parser 的 PostgreSQL 严格校验器
type CockroachValidator struct {
	dialect database.DatabaseDialect
}

// NewCockroachValidator 创建 CockroachDB 校验器
func NewCockroachValidator() *CockroachValidator {
	dialect, _ := database.GlobalDialectRegistry.GetDialect(database.PostgreSQL)
	return &CockroachValidator{
		dialect: dialect,
	}
}

// DatabaseType 校验器对应的数据库类型
func (c *CockroachValidator) DatabaseType() database.DatabaseType {
	return c.dialect.GetDatabaseType()
}

// Validate 校验 SQL 是否为一条合法的 PostgreSQL 语句
func (c *CockroachValidator) Validate(sql string) error {
	_, err := c.parseSingle(sql)
	return err
}

// ExtractTables 从 AST 中提取表名，去重并保持出现顺序
func (c *CockroachValidator) ExtractTables(sql string) ([]string, error) {
	stmt, err := c.parseSingle(sql)
	if err != nil {
		return nil, err
	}
	return lo.Uniq(c.extractTablesFromAST(stmt)), nil
}

// StatementType 返回 AST 对应的语句类型
func (c *CockroachValidator) StatementType(sql string) (SQLType, error) {
	stmt, err := c.parseSingle(sql)
	if err != nil {
		return SQLTypeOther, err
	}

	switch stmt.(type) {
	case *tree.Select:
		return SQLTypeSelect, nil
	case *tree.Insert:
		return SQLTypeInsert, nil
	case *tree.Update:
		return SQLTypeUpdate, nil
	case *tree.Delete:
		return SQLTypeDelete, nil
	case *tree.CreateTable:
		return SQLTypeCreate, nil
	case *tree.DropTable:
		return SQLTypeDrop, nil
	case *tree.AlterTable:
		return SQLTypeAlter, nil
	default:
		return SQLTypeOther, nil
	}
}

func (c *CockroachValidator) parseSingle(sql string) (tree.Statement, error) {
	sql = strings.TrimSpace(sql)
	if sql == "" {
		return nil, sqlerr.Parsef("sql statement must not be blank")
	}

	p := &parser.Parser{}
	stmts, err := p.Parse(sql)
	if err != nil {
		return nil, sqlerr.WrapParse(err, "postgresql syntax check failed")
	}

	if len(stmts) != 1 {
		return nil, sqlerr.Parsef("expected exactly one statement, found %d", len(stmts))
	}

	return stmts[0].AST, nil
}

// extractTablesFromAST 从 AST 中提取表名
func (c *CockroachValidator) extractTablesFromAST(stmt tree.Statement) []string {
	tables := make([]string, 0)

	switch s := stmt.(type) {
	case *tree.Select:
		tables = append(tables, c.extractTablesFromSelect(s)...)
	case *tree.Insert:
		if s.Table != nil {
			tables = append(tables, c.extractTableNameFromTableExpr(s.Table)...)
		}
	case *tree.Update:
		if s.Table != nil {
			tables = append(tables, c.extractTableNameFromTableExpr(s.Table)...)
		}
		tables = append(tables, c.extractTablesFromTableExprs(s.From)...)
	case *tree.Delete:
		if s.Table != nil {
			tables = append(tables, c.extractTableNameFromTableExpr(s.Table)...)
		}
	case *tree.CreateTable:
		tables = append(tables, s.Table.Table())
	case *tree.DropTable:
		for i := range s.Names {
			tables = append(tables, s.Names[i].Table())
		}
	case *tree.AlterTable:
		if s.Table != nil {
			tables = append(tables, s.Table.Object())
		}
	}

	return lo.Compact(tables)
}

// extractTablesFromSelect 从 SELECT 语句中提取表名
func (c *CockroachValidator) extractTablesFromSelect(sel *tree.Select) []string {
	if sel == nil || sel.Select == nil {
		return nil
	}

	switch s := sel.Select.(type) {
	case *tree.SelectClause:
		return c.extractTablesFromTableExprs(s.From.Tables)
	case *tree.UnionClause:
		tables := c.extractTablesFromSelect(s.Left)
		return append(tables, c.extractTablesFromSelect(s.Right)...)
	case *tree.ParenSelect:
		return c.extractTablesFromSelect(s.Select)
	}

	return nil
}

// extractTablesFromTableExprs 从表表达式列表中提取表名
func (c *CockroachValidator) extractTablesFromTableExprs(exprs tree.TableExprs) []string {
	tables := make([]string, 0)
	for _, expr := range exprs {
		tables = append(tables, c.extractTableNameFromTableExpr(expr)...)
	}
	return tables
}

// extractTableNameFromTableExpr 从表表达式中提取表名
func (c *CockroachValidator) extractTableNameFromTableExpr(expr tree.TableExpr) []string {
	tables := make([]string, 0)

	switch e := expr.(type) {
	case *tree.AliasedTableExpr:
		tables = append(tables, c.extractTableNameFromTableExpr(e.Expr)...)
	case *tree.TableName:
		tables = append(tables, e.Table())
	case *tree.JoinTableExpr:
		tables = append(tables, c.extractTableNameFromTableExpr(e.Left)...)
		tables = append(tables, c.extractTableNameFromTableExpr(e.Right)...)
	case *tree.ParenTableExpr:
		tables = append(tables, c.extractTableNameFromTableExpr(e.Expr)...)
	case *tree.Subquery:
		if sel, ok := e.Select.(*tree.ParenSelect); ok {
			tables = append(tables, c.extractTablesFromSelect(sel.Select)...)
		}
	}

	return tables
}
