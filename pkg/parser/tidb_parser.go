package parser

import (
	"strings"
	"sync"

	"go-ysql/pkg/database"
	"go-ysql/pkg/sqlerr"

	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver"
	"github.com/samber/lo"
)

// TiDBValidator 基于 TiDB Parser 的 MySQL 严格校验器
//
// parser.Parser 不是并发安全的，调用通过互斥锁串行化。
type TiDBValidator struct {
	mu         sync.Mutex
	tidbParser *parser.Parser
}

// NewTiDBValidator 创建 TiDB 校验器
func NewTiDBValidator() *TiDBValidator {
	return &TiDBValidator{
		tidbParser: parser.New(),
	}
}

// DatabaseType 校验器对应的数据库类型
func (v *TiDBValidator) DatabaseType() database.DatabaseType {
	return database.MySQL
}

// Validate 校验 SQL 是否为一条合法的 MySQL 语句
func (v *TiDBValidator) Validate(sql string) error {
	_, err := v.parseSingle(sql)
	return err
}

// ExtractTables 从 AST 中提取表名，去重并保持出现顺序
func (v *TiDBValidator) ExtractTables(sql string) ([]string, error) {
	stmt, err := v.parseSingle(sql)
	if err != nil {
		return nil, err
	}

	visitor := &tableNameVisitor{}
	stmt.Accept(visitor)

	return lo.Uniq(visitor.tables), nil
}

// StatementType 返回 AST 对应的语句类型
func (v *TiDBValidator) StatementType(sql string) (SQLType, error) {
	stmt, err := v.parseSingle(sql)
	if err != nil {
		return SQLTypeOther, err
	}

	switch stmt.(type) {
	case *ast.SelectStmt, *ast.SetOprStmt:
		return SQLTypeSelect, nil
	case *ast.InsertStmt:
		return SQLTypeInsert, nil
	case *ast.UpdateStmt:
		return SQLTypeUpdate, nil
	case *ast.DeleteStmt:
		return SQLTypeDelete, nil
	case *ast.CreateTableStmt:
		return SQLTypeCreate, nil
	case *ast.DropTableStmt:
		return SQLTypeDrop, nil
	case *ast.AlterTableStmt:
		return SQLTypeAlter, nil
	default:
		return SQLTypeOther, nil
	}
}

func (v *TiDBValidator) parseSingle(sql string) (ast.StmtNode, error) {
	sql = strings.TrimSpace(sql)
	if sql == "" {
		return nil, sqlerr.Parsef("sql statement must not be blank")
	}

	v.mu.Lock()
	stmtNodes, _, err := v.tidbParser.Parse(sql, "", "")
	v.mu.Unlock()
	if err != nil {
		return nil, sqlerr.WrapParse(err, "mysql syntax check failed")
	}

	if len(stmtNodes) != 1 {
		return nil, sqlerr.Parsef("expected exactly one statement, found %d", len(stmtNodes))
	}

	return stmtNodes[0], nil
}

// tableNameVisitor 收集 AST 中出现的表名
type tableNameVisitor struct {
	tables []string
}

// Enter 进入节点
func (v *tableNameVisitor) Enter(in ast.Node) (ast.Node, bool) {
	if node, ok := in.(*ast.TableName); ok && node.Name.O != "" {
		v.tables = append(v.tables, node.Name.O)
	}
	return in, false
}

// Leave 离开节点
func (v *tableNameVisitor) Leave(in ast.Node) (ast.Node, bool) {
	return in, true
}
