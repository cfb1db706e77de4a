package parser

import (
	"fmt"
	"strings"

	"go-ysql/pkg/sqlerr"

	"github.com/samber/lo"
)

// ExtractionResult 表名提取结果
type ExtractionResult struct {
	Success      bool
	TableNames   []string
	ErrorMessage string
	Err          error
}

// ValidateAndExtractTableNames 先校验 SQL 形态，再提取表名；未找到任何表名视为失败
func (p *SQLParser) ValidateAndExtractTableNames(sql string) *ExtractionResult {
	if err := p.ValidateSQL(sql); err != nil {
		return failedExtraction(err)
	}

	tables := p.ExtractTableNames(sql)
	if len(tables) == 0 {
		return failedExtraction(sqlerr.Parsef("no table name found, check that the statement has a FROM, JOIN, UPDATE, INSERT INTO or DELETE FROM clause"))
	}

	return &ExtractionResult{
		Success:    true,
		TableNames: tables,
	}
}

// ExtractionStatistics 表名提取统计文本
func (p *SQLParser) ExtractionStatistics(sql string) string {
	refs := p.ExtractTableReferences(sql)
	unique := lo.Uniq(refs)

	var sb strings.Builder
	sb.WriteString("Table extraction statistics:\n")
	sb.WriteString(fmt.Sprintf("• total references: %d\n", len(refs)))
	sb.WriteString(fmt.Sprintf("• unique tables: %d\n", len(unique)))
	sb.WriteString(fmt.Sprintf("• tables: %s\n", strings.Join(unique, ", ")))
	if len(refs) != len(unique) {
		sb.WriteString("• note: some tables are referenced more than once\n")
	}
	return sb.String()
}

// ValidateAndExtractTableNames 使用默认解析器校验并提取表名
func ValidateAndExtractTableNames(sql string) *ExtractionResult {
	return DefaultParser.ValidateAndExtractTableNames(sql)
}

// ExtractionStatistics 使用默认解析器生成提取统计
func ExtractionStatistics(sql string) string {
	return DefaultParser.ExtractionStatistics(sql)
}

func failedExtraction(err error) *ExtractionResult {
	return &ExtractionResult{
		Success:      false,
		TableNames:   []string{},
		ErrorMessage: sqlerr.Message(err),
		Err:          err,
	}
}
