package codegen

import (
	"fmt"
	"strings"
	"time"

	"go-ysql/pkg/parser"
)

const timeLayout = "2006-01-02 15:04:05"

// 预览行数
const (
	codePreviewLines = 10
	sqlPreviewLines  = 5
)

// Result 代码生成结果
type Result struct {
	Success        bool
	Code           string
	LineCount      int
	CharCount      int
	Language       Language
	VariableName   string
	ErrorMessage   string
	Err            error
	GenerationTime time.Time
}

// Statistics 生成统计
func (r *Result) Statistics() string {
	var sb strings.Builder
	sb.WriteString("// code generation summary:\n")
	sb.WriteString(fmt.Sprintf("// language: %s\n", r.Language.DisplayName()))
	sb.WriteString(fmt.Sprintf("// variable: %s\n", r.VariableName))
	sb.WriteString(fmt.Sprintf("// lines: %d\n", r.LineCount))
	sb.WriteString(fmt.Sprintf("// characters: %d\n", r.CharCount))
	sb.WriteString(fmt.Sprintf("// generated at: %s\n", r.GenerationTime.Format(timeLayout)))
	sb.WriteString(fmt.Sprintf("// status: %s\n", status(r.Success)))
	if !r.Success && r.ErrorMessage != "" {
		sb.WriteString(fmt.Sprintf("// error: %s\n", r.ErrorMessage))
	}
	return sb.String()
}

// Preview 代码前 10 行
func (r *Result) Preview() string {
	lines := strings.Split(r.Code, "\n")
	if len(lines) > codePreviewLines {
		lines = lines[:codePreviewLines]
	}

	var sb strings.Builder
	sb.WriteString("// " + r.Language.FileExtension() + "\n")
	for _, line := range lines {
		sb.WriteString(line + "\n")
	}
	sb.WriteString("// end\n")
	return sb.String()
}

// ReverseResult 反向解析结果
type ReverseResult struct {
	Success      bool
	SQL          string
	Fragments    []string
	Language     Language
	ErrorMessage string
	Err          error
	ParseTime    time.Time
}

// SQLType 按前缀判断提取出的 SQL 类型
func (r *ReverseResult) SQLType() parser.SQLType {
	return parser.DetermineSQLType(r.SQL)
}

// ContainsKeyword 提取出的 SQL 是否包含关键字（大小写不敏感）
func (r *ReverseResult) ContainsKeyword(keyword string) bool {
	return strings.Contains(strings.ToUpper(r.SQL), strings.ToUpper(keyword))
}

// Statistics 解析统计
func (r *ReverseResult) Statistics() string {
	var sb strings.Builder
	sb.WriteString("// sql reverse parse summary:\n")
	sb.WriteString(fmt.Sprintf("// language: %s\n", r.Language.DisplayName()))
	sb.WriteString(fmt.Sprintf("// fragments: %d\n", len(r.Fragments)))
	sb.WriteString(fmt.Sprintf("// characters: %d\n", len(r.SQL)))
	sb.WriteString(fmt.Sprintf("// parsed at: %s\n", r.ParseTime.Format(timeLayout)))
	sb.WriteString(fmt.Sprintf("// status: %s\n", status(r.Success)))
	if !r.Success && r.ErrorMessage != "" {
		sb.WriteString(fmt.Sprintf("// error: %s\n", r.ErrorMessage))
	}
	return sb.String()
}

// Preview SQL 前 5 行
func (r *ReverseResult) Preview() string {
	lines := strings.Split(r.SQL, "\n")

	var sb strings.Builder
	sb.WriteString("-- extracted sql preview:\n")
	for i, line := range lines {
		if i == sqlPreviewLines {
			sb.WriteString(fmt.Sprintf("-- ... (%d more lines)\n", len(lines)-sqlPreviewLines))
			break
		}
		sb.WriteString(line + "\n")
	}
	return sb.String()
}

// FormattedResult 提取出的 SQL，多个片段时附带片段明细
func (r *ReverseResult) FormattedResult() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("-- status: %s\n", status(r.Success)))
	if !r.Success {
		sb.WriteString("-- error: " + r.ErrorMessage + "\n")
		return sb.String()
	}

	sb.WriteString("-- extracted sql:\n")
	sb.WriteString(r.SQL + "\n")
	if len(r.Fragments) > 1 {
		sb.WriteString("\n-- fragments:\n")
		for i, f := range r.Fragments {
			sb.WriteString(fmt.Sprintf("-- %d: %q\n", i+1, f))
		}
	}
	return sb.String()
}

func status(ok bool) string {
	if ok {
		return "success"
	}
	return "failed"
}
