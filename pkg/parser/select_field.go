package parser

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"go-ysql/pkg/sqlerr"
)

// SelectField SELECT 列表中的单个字段
type SelectField struct {
	Expression string // 字段表达式，如 COUNT(1)、SUM(part_cost_amount)
	Alias      string // 在 unionTable 中引用的别名，单次解析内唯一
	Declared   bool   // 别名是否由 SQL 中的 AS 显式声明
}

// SelectClause SELECT 语句按选择列表切分后的三段
type SelectClause struct {
	Prefix string // 从语句开头到 SELECT 关键字（含）
	Body   string // SELECT 与 FROM 之间的选择列表
	Suffix string // 从 FROM 关键字（含）到语句结尾
}

var selectKeyword = regexp.MustCompile(`(?i)\bSELECT\b`)

// 聚合函数前缀与对应的默认别名
var aggregateAliases = []struct {
	prefix string
	alias  string
}{
	{"COUNT(", "count_result"},
	{"SUM(", "sum_result"},
	{"AVG(", "avg_result"},
	{"MAX(", "max_result"},
	{"MIN(", "min_result"},
}

// FieldParser SELECT 字段解析器
type FieldParser struct {
	now func() time.Time
}

// FieldParserOption 字段解析器选项
type FieldParserOption func(*FieldParser)

// WithClock 设置生成 field_ 别名时使用的时钟
func WithClock(now func() time.Time) FieldParserOption {
	return func(p *FieldParser) {
		p.now = now
	}
}

// NewFieldParser 创建字段解析器
func NewFieldParser(opts ...FieldParserOption) *FieldParser {
	p := &FieldParser{now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var defaultFieldParser = NewFieldParser()

// ExtractSelectFields 使用默认字段解析器解析 SELECT 字段
func ExtractSelectFields(sql string) ([]SelectField, error) {
	return defaultFieldParser.ExtractSelectFields(sql)
}

// ExtractSelectFields 解析第一个顶层 SELECT ... FROM 之间的字段
//
// 逗号、AS 只在括号和引号之外识别。别名在本次调用内保证唯一，
// 冲突时依次追加 _1、_2。
func (p *FieldParser) ExtractSelectFields(sql string) ([]SelectField, error) {
	clause, err := LocateSelectClause(sql)
	if err != nil {
		return nil, err
	}

	used := make(map[string]bool)
	fields := make([]SelectField, 0)

	for _, part := range splitTopLevel(clause.Body, ',') {
		item := strings.TrimSpace(stripComments(part))
		if item == "" {
			continue
		}
		if isWildcard(item) {
			return nil, sqlerr.Configf("wildcard field %q is not supported for statistics, list the fields explicitly", item)
		}

		field := p.parseField(item)
		field.Alias = uniqueAlias(field.Alias, used)
		used[field.Alias] = true
		fields = append(fields, field)
	}

	if len(fields) == 0 {
		return nil, sqlerr.Parsef("no fields found between SELECT and FROM")
	}

	return fields, nil
}

func (p *FieldParser) parseField(item string) SelectField {
	if idx := lastTopLevelAS(item); idx >= 0 {
		return SelectField{
			Expression: strings.TrimSpace(item[:idx]),
			Alias:      strings.TrimSpace(item[idx+4:]),
			Declared:   true,
		}
	}

	return SelectField{
		Expression: item,
		Alias:      p.deriveAlias(item),
	}
}

// deriveAlias 为未声明别名的字段推导别名
func (p *FieldParser) deriveAlias(expression string) string {
	upper := strings.ToUpper(expression)
	for _, a := range aggregateAliases {
		if strings.HasPrefix(upper, a.prefix) {
			return a.alias
		}
	}

	if strings.Contains(expression, "(") {
		return fmt.Sprintf("field_%d", p.now().UnixMilli()%10000)
	}

	// t.col 只保留列名，限定符不能出现在别名中
	if idx := strings.LastIndex(expression, "."); idx >= 0 {
		return expression[idx+1:]
	}
	return expression
}

// LocateSelectClause 定位第一个 SELECT 与其后第一个顶层 FROM
func LocateSelectClause(sql string) (SelectClause, error) {
	trimmed := strings.TrimSpace(sql)

	loc := selectKeyword.FindStringIndex(trimmed)
	if loc == nil {
		return SelectClause{}, sqlerr.Parsef("no SELECT keyword found")
	}

	fromIdx := findTopLevelKeyword(trimmed, loc[1], "FROM")
	if fromIdx < 0 {
		return SelectClause{}, sqlerr.Parsef("no FROM clause found after SELECT")
	}

	return SelectClause{
		Prefix: trimmed[:loc[1]],
		Body:   trimmed[loc[1]:fromIdx],
		Suffix: trimmed[fromIdx:],
	}, nil
}

// RewriteSelectList 将选择列表替换为 "expr AS alias, ..." 形式
func RewriteSelectList(sql string, fields []SelectField) (string, error) {
	clause, err := LocateSelectClause(sql)
	if err != nil {
		return "", err
	}

	items := make([]string, 0, len(fields))
	for _, f := range fields {
		items = append(items, f.Expression+" AS "+f.Alias)
	}

	return clause.Prefix + " " + strings.Join(items, ", ") + " " + clause.Suffix, nil
}

func isWildcard(item string) bool {
	return item == "*" || strings.HasSuffix(item, ".*")
}

func uniqueAlias(base string, used map[string]bool) string {
	if !used[base] {
		return base
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d", base, i)
		if !used[candidate] {
			return candidate
		}
	}
}

// quoteEnd 返回从 i 处引号开始的字面量的结束位置（不含），未闭合时返回 len(s)
func quoteEnd(s string, i int) int {
	quote := s[i]
	for j := i + 1; j < len(s); j++ {
		switch {
		case s[j] == '\\' && quote != '`':
			j++
		case s[j] == quote:
			if j+1 < len(s) && s[j+1] == quote {
				j++
				continue
			}
			return j + 1
		}
	}
	return len(s)
}

// commentEnd 返回从 i 处开始的注释的结束位置（不含），行注释不含换行符；i 处不是注释时返回 -1
func commentEnd(s string, i int) int {
	if i+1 >= len(s) {
		return -1
	}
	switch {
	case s[i] == '-' && s[i+1] == '-':
		if end := strings.IndexByte(s[i:], '\n'); end >= 0 {
			return i + end
		}
		return len(s)
	case s[i] == '/' && s[i+1] == '*':
		if end := strings.Index(s[i+2:], "*/"); end >= 0 {
			return i + end + 4
		}
		return len(s)
	}
	return -1
}

// scanCode 依次访问不在引号、注释内的字节位置及该位置的括号深度，visit 返回 false 时停止
func scanCode(s string, start int, visit func(i, depth int) bool) {
	depth := 0

	for i := start; i < len(s); i++ {
		if end := commentEnd(s, i); end >= 0 {
			i = end - 1
			continue
		}

		switch s[i] {
		case '\'', '"', '`':
			i = quoteEnd(s, i) - 1
			continue
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		}

		if !visit(i, depth) {
			return
		}
	}
}

// stripComments 将引号外的注释替换为一个空格
func stripComments(s string) string {
	var sb strings.Builder
	last := 0

	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\'', '"', '`':
			i = quoteEnd(s, i) - 1
			continue
		}
		if end := commentEnd(s, i); end >= 0 {
			sb.WriteString(s[last:i])
			sb.WriteByte(' ')
			last = end
			i = end - 1
		}
	}

	sb.WriteString(s[last:])
	return sb.String()
}

// scanTopLevel 依次访问不在括号、引号、注释内的字节位置，visit 返回 false 时停止
func scanTopLevel(s string, start int, visit func(i int) bool) {
	scanCode(s, start, func(i, depth int) bool {
		if depth > 0 || s[i] == '(' || s[i] == ')' {
			return true
		}
		return visit(i)
	})
}

func splitTopLevel(s string, sep byte) []string {
	var parts []string
	last := 0

	scanTopLevel(s, 0, func(i int) bool {
		if s[i] == sep {
			parts = append(parts, s[last:i])
			last = i + 1
		}
		return true
	})

	return append(parts, s[last:])
}

func findTopLevelKeyword(s string, start int, keyword string) int {
	found := -1
	n := len(keyword)

	scanTopLevel(s, start, func(i int) bool {
		if i+n > len(s) || !strings.EqualFold(s[i:i+n], keyword) {
			return true
		}
		if i > 0 && isWordByte(s[i-1]) {
			return true
		}
		if i+n < len(s) && isWordByte(s[i+n]) {
			return true
		}
		found = i
		return false
	})

	return found
}

// lastTopLevelAS 返回最后一个顶层 " AS " 的起始位置（空白字符处），不存在时返回 -1
func lastTopLevelAS(s string) int {
	found := -1

	scanTopLevel(s, 0, func(i int) bool {
		if i+4 > len(s) || !isSpaceByte(s[i]) || !isSpaceByte(s[i+3]) {
			return true
		}
		if strings.EqualFold(s[i+1:i+3], "AS") {
			found = i
		}
		return true
	})

	return found
}

func isWordByte(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
