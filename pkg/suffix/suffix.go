package suffix

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go-ysql/pkg/sqlerr"
)

// Type 分表后缀类型
type Type string

const (
	// Sequence 数字序列 _0, _1, _2...
	Sequence Type = "SEQUENCE"
	// Year 年份 _2020, _2021...
	Year Type = "YEAR"
	// YearMonth 年月 _202001, _202002...
	YearMonth Type = "YEAR_MONTH"
	// Custom 自定义占位符格式
	Custom Type = "CUSTOM"
)

// 默认参数
const (
	DefaultFormat     = "_"
	DefaultStartYear  = 2020
	DefaultStartMonth = 1
)

// Placeholders CUSTOM 类型支持的占位符
var Placeholders = []string{"{index}", "{INDEX}", "{i}", "{I}"}

// Params 后缀生成参数
type Params struct {
	Format     string
	StartYear  int
	StartMonth int
}

// Strategy 单个后缀的生成策略
type Strategy func(index int, params Params) string

// Registry 后缀策略注册表
type Registry struct {
	strategies map[Type]Strategy
}

// NewRegistry 创建注册表并注册内置策略
func NewRegistry() *Registry {
	r := &Registry{
		strategies: make(map[Type]Strategy),
	}

	r.Register(Sequence, sequenceSuffix)
	r.Register(Year, yearSuffix)
	r.Register(YearMonth, yearMonthSuffix)
	r.Register(Custom, customSuffix)

	return r
}

// Register 注册策略
func (r *Registry) Register(t Type, s Strategy) {
	r.strategies[t] = s
}

// Get 获取策略
func (r *Registry) Get(t Type) (Strategy, error) {
	s, ok := r.strategies[t]
	if !ok {
		return nil, sqlerr.Configf("unsupported suffix type: %s", t)
	}
	return s, nil
}

// DefaultRegistry 全局注册表
var DefaultRegistry = NewRegistry()

// ParseType 解析后缀类型，大小写不敏感，允许 "-" 代替 "_"
func ParseType(s string) (Type, error) {
	t := Type(strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), "-", "_"))
	switch t {
	case Sequence, Year, YearMonth, Custom:
		return t, nil
	}
	return "", sqlerr.Configf("unknown suffix type: %q", s)
}

// DisplayName 显示名称
func (t Type) DisplayName() string {
	switch t {
	case Sequence:
		return "数字序列"
	case Year:
		return "年份"
	case YearMonth:
		return "年月"
	case Custom:
		return "自定义"
	}
	return string(t)
}

// UsesStartYear 是否依赖起始年份
func (t Type) UsesStartYear() bool {
	return t == Year || t == YearMonth
}

// Generate 生成第 index 个后缀
func Generate(index int, t Type, params Params) (string, error) {
	s, err := DefaultRegistry.Get(t)
	if err != nil {
		return "", err
	}
	return s(index, params), nil
}

// GenerateList 按顺序生成 count 个后缀
func GenerateList(count int, t Type, params Params) ([]string, error) {
	if count < 0 {
		return nil, sqlerr.Configf("suffix count must not be negative, got %d", count)
	}

	s, err := DefaultRegistry.Get(t)
	if err != nil {
		return nil, err
	}

	suffixes := make([]string, 0, count)
	for i := 0; i < count; i++ {
		suffixes = append(suffixes, s(i, params))
	}
	return suffixes, nil
}

// ValidateFormat 校验格式字符串
func ValidateFormat(format string, t Type) error {
	if strings.TrimSpace(format) == "" {
		return sqlerr.Configf("suffix format must not be blank")
	}

	if t == Custom && !HasPlaceholder(format) {
		return sqlerr.Configf("custom suffix format must contain a placeholder such as {index} or {i}")
	}

	return nil
}

// HasPlaceholder 格式中是否包含可识别的占位符
func HasPlaceholder(format string) bool {
	for _, p := range Placeholders {
		if strings.Contains(format, p) {
			return true
		}
	}
	return false
}

// Example 后缀类型示例说明
func Example(t Type) string {
	switch t {
	case Sequence:
		return "e.g. _0, _1, _2, _3..."
	case Year:
		return "e.g. _2020, _2021, _2022, _2023..."
	case YearMonth:
		return "e.g. _202001, _202002, _202003, _202004..."
	case Custom:
		return "use the {index} placeholder, e.g. table_{index} yields table_0, table_1..."
	}
	return ""
}

func sequenceSuffix(index int, params Params) string {
	return params.Format + strconv.Itoa(index)
}

func yearSuffix(index int, params Params) string {
	return params.Format + strconv.Itoa(params.StartYear+index)
}

// yearMonthSuffix 以 (StartYear, StartMonth) 为锚点按月推进，time.Date 负责跨年进位
func yearMonthSuffix(index int, params Params) string {
	d := time.Date(params.StartYear, time.Month(params.StartMonth)+time.Month(index), 1, 0, 0, 0, 0, time.UTC)
	return fmt.Sprintf("%s%d%02d", params.Format, d.Year(), int(d.Month()))
}

func customSuffix(index int, params Params) string {
	result := params.Format
	idx := strconv.Itoa(index)
	for _, p := range Placeholders {
		result = strings.ReplaceAll(result, p, idx)
	}
	return result
}
