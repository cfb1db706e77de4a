package codegen

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"go-ysql/pkg/sqlerr"

	"go.uber.org/zap"
)

// MaxSQLLength 可转换的 SQL 最大字符数
const MaxSQLLength = 10000

// DefaultVariableName 默认构建器变量名
const DefaultVariableName = "sql"

// Config 代码生成配置
type Config struct {
	VariableName string
	Language     Language
	OriginalSQL  string
	AddComments  bool
	FormatCode   bool
}

// DefaultConfig 默认配置
func DefaultConfig() Config {
	return Config{
		VariableName: DefaultVariableName,
		Language:     Java,
		AddComments:  true,
		FormatCode:   true,
	}
}

// Validate 校验配置
func (c Config) Validate() error {
	if err := ValidateVariableName(c.VariableName); err != nil {
		return err
	}

	if !c.Language.Valid() {
		return sqlerr.Configf("unsupported language %q", c.Language)
	}

	if strings.TrimSpace(c.OriginalSQL) == "" {
		return sqlerr.Configf("sql statement must not be blank")
	}

	if n := utf8.RuneCountInString(c.OriginalSQL); n > MaxSQLLength {
		return sqlerr.Configf("sql statement is too long (%d characters), keep it within %d", n, MaxSQLLength)
	}

	return nil
}

// ValidateVariableName 变量名以字母或下划线开头，其余为字母、数字或下划线
func ValidateVariableName(name string) error {
	if strings.TrimSpace(name) == "" {
		return sqlerr.Configf("variable name must not be blank")
	}

	for i, r := range name {
		ok := unicode.IsLetter(r) || r == '_' || (i > 0 && unicode.IsDigit(r))
		if !ok {
			return sqlerr.Configf("invalid variable name %q: use letters, digits and underscores, not starting with a digit", name)
		}
	}
	return nil
}

// Option 生成器选项
type Option func(*Generator)

// WithLogger 设置日志
func WithLogger(logger *zap.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithClock 设置时钟
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// Generator 构建器代码生成器，也负责反向解析
type Generator struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewGenerator 创建代码生成器
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate 把 SQL 转换为构建器代码
func (g *Generator) Generate(cfg Config) *Result {
	logger := g.logger.With(zap.String("language", string(cfg.Language)), zap.String("variable", cfg.VariableName))
	logger.Debug("generating builder code")

	result := &Result{
		Language:       cfg.Language,
		VariableName:   cfg.VariableName,
		GenerationTime: g.now(),
	}

	code, err := g.generate(cfg)
	if err != nil {
		logger.Warn("builder code generation failed", zap.String("kind", string(sqlerr.KindOf(err))), zap.Error(err))
		result.Err = err
		result.ErrorMessage = sqlerr.Message(err)
		return result
	}

	result.Success = true
	result.Code = code
	result.LineCount = len(strings.Split(code, "\n"))
	result.CharCount = utf8.RuneCountInString(code)

	logger.Debug("builder code generated", zap.Int("lines", result.LineCount))
	return result
}

func (g *Generator) generate(cfg Config) (code string, err error) {
	defer sqlerr.Recover(&err, "generate builder code")

	if err := cfg.Validate(); err != nil {
		return "", err
	}

	spec := cfg.Language.spec()
	v := cfg.VariableName

	var sb strings.Builder
	if cfg.AddComments {
		sb.WriteString(fmt.Sprintf("%s %s SQL builder\n", spec.commentSymbol, spec.displayName))
	}
	sb.WriteString(fmt.Sprintf(spec.declareFormat, v))
	sb.WriteString("\n\n")

	for _, line := range strings.Split(cfg.OriginalSQL, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		sb.WriteString(fmt.Sprintf(spec.appendFormat, v, cfg.Language.Escape(trimmed)+" "))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf(spec.finalFormat, "final"+capitalize(v), v))
	sb.WriteString("\n")

	return sb.String(), nil
}

// ConfigStatistics 配置统计
func ConfigStatistics(cfg Config) string {
	lines := strings.Split(cfg.OriginalSQL, "\n")
	nonEmpty := 0
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			nonEmpty++
		}
	}

	var sb strings.Builder
	sb.WriteString("Config summary:\n")
	sb.WriteString(fmt.Sprintf("• language: %s\n", cfg.Language.DisplayName()))
	sb.WriteString(fmt.Sprintf("• variable: %s\n", cfg.VariableName))
	sb.WriteString(fmt.Sprintf("• sql lines: %d\n", len(lines)))
	sb.WriteString(fmt.Sprintf("• non-empty lines: %d\n", nonEmpty))
	sb.WriteString(fmt.Sprintf("• characters: %d\n", utf8.RuneCountInString(cfg.OriginalSQL)))
	sb.WriteString(fmt.Sprintf("• comments: %t\n", cfg.AddComments))
	sb.WriteString(fmt.Sprintf("• format code: %t\n", cfg.FormatCode))
	return sb.String()
}

// Suggestions 代码生成建议
func Suggestions(cfg Config) []string {
	var suggestions []string

	if utf8.RuneCountInString(cfg.VariableName) < 3 {
		suggestions = append(suggestions, "use a more descriptive variable name such as 'sqlBuilder' or 'queryBuilder'")
	}

	if len(strings.Split(cfg.OriginalSQL, "\n")) > 20 {
		suggestions = append(suggestions, "the statement is long, consider splitting it or moving it to a resource file")
	}

	switch cfg.Language {
	case Kotlin:
		suggestions = append(suggestions, "prefer 'val' for builders that are never reassigned")
	case CSharp:
		suggestions = append(suggestions, "consider 'var' for local type inference")
	}

	return suggestions
}

// Template 语言示例代码
func Template(l Language) string {
	spec := l.spec()
	lines := []string{
		fmt.Sprintf("%s %s %s example", spec.commentSymbol, spec.displayName, spec.bufferClass),
		fmt.Sprintf(spec.declareFormat, "sql"),
		fmt.Sprintf(spec.appendFormat, "sql", "SELECT * FROM users"),
		fmt.Sprintf(spec.appendFormat, "sql", " WHERE id = ?"),
		fmt.Sprintf(spec.finalFormat, "finalSql", "sql"),
	}
	return strings.Join(lines, "\n")
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
