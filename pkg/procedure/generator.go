package procedure

import (
	"strings"
	"time"

	"go-ysql/pkg/sqlerr"

	"go.uber.org/zap"
)

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

// WithIdentifierCheck 生成前额外检查标识符与时间格式
func WithIdentifierCheck() Option {
	return func(g *Generator) {
		g.checkIdentifiers = true
	}
}

// Generator 存储过程生成器
type Generator struct {
	logger           *zap.Logger
	now              func() time.Time
	checkIdentifiers bool
}

// NewGenerator 创建存储过程生成器
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

// Generate 生成存储过程
func (g *Generator) Generate(cfg Config) *Result {
	logger := g.logger.With(zap.String("procedure", cfg.ProcedureName), zap.String("table", cfg.MainTableName))
	logger.Debug("generating batch delete procedure", zap.Bool("staging", cfg.AddTempTable), zap.Bool("log", cfg.AddLogTable))

	result := &Result{
		ProcedureName:  cfg.ProcedureName,
		MainTableName:  cfg.MainTableName,
		GenerationTime: g.now(),
	}

	text, err := g.generate(cfg)
	if err != nil {
		logger.Warn("batch delete procedure generation failed", zap.String("kind", string(sqlerr.KindOf(err))), zap.Error(err))
		result.Err = err
		result.ErrorMessage = sqlerr.Message(err)
		return result
	}

	c := cfg
	result.Success = true
	result.Procedure = text
	result.ConfigSummary = cfg.Summary()
	result.Config = &c

	logger.Debug("batch delete procedure generated", zap.Int("lines", strings.Count(text, "\n")))
	return result
}

func (g *Generator) generate(cfg Config) (text string, err error) {
	defer sqlerr.Recover(&err, "generate batch delete procedure")

	if err := cfg.Validate(); err != nil {
		return "", err
	}
	if g.checkIdentifiers {
		if err := cfg.ValidateIdentifiers(); err != nil {
			return "", err
		}
	}

	return render(cfg), nil
}

// Generate 使用默认生成器
func Generate(cfg Config) *Result {
	return NewGenerator().Generate(cfg)
}

// Template 过程参数与调用方式的说明
func Template() string {
	return strings.Join([]string{
		"-- batch delete procedure example",
		"-- procedure: DropHistoryDataByLimit",
		"-- main table: system_logs",
		"-- primary key: id",
		"-- time field: log_time",
		"--",
		"-- parameters:",
		"-- limit_size: rows deleted per iteration (e.g. 1000)",
		"-- create_time_end: delete rows created before this time (e.g. '2023-01-01 00:00:00')",
		"-- min_id: starting primary key (e.g. 0)",
		"--",
		"-- call:",
		"-- CALL DropHistoryDataByLimit(1000, '2023-01-01 00:00:00', 0);",
	}, "\n")
}
