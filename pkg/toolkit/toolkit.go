// Package toolkit 把各个生成器组装成统一入口，附带日志与指标。
package toolkit

import (
	"time"

	"go-ysql/pkg/codegen"
	"go-ysql/pkg/config"
	"go-ysql/pkg/database"
	"go-ysql/pkg/monitoring"
	"go-ysql/pkg/parser"
	"go-ysql/pkg/procedure"
	"go-ysql/pkg/rewrite"
	"go-ysql/pkg/sqlerr"

	"go.uber.org/zap"
)

// 指标中的操作名
const (
	OpShard      = "shard"
	OpStatistics = "stats"
	OpTables     = "tables"
	OpCodegen    = "codegen"
	OpReverse    = "reverse"
	OpProcedure  = "procedure"
)

// Option 工具箱选项
type Option func(*Toolkit)

// WithLogger 设置日志
func WithLogger(logger *zap.Logger) Option {
	return func(t *Toolkit) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithMetrics 使用外部指标
func WithMetrics(metrics *monitoring.GenerationMetrics) Option {
	return func(t *Toolkit) {
		if metrics != nil {
			t.metrics = metrics
		}
	}
}

// WithDatabase 设置目标数据库类型，决定严格校验使用的解析器
func WithDatabase(dbType database.DatabaseType) Option {
	return func(t *Toolkit) {
		t.dbType = dbType
	}
}

// WithStrict 开启 AST 严格校验
func WithStrict(strict bool) Option {
	return func(t *Toolkit) {
		t.strict = strict
	}
}

// WithClock 设置时钟
func WithClock(now func() time.Time) Option {
	return func(t *Toolkit) {
		if now != nil {
			t.now = now
		}
	}
}

// WithProcedureIdentifierCheck 存储过程生成前检查标识符格式
func WithProcedureIdentifierCheck() Option {
	return func(t *Toolkit) {
		t.checkIdentifiers = true
	}
}

// Toolkit SQL 转换工具箱
type Toolkit struct {
	logger           *zap.Logger
	metrics          *monitoring.GenerationMetrics
	dbType           database.DatabaseType
	strict           bool
	checkIdentifiers bool
	now              func() time.Time

	parser     *parser.SQLParser
	validator  parser.Validator
	sharding   *rewrite.ShardingGenerator
	statistics *rewrite.StatisticsGenerator
	codegen    *codegen.Generator
	procedure  *procedure.Generator
}

// New 创建工具箱
func New(opts ...Option) (*Toolkit, error) {
	t := &Toolkit{
		logger:  zap.NewNop(),
		metrics: monitoring.NewGenerationMetrics(),
		dbType:  database.MySQL,
		now:     time.Now,
		parser:  parser.NewSQLParser(),
	}
	for _, opt := range opts {
		opt(t)
	}

	if t.strict {
		v, err := parser.NewValidator(t.dbType)
		if err != nil {
			return nil, err
		}
		t.validator = v
	}

	rewriteOpts := []rewrite.Option{
		rewrite.WithLogger(t.logger.Named("rewrite")),
		rewrite.WithClock(t.now),
	}
	if t.validator != nil {
		rewriteOpts = append(rewriteOpts, rewrite.WithStrictValidator(t.validator))
	}
	t.sharding = rewrite.NewShardingGenerator(rewriteOpts...)
	t.statistics = rewrite.NewStatisticsGenerator(rewriteOpts...)

	t.codegen = codegen.NewGenerator(
		codegen.WithLogger(t.logger.Named("codegen")),
		codegen.WithClock(t.now),
	)

	procOpts := []procedure.Option{
		procedure.WithLogger(t.logger.Named("procedure")),
		procedure.WithClock(t.now),
	}
	if t.checkIdentifiers {
		procOpts = append(procOpts, procedure.WithIdentifierCheck())
	}
	t.procedure = procedure.NewGenerator(procOpts...)

	t.logger.Debug("toolkit ready",
		zap.String("database", string(t.dbType)),
		zap.Bool("strict", t.strict))
	return t, nil
}

// FromRequest 按请求文件中的数据库与严格模式创建工具箱
func FromRequest(req *config.RequestConfig, opts ...Option) (*Toolkit, error) {
	dbType, err := req.DatabaseType()
	if err != nil {
		return nil, err
	}
	base := []Option{WithDatabase(dbType), WithStrict(req.Strict)}
	return New(append(base, opts...)...)
}

// Metrics 指标
func (t *Toolkit) Metrics() *monitoring.GenerationMetrics {
	return t.metrics
}

// DatabaseType 目标数据库类型
func (t *Toolkit) DatabaseType() database.DatabaseType {
	return t.dbType
}

// Strict 是否启用严格校验
func (t *Toolkit) Strict() bool {
	return t.validator != nil
}

// Shard 生成分表 SQL
func (t *Toolkit) Shard(cfg rewrite.ShardingConfig) *rewrite.ShardingResult {
	done := t.metrics.Begin(OpShard)
	result := t.sharding.Generate(cfg)
	done(len(result.CombinedSQL()), string(sqlerr.KindOf(result.Err)))
	return result
}

// Preview 分表预览
func (t *Toolkit) Preview(cfg rewrite.ShardingConfig) (string, error) {
	return t.sharding.Preview(cfg)
}

// Statistics 生成分表统计 SQL
func (t *Toolkit) Statistics(cfg rewrite.ShardingConfig, functions map[string]rewrite.StatisticFunction) *rewrite.StatisticsResult {
	done := t.metrics.Begin(OpStatistics)
	result := t.statistics.Generate(cfg, functions)
	done(len(result.StatisticsSQL), string(sqlerr.KindOf(result.Err)))
	return result
}

// ExtractTables 校验并提取表名；严格模式下先经过 AST 校验
func (t *Toolkit) ExtractTables(sql string) *parser.ExtractionResult {
	done := t.metrics.Begin(OpTables)

	var result *parser.ExtractionResult
	if t.validator != nil {
		if err := t.validator.Validate(sql); err != nil {
			result = &parser.ExtractionResult{
				TableNames:   []string{},
				ErrorMessage: sqlerr.Message(err),
				Err:          err,
			}
		}
	}
	if result == nil {
		result = t.parser.ValidateAndExtractTableNames(sql)
	}

	if result.Err != nil {
		t.logger.Warn("table extraction failed", zap.String("kind", string(sqlerr.KindOf(result.Err))), zap.Error(result.Err))
	}

	size := 0
	for _, name := range result.TableNames {
		size += len(name)
	}
	done(size, string(sqlerr.KindOf(result.Err)))
	return result
}

// ExtractionStatistics 表名提取统计
func (t *Toolkit) ExtractionStatistics(sql string) string {
	return t.parser.ExtractionStatistics(sql)
}

// GenerateCode 把 SQL 转换为构建器代码
func (t *Toolkit) GenerateCode(cfg codegen.Config) *codegen.Result {
	done := t.metrics.Begin(OpCodegen)
	result := t.codegen.Generate(cfg)
	done(len(result.Code), string(sqlerr.KindOf(result.Err)))
	return result
}

// ReverseCode 从构建器代码中还原 SQL；language 为空时自动检测
func (t *Toolkit) ReverseCode(code string, language codegen.Language) *codegen.ReverseResult {
	done := t.metrics.Begin(OpReverse)
	result := t.codegen.Reverse(code, language)
	done(len(result.SQL), string(sqlerr.KindOf(result.Err)))
	return result
}

// GenerateProcedure 生成分批删除存储过程
func (t *Toolkit) GenerateProcedure(cfg procedure.Config) *procedure.Result {
	done := t.metrics.Begin(OpProcedure)
	result := t.procedure.Generate(cfg)
	done(len(result.Procedure), string(sqlerr.KindOf(result.Err)))
	return result
}
