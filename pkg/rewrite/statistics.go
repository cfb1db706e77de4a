package rewrite

import (
	"fmt"
	"strings"

	"go-ysql/pkg/parser"
	"go-ysql/pkg/sqlerr"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// StatisticFunction 外层统计函数
type StatisticFunction string

const (
	Sum   StatisticFunction = "SUM"
	Count StatisticFunction = "COUNT"
	Avg   StatisticFunction = "AVG"
	Max   StatisticFunction = "MAX"
	Min   StatisticFunction = "MIN"
)

// DefaultStatisticFunction 未配置的字段使用的统计函数
const DefaultStatisticFunction = Sum

// unionAlias 外层查询中 UNION ALL 派生表的别名
const unionAlias = "unionTable"

// StatisticFunctions 全部统计函数
var StatisticFunctions = []StatisticFunction{Sum, Count, Avg, Max, Min}

// ParseStatisticFunction 解析统计函数名，大小写不敏感
func ParseStatisticFunction(s string) (StatisticFunction, error) {
	f := StatisticFunction(strings.ToUpper(strings.TrimSpace(s)))
	if lo.Contains(StatisticFunctions, f) {
		return f, nil
	}
	return "", sqlerr.Configf("unknown statistic function: %q", s)
}

// Apply 生成对派生表列的统计表达式
func (f StatisticFunction) Apply(alias string) string {
	return fmt.Sprintf("%s(%s.%s)", f, unionAlias, alias)
}

// StatisticsGenerator 分表统计 SQL 生成器
//
// 把 N 条分表 SELECT 用 UNION ALL 合并为派生表，外层对每个字段做统计。
// 统计函数按字段表达式原文查找，未配置时使用 SUM。
type StatisticsGenerator struct {
	parser      *parser.SQLParser
	fieldParser *parser.FieldParser
	opts        *options
}

// NewStatisticsGenerator 创建分表统计 SQL 生成器
func NewStatisticsGenerator(opts ...Option) *StatisticsGenerator {
	o := newOptions(opts)
	return &StatisticsGenerator{
		parser:      parser.NewSQLParser(),
		fieldParser: parser.NewFieldParser(parser.WithClock(o.now)),
		opts:        o,
	}
}

// Generate 生成分表统计 SQL
func (g *StatisticsGenerator) Generate(cfg ShardingConfig, functions map[string]StatisticFunction) *StatisticsResult {
	logger := g.opts.logger.With(zap.Strings("tables", cfg.TableNames), zap.Int("shard_count", cfg.ShardCount))
	logger.Debug("generating sharding statistics sql")

	result := &StatisticsResult{GenerationTime: g.opts.now()}

	sql, fields, err := g.generate(cfg, functions)
	if err != nil {
		logger.Warn("sharding statistics generation failed", zap.String("kind", string(sqlerr.KindOf(err))), zap.Error(err))
		result.Err = err
		result.ErrorMessage = sqlerr.Message(err)
		return result
	}

	result.Success = true
	result.StatisticsSQL = sql
	result.Fields = fields
	result.ShardCount = cfg.ShardCount
	result.TableNames = cfg.TableNames

	logger.Debug("sharding statistics sql generated", zap.Int("fields", len(fields)))
	return result
}

func (g *StatisticsGenerator) generate(cfg ShardingConfig, functions map[string]StatisticFunction) (sql string, fields []parser.SelectField, err error) {
	defer sqlerr.Recover(&err, "generate sharding statistics sql")

	if err := validateRequest(g.parser, g.opts.validator, cfg); err != nil {
		return "", nil, err
	}

	if !strings.Contains(strings.ToUpper(cfg.OriginalSQL), "SELECT") {
		return "", nil, sqlerr.Parsef("statistics sql requires a SELECT statement")
	}

	// 字段只解析一次，所有分表共用同一组别名
	fields, err = g.fieldParser.ExtractSelectFields(cfg.OriginalSQL)
	if err != nil {
		return "", nil, err
	}

	suffixes, err := cfg.Suffixes(cfg.ShardCount)
	if err != nil {
		return "", nil, err
	}

	queries := make([]string, 0, len(suffixes))
	for _, s := range suffixes {
		variant := cfg.OriginalSQL
		for _, table := range cfg.TableNames {
			variant = g.parser.ReplaceTableName(variant, table, table+s)
		}

		variant, err = parser.RewriteSelectList(variant, fields)
		if err != nil {
			return "", nil, err
		}
		queries = append(queries, variant)
	}

	return buildStatisticsSQL(fields, queries, functions), fields, nil
}

// buildStatisticsSQL 组装外层统计查询
func buildStatisticsSQL(fields []parser.SelectField, queries []string, functions map[string]StatisticFunction) string {
	columns := lo.Map(fields, func(f parser.SelectField, _ int) string {
		fn, ok := functions[f.Expression]
		if !ok {
			fn = DefaultStatisticFunction
		}
		return fn.Apply(f.Alias)
	})

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(columns, ", "))
	sb.WriteString(" FROM (\n")
	for i, q := range queries {
		sb.WriteString(q)
		if i < len(queries)-1 {
			sb.WriteString(" UNION ALL\n")
		} else {
			sb.WriteString("\n")
		}
	}
	sb.WriteString(") ")
	sb.WriteString(unionAlias)
	return sb.String()
}

// MissingFunctionKeys 返回 SQL 中未在 functions 里配置统计函数的字段表达式
//
// 统计函数按表达式原文匹配，调用方可以在生成前用它检查配置是否覆盖了全部字段。
func MissingFunctionKeys(sql string, functions map[string]StatisticFunction) ([]string, error) {
	fields, err := parser.ExtractSelectFields(sql)
	if err != nil {
		return nil, err
	}

	missing := lo.FilterMap(fields, func(f parser.SelectField, _ int) (string, bool) {
		_, ok := functions[f.Expression]
		return f.Expression, !ok
	})
	return lo.Uniq(missing), nil
}
