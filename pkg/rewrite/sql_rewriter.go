package rewrite

import (
	"fmt"
	"strings"

	"go-ysql/pkg/parser"
	"go-ysql/pkg/sqlerr"
	"go-ysql/pkg/suffix"

	"go.uber.org/zap"
)

// previewLimit 预览中每张表最多展示的分表名数量
const previewLimit = 5

// ShardingGenerator 分表 SQL 生成器
//
// 对每个后缀把配置中的每张表替换为 "表名+后缀"，生成 N 条 SQL。
type ShardingGenerator struct {
	parser *parser.SQLParser
	opts   *options
}

// NewShardingGenerator 创建分表 SQL 生成器
func NewShardingGenerator(opts ...Option) *ShardingGenerator {
	return &ShardingGenerator{
		parser: parser.NewSQLParser(),
		opts:   newOptions(opts),
	}
}

// Generate 生成分表 SQL，所有失败都体现在结果中
func (g *ShardingGenerator) Generate(cfg ShardingConfig) *ShardingResult {
	logger := g.opts.logger.With(zap.Strings("tables", cfg.TableNames), zap.Int("shard_count", cfg.ShardCount))
	logger.Debug("generating sharding sql", zap.String("suffix_type", string(cfg.SuffixType)))

	result := &ShardingResult{GenerationTime: g.opts.now()}

	sqls, err := g.generate(cfg)
	if err != nil {
		logger.Warn("sharding sql generation failed", zap.String("kind", string(sqlerr.KindOf(err))), zap.Error(err))
		result.Err = err
		result.ErrorMessage = sqlerr.Message(err)
		return result
	}

	result.Success = true
	result.ShardingSQLs = sqls
	result.ShardCount = cfg.ShardCount
	result.TableNames = cfg.TableNames

	logger.Debug("sharding sql generated", zap.Int("statements", len(sqls)))
	return result
}

func (g *ShardingGenerator) generate(cfg ShardingConfig) (sqls []string, err error) {
	defer sqlerr.Recover(&err, "generate sharding sql")

	if err := validateRequest(g.parser, g.opts.validator, cfg); err != nil {
		return nil, err
	}

	suffixes, err := cfg.Suffixes(cfg.ShardCount)
	if err != nil {
		return nil, err
	}

	sqls = make([]string, 0, len(suffixes))
	for _, s := range suffixes {
		sqls = append(sqls, g.rewriteForSuffix(cfg.OriginalSQL, cfg.TableNames, s))
	}

	return sqls, nil
}

// rewriteForSuffix 把每张表替换为加后缀后的分表名
func (g *ShardingGenerator) rewriteForSuffix(sql string, tables []string, sfx string) string {
	for _, table := range tables {
		sql = g.parser.ReplaceTableName(sql, table, table+sfx)
	}
	return sql
}

// Preview 分表配置预览：配置摘要加每张表的前若干个分表名
func (g *ShardingGenerator) Preview(cfg ShardingConfig) (string, error) {
	shown := cfg.ShardCount
	if shown > previewLimit {
		shown = previewLimit
	}
	if shown < 0 {
		shown = 0
	}

	suffixes, err := cfg.Suffixes(shown)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("Sharding preview:\n")
	sb.WriteString(fmt.Sprintf("• tables: %s\n", strings.Join(cfg.TableNames, ", ")))
	sb.WriteString(fmt.Sprintf("• shard count: %d\n", cfg.ShardCount))
	sb.WriteString(fmt.Sprintf("• suffix type: %s\n", cfg.SuffixType.DisplayName()))
	sb.WriteString(fmt.Sprintf("• suffix format: %s\n", cfg.SuffixFormat))
	if cfg.SuffixType.UsesStartYear() {
		sb.WriteString(fmt.Sprintf("• start year: %d\n", cfg.StartYear))
	}
	if cfg.SuffixType == suffix.YearMonth {
		sb.WriteString(fmt.Sprintf("• start month: %d\n", cfg.StartMonth))
	}

	sb.WriteString("\nShard table names:\n")
	for _, table := range cfg.TableNames {
		for _, s := range suffixes {
			sb.WriteString(fmt.Sprintf("  • %s%s\n", table, s))
		}
	}
	if cfg.ShardCount > previewLimit {
		sb.WriteString(fmt.Sprintf("  • ... (%d more)\n", cfg.ShardCount-previewLimit))
	}

	return sb.String(), nil
}

// validateRequest 配置校验、SQL 形态校验、可选的严格校验，依次执行
func validateRequest(p *parser.SQLParser, strict parser.Validator, cfg ShardingConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := p.ValidateSQL(cfg.OriginalSQL); err != nil {
		return err
	}

	if strict != nil {
		if err := strict.Validate(cfg.OriginalSQL); err != nil {
			return err
		}
	}

	return nil
}
