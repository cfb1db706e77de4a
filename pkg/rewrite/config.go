package rewrite

import (
	"strings"

	"go-ysql/pkg/sqlerr"
	"go-ysql/pkg/suffix"
)

// 分表配置约束
const (
	DefaultShardCount = 4
	MaxShardCount     = 1000
	MinStartYear      = 1900
	MaxStartYear      = 2100
)

// ShardingConfig 分表配置
type ShardingConfig struct {
	TableNames   []string    // 需要加后缀的逻辑表名
	SuffixType   suffix.Type // 后缀类型
	SuffixFormat string      // 后缀格式，如 "_"、"-"、"_p{index}"
	ShardCount   int         // 分表数量
	StartYear    int         // 起始年份，YEAR 与 YEAR_MONTH 使用
	StartMonth   int         // 起始月份，YEAR_MONTH 使用
	OriginalSQL  string      // 原始 SQL
}

// DefaultShardingConfig 返回带默认值的分表配置
func DefaultShardingConfig() ShardingConfig {
	return ShardingConfig{
		TableNames:   []string{},
		SuffixType:   suffix.Sequence,
		SuffixFormat: suffix.DefaultFormat,
		ShardCount:   DefaultShardCount,
		StartYear:    suffix.DefaultStartYear,
		StartMonth:   suffix.DefaultStartMonth,
	}
}

// Validate 校验分表配置，失败时返回配置错误
func (c ShardingConfig) Validate() error {
	if len(c.TableNames) == 0 {
		return sqlerr.Configf("table name list must not be empty")
	}

	for _, name := range c.TableNames {
		if strings.TrimSpace(name) == "" {
			return sqlerr.Configf("table name must not be blank")
		}
	}

	if c.ShardCount <= 0 {
		return sqlerr.Configf("shard count must be greater than 0, got %d", c.ShardCount)
	}

	if c.ShardCount > MaxShardCount {
		return sqlerr.Configf("shard count must not exceed %d, got %d", MaxShardCount, c.ShardCount)
	}

	if strings.TrimSpace(c.OriginalSQL) == "" {
		return sqlerr.Configf("original sql must not be blank")
	}

	if err := suffix.ValidateFormat(c.SuffixFormat, c.SuffixType); err != nil {
		return err
	}

	if c.SuffixType.UsesStartYear() && (c.StartYear < MinStartYear || c.StartYear > MaxStartYear) {
		return sqlerr.Configf("start year must be between %d and %d, got %d", MinStartYear, MaxStartYear, c.StartYear)
	}

	if c.SuffixType == suffix.YearMonth && (c.StartMonth < 1 || c.StartMonth > 12) {
		return sqlerr.Configf("start month must be between 1 and 12, got %d", c.StartMonth)
	}

	return nil
}

// Suffixes 生成前 count 个后缀
func (c ShardingConfig) Suffixes(count int) ([]string, error) {
	return suffix.GenerateList(count, c.SuffixType, c.suffixParams())
}

func (c ShardingConfig) suffixParams() suffix.Params {
	return suffix.Params{
		Format:     c.SuffixFormat,
		StartYear:  c.StartYear,
		StartMonth: c.StartMonth,
	}
}
