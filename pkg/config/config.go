// Package config 读写 ysql 的 YAML 请求文件。
//
// 一个请求文件可以同时描述分表改写、统计查询、代码生成与存储过程生成，
// 各段落分别转换为对应生成器的配置。
package config

import (
	"os"
	"sort"
	"strings"

	"go-ysql/pkg/codegen"
	"go-ysql/pkg/database"
	"go-ysql/pkg/procedure"
	"go-ysql/pkg/rewrite"
	"go-ysql/pkg/sqlerr"
	"go-ysql/pkg/suffix"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// 日志输出格式
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"` // console, json
}

// ShardingSection 分表改写请求
type ShardingSection struct {
	Tables       []string `yaml:"tables" json:"tables"`
	SuffixType   string   `yaml:"suffixType" json:"suffixType"` // SEQUENCE, YEAR, YEAR_MONTH, CUSTOM
	SuffixFormat string   `yaml:"suffixFormat" json:"suffixFormat"`
	ShardCount   int      `yaml:"shardCount" json:"shardCount"`
	StartYear    int      `yaml:"startYear" json:"startYear"`
	StartMonth   int      `yaml:"startMonth" json:"startMonth"`
	SQL          string   `yaml:"sql" json:"sql"`
}

// StatisticsSection 统计查询请求，键为 SELECT 列表中的表达式
type StatisticsSection struct {
	Functions map[string]string `yaml:"functions" json:"functions"`
}

// CodegenSection 代码生成请求
type CodegenSection struct {
	Language     string `yaml:"language" json:"language"`
	VariableName string `yaml:"variableName" json:"variableName"`
	AddComments  *bool  `yaml:"addComments,omitempty" json:"addComments,omitempty"`
	SQL          string `yaml:"sql" json:"sql"`
}

// ProcedureSection 存储过程请求：可选的预置名加上覆盖值
type ProcedureSection struct {
	Preset    string                 `yaml:"preset,omitempty" json:"preset,omitempty"`
	Overrides map[string]interface{} `yaml:",inline" json:"overrides,omitempty"`
}

// RequestConfig 完整的请求文件
type RequestConfig struct {
	Database   string             `yaml:"database" json:"database"`
	Strict     bool               `yaml:"strict" json:"strict"`
	Logging    *LoggingConfig     `yaml:"logging,omitempty" json:"logging,omitempty"`
	Sharding   *ShardingSection   `yaml:"sharding,omitempty" json:"sharding,omitempty"`
	Statistics *StatisticsSection `yaml:"statistics,omitempty" json:"statistics,omitempty"`
	Codegen    *CodegenSection    `yaml:"codegen,omitempty" json:"codegen,omitempty"`
	Procedure  *ProcedureSection  `yaml:"procedure,omitempty" json:"procedure,omitempty"`
}

// LoadFromYAML 从 YAML 文件加载请求
func LoadFromYAML(filename string) (*RequestConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	return Parse(data)
}

// Parse 解析 YAML 内容
func Parse(data []byte) (*RequestConfig, error) {
	var config RequestConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to parse config file"), sqlerr.ErrConfiguration)
	}
	return &config, nil
}

// SaveToYAML 保存请求到 YAML 文件
func (c *RequestConfig) SaveToYAML(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}

	return nil
}

// ValidateSettings 只校验文件级设置：数据库、日志、各段落中的枚举名称与覆盖键
//
// 表名、SQL、截止时间等可以由命令行补齐的字段不在这里检查，由生成器校验合并后的配置。
func (c *RequestConfig) ValidateSettings() error {
	if c.Database != "" {
		if _, err := c.DatabaseType(); err != nil {
			return err
		}
	}

	if c.Logging != nil {
		if _, err := c.Logging.ZapLevel(); err != nil {
			return err
		}
		if f := c.Logging.Format; f != "" && f != LogFormatConsole && f != LogFormatJSON {
			return sqlerr.Configf("unsupported log format %q, use %s or %s", f, LogFormatConsole, LogFormatJSON)
		}
	}

	if c.Sharding != nil {
		if _, err := c.Sharding.ToShardingConfig(); err != nil {
			return errors.Wrap(err, "sharding")
		}
	}

	if c.Statistics != nil {
		if _, err := c.Statistics.StatisticFunctions(); err != nil {
			return err
		}
	}

	if c.Codegen != nil {
		if _, err := c.Codegen.ToCodegenConfig(); err != nil {
			return errors.Wrap(err, "codegen")
		}
	}

	if c.Procedure != nil {
		if _, err := c.Procedure.Resolve(); err != nil {
			return errors.Wrap(err, "procedure")
		}
	}

	return nil
}

// Validate 验证请求文件中出现的各段落，要求每个段落本身完整
func (c *RequestConfig) Validate() error {
	if err := c.ValidateSettings(); err != nil {
		return err
	}

	if c.Sharding != nil {
		cfg, _ := c.Sharding.ToShardingConfig()
		if err := cfg.Validate(); err != nil {
			return errors.Wrap(err, "sharding")
		}
	}

	if c.Statistics != nil && c.Sharding == nil {
		return sqlerr.Configf("statistics section requires a sharding section")
	}

	if c.Codegen != nil {
		cfg, _ := c.Codegen.ToCodegenConfig()
		if err := cfg.Validate(); err != nil {
			return errors.Wrap(err, "codegen")
		}
	}

	if c.Procedure != nil {
		cfg, _ := c.Procedure.Resolve()
		if err := cfg.Validate(); err != nil {
			return errors.Wrap(err, "procedure")
		}
	}

	return nil
}

// DatabaseType 解析 database 字段，未填写时为 MySQL
func (c *RequestConfig) DatabaseType() (database.DatabaseType, error) {
	if strings.TrimSpace(c.Database) == "" {
		return database.MySQL, nil
	}
	t, err := database.GlobalDatabaseTypeRegistry.GetDatabaseType(c.Database)
	if err != nil {
		return "", errors.Mark(err, sqlerr.ErrConfiguration)
	}
	return t, nil
}

// ZapLevel 解析日志级别，未填写时为 info
func (l *LoggingConfig) ZapLevel() (zapcore.Level, error) {
	if strings.TrimSpace(l.Level) == "" {
		return zapcore.InfoLevel, nil
	}
	level, err := zapcore.ParseLevel(l.Level)
	if err != nil {
		return zapcore.InfoLevel, errors.Mark(errors.Wrap(err, "invalid log level"), sqlerr.ErrConfiguration)
	}
	return level, nil
}

// ToShardingConfig 转换为分表配置，未填写的字段取默认值
func (s *ShardingSection) ToShardingConfig() (rewrite.ShardingConfig, error) {
	cfg := rewrite.DefaultShardingConfig()
	cfg.TableNames = lo.Compact(lo.Map(s.Tables, func(t string, _ int) string { return strings.TrimSpace(t) }))
	cfg.OriginalSQL = s.SQL

	if s.SuffixType != "" {
		t, err := suffix.ParseType(s.SuffixType)
		if err != nil {
			return cfg, err
		}
		cfg.SuffixType = t
	}
	if s.SuffixFormat != "" {
		cfg.SuffixFormat = s.SuffixFormat
	}
	if s.ShardCount != 0 {
		cfg.ShardCount = s.ShardCount
	}
	if s.StartYear != 0 {
		cfg.StartYear = s.StartYear
	}
	if s.StartMonth != 0 {
		cfg.StartMonth = s.StartMonth
	}

	return cfg, nil
}

// StatisticFunctions 解析统计函数映射
func (s *StatisticsSection) StatisticFunctions() (map[string]rewrite.StatisticFunction, error) {
	out := make(map[string]rewrite.StatisticFunction, len(s.Functions))
	for expr, name := range s.Functions {
		f, err := rewrite.ParseStatisticFunction(name)
		if err != nil {
			return nil, errors.Wrapf(err, "statistics function for %q", expr)
		}
		out[strings.TrimSpace(expr)] = f
	}
	return out, nil
}

// ToCodegenConfig 转换为代码生成配置
func (s *CodegenSection) ToCodegenConfig() (codegen.Config, error) {
	cfg := codegen.DefaultConfig()
	cfg.OriginalSQL = s.SQL

	if s.Language != "" {
		l, err := codegen.ParseLanguage(s.Language)
		if err != nil {
			return cfg, err
		}
		cfg.Language = l
	}
	if s.VariableName != "" {
		cfg.VariableName = s.VariableName
	}
	if s.AddComments != nil {
		cfg.AddComments = *s.AddComments
	}

	return cfg, nil
}

// Resolve 以预置配置（或默认配置）为底，叠加覆盖值；extra 在段落覆盖值之后依次应用
func (s *ProcedureSection) Resolve(extra ...map[string]interface{}) (procedure.Config, error) {
	cfg := procedure.DefaultConfig()
	if s.Preset != "" {
		p, err := procedure.ParsePreset(s.Preset)
		if err != nil {
			return cfg, err
		}
		cfg = p.Config()
	}

	for _, values := range append([]map[string]interface{}{s.Overrides}, extra...) {
		if err := ApplyProcedureOverrides(&cfg, values); err != nil {
			return cfg, err
		}
	}

	if cfg.ProcedureName == "" && cfg.MainTableName != "" {
		cfg.ProcedureName = procedure.DefaultProcedureName(cfg.MainTableName)
	}
	return cfg, nil
}

// sortedKeys 覆盖值按键名排序后应用，保证错误信息稳定
func sortedKeys(m map[string]interface{}) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return keys
}
