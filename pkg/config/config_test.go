package config

import (
	"os"
	"path/filepath"
	"testing"

	"go-ysql/pkg/codegen"
	"go-ysql/pkg/database"
	"go-ysql/pkg/procedure"
	"go-ysql/pkg/rewrite"
	"go-ysql/pkg/sqlerr"
	"go-ysql/pkg/suffix"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

const fullRequest = `
database: postgres
strict: true
logging:
  level: debug
  format: json
sharding:
  tables: [t_order, " t_item ", ""]
  suffixType: year-month
  suffixFormat: "_"
  shardCount: 3
  startYear: 2023
  startMonth: 11
  sql: "SELECT SUM(o.amount) FROM t_order o JOIN t_item i ON o.id = i.order_id"
statistics:
  functions:
    SUM(o.amount): max
codegen:
  language: kotlin
  variableName: query
  addComments: false
  sql: |
    SELECT *
    FROM users
procedure:
  preset: system-log-cleanup
  limitSize: "5000"
  addLogTable: false
  createTimeEnd: "2024-06-30 00:00:00"
`

func TestLoadFromYAML(t *testing.T) {
	// 写入临时文件
	path := filepath.Join(t.TempDir(), "request.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fullRequest), 0644))

	cfg, err := LoadFromYAML(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	dbType, err := cfg.DatabaseType()
	require.NoError(t, err)
	assert.Equal(t, database.PostgreSQL, dbType)
	assert.True(t, cfg.Strict)

	level, err := cfg.Logging.ZapLevel()
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, level)
	assert.Equal(t, LogFormatJSON, cfg.Logging.Format)

	// 分表段落
	sharding, err := cfg.Sharding.ToShardingConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"t_order", "t_item"}, sharding.TableNames)
	assert.Equal(t, suffix.YearMonth, sharding.SuffixType)
	assert.Equal(t, 3, sharding.ShardCount)
	assert.Equal(t, 2023, sharding.StartYear)
	assert.Equal(t, 11, sharding.StartMonth)

	functions, err := cfg.Statistics.StatisticFunctions()
	require.NoError(t, err)
	assert.Equal(t, map[string]rewrite.StatisticFunction{"SUM(o.amount)": rewrite.Max}, functions)

	// 代码生成段落
	cg, err := cfg.Codegen.ToCodegenConfig()
	require.NoError(t, err)
	assert.Equal(t, codegen.Kotlin, cg.Language)
	assert.Equal(t, "query", cg.VariableName)
	assert.False(t, cg.AddComments)
	assert.Equal(t, "SELECT *\nFROM users\n", cg.OriginalSQL)

	// 存储过程段落：预置加覆盖
	proc, err := cfg.Procedure.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "system_logs", proc.MainTableName)
	assert.Equal(t, "log_time", proc.TimeField)
	assert.Equal(t, 5000, proc.LimitSize)
	assert.False(t, proc.AddLogTable)
	assert.True(t, proc.AddTempTable)
	assert.Equal(t, "2024-06-30 00:00:00", proc.CreateTimeEnd)
}

func TestLoadFromYAML_Errors(t *testing.T) {
	_, err := LoadFromYAML(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Parse([]byte("sharding: [unclosed"))
	require.Error(t, err)
	assert.True(t, sqlerr.IsConfiguration(err))
}

func TestSaveToYAML(t *testing.T) {
	addComments := true
	cfg := &RequestConfig{
		Database: "mysql",
		Sharding: &ShardingSection{
			Tables:     []string{"t_user"},
			ShardCount: 2,
			SQL:        "SELECT * FROM t_user",
		},
		Codegen: &CodegenSection{
			Language:    "JAVA",
			AddComments: &addComments,
			SQL:         "SELECT 1",
		},
		Procedure: &ProcedureSection{
			Preset:    string(procedure.TempDataCleanup),
			Overrides: map[string]interface{}{"limitSize": 20},
		},
	}

	path := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, cfg.SaveToYAML(path))

	loaded, err := LoadFromYAML(path)
	require.NoError(t, err)
	require.NoError(t, loaded.Validate())

	assert.Equal(t, cfg.Sharding, loaded.Sharding)
	assert.Equal(t, cfg.Codegen, loaded.Codegen)
	assert.Nil(t, loaded.Statistics)

	proc, err := loaded.Procedure.Resolve()
	require.NoError(t, err)
	assert.Equal(t, 20, proc.LimitSize)
	assert.Equal(t, "temp_data", proc.MainTableName)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		settings bool // ValidateSettings 也应拒绝
	}{
		{"unknown database", "database: oracle", true},
		{"bad log level", "logging:\n  level: loud", true},
		{"bad log format", "logging:\n  format: xml", true},
		{"bad suffix type", "sharding:\n  tables: [t]\n  suffixType: weekly\n  sql: SELECT 1 FROM t", true},
		{"too many shards", "sharding:\n  tables: [t]\n  shardCount: 1001\n  sql: SELECT 1 FROM t", false},
		{"no tables", "sharding:\n  sql: SELECT 1 FROM t", false},
		{"statistics without sharding", "statistics:\n  functions:\n    a: SUM", false},
		{"bad statistic function", "sharding:\n  tables: [t]\n  sql: SELECT a FROM t\nstatistics:\n  functions:\n    a: MEDIAN", true},
		{"bad language", "codegen:\n  language: rust\n  sql: SELECT 1", true},
		{"blank codegen sql", "codegen:\n  language: java", false},
		{"bad preset", "procedure:\n  preset: nope", true},
		{"unknown procedure key", "procedure:\n  preset: custom\n  limit: 5", true},
		{"bad limit", "procedure:\n  preset: custom\n  limitSize: lots", true},
		{"zero limit", "procedure:\n  preset: custom\n  limitSize: 0", false},
		{"missing table", "procedure:\n  createTimeEnd: '2024-01-01'", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.yaml))
			require.NoError(t, err)

			err = cfg.Validate()
			require.Error(t, err)
			assert.True(t, sqlerr.IsConfiguration(err), err.Error())

			err = cfg.ValidateSettings()
			if tt.settings {
				require.Error(t, err)
				assert.True(t, sqlerr.IsConfiguration(err), err.Error())
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_EmptyRequest(t *testing.T) {
	cfg, err := Parse([]byte(""))
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())

	dbType, err := cfg.DatabaseType()
	require.NoError(t, err)
	assert.Equal(t, database.MySQL, dbType)
}

func TestShardingSectionDefaults(t *testing.T) {
	s := &ShardingSection{Tables: []string{"t"}, SQL: "SELECT * FROM t"}
	cfg, err := s.ToShardingConfig()
	require.NoError(t, err)

	defaults := rewrite.DefaultShardingConfig()
	assert.Equal(t, defaults.SuffixType, cfg.SuffixType)
	assert.Equal(t, defaults.SuffixFormat, cfg.SuffixFormat)
	assert.Equal(t, defaults.ShardCount, cfg.ShardCount)
	assert.Equal(t, defaults.StartYear, cfg.StartYear)
}

func TestProcedureSectionDefaultName(t *testing.T) {
	s := &ProcedureSection{Overrides: map[string]interface{}{
		"main_table_name": "t_log",
		"create-time-end": "2024-01-01",
	}}

	cfg, err := s.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "DropHistoryDataByLimit_t_log", cfg.ProcedureName)
	assert.NoError(t, cfg.Validate())
}

func TestProcedureSectionExtraOverrides(t *testing.T) {
	s := &ProcedureSection{
		Preset:    "temp-data-cleanup",
		Overrides: map[string]interface{}{"limitSize": 500},
	}

	cfg, err := s.Resolve(map[string]interface{}{"limit-size": "800"}, map[string]interface{}{"add_log_table": "false"})
	require.NoError(t, err)
	assert.Equal(t, 800, cfg.LimitSize)
	assert.False(t, cfg.AddLogTable)
	assert.Equal(t, procedure.TempDataCleanup.Config().MainTableName, cfg.MainTableName)

	_, err = s.Resolve(map[string]interface{}{"batch": 1})
	assert.True(t, sqlerr.IsConfiguration(err))
}
