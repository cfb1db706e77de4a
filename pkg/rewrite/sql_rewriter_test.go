package rewrite

import (
	"strings"
	"testing"
	"time"

	"go-ysql/pkg/parser"
	"go-ysql/pkg/sqlerr"
	"go-ysql/pkg/suffix"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newConfig(sql string, tables ...string) ShardingConfig {
	cfg := DefaultShardingConfig()
	cfg.OriginalSQL = sql
	cfg.TableNames = tables
	return cfg
}

func TestShardingGenerator_Generate(t *testing.T) {
	generator := NewShardingGenerator(WithLogger(zaptest.NewLogger(t)))

	cfg := newConfig("SELECT * FROM t_main WHERE note = 't_main' AND t_main.id > 0", "t_main")
	cfg.ShardCount = 3

	result := generator.Generate(cfg)
	require.True(t, result.Success, result.ErrorMessage)
	assert.Equal(t, []string{
		"SELECT * FROM t_main_0 WHERE note = 't_main' AND t_main.id > 0",
		"SELECT * FROM t_main_1 WHERE note = 't_main' AND t_main.id > 0",
		"SELECT * FROM t_main_2 WHERE note = 't_main' AND t_main.id > 0",
	}, result.ShardingSQLs)
	assert.Equal(t, 3, result.ShardCount)
	assert.Equal(t, []string{"t_main"}, result.TableNames)
	assert.Nil(t, result.Err)
}

func TestShardingGenerator_MultipleTables(t *testing.T) {
	generator := NewShardingGenerator()

	cfg := newConfig("SELECT * FROM t_order o JOIN t_item i ON o.id = i.order_id", "t_order", "t_item")
	cfg.SuffixType = suffix.YearMonth
	cfg.ShardCount = 2
	cfg.StartYear = 2023
	cfg.StartMonth = 12

	result := generator.Generate(cfg)
	require.True(t, result.Success, result.ErrorMessage)
	assert.Equal(t, "SELECT * FROM t_order_202312 o JOIN t_item_202312 i ON o.id = i.order_id", result.ShardingSQLs[0])
	assert.Equal(t, "SELECT * FROM t_order_202401 o JOIN t_item_202401 i ON o.id = i.order_id", result.ShardingSQLs[1])
}

func TestShardingGenerator_ShardCountBoundaries(t *testing.T) {
	generator := NewShardingGenerator()

	tests := []struct {
		count   int
		success bool
	}{
		{0, false},
		{-1, false},
		{1, true},
		{1000, true},
		{1001, false},
	}

	for _, tt := range tests {
		cfg := newConfig("SELECT a FROM t", "t")
		cfg.ShardCount = tt.count

		result := generator.Generate(cfg)
		assert.Equal(t, tt.success, result.Success, "count %d", tt.count)
		if tt.success {
			assert.Len(t, result.ShardingSQLs, tt.count)
		} else {
			assert.True(t, sqlerr.IsConfiguration(result.Err))
			assert.Empty(t, result.ShardingSQLs)
		}
	}
}

func TestShardingGenerator_ValidationErrors(t *testing.T) {
	generator := NewShardingGenerator()

	tests := []struct {
		name   string
		mutate func(*ShardingConfig)
		kind   sqlerr.Kind
	}{
		{"no tables", func(c *ShardingConfig) { c.TableNames = nil }, sqlerr.KindConfiguration},
		{"blank sql", func(c *ShardingConfig) { c.OriginalSQL = "  " }, sqlerr.KindConfiguration},
		{"blank format", func(c *ShardingConfig) { c.SuffixFormat = "" }, sqlerr.KindConfiguration},
		{"custom without placeholder", func(c *ShardingConfig) {
			c.SuffixType = suffix.Custom
			c.SuffixFormat = "_x"
		}, sqlerr.KindConfiguration},
		{"year too small", func(c *ShardingConfig) {
			c.SuffixType = suffix.Year
			c.StartYear = 1899
		}, sqlerr.KindConfiguration},
		{"month out of range", func(c *ShardingConfig) {
			c.SuffixType = suffix.YearMonth
			c.StartMonth = 13
		}, sqlerr.KindConfiguration},
		{"unbalanced sql", func(c *ShardingConfig) { c.OriginalSQL = "SELECT COUNT(1 FROM t" }, sqlerr.KindParse},
		{"no keyword", func(c *ShardingConfig) { c.OriginalSQL = "hello t" }, sqlerr.KindParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newConfig("SELECT a FROM t", "t")
			tt.mutate(&cfg)

			result := generator.Generate(cfg)
			assert.False(t, result.Success)
			assert.Equal(t, tt.kind, sqlerr.KindOf(result.Err))
			assert.NotEmpty(t, result.ErrorMessage)
		})
	}
}

func TestShardingGenerator_StartMonthIgnoredForYear(t *testing.T) {
	cfg := newConfig("SELECT a FROM t", "t")
	cfg.SuffixType = suffix.Year
	cfg.StartYear = 2021
	cfg.StartMonth = 0
	cfg.ShardCount = 2

	result := NewShardingGenerator().Generate(cfg)
	require.True(t, result.Success, result.ErrorMessage)
	assert.Equal(t, []string{"SELECT a FROM t_2021", "SELECT a FROM t_2022"}, result.ShardingSQLs)
}

func TestShardingGenerator_StrictValidator(t *testing.T) {
	validator, err := parser.NewValidatorByName("mysql")
	require.NoError(t, err)
	generator := NewShardingGenerator(WithStrictValidator(validator))

	result := generator.Generate(newConfig("SELECT a FROM t WHERE", "t"))
	assert.False(t, result.Success)
	assert.True(t, sqlerr.IsParse(result.Err))

	result = generator.Generate(newConfig("SELECT a FROM t WHERE id = 1", "t"))
	assert.True(t, result.Success, result.ErrorMessage)
}

func TestShardingResult_Formatting(t *testing.T) {
	clock := func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) }
	cfg := newConfig("SELECT a FROM t", "t")
	cfg.ShardCount = 2

	result := NewShardingGenerator(WithClock(clock)).Generate(cfg)
	require.True(t, result.Success)

	assert.Equal(t, "SELECT a FROM t_0\n\nSELECT a FROM t_1", result.CombinedSQL())
	formatted := result.FormattedResult()
	assert.Contains(t, formatted, "shard count: 2")
	assert.Contains(t, formatted, "2024-05-06 07:08:09")
	assert.Contains(t, formatted, "status: success")
	assert.Contains(t, formatted, result.CombinedSQL())
}

func TestShardingGenerator_Preview(t *testing.T) {
	generator := NewShardingGenerator()

	cfg := newConfig("SELECT a FROM t_log", "t_log")
	cfg.ShardCount = 8
	preview, err := generator.Preview(cfg)
	require.NoError(t, err)
	assert.Contains(t, preview, "t_log_0")
	assert.Contains(t, preview, "t_log_4")
	assert.NotContains(t, preview, "t_log_5")
	assert.Contains(t, preview, "(3 more)")
	assert.NotContains(t, preview, "start year")

	cfg.SuffixType = suffix.YearMonth
	cfg.ShardCount = 2
	preview, err = generator.Preview(cfg)
	require.NoError(t, err)
	assert.Contains(t, preview, "start year: 2020")
	assert.Contains(t, preview, "start month: 1")
	assert.Contains(t, preview, "t_log_202002")
	assert.False(t, strings.Contains(preview, "more)"))
}
