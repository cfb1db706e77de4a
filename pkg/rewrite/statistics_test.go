package rewrite

import (
	"strings"
	"testing"
	"time"

	"go-ysql/pkg/parser"
	"go-ysql/pkg/sqlerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestStatisticsGenerator_Basic(t *testing.T) {
	generator := NewStatisticsGenerator(WithLogger(zaptest.NewLogger(t)))

	cfg := newConfig("SELECT qty, amount FROM t_main WHERE order_time >= '2024-01-01 00:00:00' AND order_type = 4", "t_main")
	cfg.ShardCount = 3

	result := generator.Generate(cfg, map[string]StatisticFunction{"qty": Sum, "amount": Sum})
	require.True(t, result.Success, result.ErrorMessage)

	sql := result.StatisticsSQL
	assert.True(t, strings.HasPrefix(sql, "SELECT SUM(unionTable.qty), SUM(unionTable.amount) FROM (\n"))
	assert.True(t, strings.HasSuffix(sql, "\n) unionTable"))
	assert.Contains(t, sql, "t_main_0")
	assert.Contains(t, sql, "t_main_1")
	assert.Contains(t, sql, "t_main_2")
	assert.Equal(t, 2, strings.Count(sql, "UNION ALL"))
	assert.Contains(t, sql, "SELECT qty AS qty, amount AS amount FROM t_main_0 WHERE")
}

func TestStatisticsGenerator_ExactLayout(t *testing.T) {
	cfg := newConfig("SELECT COUNT(1) AS qty, amount FROM t WHERE a = 1", "t")
	cfg.ShardCount = 2

	result := NewStatisticsGenerator().Generate(cfg, map[string]StatisticFunction{"amount": Max})
	require.True(t, result.Success, result.ErrorMessage)

	expected := "SELECT SUM(unionTable.qty), MAX(unionTable.amount) FROM (\n" +
		"SELECT COUNT(1) AS qty, amount AS amount FROM t_0 WHERE a = 1 UNION ALL\n" +
		"SELECT COUNT(1) AS qty, amount AS amount FROM t_1 WHERE a = 1\n" +
		") unionTable"
	assert.Equal(t, expected, result.StatisticsSQL)
}

func TestStatisticsGenerator_DifferentFunctions(t *testing.T) {
	cfg := newConfig("SELECT qty, amount FROM t_main WHERE order_type = 4", "t_main")
	cfg.ShardCount = 2

	result := NewStatisticsGenerator().Generate(cfg, map[string]StatisticFunction{"qty": Count, "amount": Sum})
	require.True(t, result.Success, result.ErrorMessage)
	assert.Contains(t, result.StatisticsSQL, "COUNT(unionTable.qty)")
	assert.Contains(t, result.StatisticsSQL, "SUM(unionTable.amount)")
}

func TestStatisticsGenerator_Aliases(t *testing.T) {
	cfg := newConfig("SELECT COUNT(1) AS qty,SUM(part_cost_amount) FROM kc_repair_out_main WHERE outin_time >= '2024-01-01 00:00:00' AND order_type = 4 AND delete_status = 0", "kc_repair_out_main")
	cfg.ShardCount = 5
	cfg.StartYear = 2024

	result := NewStatisticsGenerator().Generate(cfg, map[string]StatisticFunction{
		"COUNT(1)":              Sum,
		"SUM(part_cost_amount)": Sum,
	})
	require.True(t, result.Success, result.ErrorMessage)

	sql := result.StatisticsSQL
	assert.Contains(t, sql, "SUM(unionTable.qty)")
	assert.Contains(t, sql, "SUM(unionTable.sum_result)")
	assert.NotContains(t, sql, "SUM(unionTable.COUNT(1) AS qty)")
	assert.NotContains(t, sql, "SUM(unionTable.SUM(part_cost_amount))")
	assert.Contains(t, sql, "COUNT(1) AS qty")
	assert.Contains(t, sql, "SUM(part_cost_amount) AS sum_result")
	assert.Equal(t, 4, strings.Count(sql, "UNION ALL"))
}

func TestStatisticsGenerator_DuplicateFields(t *testing.T) {
	cfg := newConfig("SELECT COUNT(1) AS qty,SUM(part_cost_amount),SUM(part_cost_amount) FROM kc_repair_out_main WHERE delete_status = 0", "kc_repair_out_main")
	cfg.ShardCount = 3

	result := NewStatisticsGenerator().Generate(cfg, map[string]StatisticFunction{
		"COUNT(1)":              Sum,
		"SUM(part_cost_amount)": Sum,
	})
	require.True(t, result.Success, result.ErrorMessage)

	sql := result.StatisticsSQL
	assert.Contains(t, sql, "SUM(unionTable.qty)")
	assert.Contains(t, sql, "SUM(unionTable.sum_result)")
	assert.Contains(t, sql, "SUM(unionTable.sum_result_1)")
	assert.NotContains(t, sql, "SUM(unionTable.sum_result), SUM(unionTable.sum_result)")
	assert.Contains(t, sql, "SUM(part_cost_amount) AS sum_result")
	assert.Contains(t, sql, "SUM(part_cost_amount) AS sum_result_1")

	require.Len(t, result.Fields, 3)
	assert.Equal(t, "sum_result_1", result.Fields[2].Alias)
}

func TestStatisticsGenerator_StrictValidatorAcceptsOutput(t *testing.T) {
	validator, err := parser.NewValidatorByName("mysql")
	require.NoError(t, err)

	cfg := newConfig("SELECT COUNT(1) AS qty, SUM(amount) FROM t_order WHERE status = 1", "t_order")
	cfg.ShardCount = 3

	result := NewStatisticsGenerator(WithStrictValidator(validator)).Generate(cfg, nil)
	require.True(t, result.Success, result.ErrorMessage)
	assert.NoError(t, validator.Validate(result.StatisticsSQL))
}

func TestStatisticsGenerator_Errors(t *testing.T) {
	tests := []struct {
		name  string
		sql   string
		count int
		kind  sqlerr.Kind
	}{
		{"wildcard", "SELECT * FROM t_main", 2, sqlerr.KindConfiguration},
		{"qualified wildcard", "SELECT m.* FROM t_main m", 2, sqlerr.KindConfiguration},
		{"not a select", "DELETE FROM t_main WHERE id = 1", 2, sqlerr.KindParse},
		{"shard count", "SELECT a FROM t_main", 1001, sqlerr.KindConfiguration},
		{"unbalanced", "SELECT SUM(a FROM t_main", 2, sqlerr.KindParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newConfig(tt.sql, "t_main")
			cfg.ShardCount = tt.count

			result := NewStatisticsGenerator().Generate(cfg, nil)
			assert.False(t, result.Success)
			assert.Empty(t, result.StatisticsSQL)
			assert.Equal(t, tt.kind, sqlerr.KindOf(result.Err))
		})
	}
}

func TestStatisticsGenerator_SyntheticAliasUsesClock(t *testing.T) {
	clock := func() time.Time { return time.UnixMilli(1700000004321) }
	cfg := newConfig("SELECT IFNULL(a, 0) FROM t", "t")
	cfg.ShardCount = 1

	result := NewStatisticsGenerator(WithClock(clock)).Generate(cfg, nil)
	require.True(t, result.Success, result.ErrorMessage)
	assert.Contains(t, result.StatisticsSQL, "SUM(unionTable.field_4321)")
	assert.Contains(t, result.StatisticsSQL, "IFNULL(a, 0) AS field_4321")
	assert.NotContains(t, result.StatisticsSQL, "UNION ALL")
}

func TestStatisticsResult_FormattedResult(t *testing.T) {
	cfg := newConfig("SELECT a FROM t", "t")
	cfg.ShardCount = 2
	result := NewStatisticsGenerator().Generate(cfg, nil)
	require.True(t, result.Success)
	assert.Contains(t, result.FormattedResult(), result.StatisticsSQL)

	failed := NewStatisticsGenerator().Generate(newConfig("SELECT * FROM t", "t"), nil)
	assert.True(t, strings.HasPrefix(failed.FormattedResult(), "failed to generate"))
}

func TestParseStatisticFunction(t *testing.T) {
	f, err := ParseStatisticFunction(" avg ")
	require.NoError(t, err)
	assert.Equal(t, Avg, f)
	assert.Equal(t, "AVG(unionTable.x)", f.Apply("x"))

	_, err = ParseStatisticFunction("median")
	assert.True(t, sqlerr.IsConfiguration(err))
}

func TestMissingFunctionKeys(t *testing.T) {
	missing, err := MissingFunctionKeys(
		"SELECT COUNT(1) AS qty, SUM(a), SUM(a), b FROM t",
		map[string]StatisticFunction{"COUNT(1)": Sum},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"SUM(a)", "b"}, missing)

	_, err = MissingFunctionKeys("SELECT * FROM t", nil)
	assert.Error(t, err)
}
