package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags 恢复所有命令的参数默认值，保证用例之间互不影响
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	current = nil

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

func TestShardCommand(t *testing.T) {
	out, err := execute(t, "", "shard", "-t", "t_order", "-n", "2", "SELECT * FROM t_order WHERE id = 1")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t_order_0 WHERE id = 1\n\nSELECT * FROM t_order_1 WHERE id = 1\n", out)

	// 未指定 --tables 时使用 SQL 中的全部表
	out, err = execute(t, "SELECT * FROM t_user", "shard", "-n", "2", "--suffix-type", "year", "--start-year", "2023")
	require.NoError(t, err)
	assert.Contains(t, out, "SELECT * FROM t_user_2023")
	assert.Contains(t, out, "SELECT * FROM t_user_2024")

	_, err = execute(t, "", "shard", "-n", "1001", "SELECT * FROM t_order")
	assert.Error(t, err)
}

func TestStatsCommand(t *testing.T) {
	out, err := execute(t, "", "stats", "-t", "t_order", "-n", "3",
		"--func", "COUNT(*)=SUM", "SELECT COUNT(*) AS total FROM t_order")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "UNION ALL"))
	assert.Contains(t, out, "SUM(unionTable.total)")

	_, err = execute(t, "", "stats", "--func", "COUNT(*)", "SELECT COUNT(*) FROM t_order")
	assert.Error(t, err)
}

func TestTablesCommand(t *testing.T) {
	out, err := execute(t, "", "tables", "SELECT * FROM a JOIN b ON a.id = b.id")
	require.NoError(t, err)
	assert.Equal(t, "a\nb\n", out)

	_, err = execute(t, "", "tables", "SELECT 1")
	assert.Error(t, err)
}

func TestCodegenAndReverseCommands(t *testing.T) {
	code, err := execute(t, "", "codegen", "--lang", "kotlin", "--var", "query", "SELECT * FROM users")
	require.NoError(t, err)
	assert.Contains(t, code, "query")

	out, err := execute(t, code, "reverse")
	require.NoError(t, err)
	assert.Contains(t, out, "SELECT * FROM users")

	_, err = execute(t, "", "codegen", "--lang", "cobol", "SELECT 1")
	assert.Error(t, err)
}

func TestProcedureCommand(t *testing.T) {
	out, err := execute(t, "", "procedure", "--preset", "audit-log-cleanup")
	require.NoError(t, err)
	assert.Contains(t, out, "PROCEDURE `DropAuditLogHistory`(")

	out, err = execute(t, "", "procedure",
		"--set", "mainTableName=t_order",
		"--set", "createTimeEnd=2024-01-01",
		"--set", "add-temp-table=false")
	require.NoError(t, err)
	assert.Contains(t, out, "PROCEDURE `DropHistoryDataByLimit_t_order`(")
	assert.NotContains(t, out, "drop_data_action")

	out, err = execute(t, "", "procedure", "--list-presets")
	require.NoError(t, err)
	assert.Contains(t, out, "audit-log-cleanup")

	_, err = execute(t, "", "procedure", "--check-identifiers",
		"--set", "mainTableName=t-order", "--set", "createTimeEnd=2024-01-01")
	assert.Error(t, err)

	// 缺少截止时间
	_, err = execute(t, "", "procedure", "--set", "mainTableName=t_order")
	assert.Error(t, err)
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "request.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
sharding:
  tables: [t_order]
  shardCount: 2
  sql: SELECT * FROM t_order
procedure:
  preset: temp-data-cleanup
`), 0644))

	outFile := filepath.Join(dir, "result.txt")
	_, err := execute(t, "", "run", "-c", file, "-o", outFile)
	require.NoError(t, err)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "SELECT * FROM t_order_1")
	assert.Contains(t, string(data), "CALL DropTempDataHistory(")

	_, err = execute(t, "", "run")
	assert.Error(t, err)
}

func TestRequestFileCompletedByFlags(t *testing.T) {
	dir := t.TempDir()

	shardFile := filepath.Join(dir, "shard.yaml")
	require.NoError(t, os.WriteFile(shardFile, []byte(`
sharding:
  tables: [t_order]
  shardCount: 2
`), 0644))

	out, err := execute(t, "", "shard", "-c", shardFile, "SELECT * FROM t_order")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t_order_0\n\nSELECT * FROM t_order_1\n", out)

	procFile := filepath.Join(dir, "procedure.yaml")
	require.NoError(t, os.WriteFile(procFile, []byte(`
procedure:
  limitSize: 500
`), 0644))

	out, err = execute(t, "", "procedure", "-c", procFile,
		"--set", "mainTableName=t_log", "--set", "createTimeEnd=2024-01-01")
	require.NoError(t, err)
	assert.Contains(t, out, "PROCEDURE `DropHistoryDataByLimit_t_log`(")

	// 文件级设置仍在命令执行前校验
	badFile := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(badFile, []byte("database: oracle\n"), 0644))
	_, err = execute(t, "", "shard", "-c", badFile, "SELECT * FROM t_order")
	assert.Error(t, err)
}
