package rewrite

import (
	"fmt"
	"strings"
	"time"

	"go-ysql/pkg/parser"
)

const timeLayout = "2006-01-02 15:04:05"

// ShardingResult 分表 SQL 生成结果
type ShardingResult struct {
	Success        bool
	ShardingSQLs   []string
	ShardCount     int
	TableNames     []string
	ErrorMessage   string
	Err            error
	GenerationTime time.Time
}

// CombinedSQL 所有分表 SQL，以空行分隔
func (r *ShardingResult) CombinedSQL() string {
	return strings.Join(r.ShardingSQLs, "\n\n")
}

// Statistics 结果摘要
func (r *ShardingResult) Statistics() string {
	var sb strings.Builder
	sb.WriteString("- sharding summary:\n")
	sb.WriteString(fmt.Sprintf("- shard count: %d\n", r.ShardCount))
	sb.WriteString(fmt.Sprintf("- tables: %s\n", strings.Join(r.TableNames, ", ")))
	sb.WriteString(fmt.Sprintf("- generated at: %s\n", r.GenerationTime.Format(timeLayout)))
	if r.Success {
		sb.WriteString("- status: success\n")
	} else {
		sb.WriteString("- status: failed\n")
		sb.WriteString(fmt.Sprintf("- error: %s\n", r.ErrorMessage))
	}
	return sb.String()
}

// FormattedResult 摘要加全部分表 SQL
func (r *ShardingResult) FormattedResult() string {
	var sb strings.Builder
	sb.WriteString(r.Statistics())
	sb.WriteString("\n- generated sharding sql:\n")
	sb.WriteString(strings.Repeat("=", 50))
	sb.WriteString("\n")
	sb.WriteString(r.CombinedSQL())
	sb.WriteString("\n")
	return sb.String()
}

// StatisticsResult 分表统计 SQL 生成结果
type StatisticsResult struct {
	Success        bool
	StatisticsSQL  string
	ShardCount     int
	TableNames     []string
	Fields         []parser.SelectField
	ErrorMessage   string
	Err            error
	GenerationTime time.Time
}

// FormattedResult 格式化的统计结果
func (r *StatisticsResult) FormattedResult() string {
	if !r.Success {
		return "failed to generate sharding statistics sql: " + r.ErrorMessage
	}

	var sb strings.Builder
	sb.WriteString("=== sharding statistics sql ===\n")
	sb.WriteString(fmt.Sprintf("shard count: %d\n", r.ShardCount))
	sb.WriteString(fmt.Sprintf("tables: %s\n", strings.Join(r.TableNames, ", ")))
	sb.WriteString(fmt.Sprintf("generated at: %s\n", r.GenerationTime.Format(timeLayout)))
	sb.WriteString("\n=== statistics sql ===\n")
	sb.WriteString(r.StatisticsSQL)
	return sb.String()
}
