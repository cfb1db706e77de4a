package procedure

import (
	"fmt"
	"strings"
	"time"
)

const timeLayout = "2006-01-02 15:04:05"

// Result 存储过程生成结果
type Result struct {
	Success        bool
	Procedure      string
	ProcedureName  string
	MainTableName  string
	ConfigSummary  string
	Config         *Config
	ErrorMessage   string
	Err            error
	GenerationTime time.Time
}

// CallExample 调用示例，参数顺序与过程声明一致
func (r *Result) CallExample() string {
	if r.Config == nil {
		return "configuration unavailable, no call example"
	}
	c := r.Config

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("CALL %s(%d, '%s', %d);\n", r.ProcedureName, c.LimitSize, c.CreateTimeEnd, c.MinID))
	sb.WriteString("\nparameters:\n")
	sb.WriteString(fmt.Sprintf("- limit_size: %d, rows deleted per iteration\n", c.LimitSize))
	sb.WriteString(fmt.Sprintf("- create_time_end: '%s', delete rows created before this time\n", c.CreateTimeEnd))
	sb.WriteString(fmt.Sprintf("- min_id: %d, starting primary key\n", c.MinID))
	sb.WriteString("\nbehaviour:\n")
	sb.WriteString(fmt.Sprintf("- deletes matching historical rows from %s in a loop\n", c.MainTableName))
	sb.WriteString(fmt.Sprintf("- removes at most %d rows per iteration to avoid long table locks\n", c.LimitSize))
	sb.WriteString(fmt.Sprintf("- condition: %s > %d AND %s < '%s'\n", c.PrimaryKeyField, c.MinID, c.TimeField, c.CreateTimeEnd))
	if cond := strings.TrimSpace(c.CustomWhereCondition); cond != "" {
		sb.WriteString(fmt.Sprintf("- extra condition: %s\n", cond))
	}
	return sb.String()
}

// Statistics 结果摘要
func (r *Result) Statistics() string {
	var sb strings.Builder
	sb.WriteString("- batch delete procedure summary:\n")
	sb.WriteString(fmt.Sprintf("- procedure: %s\n", r.ProcedureName))
	sb.WriteString(fmt.Sprintf("- main table: %s\n", r.MainTableName))
	sb.WriteString(fmt.Sprintf("- generated at: %s\n", r.GenerationTime.Format(timeLayout)))
	if r.Success {
		sb.WriteString("- status: success\n")
	} else {
		sb.WriteString("- status: failed\n")
		sb.WriteString(fmt.Sprintf("- error: %s\n", r.ErrorMessage))
	}
	return sb.String()
}

// FormattedResult 摘要、调用示例与过程文本
func (r *Result) FormattedResult() string {
	var sb strings.Builder
	sb.WriteString(r.Statistics())
	if r.ConfigSummary != "" {
		sb.WriteString(fmt.Sprintf("- config: %s\n", r.ConfigSummary))
	}
	sb.WriteString("\n- call example:\n")
	sb.WriteString(r.CallExample())
	sb.WriteString("\n- generated procedure:\n")
	sb.WriteString(strings.Repeat("=", 50))
	sb.WriteString("\n")
	sb.WriteString(r.Procedure)
	return sb.String()
}
