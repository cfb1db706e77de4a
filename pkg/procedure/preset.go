package procedure

import (
	"fmt"
	"sort"
	"strings"

	"go-ysql/pkg/sqlerr"
)

// Preset 常见清理场景的预置配置
type Preset string

const (
	SystemLogCleanup        Preset = "SYSTEM_LOG_CLEANUP"
	UserOperationLogCleanup Preset = "USER_OPERATION_LOG_CLEANUP"
	BusinessDataCleanup     Preset = "BUSINESS_DATA_CLEANUP"
	TempDataCleanup         Preset = "TEMP_DATA_CLEANUP"
	AuditLogCleanup         Preset = "AUDIT_LOG_CLEANUP"
	CustomCleanup           Preset = "CUSTOM"
)

type presetSpec struct {
	order       int
	displayName string
	description string
	config      Config
	suggestions []string
}

var presets = map[Preset]presetSpec{
	SystemLogCleanup: {
		order:       0,
		displayName: "System log cleanup",
		description: "purge historical rows from system log tables, filtered by log type",
		config: Config{
			ProcedureName:        "DropHistoryDataByLimit",
			MainTableName:        "system_logs",
			PrimaryKeyField:      "id",
			TimeField:            "log_time",
			LimitSize:            1000,
			CreateTimeEnd:        "2023-01-01 00:00:00",
			AddLogTable:          true,
			AddTempTable:         true,
			CustomWhereCondition: "log_type IN ('DEBUG', 'INFO')",
			ProcedureComment:     "batch delete historical rows from system_logs via staged primary keys",
		},
		suggestions: []string{
			"run during off-peak hours",
			"tune the batch size to the log volume",
			"keep ERROR and WARN level logs",
			"back up important logs first",
		},
	},
	UserOperationLogCleanup: {
		order:       1,
		displayName: "User operation log cleanup",
		description: "purge historical rows from user operation log tables",
		config: Config{
			ProcedureName:        "DropUserOperationLogHistory",
			MainTableName:        "user_operation_logs",
			PrimaryKeyField:      "id",
			TimeField:            "create_time",
			LimitSize:            2000,
			CreateTimeEnd:        "2023-01-01 00:00:00",
			AddLogTable:          true,
			AddTempTable:         true,
			CustomWhereCondition: "operation_type IN ('LOGIN', 'LOGOUT', 'VIEW')",
			ProcedureComment:     "batch delete historical rows from user_operation_logs",
		},
		suggestions: []string{
			"keep important records such as logins and logouts",
			"adjust the frequency to the number of users",
			"consider deleting in batches by user id",
			"confirm the retention requirements first",
		},
	},
	BusinessDataCleanup: {
		order:       2,
		displayName: "Business data cleanup",
		description: "purge historical business rows such as orders and transactions",
		config: Config{
			ProcedureName:        "DropBusinessDataHistory",
			MainTableName:        "business_records",
			PrimaryKeyField:      "id",
			TimeField:            "created_at",
			LimitSize:            5000,
			CreateTimeEnd:        "2022-01-01 00:00:00",
			AddLogTable:          true,
			AddTempTable:         true,
			CustomWhereCondition: "status = 'COMPLETED'",
			ProcedureComment:     "batch delete historical business rows",
		},
		suggestions: []string{
			"only delete completed records",
			"run in small batches to avoid affecting traffic",
			"always back up the data first",
			"consider archiving instead of deleting",
		},
	},
	TempDataCleanup: {
		order:       3,
		displayName: "Temporary data cleanup",
		description: "purge expired rows from temporary and cache tables",
		config: Config{
			ProcedureName:        "DropTempDataHistory",
			MainTableName:        "temp_data",
			PrimaryKeyField:      "id",
			TimeField:            "expire_time",
			LimitSize:            10000,
			CreateTimeEnd:        "2023-01-01 00:00:00",
			AddLogTable:          false,
			AddTempTable:         false,
			CustomWhereCondition: "is_expired = 1",
			ProcedureComment:     "delete expired rows from temp_data",
		},
		suggestions: []string{
			"can be scheduled to run automatically",
			"can run frequently",
			"make sure the data is really disposable",
			"watch the impact on performance",
		},
	},
	AuditLogCleanup: {
		order:       4,
		displayName: "Audit log cleanup",
		description: "purge historical audit rows while keeping important records",
		config: Config{
			ProcedureName:        "DropAuditLogHistory",
			MainTableName:        "audit_logs",
			PrimaryKeyField:      "id",
			TimeField:            "audit_time",
			LimitSize:            1000,
			CreateTimeEnd:        "2022-01-01 00:00:00",
			AddLogTable:          true,
			AddTempTable:         true,
			CustomWhereCondition: "audit_level IN ('INFO', 'DEBUG')",
			ProcedureComment:     "batch delete historical rows from audit_logs",
		},
		suggestions: []string{
			"keep important audit records",
			"follow compliance requirements",
			"archive before deleting",
			"record the delete operation itself",
		},
	},
	CustomCleanup: {
		order:       5,
		displayName: "Custom",
		description: "configure every parameter manually",
		config: Config{
			ProcedureName:    "DropHistoryDataByLimit",
			MainTableName:    "your_table_name",
			PrimaryKeyField:  "id",
			TimeField:        "create_time",
			LimitSize:        1000,
			CreateTimeEnd:    "2023-01-01 00:00:00",
			AddLogTable:      true,
			AddTempTable:     true,
			ProcedureComment: DefaultProcedureComment,
		},
		suggestions: []string{
			"adjust the parameters to the workload",
			"verify in a test environment first",
			"try a small batch before a large one",
			"monitor the run and its results",
		},
	},
}

// Presets 所有预置，按固定顺序
func Presets() []Preset {
	out := make([]Preset, 0, len(presets))
	for p := range presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return presets[out[i]].order < presets[out[j]].order
	})
	return out
}

// ParsePreset 按名称查找预置，忽略大小写，允许使用 - 代替 _
func ParsePreset(name string) (Preset, error) {
	p := Preset(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), "-", "_")))
	if _, ok := presets[p]; !ok {
		return "", sqlerr.Configf("unknown preset %q", name)
	}
	return p, nil
}

// Config 预置配置的副本
func (p Preset) Config() Config {
	return presets[p].config
}

// DisplayName 显示名称
func (p Preset) DisplayName() string {
	return presets[p].displayName
}

// Description 适用场景
func (p Preset) Description() string {
	return presets[p].description
}

// Describe 预置的详细说明
func (p Preset) Describe() string {
	spec := presets[p]
	c := spec.config

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("preset: %s\n", spec.displayName))
	sb.WriteString(fmt.Sprintf("use case: %s\n", spec.description))
	sb.WriteString("\nparameters:\n")
	sb.WriteString(fmt.Sprintf("- procedure name: %s\n", c.ProcedureName))
	sb.WriteString(fmt.Sprintf("- main table: %s\n", c.MainTableName))
	sb.WriteString(fmt.Sprintf("- primary key: %s\n", c.PrimaryKeyField))
	sb.WriteString(fmt.Sprintf("- time field: %s\n", c.TimeField))
	sb.WriteString(fmt.Sprintf("- rows per batch: %d\n", c.LimitSize))
	sb.WriteString(fmt.Sprintf("- start id: %d\n", c.MinID))
	sb.WriteString(fmt.Sprintf("- end time: %s\n", c.CreateTimeEnd))
	sb.WriteString(fmt.Sprintf("- log table: %s\n", yesNo(c.AddLogTable)))
	sb.WriteString(fmt.Sprintf("- staging table: %s\n", yesNo(c.AddTempTable)))
	if c.CustomWhereCondition != "" {
		sb.WriteString(fmt.Sprintf("- extra condition: %s\n", c.CustomWhereCondition))
	}
	sb.WriteString(fmt.Sprintf("- comment: %s\n", c.ProcedureComment))
	return sb.String()
}

// UsageSuggestion 使用建议
func (p Preset) UsageSuggestion() string {
	var sb strings.Builder
	sb.WriteString("suggestions:\n")
	for i, s := range presets[p].suggestions {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, s))
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
