package main

import (
	"fmt"
	"strings"

	"go-ysql/pkg/config"
	"go-ysql/pkg/procedure"

	"github.com/spf13/cobra"
)

var (
	procedurePreset  string
	procedureSet     []string
	listPresets      bool
	procedureVerbose bool
)

var procedureCmd = &cobra.Command{
	Use:   "procedure",
	Short: "Generate a MySQL procedure that deletes historical rows in batches",
	Example: `  ysql procedure --preset audit-log-cleanup
  ysql procedure --set mainTableName=t_order --set createTimeEnd="2024-01-01 00:00:00" --set limitSize=500
  ysql procedure --list-presets`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if listPresets {
			return writeOutput(cmd, describePresets())
		}

		section := config.ProcedureSection{}
		if current.request.Procedure != nil {
			section = *current.request.Procedure
		}
		if cmd.Flags().Changed("preset") {
			section.Preset = procedurePreset
		}

		overrides, err := config.ParseSetFlags(procedureSet)
		if err != nil {
			return err
		}
		cfg, err := section.Resolve(overrides)
		if err != nil {
			return err
		}

		result := current.toolkit.GenerateProcedure(cfg)
		if !result.Success {
			return result.Err
		}

		if procedureVerbose {
			return writeOutput(cmd, result.FormattedResult())
		}
		return writeOutput(cmd, result.Procedure)
	},
}

// describePresets 全部预置配置的说明
func describePresets() string {
	var sb strings.Builder
	for _, p := range procedure.Presets() {
		sb.WriteString(fmt.Sprintf("%s (%s)\n", p, strings.ToLower(strings.ReplaceAll(string(p), "_", "-"))))
		sb.WriteString(p.Describe())
		sb.WriteString(p.UsageSuggestion())
		sb.WriteString("\n")
	}
	return sb.String()
}

func init() {
	flags := procedureCmd.Flags()
	flags.StringVarP(&procedurePreset, "preset", "p", "", "start from a preset, see --list-presets")
	flags.StringArrayVar(&procedureSet, "set", nil, "override a field as key=value, e.g. mainTableName=t_log or addTempTable=false")
	flags.BoolVar(&listPresets, "list-presets", false, "describe the available presets")
	flags.Bool("check-identifiers", false, "reject procedure, table and field names that are not plain identifiers")
	flags.BoolVarP(&procedureVerbose, "verbose", "v", false, "print the summary and call example before the procedure")

	rootCmd.AddCommand(procedureCmd)
}
