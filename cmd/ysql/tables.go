package main

import (
	"strings"

	"github.com/spf13/cobra"
)

var tablesCmd = &cobra.Command{
	Use:   "tables [sql]",
	Short: "Validate a statement and list the tables it references",
	RunE: func(cmd *cobra.Command, args []string) error {
		sql, err := readInput(cmd, args)
		if err != nil {
			return err
		}

		result := current.toolkit.ExtractTables(sql)
		if !result.Success {
			return result.Err
		}

		if stats, _ := cmd.Flags().GetBool("stats"); stats {
			return writeOutput(cmd, current.toolkit.ExtractionStatistics(sql))
		}
		return writeOutput(cmd, strings.Join(result.TableNames, "\n"))
	},
}

func init() {
	tablesCmd.Flags().Bool("stats", false, "print reference counts instead of the bare table list")
	rootCmd.AddCommand(tablesCmd)
}
