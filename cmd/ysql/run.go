package main

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:     "run",
	Short:   "Execute every section of a request file",
	Example: `  ysql run -c request.yaml -o result.txt`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if configFile == "" {
			return errors.New("run requires a request file, pass it with --config")
		}

		report, err := current.toolkit.Execute(current.request)
		if err != nil {
			return err
		}

		if err := writeOutput(cmd, report.String()); err != nil {
			return err
		}
		if !report.Success() {
			current.logger.Warn("request finished with failures", zap.String("config", configFile))
			return errors.New("one or more sections failed, see the output for details")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
