package main

import (
	"fmt"
	"strings"

	"go-ysql/pkg/config"
	"go-ysql/pkg/rewrite"
	"go-ysql/pkg/sqlerr"
	"go-ysql/pkg/suffix"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// shardingFlags 分表相关命令共用的参数
type shardingFlags struct {
	tables       []string
	suffixType   string
	suffixFormat string
	count        int
	startYear    int
	startMonth   int
}

func (f *shardingFlags) register(fs *pflag.FlagSet) {
	fs.StringSliceVarP(&f.tables, "tables", "t", nil, "tables to suffix (comma separated); defaults to every table found in the SQL")
	fs.StringVar(&f.suffixType, "suffix-type", string(suffix.Sequence), "suffix type: SEQUENCE, YEAR, YEAR_MONTH, CUSTOM")
	fs.StringVar(&f.suffixFormat, "suffix-format", suffix.DefaultFormat, "suffix separator, or a pattern with {index} for CUSTOM")
	fs.IntVarP(&f.count, "count", "n", rewrite.DefaultShardCount, fmt.Sprintf("number of shards (1-%d)", rewrite.MaxShardCount))
	fs.IntVar(&f.startYear, "start-year", suffix.DefaultStartYear, "first year for YEAR and YEAR_MONTH suffixes")
	fs.IntVar(&f.startMonth, "start-month", suffix.DefaultStartMonth, "first month for YEAR_MONTH suffixes")
}

// shardingConfig 以请求文件的 sharding 段落为底，命令行显式指定的参数覆盖之
func (f *shardingFlags) shardingConfig(cmd *cobra.Command, args []string) (rewrite.ShardingConfig, error) {
	section := &config.ShardingSection{}
	if current.request.Sharding != nil {
		s := *current.request.Sharding
		section = &s
	}

	flags := cmd.Flags()
	if flags.Changed("tables") {
		section.Tables = f.tables
	}
	if flags.Changed("suffix-type") || section.SuffixType == "" {
		section.SuffixType = f.suffixType
	}
	if flags.Changed("suffix-format") || section.SuffixFormat == "" {
		section.SuffixFormat = f.suffixFormat
	}
	if flags.Changed("count") || section.ShardCount == 0 {
		section.ShardCount = f.count
	}
	if flags.Changed("start-year") || section.StartYear == 0 {
		section.StartYear = f.startYear
	}
	if flags.Changed("start-month") || section.StartMonth == 0 {
		section.StartMonth = f.startMonth
	}

	sql, err := sqlInput(cmd, args, section.SQL)
	if err != nil {
		return rewrite.ShardingConfig{}, err
	}
	section.SQL = sql

	cfg, err := section.ToShardingConfig()
	if err != nil {
		return cfg, err
	}

	if len(cfg.TableNames) == 0 {
		extracted := current.toolkit.ExtractTables(cfg.OriginalSQL)
		if !extracted.Success {
			return cfg, extracted.Err
		}
		cfg.TableNames = extracted.TableNames
	}
	return cfg, nil
}

// sqlInput 没有 --file 与参数时使用请求文件中的 SQL
func sqlInput(cmd *cobra.Command, args []string, fallback string) (string, error) {
	if inputFile == "" && len(args) == 0 && strings.TrimSpace(fallback) != "" {
		return fallback, nil
	}
	return readInput(cmd, args)
}

var shardOpts shardingFlags

var shardCmd = &cobra.Command{
	Use:   "shard [sql]",
	Short: "Rewrite a statement into one variant per shard",
	Example: `  ysql shard -t t_order -n 4 "SELECT * FROM t_order WHERE id = 1"
  ysql shard --suffix-type YEAR_MONTH --start-year 2023 --start-month 11 -n 3 -f query.sql`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := shardOpts.shardingConfig(cmd, args)
		if err != nil {
			return err
		}

		result := current.toolkit.Shard(cfg)
		if !result.Success {
			return result.Err
		}

		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			return writeOutput(cmd, result.FormattedResult())
		}
		return writeOutput(cmd, result.CombinedSQL())
	},
}

var previewOpts shardingFlags

var previewCmd = &cobra.Command{
	Use:   "preview [sql]",
	Short: "Show the suffixed table names a shard run would produce",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := previewOpts.shardingConfig(cmd, args)
		if err != nil {
			return err
		}

		preview, err := current.toolkit.Preview(cfg)
		if err != nil {
			return err
		}
		return writeOutput(cmd, preview)
	},
}

var statsOpts shardingFlags

var statsCmd = &cobra.Command{
	Use:   "stats [sql]",
	Short: "Build a UNION ALL statistics query across all shards",
	Example: `  ysql stats -t t_order -n 3 --func "COUNT(*)=SUM" --func "MAX(amount)=MAX" \
    "SELECT COUNT(*), MAX(amount) FROM t_order"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := statsOpts.shardingConfig(cmd, args)
		if err != nil {
			return err
		}

		functions, err := statisticFunctions(cmd)
		if err != nil {
			return err
		}

		result := current.toolkit.Statistics(cfg, functions)
		if !result.Success {
			return result.Err
		}

		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			return writeOutput(cmd, result.FormattedResult())
		}
		return writeOutput(cmd, result.StatisticsSQL)
	},
}

// statisticFunctions 合并请求文件与 --func 参数；--func 优先
func statisticFunctions(cmd *cobra.Command) (map[string]rewrite.StatisticFunction, error) {
	functions := map[string]rewrite.StatisticFunction{}
	if current.request.Statistics != nil {
		fromFile, err := current.request.Statistics.StatisticFunctions()
		if err != nil {
			return nil, err
		}
		for k, v := range fromFile {
			functions[k] = v
		}
	}

	pairs, _ := cmd.Flags().GetStringArray("func")
	for _, pair := range pairs {
		// 表达式中可能含有 =，以最后一个 = 分隔
		i := strings.LastIndex(pair, "=")
		if i <= 0 {
			return nil, sqlerr.Configf("invalid --func %q, expected expression=FUNCTION", pair)
		}
		f, err := rewrite.ParseStatisticFunction(pair[i+1:])
		if err != nil {
			return nil, err
		}
		functions[strings.TrimSpace(pair[:i])] = f
	}
	return functions, nil
}

func init() {
	shardOpts.register(shardCmd.Flags())
	shardCmd.Flags().BoolP("verbose", "v", false, "print a summary before the statements")

	previewOpts.register(previewCmd.Flags())

	statsOpts.register(statsCmd.Flags())
	statsCmd.Flags().StringArray("func", nil, "statistic function per select expression, e.g. \"COUNT(*)=SUM\" (default SUM)")
	statsCmd.Flags().BoolP("verbose", "v", false, "print a summary before the statement")

	rootCmd.AddCommand(shardCmd, previewCmd, statsCmd)
}
