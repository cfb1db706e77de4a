package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go-ysql/pkg/config"
	"go-ysql/pkg/database"
	"go-ysql/pkg/toolkit"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configFile  string
	inputFile   string
	outputFile  string
	logLevel    string
	logFormat   string
	databaseArg string
	strictMode  bool
	showMetrics bool
)

// app 单次命令执行期间共享的状态
type app struct {
	logger  *zap.Logger
	request *config.RequestConfig
	toolkit *toolkit.Toolkit
}

var current *app

var rootCmd = &cobra.Command{
	Use:           "ysql",
	Short:         "SQL transformation toolkit for sharded schemas",
	Long:          "ysql rewrites SQL for sharded tables, builds UNION ALL statistics queries, converts SQL to and from builder code, and templates batch delete procedures.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		current = a
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if current == nil {
			return
		}
		if showMetrics {
			_, _ = fmt.Fprint(cmd.ErrOrStderr(), current.toolkit.Metrics().Summary())
		}
		_ = current.logger.Sync()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "YAML request file")
	flags.StringVarP(&inputFile, "file", "f", "", "read SQL or code from file instead of arguments or stdin")
	flags.StringVarP(&outputFile, "output", "o", "", "write the result to file instead of stdout")
	flags.StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	flags.StringVar(&logFormat, "log-format", config.LogFormatConsole, "log format: console or json")
	flags.StringVar(&databaseArg, "database", "", "target database for strict validation: "+supportedDatabases())
	flags.BoolVar(&strictMode, "strict", false, "validate SQL with a full parser before rewriting")
	flags.BoolVar(&showMetrics, "metrics", false, "print generation metrics to stderr")
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(cmd *cobra.Command) (*app, error) {
	req := &config.RequestConfig{}
	if configFile != "" {
		loaded, err := config.LoadFromYAML(configFile)
		if err != nil {
			return nil, err
		}
		// 表名、SQL 等可由命令行补齐，完整配置由生成器校验
		if err := loaded.ValidateSettings(); err != nil {
			return nil, err
		}
		req = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("database") {
		req.Database = databaseArg
	}
	if flags.Changed("strict") {
		req.Strict = strictMode
	}

	logger, err := buildLogger(req.Logging, flags.Changed("log-level"), flags.Changed("log-format"))
	if err != nil {
		return nil, err
	}

	opts := []toolkit.Option{toolkit.WithLogger(logger)}
	if check, err := flags.GetBool("check-identifiers"); err == nil && check {
		opts = append(opts, toolkit.WithProcedureIdentifierCheck())
	}

	tk, err := toolkit.FromRequest(req, opts...)
	if err != nil {
		return nil, err
	}

	logger.Debug("ysql started",
		zap.String("command", cmd.Name()),
		zap.String("config", configFile),
		zap.String("database", string(tk.DatabaseType())),
		zap.Bool("strict", tk.Strict()))

	return &app{logger: logger, request: req, toolkit: tk}, nil
}

// buildLogger 命令行参数优先，其次是请求文件中的 logging 段落
func buildLogger(section *config.LoggingConfig, levelSet, formatSet bool) (*zap.Logger, error) {
	cfg := config.LoggingConfig{Level: logLevel, Format: logFormat}
	if section != nil {
		if !levelSet && section.Level != "" {
			cfg.Level = section.Level
		}
		if !formatSet && section.Format != "" {
			cfg.Format = section.Format
		}
	}

	level, err := cfg.ZapLevel()
	if err != nil {
		return nil, err
	}

	var zc zap.Config
	switch cfg.Format {
	case config.LogFormatJSON:
		zc = zap.NewProductionConfig()
	case config.LogFormatConsole, "":
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return nil, fmt.Errorf("unsupported log format %q", cfg.Format)
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}

	return zc.Build()
}

// readInput 依次尝试 --file、命令参数、标准输入
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if inputFile != "" {
		data, err := os.ReadFile(inputFile)
		if err != nil {
			return "", fmt.Errorf("failed to read input file: %w", err)
		}
		return string(data), nil
	}

	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

// writeOutput 写入 --output 指定的文件或标准输出
func writeOutput(cmd *cobra.Command, text string) error {
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}

	if outputFile == "" {
		_, err := io.WriteString(cmd.OutOrStdout(), text)
		return err
	}

	if err := os.WriteFile(outputFile, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	current.logger.Info("result written", zap.String("file", outputFile))
	return nil
}

// supportedDatabases 帮助信息中列出的数据库名称
func supportedDatabases() string {
	return strings.Join(database.GlobalDatabaseTypeRegistry.GetSupportedNames(), ", ")
}
