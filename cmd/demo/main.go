package main

import (
	"fmt"
	"log"
	"strings"

	"go-ysql/pkg/codegen"
	"go-ysql/pkg/procedure"
	"go-ysql/pkg/rewrite"
	"go-ysql/pkg/suffix"
	"go-ysql/pkg/toolkit"

	"go.uber.org/zap"
)

func main() {
	fmt.Println("=== go-ysql 演示程序 ===")
	fmt.Println("分表 SQL 改写、统计查询、构建器代码互转与分批删除存储过程")
	fmt.Println()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("创建日志失败: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	tk, err := toolkit.New(toolkit.WithLogger(logger))
	if err != nil {
		log.Fatalf("创建工具箱失败: %v", err)
	}

	demoSharding(tk)
	demoStatistics(tk)
	demoCodegen(tk)
	demoProcedure(tk)

	fmt.Println("=== 指标 ===")
	fmt.Print(tk.Metrics().Summary())
	fmt.Println("演示完成！")
}

func demoSharding(tk *toolkit.Toolkit) {
	fmt.Println("=== 1. 分表改写 ===")

	testCases := []struct {
		desc       string
		suffixType suffix.Type
		count      int
	}{
		{"数字序列后缀", suffix.Sequence, 3},
		{"按年分表", suffix.Year, 2},
		{"按月分表，跨年", suffix.YearMonth, 3},
	}

	sql := "SELECT o.id, i.sku FROM t_order o JOIN t_order_item i ON o.id = i.order_id WHERE o.user_id = 10"
	for i, tc := range testCases {
		cfg := rewrite.DefaultShardingConfig()
		cfg.TableNames = []string{"t_order", "t_order_item"}
		cfg.SuffixType = tc.suffixType
		cfg.ShardCount = tc.count
		cfg.StartYear = 2023
		cfg.StartMonth = 11
		cfg.OriginalSQL = sql

		fmt.Printf("%d. %s\n", i+1, tc.desc)
		result := tk.Shard(cfg)
		if !result.Success {
			log.Printf("   改写失败: %s", result.ErrorMessage)
			continue
		}
		for _, s := range result.ShardingSQLs {
			fmt.Printf("   %s\n", s)
		}
		fmt.Println()
	}
}

func demoStatistics(tk *toolkit.Toolkit) {
	fmt.Println("=== 2. 分表统计查询 ===")

	cfg := rewrite.DefaultShardingConfig()
	cfg.TableNames = []string{"t_order"}
	cfg.ShardCount = 3
	cfg.OriginalSQL = "SELECT COUNT(*) AS total, MAX(amount) AS top FROM t_order WHERE status = 'PAID'"

	result := tk.Statistics(cfg, map[string]rewrite.StatisticFunction{
		"COUNT(*)":    rewrite.Sum,
		"MAX(amount)": rewrite.Max,
	})
	if !result.Success {
		log.Printf("生成失败: %s", result.ErrorMessage)
		return
	}
	fmt.Println(result.StatisticsSQL)
	fmt.Println()
}

func demoCodegen(tk *toolkit.Toolkit) {
	fmt.Println("=== 3. SQL 与构建器代码互转 ===")

	sql := "SELECT u.id, u.name\nFROM users u\nWHERE u.status = 'ACTIVE'"
	for _, l := range codegen.Languages() {
		cfg := codegen.DefaultConfig()
		cfg.Language = l
		cfg.OriginalSQL = sql

		generated := tk.GenerateCode(cfg)
		if !generated.Success {
			log.Printf("%s 生成失败: %s", l.DisplayName(), generated.ErrorMessage)
			continue
		}

		reversed := tk.ReverseCode(generated.Code, "")
		fmt.Printf("- %s: %d 行代码，还原为 %s (%s)\n",
			l.DisplayName(), generated.LineCount, reversed.Language.DisplayName(), reversed.SQLType())
	}
	fmt.Println()

	cfg := codegen.DefaultConfig()
	cfg.Language = codegen.Kotlin
	cfg.OriginalSQL = sql
	fmt.Println(tk.GenerateCode(cfg).Code)
	fmt.Println()
}

func demoProcedure(tk *toolkit.Toolkit) {
	fmt.Println("=== 4. 分批删除存储过程 ===")

	for _, p := range procedure.Presets() {
		fmt.Printf("- %s: %s\n", p.DisplayName(), p.Description())
	}
	fmt.Println()

	cfg := procedure.UserOperationLogCleanup.Config()
	cfg.CreateTimeEnd = "2024-01-01 00:00:00"
	result := tk.GenerateProcedure(cfg)
	if !result.Success {
		log.Printf("生成失败: %s", result.ErrorMessage)
		return
	}
	fmt.Println(result.CallExample())
	fmt.Println(strings.TrimSpace(result.Procedure))
	fmt.Println()
}
