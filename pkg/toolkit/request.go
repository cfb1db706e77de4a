package toolkit

import (
	"strings"

	"go-ysql/pkg/codegen"
	"go-ysql/pkg/config"
	"go-ysql/pkg/procedure"
	"go-ysql/pkg/rewrite"

	"go.uber.org/zap"
)

// Report 一个请求文件的全部结果，未出现的段落为 nil
type Report struct {
	Sharding   *rewrite.ShardingResult
	Statistics *rewrite.StatisticsResult
	Codegen    *codegen.Result
	Procedure  *procedure.Result
}

// Success 所有已执行段落均成功
func (r *Report) Success() bool {
	ok := true
	if r.Sharding != nil {
		ok = ok && r.Sharding.Success
	}
	if r.Statistics != nil {
		ok = ok && r.Statistics.Success
	}
	if r.Codegen != nil {
		ok = ok && r.Codegen.Success
	}
	if r.Procedure != nil {
		ok = ok && r.Procedure.Success
	}
	return ok
}

// String 各段落的格式化结果，以空行分隔
func (r *Report) String() string {
	var parts []string
	if r.Sharding != nil {
		parts = append(parts, r.Sharding.FormattedResult())
	}
	if r.Statistics != nil {
		parts = append(parts, r.Statistics.FormattedResult())
	}
	if r.Codegen != nil {
		if r.Codegen.Success {
			parts = append(parts, r.Codegen.Code)
		} else {
			parts = append(parts, r.Codegen.Statistics())
		}
	}
	if r.Procedure != nil {
		parts = append(parts, r.Procedure.FormattedResult())
	}
	return strings.Join(parts, "\n")
}

// Execute 依次执行请求文件中的各段落
//
// 段落转换失败（如未知的后缀类型）直接返回错误；生成失败体现在对应结果中。
func (t *Toolkit) Execute(req *config.RequestConfig) (*Report, error) {
	report := &Report{}

	if req.Sharding != nil {
		cfg, err := req.Sharding.ToShardingConfig()
		if err != nil {
			return nil, err
		}
		report.Sharding = t.Shard(cfg)

		if req.Statistics != nil {
			functions, err := req.Statistics.StatisticFunctions()
			if err != nil {
				return nil, err
			}
			report.Statistics = t.Statistics(cfg, functions)
		}
	}

	if req.Codegen != nil {
		cfg, err := req.Codegen.ToCodegenConfig()
		if err != nil {
			return nil, err
		}
		report.Codegen = t.GenerateCode(cfg)
	}

	if req.Procedure != nil {
		cfg, err := req.Procedure.Resolve()
		if err != nil {
			return nil, err
		}
		report.Procedure = t.GenerateProcedure(cfg)
	}

	t.logger.Debug("request executed", zap.Bool("success", report.Success()))
	return report, nil
}
