package rewrite

import (
	"time"

	"go-ysql/pkg/parser"

	"go.uber.org/zap"
)

// Option 生成器选项
type Option func(*options)

type options struct {
	logger    *zap.Logger
	validator parser.Validator
	now       func() time.Time
}

func newOptions(opts []Option) *options {
	o := &options{
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger 设置日志
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithStrictValidator 在基础校验之后追加 AST 严格校验
func WithStrictValidator(v parser.Validator) Option {
	return func(o *options) {
		o.validator = v
	}
}

// WithClock 设置时钟，用于生成时间与 field_ 别名
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}
