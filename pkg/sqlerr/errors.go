// Package sqlerr 定义 SQL 转换引擎的错误分类。
//
// 所有生成器内部的失败都会归入三类之一：配置错误、解析错误、意外错误。
// 分类通过 cockroachdb/errors 的 Mark 机制附着在错误链上，调用方使用 KindOf 或 errors.Is 判断。
package sqlerr

import (
	"fmt"
	"regexp"

	"github.com/cockroachdb/errors"
)

// Kind 错误类别
type Kind string

const (
	KindNone          Kind = ""
	KindConfiguration Kind = "configuration"
	KindParse         Kind = "parse"
	KindUnexpected    Kind = "unexpected"
)

// 分类标记，仅用于 errors.Is 比较
var (
	ErrConfiguration = errors.New("configuration error")
	ErrParse         = errors.New("parse error")
	ErrUnexpected    = errors.New("unexpected error")
)

var controlChars = regexp.MustCompile(`[\x00-\x1F\x7F]`)

// Configf 创建配置错误
func Configf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrConfiguration)
}

// Parsef 创建解析错误
func Parsef(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrParse)
}

// WrapParse 将底层错误包装为解析错误
func WrapParse(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Mark(errors.Wrap(err, msg), ErrParse)
}

// Unexpected 将任意错误标记为意外错误
func Unexpected(err error) error {
	if err == nil {
		return nil
	}
	return errors.Mark(err, ErrUnexpected)
}

// KindOf 获取错误类别，未分类的非空错误视为意外错误
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrConfiguration):
		return KindConfiguration
	case errors.Is(err, ErrParse):
		return KindParse
	default:
		return KindUnexpected
	}
}

// IsConfiguration 是否为配置错误
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsParse 是否为解析错误
func IsParse(err error) bool {
	return errors.Is(err, ErrParse)
}

// Sanitize 移除消息中的控制字符
func Sanitize(msg string) string {
	return controlChars.ReplaceAllString(msg, "")
}

// Message 返回可直接展示给用户的错误消息
func Message(err error) string {
	if err == nil {
		return ""
	}
	return Sanitize(err.Error())
}

// Recover 在 defer 中使用，把 panic 转换为意外错误写入 errp。
//
//	defer sqlerr.Recover(&err, "generate sharding sql")
func Recover(errp *error, op string) {
	r := recover()
	if r == nil {
		return
	}
	var cause error
	switch v := r.(type) {
	case error:
		cause = v
	default:
		cause = fmt.Errorf("%v", v)
	}
	*errp = Unexpected(errors.Wrapf(cause, "%s failed", op))
}
