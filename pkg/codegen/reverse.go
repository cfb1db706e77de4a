package codegen

import (
	"regexp"
	"strings"

	"go-ysql/pkg/sqlerr"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// append 调用参数中的双引号或单引号字面量，支持反斜杠转义
const literalPattern = `(?:"((?:[^"\\]|\\.)*)"|'((?:[^'\\]|\\.)*)')`

var (
	appendPatterns = map[string]*regexp.Regexp{
		"append": regexp.MustCompile(`(?i)\.append\s*\(\s*` + literalPattern + `\s*\)`),
		"Append": regexp.MustCompile(`(?i)\.Append\s*\(\s*` + literalPattern + `\s*\)`),
	}

	declPatterns = func() map[Language]*regexp.Regexp {
		m := make(map[Language]*regexp.Regexp, len(languages))
		for l, s := range languages {
			m[l] = regexp.MustCompile(s.declPattern)
		}
		return m
	}()

	whitespaceRun = regexp.MustCompile(`\s+`)
	commaSpacing  = regexp.MustCompile(`\s*,\s*`)
	openParen     = regexp.MustCompile(`\s*\(\s*`)
	closeParen    = regexp.MustCompile(`\s*\)\s*`)
)

// DetectLanguage 根据代码特征判断语言，按顺序第一个命中的规则生效，默认 Java
func DetectLanguage(code string) Language {
	switch {
	case strings.Contains(code, "StringBuilder") && strings.Contains(code, "Append("):
		return CSharp
	case strings.Contains(code, "StringBuilder") && strings.Contains(code, "append("):
		return Kotlin
	case strings.Contains(code, "StringBuffer"):
		return Java
	case strings.Contains(code, "val ") && strings.Contains(code, "StringBuilder"):
		return Scala
	case strings.Contains(code, "def ") && strings.Contains(code, "StringBuilder"):
		return Groovy
	default:
		return Java
	}
}

// ContainsStringBuffer 代码中是否出现 StringBuffer 或 StringBuilder
func ContainsStringBuffer(code string) bool {
	return strings.Contains(code, "StringBuffer") || strings.Contains(code, "StringBuilder")
}

// Reverse 从构建器代码中提取 SQL；language 为空时自动检测
func (g *Generator) Reverse(code string, language Language) *ReverseResult {
	if language == "" {
		language = DetectLanguage(code)
	}

	logger := g.logger.With(zap.String("language", string(language)))
	logger.Debug("reverse parsing builder code")

	result := &ReverseResult{
		Language:  language,
		ParseTime: g.now(),
	}

	fragments, err := extractFragments(code, language)
	if err != nil {
		logger.Warn("reverse parse failed", zap.String("kind", string(sqlerr.KindOf(err))), zap.Error(err))
		result.Err = err
		result.ErrorMessage = sqlerr.Message(err)
		return result
	}

	result.Success = true
	result.Fragments = fragments
	result.SQL = strings.TrimSpace(strings.Join(fragments, " "))

	logger.Debug("reverse parse finished", zap.Int("fragments", len(fragments)))
	return result
}

// ParseSQLFromCode 使用默认生成器反向解析
func ParseSQLFromCode(code string, language Language) *ReverseResult {
	return NewGenerator().Reverse(code, language)
}

func extractFragments(code string, language Language) (fragments []string, err error) {
	defer sqlerr.Recover(&err, "reverse parse builder code")

	if strings.TrimSpace(code) == "" {
		return nil, sqlerr.Configf("code must not be blank")
	}

	pattern := appendPatterns[language.AppendMethod()]
	for _, line := range strings.Split(code, "\n") {
		for _, m := range pattern.FindAllStringSubmatchIndex(line, -1) {
			// m[2:4] 为双引号字面量，m[4:6] 为单引号字面量
			var literal string
			if m[2] >= 0 {
				literal = line[m[2]:m[3]]
			} else {
				literal = line[m[4]:m[5]]
			}

			fragment := unescape(literal)
			if strings.TrimSpace(fragment) == "" {
				continue
			}
			fragments = append(fragments, fragment)
		}
	}

	if len(fragments) == 0 {
		return nil, sqlerr.Parsef("no %s(...) string literal found in code", language.AppendMethod())
	}
	return fragments, nil
}

// ExtractVariableNames 按语言的声明形式提取构建器变量名，去重并保持顺序
func ExtractVariableNames(code string, language Language) []string {
	pattern, ok := declPatterns[language]
	if !ok {
		pattern = declPatterns[Java]
	}

	var names []string
	for _, line := range strings.Split(code, "\n") {
		if m := pattern.FindStringSubmatch(line); m != nil {
			names = append(names, m[1])
		}
	}
	return lo.Uniq(names)
}

// FormatSQL 规整空白、逗号与括号周围的空格
func FormatSQL(sql string) string {
	sql = whitespaceRun.ReplaceAllString(sql, " ")
	sql = commaSpacing.ReplaceAllString(sql, ", ")
	sql = openParen.ReplaceAllString(sql, " (")
	sql = closeParen.ReplaceAllString(sql, ") ")
	return strings.TrimSpace(sql)
}

// unescape 还原字面量中的反斜杠转义
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			sb.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		default:
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}
