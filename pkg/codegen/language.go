// Package codegen 在 SQL 与字符串构建器代码之间互相转换。
//
// 正向：把多行 SQL 转成 StringBuffer/StringBuilder 的 append 代码；
// 反向：从 append 代码中提取字符串字面量，拼回 SQL。
// 五种语言的差异全部集中在 languages 表中。
package codegen

import (
	"sort"
	"strings"

	"go-ysql/pkg/sqlerr"
)

// Language 目标语言
type Language string

const (
	Java   Language = "JAVA"
	CSharp Language = "CSHARP"
	Kotlin Language = "KOTLIN"
	Scala  Language = "SCALA"
	Groovy Language = "GROOVY"
)

// languageSpec 语言的代码形态
type languageSpec struct {
	displayName    string
	bufferClass    string
	toStringMethod string
	fileExtension  string
	commentSymbol  string
	appendMethod   string
	declareFormat  string // %[1]s 为变量名
	appendFormat   string // %[1]s 为变量名，%[2]s 为转义后的字面量内容
	finalFormat    string // %[1]s 为最终变量名，%[2]s 为构建器变量名
	escapeDollar   bool   // 双引号字符串中 $ 是否会被插值
	declPattern    string // 反向解析时识别构建器变量的正则
}

var languages = map[Language]languageSpec{
	Java: {
		displayName:    "Java",
		bufferClass:    "StringBuffer",
		toStringMethod: "toString()",
		fileExtension:  "java",
		commentSymbol:  "//",
		appendMethod:   "append",
		declareFormat:  "StringBuffer %[1]s = new StringBuffer();",
		appendFormat:   `%[1]s.append("%[2]s");`,
		finalFormat:    "String %[1]s = %[2]s.toString();",
		declPattern:    `StringBuffer\s+(\w+)\s*=`,
	},
	CSharp: {
		displayName:    "C#",
		bufferClass:    "StringBuilder",
		toStringMethod: "ToString()",
		fileExtension:  "cs",
		commentSymbol:  "//",
		appendMethod:   "Append",
		declareFormat:  "StringBuilder %[1]s = new StringBuilder();",
		appendFormat:   `%[1]s.Append("%[2]s");`,
		finalFormat:    "string %[1]s = %[2]s.ToString();",
		declPattern:    `StringBuilder\s+(\w+)\s*=`,
	},
	Kotlin: {
		displayName:    "Kotlin",
		bufferClass:    "StringBuilder",
		toStringMethod: "toString()",
		fileExtension:  "kt",
		commentSymbol:  "//",
		appendMethod:   "append",
		declareFormat:  "val %[1]s = StringBuilder()",
		appendFormat:   `%[1]s.append("%[2]s")`,
		finalFormat:    "val %[1]s = %[2]s.toString()",
		escapeDollar:   true,
		declPattern:    `val\s+(\w+)\s*=\s*StringBuilder`,
	},
	Scala: {
		displayName:    "Scala",
		bufferClass:    "StringBuilder",
		toStringMethod: "toString()",
		fileExtension:  "scala",
		commentSymbol:  "//",
		appendMethod:   "append",
		declareFormat:  "val %[1]s = new StringBuilder()",
		appendFormat:   `%[1]s.append("%[2]s")`,
		finalFormat:    "val %[1]s = %[2]s.toString()",
		declPattern:    `val\s+(\w+)\s*=\s*new\s+StringBuilder`,
	},
	Groovy: {
		displayName:    "Groovy",
		bufferClass:    "StringBuilder",
		toStringMethod: "toString()",
		fileExtension:  "groovy",
		commentSymbol:  "//",
		appendMethod:   "append",
		declareFormat:  "def %[1]s = new StringBuilder()",
		appendFormat:   `%[1]s.append("%[2]s")`,
		finalFormat:    "def %[1]s = %[2]s.toString()",
		escapeDollar:   true,
		declPattern:    `def\s+(\w+)\s*=\s*new\s+StringBuilder`,
	},
}

// 语言名称别名
var languageAliases = map[string]Language{
	"java":   Java,
	"c#":     CSharp,
	"cs":     CSharp,
	"csharp": CSharp,
	"kotlin": Kotlin,
	"kt":     Kotlin,
	"scala":  Scala,
	"groovy": Groovy,
}

// Languages 支持的全部语言，按固定顺序
func Languages() []Language {
	return []Language{Java, CSharp, Kotlin, Scala, Groovy}
}

// ParseLanguage 按名称或扩展名解析语言，大小写不敏感
func ParseLanguage(name string) (Language, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if l, ok := languageAliases[key]; ok {
		return l, nil
	}
	if _, ok := languages[Language(strings.ToUpper(key))]; ok {
		return Language(strings.ToUpper(key)), nil
	}

	names := make([]string, 0, len(languageAliases))
	for alias := range languageAliases {
		names = append(names, alias)
	}
	sort.Strings(names)
	return "", sqlerr.Configf("unsupported language %q, expected one of %s", name, strings.Join(names, ", "))
}

func (l Language) spec() languageSpec {
	if s, ok := languages[l]; ok {
		return s
	}
	return languages[Java]
}

// Valid 是否为已知语言
func (l Language) Valid() bool {
	_, ok := languages[l]
	return ok
}

func (l Language) DisplayName() string    { return l.spec().displayName }
func (l Language) BufferClass() string    { return l.spec().bufferClass }
func (l Language) ToStringMethod() string { return l.spec().toStringMethod }
func (l Language) FileExtension() string  { return l.spec().fileExtension }
func (l Language) CommentSymbol() string  { return l.spec().commentSymbol }
func (l Language) AppendMethod() string   { return l.spec().appendMethod }

// Escape 把一行 SQL 转义为该语言双引号字符串的内容
func (l Language) Escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	if l.spec().escapeDollar {
		s = strings.ReplaceAll(s, `$`, `\$`)
	}
	return s
}
