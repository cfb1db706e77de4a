package codegen

import (
	"regexp"
	"strings"

	"go-ysql/pkg/sqlerr"
)

var stringLiteral = regexp.MustCompile(`"(?:[^"\\]|\\.)*"|'(?:[^'\\]|\\.)*'`)

// syntaxCheck 检查代码骨架，返回发现的问题
type syntaxCheck func(code string) []string

var syntaxChecks = map[Language]syntaxCheck{
	Java:   checkJava,
	CSharp: checkCSharp,
	Kotlin: checkKotlin,
	Scala:  checkScala,
	Groovy: checkGroovy,
}

// ValidateGeneratedCode 对生成的代码做语言级的形态检查
//
// 检查前先去掉注释行和字符串字面量内容，SQL 文本不会影响结果。
func ValidateGeneratedCode(code string, l Language) error {
	check, ok := syntaxChecks[l]
	if !ok {
		return sqlerr.Configf("unsupported language %q", l)
	}

	problems := check(skeleton(code))
	if len(problems) > 0 {
		return sqlerr.Parsef("%s syntax check failed: %s", l.DisplayName(), strings.Join(problems, ", "))
	}
	return nil
}

// skeleton 去掉注释行并清空字符串字面量
func skeleton(code string) string {
	lines := strings.Split(code, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "//") {
			continue
		}
		kept = append(kept, stringLiteral.ReplaceAllString(line, `""`))
	}
	return strings.Join(kept, "\n")
}

func checkJava(code string) []string {
	var problems []string

	if !strings.Contains(code, "StringBuffer") && !strings.Contains(code, "StringBuilder") {
		problems = append(problems, "missing StringBuffer or StringBuilder declaration")
	}
	if !strings.Contains(code, "new ") {
		problems = append(problems, "missing new keyword")
	}

	for _, line := range strings.Split(code, "\n") {
		trimmed := strings.TrimSpace(line)
		needsSemicolon := strings.Contains(trimmed, "StringBuffer") ||
			strings.Contains(trimmed, "StringBuilder") ||
			strings.Contains(trimmed, "append") ||
			strings.Contains(trimmed, "String final")
		if needsSemicolon && !strings.HasSuffix(trimmed, ";") {
			problems = append(problems, "statement missing semicolon: "+trimmed)
		}
	}

	return problems
}

func checkCSharp(code string) []string {
	var problems []string

	if !strings.Contains(code, "StringBuilder") {
		problems = append(problems, "missing StringBuilder declaration")
	}
	if strings.Contains(code, ".append(") {
		problems = append(problems, "use Append instead of append")
	}
	if strings.Contains(code, "String final") {
		problems = append(problems, "use string instead of String")
	}

	return problems
}

func checkKotlin(code string) []string {
	var problems []string

	if !strings.Contains(code, "val ") {
		problems = append(problems, "missing val keyword")
	}
	if strings.Contains(code, "new ") {
		problems = append(problems, "new keyword is not used in Kotlin")
	}
	if strings.Contains(code, ";") {
		problems = append(problems, "semicolons are not used in Kotlin")
	}

	return problems
}

func checkScala(code string) []string {
	var problems []string

	if !strings.Contains(code, "val ") {
		problems = append(problems, "missing val keyword")
	}
	if !strings.Contains(code, "new ") {
		problems = append(problems, "missing new keyword")
	}

	return problems
}

func checkGroovy(code string) []string {
	if !strings.Contains(code, "def ") {
		return []string{"missing def keyword"}
	}
	return nil
}
