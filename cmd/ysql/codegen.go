package main

import (
	"fmt"
	"strings"

	"go-ysql/pkg/codegen"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var (
	codegenLanguage   string
	codegenVariable   string
	codegenNoComments bool
	reverseLanguage   string
)

var codegenCmd = &cobra.Command{
	Use:   "codegen [sql]",
	Short: "Convert SQL into string builder code",
	Example: `  ysql codegen --lang kotlin --var query "SELECT * FROM users WHERE id = 1"
  ysql codegen --lang java -f report.sql -o Report.java`,
	RunE: func(cmd *cobra.Command, args []string) error {
		section := current.request.Codegen
		cfg := codegen.DefaultConfig()
		if section != nil {
			c, err := section.ToCodegenConfig()
			if err != nil {
				return err
			}
			cfg = c
		}

		flags := cmd.Flags()
		if flags.Changed("lang") || section == nil || section.Language == "" {
			l, err := codegen.ParseLanguage(codegenLanguage)
			if err != nil {
				return err
			}
			cfg.Language = l
		}
		if flags.Changed("var") {
			cfg.VariableName = codegenVariable
		}
		if codegenNoComments {
			cfg.AddComments = false
		}

		fallback := ""
		if section != nil {
			fallback = section.SQL
		}
		sql, err := sqlInput(cmd, args, fallback)
		if err != nil {
			return err
		}
		cfg.OriginalSQL = sql

		result := current.toolkit.GenerateCode(cfg)
		if !result.Success {
			return result.Err
		}
		return writeOutput(cmd, result.Code)
	},
}

var reverseCmd = &cobra.Command{
	Use:   "reverse [code]",
	Short: "Extract the SQL held in string builder code",
	Long:  "Extract the SQL held in string builder code. The language is detected from the code unless --lang is given.",
	RunE: func(cmd *cobra.Command, args []string) error {
		code, err := readInput(cmd, args)
		if err != nil {
			return err
		}

		var language codegen.Language
		if reverseLanguage != "" {
			language, err = codegen.ParseLanguage(reverseLanguage)
			if err != nil {
				return err
			}
		}

		result := current.toolkit.ReverseCode(code, language)
		if !result.Success {
			return result.Err
		}

		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			return writeOutput(cmd, result.Statistics()+"\n"+result.FormattedResult())
		}
		return writeOutput(cmd, result.SQL)
	},
}

var templateCmd = &cobra.Command{
	Use:   "template [language]",
	Short: "Print an example of the code generated for a language",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return writeOutput(cmd, strings.Join(lo.Map(codegen.Languages(), func(l codegen.Language, _ int) string {
				return codegen.Template(l)
			}), "\n"))
		}

		l, err := codegen.ParseLanguage(args[0])
		if err != nil {
			return err
		}
		return writeOutput(cmd, codegen.Template(l))
	},
}

func languageNames() string {
	return strings.Join(lo.Map(codegen.Languages(), func(l codegen.Language, _ int) string {
		return strings.ToLower(string(l))
	}), ", ")
}

func init() {
	codegenCmd.Flags().StringVarP(&codegenLanguage, "lang", "l", "java", fmt.Sprintf("target language: %s", languageNames()))
	codegenCmd.Flags().StringVar(&codegenVariable, "var", codegen.DefaultVariableName, "builder variable name")
	codegenCmd.Flags().BoolVar(&codegenNoComments, "no-comments", false, "omit the generated header comment")

	reverseCmd.Flags().StringVarP(&reverseLanguage, "lang", "l", "", fmt.Sprintf("source language (%s); detected when empty", languageNames()))
	reverseCmd.Flags().BoolP("verbose", "v", false, "print the parse summary and fragments")

	rootCmd.AddCommand(codegenCmd, reverseCmd, templateCmd)
}
