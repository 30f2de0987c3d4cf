package template

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"
)

var globalFuncs = map[string]interface{}{
	"Env": func(name string) string {
		return os.Getenv(name)
	},
	"Default": func(defaultValue string, value string) string {
		if value == "" {
			return defaultValue
		}
		return value
	},
	"Trim": func(s string) string {
		return strings.Trim(s, " 　\t\r\n")
	},
	"TrimSuffix": func(suffix, s string) string {
		return strings.TrimSuffix(s, suffix)
	},
}

func evaluate(templateStr string, ctx *TemplateContext) (string, error) {
	parsed, err := template.New("template-string").Funcs(globalFuncs).Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("cannot parse template: %w", err)
	}

	var buf = new(bytes.Buffer)
	if err := parsed.Execute(buf, ctx.flatten()); err != nil {
		return "", fmt.Errorf("cannot evaluate: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}
