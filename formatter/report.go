package formatter

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	tt "github.com/gnoswap-labs/selparse/internal/types"
)

const reportTemplate = `{{- if .Filename}}{{header .Filename}}
{{end -}}
{{tree .}}{{position .Position .Total}}
{{- if not .Complete}}
{{diagnostic .Diagnostic}}{{end}}
`

var reportTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"header":     header,
	"tree":       formatReportTree,
	"position":   position,
	"diagnostic": diagnostic,
}).Parse(reportTemplate))

// FormatReport renders one parse report: a file header when the report came
// from a file, the parse tree, the cursor position and, for an incomplete
// parse, the diagnostic.
func FormatReport(report *tt.Report) string {
	var buf bytes.Buffer
	if err := reportTmpl.Execute(&buf, report); err != nil {
		return fmt.Sprintf("Error formatting report: %v", err)
	}
	return buf.String()
}

// FormatReports renders reports separated by blank lines.
func FormatReports(reports []*tt.Report) string {
	parts := make([]string, 0, len(reports))
	for _, r := range reports {
		parts = append(parts, FormatReport(r))
	}
	return strings.Join(parts, "\n")
}

// utils functions used in the text template

func header(filename string) string {
	return positionStyle.Sprint("--> ") + fileStyle.Sprint(filename)
}

func formatReportTree(r *tt.Report) string {
	return FormatTree(r.Tree)
}

func position(pos, total int) string {
	style := successStyle
	if pos != total {
		style = errorStyle
	}
	return "Current position is " + style.Sprintf("%d of %d", pos, total)
}

func diagnostic(msg string) string {
	return errorStyle.Sprint("error: ") + msg
}
