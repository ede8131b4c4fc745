package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/de-tools/soc-atlas/pkg/models/domain"
	"github.com/de-tools/soc-atlas/pkg/viewer"
)

type TableConfig struct {
	LabelWidth int
	ValueWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		LabelWidth: 14,
		ValueWidth: 60,
	}
}

type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

type reportView struct {
	Title    string
	Position int
	Total    int
	Summary  []viewer.Field
	Sections []sectionView
}

type sectionView struct {
	Label string
	Items []string
}

const reportTemplate = `
{{.Title}} ({{.Position}} of {{.Total}})

{{separator}}
{{range .Summary}}{{formatRow .Label .Value}}
{{end}}{{separator}}
{{range .Sections}}
=== {{.Label}} ({{len .Items}}) ===
{{range .Items}}- {{indent .}}
{{else}}(none)
{{end}}{{end}}`

// Handle prints report with every section expanded. position is 1-based.
func (c *Reporter) Handle(report domain.SOCReport, position, total int) error {
	v := viewer.NewReady([]domain.SOCReport{report})

	data := reportView{
		Title:    v.Title(),
		Position: position,
		Total:    total,
		Summary:  v.Summary(),
	}
	for i, category := range viewer.Categories {
		data.Sections = append(data.Sections, sectionView{
			Label: category.Label,
			Items: v.SectionItems(i),
		})
	}

	funcMap := template.FuncMap{
		"formatRow": func(label, value string) string {
			if value == "" {
				value = "-"
			}
			return fmt.Sprintf("| %-*s | %-*s |",
				c.config.LabelWidth, label,
				c.config.ValueWidth, value)
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+",
				strings.Repeat("-", c.config.LabelWidth+2),
				strings.Repeat("-", c.config.ValueWidth+2))
		},
		"indent": func(s string) string {
			return strings.ReplaceAll(s, "\n", "\n  ")
		},
	}

	t, err := template.New("report").Funcs(funcMap).Parse(reportTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, data)
}
