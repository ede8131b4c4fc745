package viewer

import (
	"fmt"
	"strings"

	"github.com/de-tools/soc-atlas/pkg/models/domain"
)

// Category is one collapsible section of a report.
type Category struct {
	Key   string
	Label string
	items func(r domain.SOCReport) []string
}

// Items lists what the section shows for the given report.
func (c Category) Items(r domain.SOCReport) []string {
	return c.items(r)
}

// Categories are rendered in this order for every report.
var Categories = []Category{
	{
		Key:   "third-party",
		Label: "Third-Party Service Providers",
		items: func(r domain.SOCReport) []string { return r.ThirdPartyServiceProviders },
	},
	{
		Key:   "subservice",
		Label: "Subservice Providers",
		items: func(r domain.SOCReport) []string { return r.SubserviceProviders },
	},
	{
		Key:   "services",
		Label: "Services Provided",
		items: func(r domain.SOCReport) []string {
			items := make([]string, 0, len(r.ServicesProvided))
			for _, s := range r.ServicesProvided {
				items = append(items, labeled(s.Service, s.Description))
			}
			return items
		},
	},
	{
		Key:   "control-numbers",
		Label: "Control Numbers",
		items: func(r domain.SOCReport) []string { return r.ControlNumbers },
	},
	{
		Key:   "control-objectives",
		Label: "Control Objectives",
		items: func(r domain.SOCReport) []string {
			items := make([]string, 0, len(r.ControlObjectives))
			for _, o := range r.ControlObjectives {
				items = append(items, labeled(o.ID, o.Objective))
			}
			return items
		},
	},
	{
		Key:   "control-descriptions",
		Label: "Control Descriptions",
		items: func(r domain.SOCReport) []string {
			items := make([]string, 0, len(r.ControlDescriptions))
			for _, d := range r.ControlDescriptions {
				items = append(items, labeled(d.Number, d.Description))
			}
			return items
		},
	},
	{
		Key:   "reports-in-scope",
		Label: "Reports in Scope",
		items: func(r domain.SOCReport) []string {
			items := make([]string, 0, len(r.ReportsInScope))
			for _, ref := range r.ReportsInScope {
				items = append(items, reference(ref))
			}
			return items
		},
	},
	{
		Key:   "control-exceptions",
		Label: "Control Exceptions",
		items: func(r domain.SOCReport) []string {
			if strings.TrimSpace(r.ControlExceptions) == "" {
				return []string{}
			}
			return []string{r.ControlExceptions}
		},
	},
	{
		Key:   "cuec",
		Label: "CUEC Descriptions",
		items: func(r domain.SOCReport) []string {
			items := make([]string, 0, len(r.CUECDescriptions))
			for _, d := range r.CUECDescriptions {
				items = append(items, labeled(d.Number, d.Description))
			}
			return items
		},
	},
}

// CategoryIndex returns the position of the category with the given key, or -1.
func CategoryIndex(key string) int {
	for i, c := range Categories {
		if c.Key == key {
			return i
		}
	}
	return -1
}

func labeled(label, text string) string {
	switch {
	case label == "":
		return text
	case text == "":
		return label
	default:
		return label + ": " + text
	}
}

func reference(ref domain.ReportReference) string {
	parts := make([]string, 0, 3)
	if ref.ReportName != "" {
		parts = append(parts, ref.ReportName)
	}
	if ref.SourcePage != "" {
		parts = append(parts, fmt.Sprintf("page %s", ref.SourcePage))
	}
	if ref.SourceControl != "" {
		parts = append(parts, fmt.Sprintf("control %s", ref.SourceControl))
	}
	return strings.Join(parts, " - ")
}
