package api

// SOCReport is one element of the static report document. Field names follow the
// extraction output, so they mix snake_case and PascalCase.
type SOCReport struct {
	FileName                   string                `json:"file_name"`
	ServiceAuditor             Text                  `json:"ServiceAuditor"`
	SOC1ReportType             Text                  `json:"SOC1ReportType"`
	ReportPeriod               Text                  `json:"ReportPeriod"`
	AuditorOpinionDate         Text                  `json:"AuditorOpinionDate"`
	AuditorOpinionType         Text                  `json:"AuditorOpinionType"`
	ThirdPartyServiceProvider  StringList            `json:"ThirdPartyServiceProvider"`
	SubserviceProvider         StringList            `json:"SubserviceProvider"`
	ServicesProvided           []ServiceProvided     `json:"ServicesProvided"`
	ControlNumber              StringList            `json:"ControlNumber"`
	ControlObjective           []ControlObjective    `json:"ControlObjective"`
	ControlDescription         []NumberedDescription `json:"ControlDescription"`
	ReportsInScope             []ReportReference     `json:"ReportsInScope"`
	ReportsOutOfScope          []ReportReference     `json:"ReportsOutOfScope"`
	ControlExceptionIdentified Text                  `json:"ControlExceptionIdentified"`
	CUECNumber                 StringList            `json:"CUECNumber"`
	CUECDescription            []NumberedDescription `json:"CUECDescription"`
}

type ServiceProvided struct {
	Service     Text `json:"service"`
	Description Text `json:"description"`
}

type ControlObjective struct {
	ID        Text `json:"id"`
	Objective Text `json:"objective"`
}

type NumberedDescription struct {
	Number      Text `json:"number"`
	Description Text `json:"description"`
}

type ReportReference struct {
	ReportName    Text `json:"report_name"`
	SourcePage    Text `json:"source_page"`
	SourceControl Text `json:"source_control"`
}

// ReportIndex is the listing returned by the reports API.
type ReportIndex struct {
	Count  int      `json:"count"`
	Titles []string `json:"titles"`
}

// FieldKind tells how a top level record field is shaped on the wire.
type FieldKind int

const (
	KindText FieldKind = iota
	KindList
	KindObjects
)

type fieldSpec struct {
	name   string
	kind   FieldKind
	target func(r *SOCReport) any
}

// fieldSpecs is the record schema in document order.
var fieldSpecs = []fieldSpec{
	{"file_name", KindText, func(r *SOCReport) any { return (*Text)(&r.FileName) }},
	{"ServiceAuditor", KindText, func(r *SOCReport) any { return &r.ServiceAuditor }},
	{"SOC1ReportType", KindText, func(r *SOCReport) any { return &r.SOC1ReportType }},
	{"ReportPeriod", KindText, func(r *SOCReport) any { return &r.ReportPeriod }},
	{"AuditorOpinionDate", KindText, func(r *SOCReport) any { return &r.AuditorOpinionDate }},
	{"AuditorOpinionType", KindText, func(r *SOCReport) any { return &r.AuditorOpinionType }},
	{"ThirdPartyServiceProvider", KindList, func(r *SOCReport) any { return &r.ThirdPartyServiceProvider }},
	{"SubserviceProvider", KindList, func(r *SOCReport) any { return &r.SubserviceProvider }},
	{"ServicesProvided", KindObjects, func(r *SOCReport) any { return &r.ServicesProvided }},
	{"ControlNumber", KindList, func(r *SOCReport) any { return &r.ControlNumber }},
	{"ControlObjective", KindObjects, func(r *SOCReport) any { return &r.ControlObjective }},
	{"ControlDescription", KindObjects, func(r *SOCReport) any { return &r.ControlDescription }},
	{"ReportsInScope", KindObjects, func(r *SOCReport) any { return &r.ReportsInScope }},
	{"ReportsOutOfScope", KindObjects, func(r *SOCReport) any { return &r.ReportsOutOfScope }},
	{"ControlExceptionIdentified", KindText, func(r *SOCReport) any { return &r.ControlExceptionIdentified }},
	{"CUECNumber", KindList, func(r *SOCReport) any { return &r.CUECNumber }},
	{"CUECDescription", KindObjects, func(r *SOCReport) any { return &r.CUECDescription }},
}

// FieldNames returns the wire names of all record fields in document order.
func FieldNames() []string {
	names := make([]string, 0, len(fieldSpecs))
	for _, f := range fieldSpecs {
		names = append(names, f.name)
	}
	return names
}

// KindOf reports the wire shape of the named field.
func KindOf(name string) (FieldKind, bool) {
	for _, f := range fieldSpecs {
		if f.name == name {
			return f.kind, true
		}
	}
	return 0, false
}
