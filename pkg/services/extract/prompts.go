package extract

// Prompt asks for one record field.
type Prompt struct {
	Field string
	Text  string
}

// DefaultPrompts covers every record field except file_name, in document order.
var DefaultPrompts = []Prompt{
	{"ServiceAuditor", "Return the service auditor firm name as a string. If not found, return null. No extra text."},
	{"SOC1ReportType", "Return 'Type 1' or 'Type 2' as a string. Return only the type. If not found, return null. Do not explain."},
	{"ReportPeriod", "Return the report period in the format 'YYYY-MM-DD to YYYY-MM-DD'. If not found, return null."},
	{"AuditorOpinionDate", "Return the auditor opinion date in YYYY-MM-DD format. Return only the date. If not found, return null."},
	{"AuditorOpinionType", "Return only the opinion type (e.g. 'unqualified', 'qualified'). If not found, return null. Do not include reasoning."},
	{"ThirdPartyServiceProvider", "Return a JSON array of third-party service provider names. Return names only. If not found, return null. Do not explain."},
	{"SubserviceProvider", "Return a JSON array of subservice providers. Return names only. If none, return null."},
	{"ServicesProvided", `Return a JSON array of services provided: [{"service": "...", "description": "..."}]. If not found, return null.`},
	{"ControlNumber", "Return a JSON array of control numbers. If not found, return null."},
	{"ControlObjective", `Return a JSON array of control objectives: [{"id": "CO1", "objective": "..."}]. If none found, return null.`},
	{"ControlDescription", `Return a JSON array of control descriptions: [{"number": "CO1.1", "description": "..."}]. If none, return null.`},
	{"ReportsInScope", `Return a JSON array of reports included in scope: [{"report_name": "...", "source_page": "...", "source_control": "..."}]. If none, return null.`},
	{"ReportsOutOfScope", `Return a JSON array of excluded reports: [{"report_name": "...", "source_page": "...", "source_control": "..."}]. If none, return null.`},
	{"ControlExceptionIdentified", "Return a short plain text summary of the control exceptions identified, naming each affected control. If none, return null."},
	{"CUECNumber", "Return a JSON array of CUEC numbers. If none, return null."},
	{"CUECDescription", `Return a JSON array of CUEC details like [{"number": "CUEC-1", "description": "..."}]. If none, return null.`},
}
