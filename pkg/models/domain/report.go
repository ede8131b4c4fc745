package domain

// SOCReport represents a single SOC audit report as the viewer sees it.
// Collections are never nil once a record has passed through the adapters.
type SOCReport struct {
	FileName       string
	ServiceAuditor string
	ReportType     string
	ReportPeriod   string
	OpinionDate    string
	OpinionType    string

	ThirdPartyServiceProviders []string
	SubserviceProviders        []string
	ServicesProvided           []ServiceProvided
	ControlNumbers             []string
	ControlObjectives          []ControlObjective
	ControlDescriptions        []ControlDescription
	ReportsInScope             []ReportReference
	ReportsOutOfScope          []ReportReference
	ControlExceptions          string
	CUECNumbers                []string
	CUECDescriptions           []CUECDescription
}

// ServiceProvided is a service the organization delivers to user entities
type ServiceProvided struct {
	Service     string
	Description string
}

type ControlObjective struct {
	ID        string
	Objective string
}

type ControlDescription struct {
	Number      string
	Description string
}

// ReportReference points at a related report and where it is cited
type ReportReference struct {
	ReportName    string
	SourcePage    string
	SourceControl string
}

// CUECDescription is a complementary user entity control
type CUECDescription struct {
	Number      string
	Description string
}
