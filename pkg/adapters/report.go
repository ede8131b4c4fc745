package adapters

import (
	"strings"

	"github.com/de-tools/soc-atlas/pkg/models/api"
	"github.com/de-tools/soc-atlas/pkg/models/domain"
)

func MapReportApiToDomain(r api.SOCReport) domain.SOCReport {
	res := domain.SOCReport{
		FileName:                   strings.TrimSpace(r.FileName),
		ServiceAuditor:             text(r.ServiceAuditor),
		ReportType:                 text(r.SOC1ReportType),
		ReportPeriod:               text(r.ReportPeriod),
		OpinionDate:                text(r.AuditorOpinionDate),
		OpinionType:                text(r.AuditorOpinionType),
		ThirdPartyServiceProviders: strs(r.ThirdPartyServiceProvider),
		SubserviceProviders:        strs(r.SubserviceProvider),
		ServicesProvided:           make([]domain.ServiceProvided, 0, len(r.ServicesProvided)),
		ControlNumbers:             strs(r.ControlNumber),
		ControlObjectives:          make([]domain.ControlObjective, 0, len(r.ControlObjective)),
		ControlDescriptions:        make([]domain.ControlDescription, 0, len(r.ControlDescription)),
		ReportsInScope:             mapReferencesApiToDomain(r.ReportsInScope),
		ReportsOutOfScope:          mapReferencesApiToDomain(r.ReportsOutOfScope),
		ControlExceptions:          text(r.ControlExceptionIdentified),
		CUECNumbers:                strs(r.CUECNumber),
		CUECDescriptions:           make([]domain.CUECDescription, 0, len(r.CUECDescription)),
	}
	for _, s := range r.ServicesProvided {
		res.ServicesProvided = append(res.ServicesProvided, domain.ServiceProvided{
			Service:     text(s.Service),
			Description: text(s.Description),
		})
	}
	for _, o := range r.ControlObjective {
		res.ControlObjectives = append(res.ControlObjectives, domain.ControlObjective{
			ID:        text(o.ID),
			Objective: text(o.Objective),
		})
	}
	for _, d := range r.ControlDescription {
		res.ControlDescriptions = append(res.ControlDescriptions, domain.ControlDescription{
			Number:      text(d.Number),
			Description: text(d.Description),
		})
	}
	for _, d := range r.CUECDescription {
		res.CUECDescriptions = append(res.CUECDescriptions, domain.CUECDescription{
			Number:      text(d.Number),
			Description: text(d.Description),
		})
	}
	return res
}

func MapReportsApiToDomain(reports []api.SOCReport) []domain.SOCReport {
	res := make([]domain.SOCReport, 0, len(reports))
	for _, r := range reports {
		res = append(res, MapReportApiToDomain(r))
	}
	return res
}

func MapReportDomainToApi(r domain.SOCReport) api.SOCReport {
	res := api.SOCReport{
		FileName:                   r.FileName,
		ServiceAuditor:             api.Text(r.ServiceAuditor),
		SOC1ReportType:             api.Text(r.ReportType),
		ReportPeriod:               api.Text(r.ReportPeriod),
		AuditorOpinionDate:         api.Text(r.OpinionDate),
		AuditorOpinionType:         api.Text(r.OpinionType),
		ThirdPartyServiceProvider:  list(r.ThirdPartyServiceProviders),
		SubserviceProvider:         list(r.SubserviceProviders),
		ServicesProvided:           make([]api.ServiceProvided, 0, len(r.ServicesProvided)),
		ControlNumber:              list(r.ControlNumbers),
		ControlObjective:           make([]api.ControlObjective, 0, len(r.ControlObjectives)),
		ControlDescription:         make([]api.NumberedDescription, 0, len(r.ControlDescriptions)),
		ReportsInScope:             mapReferencesDomainToApi(r.ReportsInScope),
		ReportsOutOfScope:          mapReferencesDomainToApi(r.ReportsOutOfScope),
		ControlExceptionIdentified: api.Text(r.ControlExceptions),
		CUECNumber:                 list(r.CUECNumbers),
		CUECDescription:            make([]api.NumberedDescription, 0, len(r.CUECDescriptions)),
	}
	for _, s := range r.ServicesProvided {
		res.ServicesProvided = append(res.ServicesProvided, api.ServiceProvided{
			Service:     api.Text(s.Service),
			Description: api.Text(s.Description),
		})
	}
	for _, o := range r.ControlObjectives {
		res.ControlObjective = append(res.ControlObjective, api.ControlObjective{
			ID:        api.Text(o.ID),
			Objective: api.Text(o.Objective),
		})
	}
	for _, d := range r.ControlDescriptions {
		res.ControlDescription = append(res.ControlDescription, api.NumberedDescription{
			Number:      api.Text(d.Number),
			Description: api.Text(d.Description),
		})
	}
	for _, d := range r.CUECDescriptions {
		res.CUECDescription = append(res.CUECDescription, api.NumberedDescription{
			Number:      api.Text(d.Number),
			Description: api.Text(d.Description),
		})
	}
	return res
}

func MapReportsDomainToApi(reports []domain.SOCReport) []api.SOCReport {
	res := make([]api.SOCReport, 0, len(reports))
	for _, r := range reports {
		res = append(res, MapReportDomainToApi(r))
	}
	return res
}

func mapReferencesApiToDomain(refs []api.ReportReference) []domain.ReportReference {
	res := make([]domain.ReportReference, 0, len(refs))
	for _, r := range refs {
		res = append(res, domain.ReportReference{
			ReportName:    text(r.ReportName),
			SourcePage:    text(r.SourcePage),
			SourceControl: text(r.SourceControl),
		})
	}
	return res
}

func mapReferencesDomainToApi(refs []domain.ReportReference) []api.ReportReference {
	res := make([]api.ReportReference, 0, len(refs))
	for _, r := range refs {
		res = append(res, api.ReportReference{
			ReportName:    api.Text(r.ReportName),
			SourcePage:    api.Text(r.SourcePage),
			SourceControl: api.Text(r.SourceControl),
		})
	}
	return res
}

func text(t api.Text) string {
	return strings.TrimSpace(string(t))
}

func strs(l api.StringList) []string {
	res := make([]string, 0, len(l))
	for _, s := range l {
		if s = strings.TrimSpace(s); s != "" {
			res = append(res, s)
		}
	}
	return res
}

func list(s []string) api.StringList {
	res := make(api.StringList, 0, len(s))
	return append(res, s...)
}
