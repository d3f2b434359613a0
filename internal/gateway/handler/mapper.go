package handler

import (
	"lifestream/internal/api/reportv1"
	"lifestream/internal/types"
)

func toAPIReport(r types.Report) reportv1.Report {
	return reportv1.Report{
		ID:          r.ID,
		Type:        string(r.Type),
		PeriodStart: r.PeriodStart,
		PeriodEnd:   r.PeriodEnd,
		Content:     r.Content,
		CreatedAt:   r.CreatedAt,
	}
}

func toAPIReports(in []types.Report) []reportv1.Report {
	out := make([]reportv1.Report, 0, len(in))
	for _, r := range in {
		out = append(out, toAPIReport(r))
	}
	return out
}

func fromAPIEntries(in []reportv1.LogEntry) []types.LogEntry {
	out := make([]types.LogEntry, 0, len(in))
	for _, e := range in {
		out = append(out, types.LogEntry{
			ID:        e.ID,
			Timestamp: e.Timestamp,
			Content:   e.Content,
			Tags:      append([]string(nil), e.Tags...),
		})
	}
	return out
}

// reportType accepts an empty string so callers can mean "any type".
func reportType(s string) (types.ReportType, error) {
	if s == "" {
		return "", nil
	}
	return types.ParseReportType(s)
}
