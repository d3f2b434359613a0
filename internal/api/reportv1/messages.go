// Package reportv1 defines the lifestream.report.v1.ReportService wire
// contract: request and response messages, procedure paths, the JSON codec
// both sides use, and a typed client.
package reportv1

// Report is a stored report as seen by callers.
type Report struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	PeriodStart string `json:"periodStart"`
	PeriodEnd   string `json:"periodEnd"`
	Content     string `json:"content"`
	CreatedAt   int64  `json:"createdAt"`
}

type LogEntry struct {
	ID        string   `json:"id,omitempty"`
	Timestamp int64    `json:"timestamp"`
	Content   string   `json:"content"`
	Tags      []string `json:"tags,omitempty"`
}

type GenerateReportRequest struct {
	Type        string `json:"type"`
	PeriodStart string `json:"periodStart"`
	PeriodEnd   string `json:"periodEnd"`
	Language    string `json:"language,omitempty"`
	PeriodName  string `json:"periodName,omitempty"`
	Force       bool   `json:"force,omitempty"`
}

type GenerateReportResponse struct {
	Report      Report   `json:"report"`
	Generated   bool     `json:"generated"`
	Cues        string   `json:"cues,omitempty"`
	ActionItems []string `json:"actionItems"`
}

type GenerateCuesRequest struct {
	PeriodStart string `json:"periodStart"`
	PeriodEnd   string `json:"periodEnd"`
	Language    string `json:"language,omitempty"`
	PeriodName  string `json:"periodName,omitempty"`
}

type GenerateCuesResponse struct {
	Content     string   `json:"content"`
	Cues        string   `json:"cues,omitempty"`
	Found       bool     `json:"found"`
	ActionItems []string `json:"actionItems"`
}

type ListReportsRequest struct {
	Type string `json:"type,omitempty"`
}

type ListReportsResponse struct {
	Reports []Report `json:"reports"`
}

type GetReportRequest struct {
	ID string `json:"id"`
}

type GetReportResponse struct {
	Report Report `json:"report"`
}

type CreateReportRequest struct {
	Type        string `json:"type"`
	PeriodStart string `json:"periodStart"`
	PeriodEnd   string `json:"periodEnd"`
	Content     string `json:"content"`
}

type CreateReportResponse struct {
	Report  Report `json:"report"`
	Created bool   `json:"created"`
}

type UpdateReportRequest struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

type UpdateReportResponse struct {
	Report Report `json:"report"`
}

type DeleteReportRequest struct {
	ID string `json:"id"`
}

type DeleteReportResponse struct{}

type ImportLogsRequest struct {
	Entries []LogEntry `json:"entries"`
}

type ImportLogsResponse struct {
	Imported int `json:"imported"`
}
