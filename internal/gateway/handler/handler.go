package handler

import (
	"net/http"
	"strings"

	"lifestream/internal/api/reportv1"
	reportsvc "lifestream/internal/gateway/service/report"
)

// Compile-time interface check.
var _ reportv1.ReportServiceHandler = (*ReportHandler)(nil)

// Identity resolves the calling user from a request header, falling back to
// a default user when the header is absent.
type Identity struct {
	Header      string
	DefaultUser string
}

func (i Identity) header() string {
	if name := strings.TrimSpace(i.Header); name != "" {
		return name
	}
	return reportv1.DefaultUserHeader
}

func (i Identity) From(h http.Header) string {
	if u := strings.TrimSpace(h.Get(i.header())); u != "" {
		return u
	}
	return strings.TrimSpace(i.DefaultUser)
}

// ReportHandler serves the report RPCs and the progress websocket.
type ReportHandler struct {
	svc *reportsvc.Service
	id  Identity
}

func NewReportHandler(svc *reportsvc.Service, id Identity) *ReportHandler {
	return &ReportHandler{svc: svc, id: id}
}
