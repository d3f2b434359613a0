package reportv1

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	jsoniter "github.com/json-iterator/go"
)

const ServiceName = "lifestream.report.v1.ReportService"

const (
	GenerateReportProcedure = "/" + ServiceName + "/GenerateReport"
	GenerateCuesProcedure   = "/" + ServiceName + "/GenerateCues"
	ListReportsProcedure    = "/" + ServiceName + "/ListReports"
	GetReportProcedure      = "/" + ServiceName + "/GetReport"
	CreateReportProcedure   = "/" + ServiceName + "/CreateReport"
	UpdateReportProcedure   = "/" + ServiceName + "/UpdateReport"
	DeleteReportProcedure   = "/" + ServiceName + "/DeleteReport"
	ImportLogsProcedure     = "/" + ServiceName + "/ImportLogs"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Codec encodes messages as plain JSON. It registers under the name "json",
// replacing connect's protobuf-only JSON codec.
type Codec struct{}

func (Codec) Name() string { return "json" }

func (Codec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (Codec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

type ReportServiceHandler interface {
	GenerateReport(context.Context, *connect.Request[GenerateReportRequest]) (*connect.Response[GenerateReportResponse], error)
	GenerateCues(context.Context, *connect.Request[GenerateCuesRequest]) (*connect.Response[GenerateCuesResponse], error)
	ListReports(context.Context, *connect.Request[ListReportsRequest]) (*connect.Response[ListReportsResponse], error)
	GetReport(context.Context, *connect.Request[GetReportRequest]) (*connect.Response[GetReportResponse], error)
	CreateReport(context.Context, *connect.Request[CreateReportRequest]) (*connect.Response[CreateReportResponse], error)
	UpdateReport(context.Context, *connect.Request[UpdateReportRequest]) (*connect.Response[UpdateReportResponse], error)
	DeleteReport(context.Context, *connect.Request[DeleteReportRequest]) (*connect.Response[DeleteReportResponse], error)
	ImportLogs(context.Context, *connect.Request[ImportLogsRequest]) (*connect.Response[ImportLogsResponse], error)
}

// NewReportServiceHandler returns the path prefix to mount and the handler
// serving every procedure of the service.
func NewReportServiceHandler(svc ReportServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)
	mux := http.NewServeMux()
	mux.Handle(GenerateReportProcedure, connect.NewUnaryHandler(GenerateReportProcedure, svc.GenerateReport, opts...))
	mux.Handle(GenerateCuesProcedure, connect.NewUnaryHandler(GenerateCuesProcedure, svc.GenerateCues, opts...))
	mux.Handle(ListReportsProcedure, connect.NewUnaryHandler(ListReportsProcedure, svc.ListReports, opts...))
	mux.Handle(GetReportProcedure, connect.NewUnaryHandler(GetReportProcedure, svc.GetReport, opts...))
	mux.Handle(CreateReportProcedure, connect.NewUnaryHandler(CreateReportProcedure, svc.CreateReport, opts...))
	mux.Handle(UpdateReportProcedure, connect.NewUnaryHandler(UpdateReportProcedure, svc.UpdateReport, opts...))
	mux.Handle(DeleteReportProcedure, connect.NewUnaryHandler(DeleteReportProcedure, svc.DeleteReport, opts...))
	mux.Handle(ImportLogsProcedure, connect.NewUnaryHandler(ImportLogsProcedure, svc.ImportLogs, opts...))
	return "/" + ServiceName + "/", mux
}
