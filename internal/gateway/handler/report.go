package handler

import (
	"context"
	"fmt"

	"connectrpc.com/connect"

	"lifestream/internal/api/reportv1"
	reportsvc "lifestream/internal/gateway/service/report"
	"lifestream/internal/types"
)

func (h *ReportHandler) GenerateReport(ctx context.Context, req *connect.Request[reportv1.GenerateReportRequest]) (*connect.Response[reportv1.GenerateReportResponse], error) {
	in, err := generateRequest(req.Msg)
	if err != nil {
		return nil, toConnectError(err)
	}
	res, err := h.svc.Generate(ctx, h.id.From(req.Header()), in)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(toGenerateResponse(res)), nil
}

func generateRequest(m *reportv1.GenerateReportRequest) (reportsvc.GenerateRequest, error) {
	typ, err := types.ParseReportType(m.Type)
	if err != nil {
		return reportsvc.GenerateRequest{}, invalidArg(err)
	}
	return reportsvc.GenerateRequest{
		Type:        typ,
		PeriodStart: m.PeriodStart,
		PeriodEnd:   m.PeriodEnd,
		Language:    types.Language(m.Language),
		PeriodName:  m.PeriodName,
		Force:       m.Force,
	}, nil
}

func toGenerateResponse(res reportsvc.Result) *reportv1.GenerateReportResponse {
	return &reportv1.GenerateReportResponse{
		Report:      toAPIReport(res.Report),
		Generated:   res.Generated,
		Cues:        res.Cues,
		ActionItems: res.ActionItems,
	}
}

func (h *ReportHandler) GenerateCues(ctx context.Context, req *connect.Request[reportv1.GenerateCuesRequest]) (*connect.Response[reportv1.GenerateCuesResponse], error) {
	res, err := h.svc.GenerateCues(ctx, h.id.From(req.Header()), reportsvc.CuesRequest{
		PeriodStart: req.Msg.PeriodStart,
		PeriodEnd:   req.Msg.PeriodEnd,
		Language:    types.Language(req.Msg.Language),
		PeriodName:  req.Msg.PeriodName,
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&reportv1.GenerateCuesResponse{
		Content:     res.Content,
		Cues:        res.Cues,
		Found:       res.Found,
		ActionItems: res.ActionItems,
	}), nil
}

func (h *ReportHandler) ListReports(ctx context.Context, req *connect.Request[reportv1.ListReportsRequest]) (*connect.Response[reportv1.ListReportsResponse], error) {
	typ, err := reportType(req.Msg.Type)
	if err != nil {
		return nil, toConnectError(invalidArg(err))
	}
	list, err := h.svc.List(ctx, h.id.From(req.Header()), typ)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&reportv1.ListReportsResponse{Reports: toAPIReports(list)}), nil
}

func (h *ReportHandler) GetReport(ctx context.Context, req *connect.Request[reportv1.GetReportRequest]) (*connect.Response[reportv1.GetReportResponse], error) {
	r, err := h.svc.Get(ctx, h.id.From(req.Header()), req.Msg.ID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&reportv1.GetReportResponse{Report: toAPIReport(r)}), nil
}

func (h *ReportHandler) CreateReport(ctx context.Context, req *connect.Request[reportv1.CreateReportRequest]) (*connect.Response[reportv1.CreateReportResponse], error) {
	typ, err := types.ParseReportType(req.Msg.Type)
	if err != nil {
		return nil, toConnectError(invalidArg(err))
	}
	r, created, err := h.svc.Create(ctx, h.id.From(req.Header()), reportsvc.CreateRequest{
		Type:        typ,
		PeriodStart: req.Msg.PeriodStart,
		PeriodEnd:   req.Msg.PeriodEnd,
		Content:     req.Msg.Content,
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&reportv1.CreateReportResponse{Report: toAPIReport(r), Created: created}), nil
}

func (h *ReportHandler) UpdateReport(ctx context.Context, req *connect.Request[reportv1.UpdateReportRequest]) (*connect.Response[reportv1.UpdateReportResponse], error) {
	r, err := h.svc.Update(ctx, h.id.From(req.Header()), req.Msg.ID, req.Msg.Content)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&reportv1.UpdateReportResponse{Report: toAPIReport(r)}), nil
}

func (h *ReportHandler) DeleteReport(ctx context.Context, req *connect.Request[reportv1.DeleteReportRequest]) (*connect.Response[reportv1.DeleteReportResponse], error) {
	if err := h.svc.Delete(ctx, h.id.From(req.Header()), req.Msg.ID); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&reportv1.DeleteReportResponse{}), nil
}

func (h *ReportHandler) ImportLogs(ctx context.Context, req *connect.Request[reportv1.ImportLogsRequest]) (*connect.Response[reportv1.ImportLogsResponse], error) {
	n, err := h.svc.ImportLogs(ctx, h.id.From(req.Header()), fromAPIEntries(req.Msg.Entries))
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&reportv1.ImportLogsResponse{Imported: n}), nil
}

func invalidArg(err error) error {
	return fmt.Errorf("%w: %v", reportsvc.ErrValidation, err)
}
