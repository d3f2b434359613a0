package reportv1

import (
	"context"
	"strings"

	"connectrpc.com/connect"
)

// DefaultUserHeader carries the caller's user id.
const DefaultUserHeader = "X-User-Id"

type Client struct {
	userHeader string
	user       string

	generateReport *connect.Client[GenerateReportRequest, GenerateReportResponse]
	generateCues   *connect.Client[GenerateCuesRequest, GenerateCuesResponse]
	listReports    *connect.Client[ListReportsRequest, ListReportsResponse]
	getReport      *connect.Client[GetReportRequest, GetReportResponse]
	createReport   *connect.Client[CreateReportRequest, CreateReportResponse]
	updateReport   *connect.Client[UpdateReportRequest, UpdateReportResponse]
	deleteReport   *connect.Client[DeleteReportRequest, DeleteReportResponse]
	importLogs     *connect.Client[ImportLogsRequest, ImportLogsResponse]
}

// NewClient talks to baseURL as user. An empty user sends no identity header
// and the server falls back to its default user.
func NewClient(httpClient connect.HTTPClient, baseURL, user string, opts ...connect.ClientOption) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
	return &Client{
		userHeader:     DefaultUserHeader,
		user:           strings.TrimSpace(user),
		generateReport: connect.NewClient[GenerateReportRequest, GenerateReportResponse](httpClient, baseURL+GenerateReportProcedure, opts...),
		generateCues:   connect.NewClient[GenerateCuesRequest, GenerateCuesResponse](httpClient, baseURL+GenerateCuesProcedure, opts...),
		listReports:    connect.NewClient[ListReportsRequest, ListReportsResponse](httpClient, baseURL+ListReportsProcedure, opts...),
		getReport:      connect.NewClient[GetReportRequest, GetReportResponse](httpClient, baseURL+GetReportProcedure, opts...),
		createReport:   connect.NewClient[CreateReportRequest, CreateReportResponse](httpClient, baseURL+CreateReportProcedure, opts...),
		updateReport:   connect.NewClient[UpdateReportRequest, UpdateReportResponse](httpClient, baseURL+UpdateReportProcedure, opts...),
		deleteReport:   connect.NewClient[DeleteReportRequest, DeleteReportResponse](httpClient, baseURL+DeleteReportProcedure, opts...),
		importLogs:     connect.NewClient[ImportLogsRequest, ImportLogsResponse](httpClient, baseURL+ImportLogsProcedure, opts...),
	}
}

// WithUserHeader changes the header name used for the user id.
func (c *Client) WithUserHeader(name string) *Client {
	if name = strings.TrimSpace(name); name != "" {
		c.userHeader = name
	}
	return c
}

func request[T any](c *Client, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	if c.user != "" {
		req.Header().Set(c.userHeader, c.user)
	}
	return req
}

func unwrap[T any](res *connect.Response[T], err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	return res.Msg, nil
}

func (c *Client) GenerateReport(ctx context.Context, in *GenerateReportRequest) (*GenerateReportResponse, error) {
	res, err := c.generateReport.CallUnary(ctx, request(c, in))
	return unwrap(res, err)
}

func (c *Client) GenerateCues(ctx context.Context, in *GenerateCuesRequest) (*GenerateCuesResponse, error) {
	res, err := c.generateCues.CallUnary(ctx, request(c, in))
	return unwrap(res, err)
}

func (c *Client) ListReports(ctx context.Context, in *ListReportsRequest) (*ListReportsResponse, error) {
	res, err := c.listReports.CallUnary(ctx, request(c, in))
	return unwrap(res, err)
}

func (c *Client) GetReport(ctx context.Context, in *GetReportRequest) (*GetReportResponse, error) {
	res, err := c.getReport.CallUnary(ctx, request(c, in))
	return unwrap(res, err)
}

func (c *Client) CreateReport(ctx context.Context, in *CreateReportRequest) (*CreateReportResponse, error) {
	res, err := c.createReport.CallUnary(ctx, request(c, in))
	return unwrap(res, err)
}

func (c *Client) UpdateReport(ctx context.Context, in *UpdateReportRequest) (*UpdateReportResponse, error) {
	res, err := c.updateReport.CallUnary(ctx, request(c, in))
	return unwrap(res, err)
}

func (c *Client) DeleteReport(ctx context.Context, in *DeleteReportRequest) (*DeleteReportResponse, error) {
	res, err := c.deleteReport.CallUnary(ctx, request(c, in))
	return unwrap(res, err)
}

func (c *Client) ImportLogs(ctx context.Context, in *ImportLogsRequest) (*ImportLogsResponse, error) {
	res, err := c.importLogs.CallUnary(ctx, request(c, in))
	return unwrap(res, err)
}
