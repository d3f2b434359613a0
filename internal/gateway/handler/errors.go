package handler

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	reportsvc "lifestream/internal/gateway/service/report"
	llmclient "lifestream/internal/llm/client"
)

// toConnectError maps service errors onto RPC codes. Upstream model failures
// become Unavailable so callers can offer a retry; a call abandoned by the
// caller stays Canceled.
func toConnectError(err error) error {
	if err == nil {
		return nil
	}
	var ue *llmclient.UpstreamError
	switch {
	case errors.Is(err, reportsvc.ErrValidation):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, reportsvc.ErrNoLogs):
		return connect.NewError(connect.CodeNotFound, errors.New("nothing to summarize: no logs for period"))
	case errors.Is(err, reportsvc.ErrReportNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, reportsvc.ErrConflict):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.As(err, &ue):
		return connect.NewError(connect.CodeUnavailable, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

// wsCode is the snake_case code name sent on the progress websocket.
func wsCode(err error) string {
	var ce *connect.Error
	if errors.As(toConnectError(err), &ce) {
		return ce.Code().String()
	}
	return connect.CodeInternal.String()
}
