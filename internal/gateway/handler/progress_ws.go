package handler

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"lifestream/internal/api/reportv1"
	"lifestream/internal/llm"
	llmclient "lifestream/internal/llm/client"
	"lifestream/internal/pipeline"
)

const (
	progressWSWriteWait = 10 * time.Second
	progressWSPongWait  = 60 * time.Second
	progressWSPingEvery = (progressWSPongWait * 9) / 10
)

var progressWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type progressWSOutbound struct {
	Type    string `json:"type"`
	Stage   string `json:"stage,omitempty"`
	Label   string `json:"label,omitempty"`
	Index   int    `json:"index,omitempty"`
	Total   int    `json:"total,omitempty"`
	Path    string `json:"path,omitempty"`
	Phase   string `json:"phase,omitempty"`
	Chars   int    `json:"chars,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`

	Result *reportv1.GenerateReportResponse `json:"result,omitempty"`
}

// HandleProgressWS runs one report generation and streams pipeline progress
// over a websocket, ending with a single "done" or "error" message. Every
// model call is bracketed by "llm_start" and "llm_done" messages. The
// generation is canceled when the client goes away.
//
// Query: type, periodStart, periodEnd, language, periodName, force, user.
func (h *ReportHandler) HandleProgressWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	force, _ := strconv.ParseBool(q.Get("force"))
	in, err := generateRequest(&reportv1.GenerateReportRequest{
		Type:        q.Get("type"),
		PeriodStart: q.Get("periodStart"),
		PeriodEnd:   q.Get("periodEnd"),
		Language:    q.Get("language"),
		PeriodName:  q.Get("periodName"),
		Force:       force,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	user := h.id.From(r.Header)
	if u := strings.TrimSpace(q.Get("user")); u != "" && r.Header.Get(h.id.header()) == "" {
		user = u
	}

	conn, err := progressWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(progressWSPongWait)); err != nil {
		log.Printf("progress ws set read deadline failed: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(progressWSPongWait))
	})
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	writeCh := make(chan progressWSOutbound, 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(progressWSPingEvery)
		defer ticker.Stop()

		for {
			select {
			case out, ok := <-writeCh:
				if !ok {
					_ = conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
						time.Now().Add(progressWSWriteWait))
					return
				}
				if err := conn.SetWriteDeadline(time.Now().Add(progressWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(progressWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	runCtx := pipeline.WithObserver(ctx, func(ev pipeline.Event) {
		pushProgressWS(writeCh, progressWSOutbound{
			Type:  "progress",
			Stage: ev.Stage,
			Label: ev.Label,
			Index: ev.Index,
			Total: ev.Total,
			Path:  ev.Path,
		})
	})
	runCtx = llm.WithHook(runCtx, progressWSHook{writeCh: writeCh})
	res, err := h.svc.Generate(runCtx, user, in)

	final := progressWSOutbound{Type: "done"}
	if err != nil {
		final = progressWSOutbound{Type: "error", Code: wsCode(err), Message: err.Error()}
	} else {
		final.Result = toGenerateResponse(res)
	}
	select {
	case writeCh <- final:
	case <-writerDone:
	}
	close(writeCh)
	<-writerDone
}

// progressWSHook reports each model call with its phase. Chars is the prompt
// size on start and the reply size on completion.
type progressWSHook struct {
	writeCh chan progressWSOutbound
}

func (h progressWSHook) Before(_ context.Context, phase string, msgs []llmclient.Message) {
	pushProgressWS(h.writeCh, progressWSOutbound{Type: "llm_start", Phase: phase, Chars: llmclient.PromptChars(msgs)})
}

func (h progressWSHook) After(_ context.Context, phase string, out string, err error) {
	msg := progressWSOutbound{Type: "llm_done", Phase: phase, Chars: len(out)}
	if err != nil {
		msg.Message = err.Error()
	}
	pushProgressWS(h.writeCh, msg)
}

// pushProgressWS never blocks the pipeline: when the buffer is full the
// oldest progress message is dropped.
func pushProgressWS(writeCh chan progressWSOutbound, out progressWSOutbound) {
	select {
	case writeCh <- out:
		return
	default:
	}
	select {
	case <-writeCh:
	default:
	}
	select {
	case writeCh <- out:
	default:
	}
}
