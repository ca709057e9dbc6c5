package server

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"net/http"
	"time"

	"github.com/df07/go-bvh-pathtracer/pkg/config"
	"github.com/df07/go-bvh-pathtracer/pkg/job"
	"github.com/df07/go-bvh-pathtracer/pkg/output"
	"github.com/go-json-experiment/json"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// RenderResponse is sent once the image is finished
type RenderResponse struct {
	Result    *job.Result `json:"result"`
	ImageData string      `json:"imageData"` // Base64 encoded PNG
	ElapsedMs int64       `json:"elapsedMs"`
}

// handleRender streams console output as server-sent events while rendering,
// then sends the finished image
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	cfg, err := parseRenderRequest(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, errors.New("streaming not supported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	consoleChan := make(chan ConsoleMessage, 100)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range consoleChan {
			data, err := json.Marshal(msg)
			if err != nil {
				s.log.Error("encode console message", "message", msg.Message, "err", err)
				continue
			}
			sendSSEEvent(w, flusher, "console", string(data))
		}
	}()

	start := time.Now()
	result, err := s.render(r, cfg, consoleChan)

	// The writer goroutine owns w until the console is drained
	close(consoleChan)
	<-done

	if err != nil {
		sendSSEEvent(w, flusher, "error", err.Error())
		return
	}
	result.ElapsedMs = time.Since(start).Milliseconds()
	data, err := json.Marshal(result)
	if err != nil {
		sendSSEEvent(w, flusher, "error", err.Error())
		return
	}
	sendSSEEvent(w, flusher, "complete", string(data))
}

func (s *Server) render(r *http.Request, cfg config.Render, consoleChan chan<- ConsoleMessage) (*RenderResponse, error) {
	id := uuid.New()
	logger := NewWebLogger(id.String(), consoleChan, s.log)

	j, err := job.NewWithID(id, cfg, logger)
	if err != nil {
		return nil, err
	}

	result, err := j.Run(r.Context())
	if err != nil {
		return nil, err
	}

	tm, err := output.NewToneMapper(cfg.ToneMap)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, output.ToRGBA(result.Framebuffer, tm)); err != nil {
		return nil, err
	}
	return &RenderResponse{
		Result:    result,
		ImageData: base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}

// sendSSEEvent sends a generic SSE event
func sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, event, data string) {
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	flusher.Flush()
}
