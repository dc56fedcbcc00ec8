package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"log"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// frameStatus precedes every PNG frame sent to a client, and is sent on its
// own when a request is rejected.
type frameStatus struct {
	Frame         uint64  `json:"frame"`
	Centre        string  `json:"centre"`
	PixelStep     float64 `json:"pixel_step"`
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	MaxIterations int     `json:"max_iterations"`
	Julia         string  `json:"julia,omitempty"`
	Error         string  `json:"error,omitempty"`
}

// webServer serves files in the static folder and the websocket endpoint
// display clients use to steer the view and receive frames.
func webServer(addr, static string, iws *imgWorkScheduler) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", websocketHandler(iws))
	mux.HandleFunc("/frame.png", frameHandler(iws))
	mux.Handle("/", http.FileServer(http.Dir(static)))

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// frameHandler serves the current frame once it is fully rendered.
func frameHandler(iws *imgWorkScheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		img, err := iws.GetImage(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		if err := png.Encode(w, &img); err != nil {
			log.Printf("frame.png: %v", err)
		}
	}
}

// websocketHandler handles the http ws endpoint
func websocketHandler(iws *imgWorkScheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			log.Println(err)
			return
		}
		defer c.CloseNow()

		log.Printf("display client connected: %s", r.RemoteAddr)
		err = serveDisplay(r.Context(), c, iws)
		switch websocket.CloseStatus(err) {
		case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			log.Printf("display client %s left", r.RemoteAddr)
		default:
			log.Printf("display client %s: %v", r.RemoteAddr, err)
		}
	}
}

// serveDisplay sends the current frame, then answers every view request with
// the frame it produces.
func serveDisplay(ctx context.Context, c *websocket.Conn, iws *imgWorkScheduler) error {
	if err := sendFrame(ctx, c, iws); err != nil {
		return err
	}
	for {
		var req viewRequest
		if err := wsjson.Read(ctx, c, &req); err != nil {
			return err
		}

		v, err := req.apply(iws.view())
		if err != nil {
			if err := wsjson.Write(ctx, c, frameStatus{Error: err.Error()}); err != nil {
				return err
			}
			continue
		}
		if !iws.setView(v) {
			log.Printf("view unchanged, resending frame")
		}
		if err := sendFrame(ctx, c, iws); err != nil {
			return err
		}
	}
}

func sendFrame(ctx context.Context, c *websocket.Conn, iws *imgWorkScheduler) error {
	img, f, err := iws.waitFrame(ctx)
	if errors.Is(err, errFrameFailed) {
		return wsjson.Write(ctx, c, frameStatus{Frame: f.seq, Error: err.Error()})
	}
	if err != nil {
		return err
	}

	v := f.view
	status := frameStatus{
		Frame:         f.seq,
		Centre:        v.Center.String(),
		PixelStep:     v.PixelStep,
		Width:         v.Width,
		Height:        v.Height,
		MaxIterations: v.MaxIterations,
	}
	if v.Julia != nil {
		status.Julia = v.Julia.String()
	}
	if err := wsjson.Write(ctx, c, status); err != nil {
		return fmt.Errorf("write status: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, &img); err != nil {
		return fmt.Errorf("png.Encode: %w", err)
	}
	return c.Write(ctx, websocket.MessageBinary, buf.Bytes())
}
