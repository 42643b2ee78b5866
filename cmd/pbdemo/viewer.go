package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/parallelbehavior/internal/core/observability/log"
	"github.com/zeusync/parallelbehavior/internal/core/parallel"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// viewer exposes the manager's runtime snapshots: a one-shot JSON state
// endpoint and a websocket stream that pushes a frame every interval.
type viewer struct {
	manager  *parallel.Manager
	logger   log.Log
	interval time.Duration
}

func newViewer(manager *parallel.Manager, logger log.Log) *viewer {
	if logger == nil {
		logger = log.Nop()
	}
	return &viewer{
		manager:  manager,
		logger:   logger.With(log.String("component", "viewer")),
		interval: 500 * time.Millisecond,
	}
}

type stateFrame struct {
	Time      time.Time       `json:"time"`
	Behaviors []parallel.Info `json:"behaviors"`
}

func (v *viewer) frame() stateFrame {
	return stateFrame{Time: time.Now(), Behaviors: v.manager.Runtimes()}
}

func (v *viewer) serveState(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v.frame()); err != nil {
		v.logger.Error("State encode failed", log.Error(err))
	}
}

func (v *viewer) serveWS(w http.ResponseWriter, r *http.Request) {
	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		v.logger.Warn("Websocket upgrade failed", log.Error(err))
		return
	}
	defer func() { _ = c.Close() }()

	// reader: accept control messages (restart <id>, stop <id>)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				return
			}
			v.handleControl(string(msg))
		}
	}()

	ticker := time.NewTicker(v.interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			b, err := json.Marshal(v.frame())
			if err != nil {
				v.logger.Error("Frame encode failed", log.Error(err))
				return
			}
			if err = c.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		}
	}
}

func (v *viewer) handleControl(msg string) {
	const (
		restartPrefix = "restart "
		stopPrefix    = "stop "
	)
	switch {
	case len(msg) > len(restartPrefix) && msg[:len(restartPrefix)] == restartPrefix:
		if err := v.manager.Restart(msg[len(restartPrefix):]); err != nil {
			v.logger.Warn("Restart rejected", log.Error(err))
		}
	case len(msg) > len(stopPrefix) && msg[:len(stopPrefix)] == stopPrefix:
		if err := v.manager.Stop(msg[len(stopPrefix):]); err != nil {
			v.logger.Warn("Stop rejected", log.Error(err))
		}
	}
}

func (v *viewer) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/state", v.serveState)
	mux.HandleFunc("/ws", v.serveWS)
	return http.ListenAndServe(addr, mux)
}
