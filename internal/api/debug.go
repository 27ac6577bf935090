package api

import (
	"net/http"
	"runtime"
	"time"

	"fleetcomp/internal/buildinfo"
)

type debugInfo struct {
	Version    string  `json:"version"`
	Commit     string  `json:"commit"`
	Go         string  `json:"go"`
	Goroutines int     `json:"goroutines"`
	UptimeSec  float64 `json:"uptimeSec"`
}

func (s *Server) handleDebug(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, debugInfo{
		Version:    buildinfo.Version,
		Commit:     buildinfo.Commit,
		Go:         runtime.Version(),
		Goroutines: runtime.NumGoroutine(),
		UptimeSec:  time.Since(s.started).Seconds(),
	})
}
