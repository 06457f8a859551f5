package handler

import (
	"net/http"
	"runtime"
	"time"

	"tteoksang-game-server/pkg/response"
)

// SessionCounter reports the number of active channel sessions.
type SessionCounter interface {
	ActiveCount() int
}

// AdminHandler handles admin-related HTTP requests.
type AdminHandler struct {
	sessions   SessionCounter
	cacheType  string // memory or redis
	gameDBType string // sqlite, mysql or postgres
	startTime  time.Time
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(sessions SessionCounter, cacheType, gameDBType string) *AdminHandler {
	return &AdminHandler{
		sessions:   sessions,
		cacheType:  cacheType,
		gameDBType: gameDBType,
		startTime:  time.Now(),
	}
}

// SessionsResponse is the body of GET /api/v1/admin/sessions.
type SessionsResponse struct {
	ActiveSessions int    `json:"active_sessions"`
	UptimeSeconds  int64  `json:"uptime_seconds"`
	UptimeHuman    string `json:"uptime_human"`
	ServerTime     string `json:"server_time"`
	CacheBackend   string `json:"cache_backend"`
	GameDBBackend  string `json:"game_db_backend"`
	Goroutines     int    `json:"goroutines"`
}

// GetSessions handles GET /api/v1/admin/sessions
func (h *AdminHandler) GetSessions(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(h.startTime)
	response.OK(w, SessionsResponse{
		ActiveSessions: h.sessions.ActiveCount(),
		UptimeSeconds:  int64(uptime.Seconds()),
		UptimeHuman:    uptime.Round(time.Second).String(),
		ServerTime:     time.Now().Format(time.RFC3339),
		CacheBackend:   h.cacheType,
		GameDBBackend:  h.gameDBType,
		Goroutines:     runtime.NumGoroutine(),
	})
}
