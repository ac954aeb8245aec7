package api

import (
	"clipsaver/internal/notify"
)

type StatusResponse struct {
	State         string               `json:"state"`
	Status        string               `json:"status"`
	Running       bool                 `json:"running"`
	Session       string               `json:"session,omitempty"`
	Destination   string               `json:"destination"`
	Saves         int                  `json:"saves"`
	Errors        int                  `json:"errors"`
	LastSaved     *notify.SavedSummary `json:"last_saved,omitempty"`
	LastError     *notify.ErrorSummary `json:"last_error,omitempty"`
	UptimeSeconds int                  `json:"uptime_seconds"`
}

type ControlResponse struct {
	OK    bool   `json:"ok"`
	State string `json:"state"`
	Error string `json:"error,omitempty"`
}

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

type HistoryEntry struct {
	Timestamp string `json:"timestamp"`
	Text      string `json:"text"`
}

type HistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
	Count   int            `json:"count"`
}

type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}
