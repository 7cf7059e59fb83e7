package httpapi

import "github.com/ReyadGH/use-case-4-deployment/internal/dataset"

// ReloadStatus tracks the last admin-triggered dataset reload.
type ReloadStatus struct {
	LastRunAt string `json:"last_run_at"`
	LastOkAt  string `json:"last_ok_at"`
	LastError string `json:"last_error"`
	LastRows  int    `json:"last_rows"`
	Running   bool   `json:"running"`
}

type healthResponse struct {
	OK bool `json:"ok"`
	dataset.Status
	Subscribers int `json:"subscribers"`
}
