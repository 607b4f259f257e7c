package api

import (
	"time"

	"sonar/scanner"
)

// ScanTask represents a scan job managed by the API service.
type ScanTask struct {
	// ID is the immutable identifier of the task (UUID v4).
	ID string `json:"id" example:"a3f5c62e-1234-4f72-a84a-1c2d3e4f5678"`
	// Status is the asynchronous lifecycle state of the task.
	Status string `json:"status" enums:"pending,running,completed,failed" example:"pending"`
	// Host is the hostname or IP the scan targets.
	Host string `json:"host" example:"scanme.nmap.org"`
	// Ports is the requested inclusive range as startPort-endPort.
	Ports string `json:"ports" example:"20-1024"`
	// Done counts completed probes; Total is the number of ports requested.
	// Done/Total gives the progress percentage while the task is running.
	Done  int `json:"done" example:"512"`
	Total int `json:"total" example:"1005"`
	// Results holds the open ports once the task completes.
	Results scanner.Report `json:"results,omitempty"`
	// Report is the rendered multi-line report text.
	Report string `json:"report,omitempty" example:"Port 22: Open - Service: ssh"`
	// CreatedAt records when the task was accepted.
	CreatedAt time.Time `json:"created_at" format:"date-time"`
	// CompletedAt is set once the task reaches a terminal state.
	CompletedAt *time.Time `json:"completed_at,omitempty" format:"date-time"`
	// Error explains why a task entered the failed status.
	Error string `json:"error,omitempty" example:"invalid host address"`
}

// CreateScanRequest is the payload for creating new scan tasks.
type CreateScanRequest struct {
	// Host is the hostname or IP address to probe.
	Host string `json:"host" binding:"required" example:"scanme.nmap.org"`
	// Ports is the inclusive port range formatted startPort-endPort.
	Ports string `json:"ports" binding:"required" example:"0-1023"`
}

// ScanAcceptedResponse acknowledges an accepted scan task.
type ScanAcceptedResponse struct {
	ID     string `json:"id" example:"a3f5c62e-1234-4f72-a84a-1c2d3e4f5678"`
	Status string `json:"status" enums:"pending" example:"pending"`
}

// ErrorResponse provides a consistent structure for API error payloads.
type ErrorResponse struct {
	Error string `json:"error" example:"task not found"`
}
