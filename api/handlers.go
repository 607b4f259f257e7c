package api

import (
	"crypto/rand"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"

	"sonar/scanner"
)

// Server bundles dependencies for HTTP handlers.
type Server struct {
	store TaskStore
}

// NewServer creates a new API server instance.
func NewServer(store TaskStore) *Server {
	return &Server{store: store}
}

// RegisterRoutes attaches handlers to the provided Gin router group.
func (s *Server) RegisterRoutes(routes gin.IRoutes) {
	routes.POST("/scans", s.createScanHandler)
	routes.GET("/scans/:id", s.getScanHandler)
}

var uuidV4Pattern = regexp.MustCompile(`^[a-fA-F0-9]{8}-[a-fA-F0-9]{4}-[1-5][a-fA-F0-9]{3}-[abAB89][a-fA-F0-9]{3}-[a-fA-F0-9]{12}$`)

// @Summary      Create a new scan task
// @Description  Submit a host and an inclusive port range (startPort-endPort) and let the scanner execute the connect scan asynchronously. The handler validates input, persists the task, and enqueues it for background workers before returning a UUID.
// @Description  Poll GET /scans/{id} to observe status transitions (pending → running → completed/failed) and the done/total progress counters.
// @Tags         Scans
// @Accept       json
// @Produce      json
// @Param        scanRequest  body      CreateScanRequest     true  "Scan request parameters"
// @Success      202          {object}  ScanAcceptedResponse  "Scan accepted. Poll GET /scans/{id} to track progress."
// @Failure      400          {object}  ErrorResponse         "Malformed JSON body or invalid port range."
// @Failure      401          {object}  ErrorResponse         "Missing or incorrect API key."
// @Failure      429          {object}  ErrorResponse         "Rate limit exceeded for the calling client."
// @Failure      500          {object}  ErrorResponse         "Internal error while persisting or queueing the task."
// @Security     ApiKeyAuth
// @Router       /scans [post]
func (s *Server) createScanHandler(c *gin.Context) {
	var req CreateScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid request payload: %v", err)})
		return
	}

	// Reject a bad range here, before the task ever reaches a worker.
	portRange, err := scanner.ParsePortRange(req.Ports)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	taskID, err := generateUUID()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to generate task id"})
		return
	}

	task := &ScanTask{
		ID:        taskID,
		Status:    "pending",
		Host:      req.Host,
		Ports:     req.Ports,
		Total:     portRange.Count(),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.CreateTask(task); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to persist task"})
		return
	}

	if err := s.store.PushToQueue(task.ID); err != nil {
		task.Status = "failed"
		task.Error = "failed to queue task"
		now := time.Now().UTC()
		task.CompletedAt = &now
		_ = s.store.UpdateTask(task)

		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to queue task"})
		return
	}

	c.JSON(http.StatusAccepted, ScanAcceptedResponse{ID: task.ID, Status: task.Status})
}

// @Summary      Get scan status and results
// @Description  Retrieve a live snapshot of a scan task. While the task runs, done/total reflect probe completion; once completed, results lists every open port with its service name and report carries the rendered text.
// @Tags         Scans
// @Produce      json
// @Param        id   path      string  true  "Scan Task ID (UUID v4)"
// @Success      200  {object}  ScanTask       "Current task snapshot including results when completed."
// @Failure      400  {object}  ErrorResponse  "Malformed task identifier."
// @Failure      401  {object}  ErrorResponse  "Missing or incorrect API key."
// @Failure      404  {object}  ErrorResponse  "Task with the provided ID does not exist."
// @Failure      429  {object}  ErrorResponse  "Rate limit exceeded for the calling client."
// @Failure      500  {object}  ErrorResponse  "Internal error when loading the task."
// @Security     ApiKeyAuth
// @Router       /scans/{id} [get]
func (s *Server) getScanHandler(c *gin.Context) {
	id := c.Param("id")
	if !uuidV4Pattern.MatchString(id) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid task id format"})
		return
	}
	task, err := s.store.GetTask(id)
	if err != nil {
		if err == ErrTaskNotFound {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load task"})
		return
	}

	c.JSON(http.StatusOK, task)
}

func generateUUID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	// Variant bits; version 4 UUID.
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16]), nil
}
