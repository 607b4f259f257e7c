package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"sonar/scanner"
)

// memoryStore is an in-process TaskStore used by handler tests.
type memoryStore struct {
	mu    sync.Mutex
	tasks map[string]*ScanTask
	queue chan string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{tasks: make(map[string]*ScanTask), queue: make(chan string, 16)}
}

func (s *memoryStore) CreateTask(task *ScanTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *task
	s.tasks[task.ID] = &copied
	return nil
}

func (s *memoryStore) GetTask(id string) (*ScanTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

func (s *memoryStore) UpdateTask(task *ScanTask) error {
	return s.CreateTask(task)
}

func (s *memoryStore) SetProgress(id string, done, total int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if task, ok := s.tasks[id]; ok {
		task.Done = done
		task.Total = total
	}
	return nil
}

func (s *memoryStore) PushToQueue(taskID string) error {
	s.queue <- taskID
	return nil
}

func (s *memoryStore) PopFromQueue() (string, error) {
	return <-s.queue, nil
}

func newTestRouter(store TaskStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewServer(store).RegisterRoutes(router)
	return router
}

func TestCreateScanAccepted(t *testing.T) {
	store := newMemoryStore()
	router := newTestRouter(store)

	body := `{"host":"127.0.0.1","ports":"20-25"}`
	req := httptest.NewRequest(http.MethodPost, "/scans", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp ScanAcceptedResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Status != "pending" {
		t.Fatalf("status = %q, want pending", resp.Status)
	}
	if !uuidV4Pattern.MatchString(resp.ID) {
		t.Fatalf("id %q is not a v4 UUID", resp.ID)
	}

	task, err := store.GetTask(resp.ID)
	if err != nil {
		t.Fatalf("task not persisted: %v", err)
	}
	if task.Total != 6 {
		t.Fatalf("task total = %d, want 6", task.Total)
	}
	if queued := <-store.queue; queued != resp.ID {
		t.Fatalf("queued id = %q, want %q", queued, resp.ID)
	}
}

func TestCreateScanRejectsBadRange(t *testing.T) {
	router := newTestRouter(newMemoryStore())

	cases := []string{
		`{"host":"127.0.0.1","ports":"25-20"}`,
		`{"host":"127.0.0.1","ports":"abc"}`,
		`{"host":"127.0.0.1","ports":"1-70000"}`,
		`{"host":"127.0.0.1"}`,
		`{"ports":"20-25"}`,
		`not json`,
	}
	for _, body := range cases {
		req := httptest.NewRequest(http.MethodPost, "/scans", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %q: status = %d, want 400", body, w.Code)
		}
	}
}

func TestGetScanSnapshot(t *testing.T) {
	store := newMemoryStore()
	router := newTestRouter(store)

	now := time.Now().UTC()
	task := &ScanTask{
		ID:        "a3f5c62e-1234-4f72-a84a-1c2d3e4f5678",
		Status:    "completed",
		Host:      "127.0.0.1",
		Ports:     "20-25",
		Done:      6,
		Total:     6,
		Results:   scanner.Report{{Port: 21, Service: "ftp"}, {Port: 22, Service: "ssh"}},
		Report:    "Port 21: Open - Service: ftp\nPort 22: Open - Service: ssh",
		CreatedAt: now,
	}
	if err := store.CreateTask(task); err != nil {
		t.Fatalf("seed task: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/scans/"+task.ID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var got ScanTask
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if got.Status != "completed" || len(got.Results) != 2 || got.Results[0].Port != 21 {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
}

func TestGetScanNotFound(t *testing.T) {
	router := newTestRouter(newMemoryStore())

	req := httptest.NewRequest(http.MethodGet, "/scans/a3f5c62e-1234-4f72-a84a-1c2d3e4f5678", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestGetScanRejectsMalformedID(t *testing.T) {
	router := newTestRouter(newMemoryStore())

	req := httptest.NewRequest(http.MethodGet, "/scans/not-a-uuid", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
