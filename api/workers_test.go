package api

import (
	"testing"
	"time"

	"sonar/scanner"
)

func seedTask(t *testing.T, store *memoryStore, host, ports string) *ScanTask {
	t.Helper()
	task := &ScanTask{
		ID:        "b4e6d73f-2345-4a83-b95b-2d3e4f5a6b7c",
		Status:    "pending",
		Host:      host,
		Ports:     ports,
		CreatedAt: time.Now().UTC(),
	}
	if err := store.CreateTask(task); err != nil {
		t.Fatalf("seed task: %v", err)
	}
	return task
}

func TestRunTaskFailsOnBadRange(t *testing.T) {
	store := newMemoryStore()
	task := seedTask(t, store, "127.0.0.1", "9-1")

	runTask(store, nil, task)

	stored, err := store.GetTask(task.ID)
	if err != nil {
		t.Fatalf("load task: %v", err)
	}
	if stored.Status != "failed" {
		t.Fatalf("status = %q, want failed", stored.Status)
	}
	if stored.Error == "" || stored.CompletedAt == nil {
		t.Fatalf("failed task missing error/completion: %+v", stored)
	}
}

func TestRunTaskFailsOnBadHost(t *testing.T) {
	store := newMemoryStore()
	task := seedTask(t, store, "not a host!!", "1-3")

	runTask(store, nil, task)

	stored, err := store.GetTask(task.ID)
	if err != nil {
		t.Fatalf("load task: %v", err)
	}
	if stored.Status != "failed" {
		t.Fatalf("status = %q, want failed", stored.Status)
	}
}

func TestRunTaskCompletesAgainstLoopback(t *testing.T) {
	store := newMemoryStore()
	task := seedTask(t, store, "127.0.0.1", "1-8")

	runTask(store, scanner.NewDirectoryWithSystem(nil, nil), task)

	stored, err := store.GetTask(task.ID)
	if err != nil {
		t.Fatalf("load task: %v", err)
	}
	if stored.Status != "completed" {
		t.Fatalf("status = %q (error %q), want completed", stored.Status, stored.Error)
	}
	if stored.Done != 8 || stored.Total != 8 {
		t.Fatalf("progress = %d/%d, want 8/8", stored.Done, stored.Total)
	}
	if stored.CompletedAt == nil {
		t.Fatal("completed task missing completion timestamp")
	}
}
