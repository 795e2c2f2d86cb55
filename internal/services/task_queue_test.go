package services

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestTaskTypeImport_Constant(t *testing.T) {
	if TaskTypeImport != "import:run" {
		t.Errorf("TaskTypeImport = %q, expected %q", TaskTypeImport, "import:run")
	}
}

func TestImportTask_Structure(t *testing.T) {
	task := ImportTask{
		VendorCode:  "v-42",
		FormID:      "form-1",
		ServiceName: "snappfood",
		SortType:    "score",
		Promote:     true,
	}

	if task.VendorCode != "v-42" {
		t.Errorf("VendorCode = %q, expected %q", task.VendorCode, "v-42")
	}
	if task.FormID != "form-1" {
		t.Errorf("FormID = %q, expected %q", task.FormID, "form-1")
	}
	if task.ServiceName != "snappfood" {
		t.Errorf("ServiceName = %q, expected %q", task.ServiceName, "snappfood")
	}
	if !task.Promote {
		t.Error("Promote should be true")
	}
}

func TestSyncQueue_IsNotAsync(t *testing.T) {
	q := NewSyncQueue()
	if q.IsAsync() {
		t.Error("sync queue should not report async")
	}
	if err := q.Close(); err != nil {
		t.Errorf("Close should be a no-op, got %v", err)
	}
}

func TestSyncQueue_EnqueueRunsProcessor(t *testing.T) {
	q := NewSyncQueue()

	var mu sync.Mutex
	var processed []*ImportTask
	done := make(chan struct{})

	q.SetProcessor(func(ctx context.Context, task *ImportTask) error {
		mu.Lock()
		processed = append(processed, task)
		mu.Unlock()
		close(done)
		return nil
	})

	task := &ImportTask{VendorCode: "v-1", FormID: "form-1"}
	if err := q.Enqueue(task); err != nil {
		t.Fatalf("Enqueue returned error: %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("processor was not invoked")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(processed) != 1 {
		t.Fatalf("processed %d tasks, expected 1", len(processed))
	}
	if processed[0].VendorCode != "v-1" {
		t.Errorf("VendorCode = %q, expected v-1", processed[0].VendorCode)
	}
}

func TestSyncQueue_EnqueueWithoutProcessorDropsTask(t *testing.T) {
	q := NewSyncQueue()
	if err := q.Enqueue(&ImportTask{VendorCode: "v-1"}); err != nil {
		t.Errorf("Enqueue without processor should not error, got %v", err)
	}
}
