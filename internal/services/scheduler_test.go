package services

import (
	"testing"

	"github.com/formpulse/backend/internal/config"
)

type recordingQueue struct {
	tasks []*ImportTask
}

func (q *recordingQueue) Enqueue(task *ImportTask) error {
	q.tasks = append(q.tasks, task)
	return nil
}

func (q *recordingQueue) IsAsync() bool { return false }
func (q *recordingQueue) Close() error  { return nil }

func TestSyncScheduler_EnqueuesAllVendors(t *testing.T) {
	queue := &recordingQueue{}
	cfg := &config.ExternalSourceConfig{
		SortType: "score",
		SyncCron: "0 3 * * *",
		Vendors: []config.VendorSource{
			{VendorCode: "v-1", FormID: "form-1", ServiceName: "snappfood"},
			{VendorCode: "v-2", FormID: "form-2", ServiceName: "snappfood"},
		},
	}

	s := NewSyncScheduler(cfg, queue)
	s.enqueueAll()

	if len(queue.tasks) != 2 {
		t.Fatalf("enqueued %d tasks, expected 2", len(queue.tasks))
	}
	if queue.tasks[0].VendorCode != "v-1" || queue.tasks[1].VendorCode != "v-2" {
		t.Errorf("tasks carry wrong vendors: %+v", queue.tasks)
	}
	for _, task := range queue.tasks {
		if !task.Promote {
			t.Error("scheduled syncs must promote after import")
		}
		if task.SortType != "score" {
			t.Errorf("SortType = %q, expected score", task.SortType)
		}
	}
}

func TestSyncScheduler_DormantWithoutSchedule(t *testing.T) {
	s := NewSyncScheduler(&config.ExternalSourceConfig{}, &recordingQueue{})
	s.Start()
	defer s.Stop()

	if s.cron != nil {
		t.Error("scheduler must stay dormant without a cron expression")
	}
}
