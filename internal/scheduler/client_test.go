package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
)

type fixedSchedulerConfig struct {
	redisURL string
	queue    string
}

func (c fixedSchedulerConfig) GetRedisURL() string              { return c.redisURL }
func (c fixedSchedulerConfig) GetRedisTLSInsecure() bool        { return false }
func (c fixedSchedulerConfig) GetAsynqQueueName() string        { return c.queue }
func (c fixedSchedulerConfig) GetAsynqConcurrency() int         { return 1 }
func (c fixedSchedulerConfig) GetIngestInterval() time.Duration { return 12 * time.Hour }

func TestIngestionRunTask_RoundTrip(t *testing.T) {
	payload := IngestionRunPayload{CategoryCodes: []string{"541611", "541690"}, LookbackDays: 7}

	task, err := NewIngestionRunTask(payload)
	if err != nil {
		t.Fatalf("NewIngestionRunTask: %v", err)
	}
	if task.Type() != TaskIngestionRun {
		t.Errorf("task type = %q, want %q", task.Type(), TaskIngestionRun)
	}

	got, err := ParseIngestionRunPayload(task)
	if err != nil {
		t.Fatalf("ParseIngestionRunPayload: %v", err)
	}
	if len(got.CategoryCodes) != 2 || got.CategoryCodes[0] != "541611" || got.LookbackDays != 7 {
		t.Errorf("payload = %+v", got)
	}
}

func TestClient_RequiresRedisURL(t *testing.T) {
	if _, err := NewClient(fixedSchedulerConfig{}); err == nil {
		t.Fatal("expected error without redis url")
	}
}

func TestClient_EnqueueIngestionRun(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := fixedSchedulerConfig{redisURL: "redis://" + mr.Addr(), queue: "bidlens"}
	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	err = client.EnqueueIngestionRun(context.Background(), IngestionRunPayload{
		CategoryCodes: []string{"541611"},
		LookbackDays:  7,
	})
	if err != nil {
		t.Fatalf("EnqueueIngestionRun: %v", err)
	}

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: mr.Addr()})
	defer inspector.Close()

	tasks, err := inspector.ListPendingTasks("bidlens")
	if err != nil {
		t.Fatalf("ListPendingTasks: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("got %d pending tasks, want 1", len(tasks))
	}
	if tasks[0].Type != TaskIngestionRun {
		t.Errorf("task type = %q, want %q", tasks[0].Type, TaskIngestionRun)
	}
}
