// Package scheduler runs the periodic ingestion trigger over asynq: a
// dispatcher enqueues runs on an interval and a worker executes them.
package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskIngestionRun = "ingestion.run"

type IngestionRunPayload struct {
	CategoryCodes []string `json:"categoryCodes"`
	LookbackDays  int      `json:"lookbackDays"`
}

func NewIngestionRunTask(payload IngestionRunPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIngestionRun, data), nil
}

func ParseIngestionRunPayload(task *asynq.Task) (IngestionRunPayload, error) {
	var payload IngestionRunPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return IngestionRunPayload{}, err
	}
	return payload, nil
}
