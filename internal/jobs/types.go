package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TaskWarmCatalog = "catalog:warm"
	QueueWarm       = "warm"
)

type WarmCatalogPayload struct {
	CatalogID string `json:"catalog_id"`
	Country   string `json:"country,omitempty"`
	Title     string `json:"title,omitempty"`
}

// NewWarmCatalogTask builds a deduplicated warm task; repeats for the same
// id and market within the window are dropped by asynq.
func NewWarmCatalogTask(p WarmCatalogPayload, window time.Duration) (*asynq.Task, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	opts := []asynq.Option{asynq.Queue(QueueWarm), asynq.MaxRetry(5)}
	if window > 0 {
		opts = append(opts, asynq.Unique(window), asynq.TaskID(fmt.Sprintf("warm:%s:%s", p.CatalogID, p.Country)))
	}
	return asynq.NewTask(TaskWarmCatalog, b, opts...), nil
}
