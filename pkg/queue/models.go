package queue

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// JobType identifies the kind of scheduled drop work.
type JobType string

const (
	// JobTypeReveal transitions a pending drop to revealed and pushes
	// the location/code to the owning actor.
	JobTypeReveal JobType = "reveal"

	// JobTypeExpiryCheck evaluates whether a revealed drop should
	// expire based on the actor's last reported position.
	JobTypeExpiryCheck JobType = "expiry_check"
)

// Job is a delayed unit of drop work. Jobs are persisted in the
// scheduler queue and may fire long after issuance, so they never
// carry the drop itself, only the actor and the drop id. Handlers
// re-fetch the registry entry and compare ids before acting; a job
// whose drop has been superseded or consumed is a no-op.
type Job struct {
	JobID  string    `json:"job_id"`
	Type   JobType   `json:"type"`
	Actor  string    `json:"actor"`
	DropID uuid.UUID `json:"drop_id"`

	EnqueuedAt time.Time `json:"enqueued_at"`
}

// NewJob builds a job with a fresh id.
func NewJob(t JobType, actor string, dropID uuid.UUID) *Job {
	return &Job{
		JobID:      uuid.New().String(),
		Type:       t,
		Actor:      actor,
		DropID:     dropID,
		EnqueuedAt: time.Now(),
	}
}

// ToJSON converts the job to JSON bytes for Redis.
func (j *Job) ToJSON() ([]byte, error) {
	return json.Marshal(j)
}

// FromJSON parses a job from JSON bytes.
func FromJSON(data []byte) (*Job, error) {
	var j Job
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, err
	}
	return &j, nil
}
