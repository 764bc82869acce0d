package model

import (
	"time"

	"github.com/me/jobbind/pkg/value"
)

// Pass records one binding pass over a job: where it was staged, the argv it
// produced and the types and files of its inputs.
type Pass struct {
	ID           string            `json:"id"`
	JobID        string            `json:"job_id"`
	WorkDir      string            `json:"workdir"`
	Argv         []string          `json:"argv"`
	Digest       string            `json:"digest"`
	InputTypes   map[string]string `json:"input_types"`
	Files        []string          `json:"files"`
	Staged       map[string]string `json:"staged"`
	Skipped      []string          `json:"skipped,omitempty"`
	ShortCircuit string            `json:"short_circuit,omitempty"`
	Inputs       value.JSON        `json:"inputs"`
	CreatedAt    time.Time         `json:"created_at"`
}
