package model

import "github.com/me/jobbind/pkg/value"

// Job is the resolved job descriptor a binding pass works on. The binding
// core never mutates a caller's Job; every transform returns a new one.
type Job struct {
	ID      string
	Inputs  *value.Record
	Outputs *value.Record
	Config  map[string]any
}

// Clone deep-copies the job's values. Config is copied one level deep; it is
// treated as read-only by the binding core.
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	out := &Job{ID: j.ID}
	out.Inputs = cloneRecord(j.Inputs)
	out.Outputs = cloneRecord(j.Outputs)
	if j.Config != nil {
		out.Config = make(map[string]any, len(j.Config))
		for k, v := range j.Config {
			out.Config[k] = v
		}
	}
	return out
}

// WithInputs returns a copy of the job carrying inputs.
func (j *Job) WithInputs(inputs *value.Record) *Job {
	out := j.Clone()
	out.Inputs = inputs
	return out
}

// WithOutputs returns a copy of the job carrying outputs.
func (j *Job) WithOutputs(outputs *value.Record) *Job {
	out := j.Clone()
	out.Outputs = outputs
	return out
}

func cloneRecord(r *value.Record) *value.Record {
	if r == nil {
		return nil
	}
	return value.Clone(r).(*value.Record)
}
