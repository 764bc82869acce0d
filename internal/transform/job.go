package transform

import (
	"fmt"

	"github.com/me/jobbind/internal/pathmap"
	"github.com/me/jobbind/pkg/model"
	"github.com/me/jobbind/pkg/value"
)

// MapInputFilePaths returns a copy of job whose input paths went through
// mapper. A mapping failure is returned as a *model.BindingError wrapping
// the *model.FileMappingError.
func MapInputFilePaths(job *model.Job, mapper pathmap.Mapper) (*model.Job, error) {
	mapped, err := mapRecord(job.Inputs, mapper, job.Config)
	if err != nil {
		return nil, &model.BindingError{Op: "map input file paths", Err: err}
	}
	return job.WithInputs(mapped), nil
}

// MapOutputFilePaths is MapInputFilePaths for the job's outputs.
func MapOutputFilePaths(job *model.Job, mapper pathmap.Mapper) (*model.Job, error) {
	mapped, err := mapRecord(job.Outputs, mapper, job.Config)
	if err != nil {
		return nil, &model.BindingError{Op: "map output file paths", Err: err}
	}
	return job.WithOutputs(mapped), nil
}

// InputFiles returns the top-level files among the job's inputs.
func InputFiles(job *model.Job) []value.FileLike {
	return recordFiles(job.Inputs)
}

// OutputFiles returns the top-level files among the job's outputs.
func OutputFiles(job *model.Job) []value.FileLike {
	return recordFiles(job.Outputs)
}

// UpdateInputFiles returns a copy of job with fn applied to every input file.
func UpdateInputFiles(job *model.Job, fn FileTransformer) (*model.Job, error) {
	updated, err := updateRecord(job.Inputs, fn)
	if err != nil {
		return nil, err
	}
	return job.WithInputs(updated), nil
}

// UpdateOutputFiles returns a copy of job with fn applied to every output file.
func UpdateOutputFiles(job *model.Job, fn FileTransformer) (*model.Job, error) {
	updated, err := updateRecord(job.Outputs, fn)
	if err != nil {
		return nil, err
	}
	return job.WithOutputs(updated), nil
}

func recordFiles(r *value.Record) []value.FileLike {
	if r == nil {
		return nil
	}
	return CollectFiles(r)
}

func mapRecord(r *value.Record, mapper pathmap.Mapper, config map[string]any) (*value.Record, error) {
	if r == nil {
		return nil, nil
	}
	out, err := MapPaths(r, mapper, config)
	if err != nil {
		return nil, err
	}
	return asRecord(out)
}

func updateRecord(r *value.Record, fn FileTransformer) (*value.Record, error) {
	if r == nil {
		return nil, nil
	}
	out, err := UpdateFileValues(r, fn)
	if err != nil {
		return nil, err
	}
	return asRecord(out)
}

func asRecord(v value.Value) (*value.Record, error) {
	rec, ok := v.(*value.Record)
	if !ok {
		return nil, fmt.Errorf("expected record, got %T", v)
	}
	return rec, nil
}
