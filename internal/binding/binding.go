// Package binding runs binding passes: it stages a job's requirements,
// translates its input paths, infers input types and flattens the command
// line into a deterministic argv.
package binding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/me/jobbind/internal/cmdline"
	"github.com/me/jobbind/internal/jobdoc"
	"github.com/me/jobbind/internal/pathmap"
	"github.com/me/jobbind/internal/staging"
	"github.com/me/jobbind/internal/store"
	"github.com/me/jobbind/internal/transform"
	"github.com/me/jobbind/pkg/model"
	"github.com/me/jobbind/pkg/value"
)

// Pass is the outcome of one binding pass.
type Pass = model.Pass

// ErrNoStore is returned by lookups on a Service built without a store.
var ErrNoStore = errors.New("pass persistence is not configured")

// Options configures a Service.
type Options struct {
	MapInputs bool   // Translate staged input paths through the mapper
	WorkRoot  string // Parent of per-pass working directories
}

// Option modifies Options.
type Option func(*Options)

// WithMapInputs enables input path mapping after staging.
func WithMapInputs(enabled bool) Option {
	return func(o *Options) { o.MapInputs = enabled }
}

// WithWorkRoot sets the directory under which job working directories are
// created when a document names none.
func WithWorkRoot(root string) Option {
	return func(o *Options) { o.WorkRoot = root }
}

// Service runs binding passes and optionally records them.
type Service struct {
	mapper pathmap.Mapper
	stager *staging.Stager
	store  store.Store
	logger *slog.Logger
	opts   Options
}

// New creates a Service. st may be nil to disable persistence, and a nil
// mapper leaves paths unchanged.
func New(st store.Store, mapper pathmap.Mapper, logger *slog.Logger, opts ...Option) *Service {
	if mapper == nil {
		mapper = pathmap.Identity
	}
	o := Options{WorkRoot: "work"}
	for _, opt := range opts {
		opt(&o)
	}
	return &Service{
		mapper: mapper,
		stager: staging.NewStager(mapper, logger),
		store:  st,
		logger: logger.With("component", "binding"),
		opts:   o,
	}
}

// Bind runs a pass over doc. doc is not modified.
func (s *Service) Bind(ctx context.Context, doc *jobdoc.Document) (*Pass, error) {
	if doc == nil || doc.Job == nil {
		return nil, fmt.Errorf("bind: document has no job")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	passID := "pass_" + uuid.New().String()
	job := doc.Job.Clone()
	if job.Inputs == nil {
		job.Inputs = value.NewRecord()
	}

	workDir, err := s.workDir(doc, passID)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return nil, fmt.Errorf("create workdir %s: %w", workDir, err)
	}

	staged, err := s.stager.Stage(job, doc.Requirements, workDir)
	if err != nil {
		return nil, &model.BindingError{Op: "stage requirements", Err: err}
	}
	job = staged.Job

	if s.opts.MapInputs {
		if job, err = transform.MapInputFilePaths(job, s.mapper); err != nil {
			return nil, err
		}
	}

	argv := cmdline.Build(doc.BaseCommand, doc.CommandLine...)
	pass := &Pass{
		ID:           passID,
		JobID:        job.ID,
		WorkDir:      workDir,
		Argv:         argv,
		Digest:       cmdline.Digest(argv),
		InputTypes:   InputTypes(job.Inputs),
		Files:        filePaths(transform.InputFiles(job)),
		Staged:       staged.Staged,
		Skipped:      staged.Skipped,
		ShortCircuit: staged.ShortCircuit,
		Inputs:       value.JSON{Value: job.Inputs},
		CreatedAt:    time.Now().UTC(),
	}

	if s.store != nil {
		if err := s.store.CreatePass(ctx, pass); err != nil {
			return nil, fmt.Errorf("persist pass %s: %w", pass.ID, err)
		}
	}

	s.logger.Info("binding pass complete",
		"pass_id", pass.ID,
		"job_id", pass.JobID,
		"digest", pass.Digest,
		"args", len(pass.Argv),
		"staged", len(pass.Staged),
	)
	return pass, nil
}

// Get returns a recorded pass, or nil when none has id.
func (s *Service) Get(ctx context.Context, id string) (*Pass, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	return s.store.GetPass(ctx, id)
}

// List returns a page of recorded passes and the total count.
func (s *Service) List(ctx context.Context, opts model.ListOptions) ([]*Pass, int, error) {
	if s.store == nil {
		return nil, 0, ErrNoStore
	}
	return s.store.ListPasses(ctx, opts)
}

// FindByDigest returns the most recent pass that produced the argv digest,
// or nil.
func (s *Service) FindByDigest(ctx context.Context, digest string) (*Pass, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	return s.store.FindPassByDigest(ctx, digest)
}

// InputTypes infers the type of every input field.
func InputTypes(inputs *value.Record) map[string]string {
	types := make(map[string]string)
	if inputs == nil {
		return types
	}
	for _, f := range inputs.Fields {
		types[f.Name] = value.Infer(f.Value).String()
	}
	return types
}

// workDir resolves the pass directory: the document's own workdir, or a
// fresh WorkRoot/<job>/<pass> so repeated passes never collide.
func (s *Service) workDir(doc *jobdoc.Document, passID string) (string, error) {
	dir := doc.WorkDir
	if dir == "" {
		dir = filepath.Join(s.opts.WorkRoot, dirName(doc.Job.ID), passID)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve workdir %s: %w", dir, err)
	}
	return abs, nil
}

// dirName turns a job id into a single path element.
func dirName(id string) string {
	name := strings.NewReplacer("/", "_", "\\", "_").Replace(id)
	if name == "" || name == "." || name == ".." {
		return "job"
	}
	return name
}

func filePaths(files []value.FileLike) []string {
	paths := make([]string, 0, len(files))
	for _, f := range files {
		if p := f.Base().Path; p != "" {
			paths = append(paths, p)
		} else {
			paths = append(paths, f.Base().Location)
		}
	}
	return paths
}
