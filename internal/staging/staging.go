// Package staging materializes a job's declared file requirements in its
// working directory and points the job's inputs at the staged copies.
package staging

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/me/jobbind/internal/pathmap"
	"github.com/me/jobbind/internal/transform"
	"github.com/me/jobbind/pkg/model"
	"github.com/me/jobbind/pkg/value"
)

// Requirement is one entry to place in the working directory. The set of
// implementations is closed: TextFile, InputFile and InputDirectory.
type Requirement interface {
	Filename() string
	isRequirement()
}

// TextFile writes Content verbatim to Filename.
type TextFile struct {
	Name    string
	Content string
}

// InputFile stages an existing file. LinkEnabled selects a symlink over a copy.
type InputFile struct {
	Name        string
	Content     value.FileLike
	LinkEnabled bool
}

// InputDirectory stages an existing directory. Directories are always copied.
type InputDirectory struct {
	Name        string
	Content     value.FileLike
	LinkEnabled bool
}

func (r TextFile) Filename() string       { return r.Name }
func (r InputFile) Filename() string      { return r.Name }
func (r InputDirectory) Filename() string { return r.Name }

func (TextFile) isRequirement()       {}
func (InputFile) isRequirement()      {}
func (InputDirectory) isRequirement() {}

// Result contains staging results.
type Result struct {
	Job          *model.Job        // Job with staged input paths
	Staged       map[string]string // Maps original source path -> staged path
	Skipped      []string          // Filenames whose source did not exist
	ShortCircuit string            // Filename of the literal that stopped staging, if any
}

// Stager stages file requirements through a path mapper.
type Stager struct {
	mapper pathmap.Mapper
	logger *slog.Logger
}

// NewStager creates a Stager. A nil mapper means paths are used as is.
func NewStager(mapper pathmap.Mapper, logger *slog.Logger) *Stager {
	if mapper == nil {
		mapper = pathmap.Identity
	}
	return &Stager{
		mapper: mapper,
		logger: logger.With("component", "stager"),
	}
}

// Stage processes reqs in order into workDir and returns the job rewritten
// to point at the staged locations. job itself is not modified.
//
// An InputFile or InputDirectory whose content is a literal (no path and no
// location) gets an empty placeholder and ends staging for the whole job:
// later requirements are not processed. Sources that do not exist after
// mapping are skipped, though inputs naming them still point at the
// destination. Filenames must be local to workDir. Filesystem and mapping
// failures are fatal.
func (s *Stager) Stage(job *model.Job, reqs []Requirement, workDir string) (*Result, error) {
	res := &Result{Staged: make(map[string]string)}

	for i, req := range reqs {
		if !filepath.IsLocal(req.Filename()) {
			return nil, &StageError{Filename: req.Filename(), Op: "resolve destination", Err: ErrNonLocalFilename}
		}
		dest := filepath.Join(workDir, req.Filename())
		stop, err := s.stageOne(job, req, dest, res)
		if err != nil {
			return nil, err
		}
		if stop {
			res.ShortCircuit = req.Filename()
			s.logger.Warn("literal requirement ends staging",
				"job", job.ID, "filename", req.Filename(), "remaining", len(reqs)-i-1)
			break
		}
	}

	staged, err := transform.UpdateInputFiles(job, func(f value.FileLike) (value.FileLike, error) {
		if dest, ok := res.Staged[stagedKey(f)]; ok {
			value.SetPath(f, dest)
		}
		return f, nil
	})
	if err != nil {
		return nil, err
	}
	res.Job = staged
	return res, nil
}

// stageOne stages a single requirement. It reports true when staging must
// stop after this requirement.
func (s *Stager) stageOne(job *model.Job, req Requirement, dest string, res *Result) (bool, error) {
	switch r := req.(type) {
	case TextFile:
		if err := writeFile(dest, []byte(r.Content)); err != nil {
			return false, &StageError{Filename: r.Name, Op: "write", Err: err}
		}
		s.logger.Debug("staged text", "filename", r.Name, "bytes", len(r.Content))
		return false, nil
	case InputFile:
		return s.stageInput(job, r.Name, r.Content, false, r.LinkEnabled, dest, res)
	case InputDirectory:
		return s.stageInput(job, r.Name, r.Content, true, r.LinkEnabled, dest, res)
	default:
		return false, fmt.Errorf("unknown requirement type %T", req)
	}
}

func (s *Stager) stageInput(job *model.Job, name string, content value.FileLike, isDir, link bool, dest string, res *Result) (bool, error) {
	if content == nil || content.IsLiteral() {
		if err := createPlaceholder(dest, isDir); err != nil {
			return true, &StageError{Filename: name, Op: "create placeholder", Err: err}
		}
		return true, nil
	}

	srcPath, err := sourcePath(content)
	if err != nil {
		return false, &StageError{Filename: name, Op: "resolve source", Err: err}
	}
	mapped, err := s.mapper.Map(srcPath, job.Config)
	if err != nil {
		var fme *model.FileMappingError
		if errors.As(err, &fme) {
			return false, err
		}
		return false, &model.FileMappingError{Path: srcPath, Err: err}
	}
	res.Staged[srcPath] = dest

	info, err := os.Stat(mapped)
	if os.IsNotExist(err) {
		s.logger.Debug("source missing, skipped", "filename", name, "source", mapped)
		res.Skipped = append(res.Skipped, name)
		return false, nil
	}
	if err != nil {
		return false, &StageError{Filename: name, Op: "stat", Err: err}
	}

	switch {
	case info.IsDir():
		err = copyDir(mapped, dest)
		s.logger.Debug("staged directory", "filename", name, "source", mapped)
	case link:
		err = linkFile(mapped, dest)
		s.logger.Debug("linked file", "filename", name, "source", mapped)
	default:
		err = copyFile(mapped, dest)
		s.logger.Debug("copied file", "filename", name, "source", mapped)
	}
	if err != nil {
		return false, &StageError{Filename: name, Op: "stage", Err: err}
	}
	return false, nil
}

// stagedKey is the staging table key an input is looked up by: its path, or
// the path of its location when it has none.
func stagedKey(f value.FileLike) string {
	if p := f.Base().Path; p != "" {
		return p
	}
	p, err := sourcePath(f)
	if err != nil {
		return ""
	}
	return p
}

// sourcePath prefers the location (scheme file when absent) over the path.
func sourcePath(f value.FileLike) (string, error) {
	base := f.Base()
	if base.Location != "" {
		return value.PathFromLocation(base.Location)
	}
	return base.Path, nil
}

// ErrNonLocalFilename is returned for a requirement filename that is absolute
// or climbs out of the working directory.
var ErrNonLocalFilename = errors.New("filename must be a relative path inside the working directory")

// StageError reports a filesystem failure while staging one requirement.
type StageError struct {
	Filename string
	Op       string
	Err      error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %s: %v", e.Filename, e.Op, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
