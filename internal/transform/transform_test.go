package transform

import (
	"errors"
	"strings"
	"testing"

	"github.com/me/jobbind/internal/pathmap"
	"github.com/me/jobbind/pkg/model"
	"github.com/me/jobbind/pkg/value"
)

func fileWithIndex(p string) *value.FileValue {
	f := value.NewFile(p)
	f.SecondaryFiles = []value.FileLike{value.NewFile(p + ".bai")}
	return f
}

func sampleInputs() *value.Record {
	dir := value.NewDirectory("/data/ref")
	dir.Listing = []value.FileLike{value.NewFile("/data/ref/genome.fa")}
	return value.NewRecord(
		value.Field{Name: "a", Value: fileWithIndex("/data/a.bam")},
		value.Field{Name: "b", Value: value.Array{value.NewFile("/data/b1.txt"), value.NewFile("/data/b2.txt")}},
		value.Field{Name: "ref", Value: dir},
		value.Field{Name: "n", Value: value.Of(3)},
	)
}

func TestDeepCopy_NoSharedState(t *testing.T) {
	orig := sampleInputs()
	cp := DeepCopy(orig).(*value.Record)
	a, _ := cp.Get("a")
	a.(*value.FileValue).SecondaryFiles[0].Base().Path = "/changed"
	if !value.Equal(orig, sampleInputs()) {
		t.Error("mutating the copy changed the original")
	}
}

func TestUpdateFileValues_Identity(t *testing.T) {
	orig := sampleInputs()
	got, err := UpdateFileValues(orig, func(f value.FileLike) (value.FileLike, error) { return f, nil })
	if err != nil {
		t.Fatalf("UpdateFileValues: %v", err)
	}
	if !value.Equal(got, orig) {
		t.Error("identity transform changed the tree")
	}
}

func TestUpdateFileValues_RewritesWithoutTouchingInput(t *testing.T) {
	orig := sampleInputs()
	var visited []string
	got, err := UpdateFileValues(orig, func(f value.FileLike) (value.FileLike, error) {
		visited = append(visited, f.Base().Path)
		value.SetPath(f, strings.Replace(f.Base().Path, "/data", "/work", 1))
		return f, nil
	})
	if err != nil {
		t.Fatalf("UpdateFileValues: %v", err)
	}
	want := []string{"/data/a.bam", "/data/b1.txt", "/data/b2.txt", "/data/ref"}
	if strings.Join(visited, ",") != strings.Join(want, ",") {
		t.Errorf("visited = %v, want %v", visited, want)
	}
	a, _ := got.(*value.Record).Get("a")
	if p := a.(value.FileLike).Base().Path; p != "/work/a.bam" {
		t.Errorf("a.path = %q, want /work/a.bam", p)
	}
	if !value.Equal(orig, sampleInputs()) {
		t.Error("input tree was modified")
	}
}

func TestUpdateFileValues_ErrorAborts(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	got, err := UpdateFileValues(sampleInputs(), func(f value.FileLike) (value.FileLike, error) {
		calls++
		if calls == 2 {
			return nil, boom
		}
		return f, nil
	})
	if got != nil {
		t.Errorf("got partial result %v, want nil", got)
	}
	var be *model.BindingError
	if !errors.As(err, &be) {
		t.Fatalf("error = %v, want BindingError", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want wrapped cause", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestCollectFiles(t *testing.T) {
	f1 := fileWithIndex("/data/f1")
	f2 := value.NewFile("/data/f2")
	f3 := value.NewFile("/data/f3")
	v := value.NewRecord(
		value.Field{Name: "a", Value: f1},
		value.Field{Name: "b", Value: value.Array{f2, f3}},
	)
	got := CollectFiles(v)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3: %v", len(got), got)
	}
	for i, want := range []value.FileLike{f1, f2, f3} {
		if !value.Equal(got[i], want) {
			t.Errorf("got[%d] = %v, want %v", i, got[i].Base().Path, want.Base().Path)
		}
	}
	for _, f := range got {
		if f.Base().Path == "/data/f1.bai" {
			t.Error("secondary file collected as a top-level file")
		}
	}
}

func TestCollectFiles_Dedup(t *testing.T) {
	v := value.Array{value.NewFile("/x"), value.NewFile("/x"), value.NewDirectory("/x")}
	if got := CollectFiles(v); len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
}

func TestMapPaths_RelativeTargetStaysRelative(t *testing.T) {
	toInputs := pathmap.MapperFunc(func(p string, _ map[string]any) (string, error) {
		return "inputs/" + strings.TrimPrefix(p, "/data/"), nil
	})
	got, err := MapPaths(value.NewFile("/data/a.bam"), toInputs, nil)
	if err != nil {
		t.Fatalf("MapPaths: %v", err)
	}
	f := got.(*value.FileValue)
	if f.Path != "inputs/a.bam" || f.Location != "file:inputs/a.bam" {
		t.Errorf("path %q location %q, want inputs/a.bam and file:inputs/a.bam", f.Path, f.Location)
	}
}

func TestMapPaths_DescendsEverywhere(t *testing.T) {
	m := pathmap.NewPrefixMapper(false, pathmap.Rule{From: "/data", To: "/mnt"})
	got, err := MapPaths(sampleInputs(), m, nil)
	if err != nil {
		t.Fatalf("MapPaths: %v", err)
	}
	rec := got.(*value.Record)

	a, _ := rec.Get("a")
	af := a.(*value.FileValue)
	if af.Path != "/mnt/a.bam" || af.Dirname != "/mnt" || af.Location != "file:///mnt/a.bam" {
		t.Errorf("a = path %q dirname %q location %q", af.Path, af.Dirname, af.Location)
	}
	if p := af.SecondaryFiles[0].Base().Path; p != "/mnt/a.bam.bai" {
		t.Errorf("secondary path = %q", p)
	}

	ref, _ := rec.Get("ref")
	if p := ref.(*value.DirectoryValue).Listing[0].Base().Path; p != "/mnt/ref/genome.fa" {
		t.Errorf("listing path = %q", p)
	}
}

func TestMapPaths_Composable(t *testing.T) {
	f := pathmap.NewPrefixMapper(false, pathmap.Rule{From: "/data", To: "/stage"})
	g := pathmap.NewPrefixMapper(false, pathmap.Rule{From: "/stage", To: "/container"})

	once, err := MapPaths(sampleInputs(), f, nil)
	if err != nil {
		t.Fatal(err)
	}
	twice, err := MapPaths(once, g, nil)
	if err != nil {
		t.Fatal(err)
	}
	composed, err := MapPaths(sampleInputs(), pathmap.Chain(f, g), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !value.Equal(twice, composed) {
		t.Error("mapping with f then g differs from mapping with g∘f")
	}
}

func TestMapPaths_FailureIsNonAtomic(t *testing.T) {
	fail := pathmap.MapperFunc(func(p string, _ map[string]any) (string, error) {
		if strings.HasSuffix(p, ".bai") {
			return "", errors.New("unmappable")
		}
		return "/mapped" + p, nil
	})
	orig := sampleInputs()
	got, err := MapPaths(orig, fail, nil)
	var fme *model.FileMappingError
	if !errors.As(err, &fme) {
		t.Fatalf("error = %v, want FileMappingError", err)
	}
	if fme.Path != "/data/a.bam.bai" {
		t.Errorf("failed path = %q", fme.Path)
	}
	a, _ := got.(*value.Record).Get("a")
	if p := a.(value.FileLike).Base().Path; p != "/mapped/data/a.bam" {
		t.Errorf("node visited before failure path = %q, want rewritten", p)
	}
	b, _ := got.(*value.Record).Get("b")
	if p := b.(value.Array)[0].(value.FileLike).Base().Path; p != "/data/b1.txt" {
		t.Errorf("node after failure path = %q, want untouched", p)
	}
	if !value.Equal(orig, sampleInputs()) {
		t.Error("input tree was modified")
	}
}

func TestMapInputFilePaths(t *testing.T) {
	job := &model.Job{
		ID:      "job-1",
		Inputs:  sampleInputs(),
		Outputs: value.NewRecord(value.Field{Name: "out", Value: value.NewFile("/data/out.txt")}),
		Config: map[string]any{
			pathmap.ConfigKey: []any{map[string]any{"from": "/data", "to": "/c"}},
		},
	}
	mapped, err := MapInputFilePaths(job, pathmap.NewPrefixMapper(true))
	if err != nil {
		t.Fatalf("MapInputFilePaths: %v", err)
	}
	files := InputFiles(mapped)
	if len(files) != 4 {
		t.Fatalf("InputFiles = %d, want 4", len(files))
	}
	for _, f := range files {
		if !strings.HasPrefix(f.Base().Path, "/c/") {
			t.Errorf("input path %q not mapped", f.Base().Path)
		}
	}
	if p := OutputFiles(mapped)[0].Base().Path; p != "/data/out.txt" {
		t.Errorf("output path = %q, want unchanged", p)
	}
	if p := InputFiles(job)[0].Base().Path; p != "/data/a.bam" {
		t.Errorf("original job modified: %q", p)
	}

	out, err := MapOutputFilePaths(job, pathmap.NewPrefixMapper(true))
	if err != nil {
		t.Fatalf("MapOutputFilePaths: %v", err)
	}
	if p := OutputFiles(out)[0].Base().Path; p != "/c/out.txt" {
		t.Errorf("mapped output path = %q", p)
	}
}

func TestMapInputFilePaths_Failure(t *testing.T) {
	job := &model.Job{ID: "job-1", Inputs: sampleInputs()}
	_, err := MapInputFilePaths(job, pathmap.NewPrefixMapper(true))
	var be *model.BindingError
	if !errors.As(err, &be) {
		t.Fatalf("error = %v, want BindingError", err)
	}
	var fme *model.FileMappingError
	if !errors.As(err, &fme) {
		t.Errorf("error = %v, want wrapped FileMappingError", err)
	}
}

func TestUpdateOutputFiles(t *testing.T) {
	job := &model.Job{
		Outputs: value.NewRecord(value.Field{Name: "out", Value: value.NewFile("/w/out.txt")}),
	}
	got, err := UpdateOutputFiles(job, func(f value.FileLike) (value.FileLike, error) {
		f.(*value.FileValue).Checksum = "sha1$abc"
		return f, nil
	})
	if err != nil {
		t.Fatalf("UpdateOutputFiles: %v", err)
	}
	if c := OutputFiles(got)[0].(*value.FileValue).Checksum; c != "sha1$abc" {
		t.Errorf("Checksum = %q", c)
	}
	if c := OutputFiles(job)[0].(*value.FileValue).Checksum; c != "" {
		t.Errorf("original job modified: Checksum = %q", c)
	}
}
