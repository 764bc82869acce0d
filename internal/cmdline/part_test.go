package cmdline

import (
	"reflect"
	"testing"

	"github.com/me/jobbind/pkg/value"
)

func boolPtr(b bool) *bool { return &b }

func TestFlatten_KeyValueOrder(t *testing.T) {
	b := NewPart(0, Tokens("-b", "2")...).WithKeyValue("-b")
	a := NewPart(0, Tokens("-a", "1")...).WithKeyValue("-a")
	root := NewPart(0, b, a)

	want := []string{"-a", "1", "-b", "2"}
	for i := 0; i < 10; i++ {
		if got := root.Flatten(); !reflect.DeepEqual(got, want) {
			t.Fatalf("Flatten() = %v, want %v", got, want)
		}
	}
}

func TestFlatten_ArgsArrayOrder(t *testing.T) {
	second := NewPart(1, Token("second")).WithArgsArrayOrder(2)
	first := NewPart(1, Token("first")).WithArgsArrayOrder(0)
	got := NewPart(0, second, first).Flatten()

	want := []string{"first", "second"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Flatten() = %v, want %v", got, want)
	}
}

func TestFlatten_PositionFirst(t *testing.T) {
	late := NewPart(5, Token("late")).WithKeyValue("a")
	early := NewPart(-1, Token("early")).WithKeyValue("z")
	mid := NewPart(2, Token("mid"))
	got := NewPart(0, late, mid, early).Flatten()

	want := []string{"early", "mid", "late"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Flatten() = %v, want %v", got, want)
	}
}

func TestFlatten_MissingKeyKeepsOrder(t *testing.T) {
	x := NewPart(0, Token("x"))
	y := NewPart(0, Token("y")).WithKeyValue("a")
	z := NewPart(0, Token("z"))
	got := NewPart(0, x, y, z).Flatten()

	want := []string{"x", "y", "z"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Flatten() = %v, want %v", got, want)
	}
}

func TestFlatten_OneSidedArrayOrderFallsBackToKey(t *testing.T) {
	b := NewPart(0, Token("b")).WithKeyValue("b").WithArgsArrayOrder(0)
	a := NewPart(0, Token("a")).WithKeyValue("a")
	got := NewPart(0, b, a).Flatten()

	want := []string{"a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Flatten() = %v, want %v", got, want)
	}
}

func TestFlatten_Nested(t *testing.T) {
	items := NewPart(1,
		NewPart(1, Tokens("-I", "b.txt")...).WithArgsArrayOrder(1),
		NewPart(1, Tokens("-I", "a.txt")...).WithArgsArrayOrder(0),
	).WithKeyValue("inputs")
	verbose := NewPart(0, Token("-v")).WithKeyValue("verbose")
	out := NewPart(2, Tokens("-o", "out.bam")...).WithKeyValue("out")

	got := NewPart(0, out, items, verbose).Flatten()
	want := []string{"-v", "-I", "a.txt", "-I", "b.txt", "-o", "out.bam"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Flatten() = %v, want %v", got, want)
	}
}

func TestFlatten_TokensAmongParts(t *testing.T) {
	got := NewPart(0, Token("lit"), NewPart(3, Token("p3")), NewPart(1, Token("p1"))).Flatten()
	if len(got) != 3 {
		t.Fatalf("Flatten() = %v", got)
	}
	// Deterministic regardless of where tokens land.
	again := NewPart(0, Token("lit"), NewPart(3, Token("p3")), NewPart(1, Token("p1"))).Flatten()
	if !reflect.DeepEqual(got, again) {
		t.Errorf("Flatten() not deterministic: %v vs %v", got, again)
	}
}

func TestSort_DoesNotMutate(t *testing.T) {
	b := NewPart(1, Token("b"))
	a := NewPart(0, Token("a"))
	root := NewPart(0, b, a)

	sorted := root.Sort()
	if sorted.Children[0] != Node(a) {
		t.Errorf("sorted first child = %v, want a", sorted.Children[0])
	}
	if root.Children[0] != Node(b) {
		t.Error("Sort modified the receiver")
	}
	root.Flatten()
	if root.Children[0] != Node(b) {
		t.Error("Flatten modified the receiver")
	}
}

func TestBuild(t *testing.T) {
	threads := NewPart(1, PrefixedTokens("-t", "4", nil)...).WithKeyValue("threads")
	ref := NewPart(2, Token("/ref/genome.fa")).WithKeyValue("reference").AsFile()
	got := Build([]string{"bwa", "mem"}, ref, nil, threads)

	want := []string{"bwa", "mem", "-t", "4", "/ref/genome.fa"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Build() = %v, want %v", got, want)
	}
}

func TestDigest(t *testing.T) {
	a := Digest([]string{"echo", "a b"})
	b := Digest([]string{"echo", "a", "b"})
	if a == b {
		t.Error("digest must distinguish token boundaries")
	}
	if a != Digest([]string{"echo", "a b"}) {
		t.Error("digest not stable")
	}
}

func TestPrefixedTokens(t *testing.T) {
	tests := []struct {
		name     string
		prefix   string
		separate *bool
		want     []Node
	}{
		{"no prefix", "", nil, Tokens("v")},
		{"default separate", "-e", nil, Tokens("-e", "v")},
		{"joined", "-e", boolPtr(false), Tokens("-ev")},
		{"explicit separate", "--x=", boolPtr(true), Tokens("--x=", "v")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PrefixedTokens(tt.prefix, "v", tt.separate); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("PrefixedTokens() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRenderValue(t *testing.T) {
	tests := []struct {
		name string
		v    value.Value
		sep  string
		want string
	}{
		{"null", value.Null{}, "", ""},
		{"string", value.Of("hello world"), "", "hello world"},
		{"int", value.Of(4), "", "4"},
		{"true", value.Of(true), "", "true"},
		{"false", value.Of(false), "", ""},
		{"file", value.NewFile("/data/a.txt"), "", "/data/a.txt"},
		{"location only", &value.FileValue{FileBase: value.FileBase{Location: "file:///a"}}, "", "file:///a"},
		{"array", value.Array{value.Of("a"), value.Of(1), value.Null{}}, "", "a 1"},
		{"array sep", value.Array{value.Of("a"), value.Of("b")}, ",", "a,b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RenderValue(tt.v, tt.sep); got != tt.want {
				t.Errorf("RenderValue() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestArrayParts(t *testing.T) {
	items := value.Array{value.NewFile("/b"), value.Null{}, value.NewFile("/a")}
	parts := ArrayParts(3, items, "-I", nil)
	if len(parts) != 2 {
		t.Fatalf("len = %d, want 2", len(parts))
	}
	if !parts[0].IsFile || *parts[1].ArgsArrayOrder != 2 {
		t.Errorf("parts = %v, %v", parts[0], parts[1])
	}
	root := NewPart(0)
	for i := len(parts) - 1; i >= 0; i-- {
		root.Children = append(root.Children, parts[i])
	}
	want := []string{"-I", "/b", "-I", "/a"}
	if got := root.Flatten(); !reflect.DeepEqual(got, want) {
		t.Errorf("Flatten() = %v, want %v", got, want)
	}
}

func TestNormalizeBaseCommand(t *testing.T) {
	if got := NormalizeBaseCommand("echo"); !reflect.DeepEqual(got, []string{"echo"}) {
		t.Errorf("string = %v", got)
	}
	if got := NormalizeBaseCommand([]any{"bwa", "mem", 3}); !reflect.DeepEqual(got, []string{"bwa", "mem"}) {
		t.Errorf("list = %v", got)
	}
	if got := NormalizeBaseCommand(nil); got != nil {
		t.Errorf("nil = %v", got)
	}
}
