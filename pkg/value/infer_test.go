package value

import "testing"

func TestInfer(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{"nil", nil, "null"},
		{"null", Null{}, "null"},
		{"bool", Of(true), "boolean"},
		{"int", Of(3), "int"},
		{"int32", Of(int32(3)), "int"},
		{"int64", Of(int64(3)), "long"},
		{"float32", Of(float32(1.5)), "float"},
		{"float64", Of(1.5), "double"},
		{"string", Of("x"), "string"},
		{"unknown raw", Primitive{Raw: struct{}{}}, "Any"},
		{"file", NewFile("/data/a.txt"), "File"},
		{"directory", NewDirectory("/data"), "Directory"},
		{"empty array", Array{}, "array<empty>"},
		{"homogeneous array", Array{Of(1), Of(2)}, "array<int>"},
		{"mixed array", Array{Of("a"), Of(1), Of("b")}, "array<union<int|string>>"},
		{"array of files", Array{NewFile("/a"), NewFile("/b")}, "array<File>"},
		{"nested array", Array{Array{}, Array{Of(1)}}, "array<union<array<empty>|array<int>>>"},
		{
			"record",
			NewRecord(Field{"b", Of("x")}, Field{"a", Array{NewFile("/f")}}),
			"record{b:string,a:array<File>}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Infer(tt.value)
			if got.String() != tt.want {
				t.Errorf("Infer() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestInfer_SingleElementTypeIsNotUnion(t *testing.T) {
	got := Infer(Array{Of("x"), Of("y")})
	if got.Kind != TypeArray {
		t.Fatalf("Kind = %v, want array", got.Kind)
	}
	if got.Items.Kind != TypeString {
		t.Errorf("Items.Kind = %v, want string", got.Items.Kind)
	}
	if len(got.Items.Members) != 0 {
		t.Errorf("Items.Members = %v, want none", got.Items.Members)
	}
}

func TestInfer_EmptyArray(t *testing.T) {
	got := Infer(Array{})
	if got.Items == nil || got.Items.Kind != TypeEmpty {
		t.Errorf("Infer(Array{}) = %s, want array<empty>", got)
	}
}

func TestInfer_Deterministic(t *testing.T) {
	v := NewRecord(
		Field{"xs", Array{Of(1), Of("s"), Of(true), Of(2.5), NewFile("/a")}},
		Field{"d", NewDirectory("/d")},
	)
	first := Infer(v).String()
	for i := 0; i < 20; i++ {
		if got := Infer(v).String(); got != first {
			t.Fatalf("run %d: Infer() = %s, want %s", i, got, first)
		}
	}
}

func TestNewUnion(t *testing.T) {
	if got := NewUnion(); got.Kind != TypeEmpty {
		t.Errorf("NewUnion() = %s, want empty", got)
	}
	if got := NewUnion(Simple(TypeInt), Simple(TypeInt)); got.Kind != TypeInt {
		t.Errorf("NewUnion(int, int) = %s, want int", got)
	}
	a := NewUnion(Simple(TypeString), Simple(TypeInt))
	b := NewUnion(Simple(TypeInt), Simple(TypeString), Simple(TypeInt))
	if !a.Equal(b) {
		t.Errorf("union order should not matter: %s vs %s", a, b)
	}
	if len(b.Members) != 2 {
		t.Errorf("len(Members) = %d, want 2", len(b.Members))
	}
}

func TestPrimitiveKind(t *testing.T) {
	if got := PrimitiveKind([]byte("x")); got != TypeAny {
		t.Errorf("PrimitiveKind([]byte) = %v, want Any", got)
	}
	if got := PrimitiveKind(uint64(1)); got != TypeLong {
		t.Errorf("PrimitiveKind(uint64) = %v, want long", got)
	}
}
