package effect

import (
	"testing"

	"github.com/decker502/fxlib/internal/schema"
)

func TestEqual(t *testing.T) {
	red := schema.Color{R: 255}
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"Same float", 1.0, 1.0, true},
		{"Int vs float", 5, 5.0, true},
		{"Different numbers", 1.0, 1.5, false},
		{"Number vs string", 1.0, "1", false},
		{"Bools", true, true, true},
		{"Bool mismatch", true, false, false},
		{"Vectors", []float64{1, 2, 3}, []float64{1, 2, 3}, true},
		{"Vector length", []float64{1, 2}, []float64{1, 2, 3}, false},
		{"Vector element", []float64{1, 2, 3}, []float64{1, 2, 4}, false},
		{"Color vs hex", red, "#ff0000", true},
		{"Hex vs short hex", "#f00", "#ff0000", true},
		{"Color mismatch", red, "#00ff00", false},
		{"Strings", "Additive", "Additive", true},
		{"String mismatch", "Additive", "AlphaBased", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal(%#v, %#v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestNormalizeValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Value
	}{
		{"Int", 3, 3.0},
		{"Int64", int64(7), 7.0},
		{"Float32", float32(0.5), 0.5},
		{"Bool", true, true},
		{"String", "x", "x"},
		{"Color pointer", &schema.Color{G: 1}, schema.Color{G: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeValue(tt.in)
			if err != nil {
				t.Fatalf("NormalizeValue(%#v) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeValue(%#v) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}

	vec, err := NormalizeValue([]any{1, 2.5, 0})
	if v, ok := vec.([]float64); err != nil || !ok || v[0] != 1 || v[1] != 2.5 {
		t.Errorf("NormalizeValue(list) = %#v, %v", vec, err)
	}
	col, err := NormalizeValue(map[string]any{"r": 255, "g": 0, "b": 0.5})
	if err != nil || col != (schema.Color{R: 255, B: 0.5}) {
		t.Errorf("NormalizeValue(map) = %#v, %v", col, err)
	}

	for _, bad := range []any{nil, struct{}{}, map[string]any{"r": 1, "g": 1, "b": 1, "a": 1}, []any{"x"}} {
		if _, err := NormalizeValue(bad); err == nil {
			t.Errorf("NormalizeValue(%#v) should fail", bad)
		}
	}
}

func TestToNumber(t *testing.T) {
	tests := []struct {
		in      Value
		want    float64
		wantErr bool
	}{
		{2.5, 2.5, false},
		{4, 4, false},
		{true, 1, false},
		{false, 0, false},
		{" 3.25 ", 3.25, false},
		{"fire", 0, true},
		{[]float64{1}, 0, true},
		{schema.Color{}, 0, true},
	}
	for _, tt := range tests {
		got, err := ToNumber(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ToNumber(%#v) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ToNumber(%#v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCoerceResult(t *testing.T) {
	if v, _ := CoerceResult(schema.KindInt, 2.5); v != 3.0 {
		t.Errorf("int coercion = %v, want 3", v)
	}
	if v, _ := CoerceResult(schema.KindBool, 0.1); v != true {
		t.Errorf("bool coercion = %v, want true", v)
	}
	if v, _ := CoerceResult(schema.KindFloat, 0.1); v != 0.1 {
		t.Errorf("float coercion = %v", v)
	}
	if _, err := CoerceResult(schema.KindColor, 1); err == nil {
		t.Error("color parameters cannot take formula results")
	}
}
