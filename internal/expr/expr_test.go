package expr

import (
	"errors"
	"math"
	"testing"
)

func TestEvalArithmetic(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want float64
	}{
		{"Number", "42", 42},
		{"Leading dot", ".5 + .25", 0.75},
		{"Exponent", "1e3", 1000},
		{"Precedence", "1 + 2 * 3", 7},
		{"Parentheses", "(1 + 2) * 3", 9},
		{"Left assoc", "10 - 4 - 3", 3},
		{"Division", "9 / 4", 2.25},
		{"Unary minus", "-3 + 5", 2},
		{"Double unary", "--3", 3},
		{"Power", "2 ^ 3", 8},
		{"Power star", "2 ** 3 ** 2", 512},
		{"Negated power", "-2 ^ 2", -4},
		{"PI", "PI", math.Pi},
		{"Math prefix", "Math.floor(2.7)", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := Parse(tt.src)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.src, err)
			}
			got, err := e.Eval(nil)
			if err != nil {
				t.Fatalf("Eval(%q) error = %v", tt.src, err)
			}
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Eval(%q) = %v, want %v", tt.src, got, tt.want)
			}
		})
	}
}

func TestEvalBuiltins(t *testing.T) {
	tests := []struct {
		src  string
		want float64
	}{
		{"sin(0)", 0},
		{"cos(0)", 1},
		{"tan(0)", 0},
		{"sqrt(16)", 4},
		{"pow(2, 10)", 1024},
		{"abs(-3.5)", 3.5},
		{"min(4, 2, 8)", 2},
		{"max(4, 2, 8)", 8},
		{"floor(-1.5)", -2},
		{"ceil(1.2)", 2},
		{"round(2.5)", 3},
		{"round(-2.5)", -2},
		{"clamp(5, 0, 1)", 1},
		{"clamp(-5, 0, 1)", 0},
		{"lerp(10, 20, 0.25)", 12.5},
		{"remap(5, 0, 10, 100, 200)", 150},
		{"remap(5, 1, 1, 7, 9)", 7},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			e, err := Parse(tt.src)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.src, err)
			}
			got, err := e.Eval(nil)
			if err != nil {
				t.Fatalf("Eval(%q) error = %v", tt.src, err)
			}
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Eval(%q) = %v, want %v", tt.src, got, tt.want)
			}
		})
	}
}

func TestReferenceSyntaxes(t *testing.T) {
	vals := Values(map[string]float64{"fA": 3, "fB": 4})

	for _, src := range []string{"${fA} * 2", "@fA * 2", "%fA% * 2", "${ fA } * 2"} {
		t.Run(src, func(t *testing.T) {
			e, err := Parse(src)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", src, err)
			}
			refs := e.References()
			if len(refs) != 1 || refs[0] != "fA" {
				t.Errorf("References() = %v, want [fA]", refs)
			}
			got, err := e.Eval(vals)
			if err != nil || got != 6 {
				t.Errorf("Eval() = %v, %v, want 6", got, err)
			}
		})
	}
}

func TestReferencesOrderAndDedup(t *testing.T) {
	e, err := Parse("@fB + ${fA} * %fB% - lerp(@fC, 1, 0.5)")
	if err != nil {
		t.Fatal(err)
	}
	refs := e.References()
	want := []string{"fB", "fA", "fC"}
	if len(refs) != len(want) {
		t.Fatalf("References() = %v, want %v", refs, want)
	}
	for i := range want {
		if refs[i] != want[i] {
			t.Errorf("References()[%d] = %s, want %s", i, refs[i], want[i])
		}
	}

	if got := References("${x} + + @y"); len(got) != 2 {
		t.Errorf("References() on invalid formula = %v, want [x y]", got)
	}
}

func TestMissingReferenceIsZero(t *testing.T) {
	e, err := Parse("${missing} + 1")
	if err != nil {
		t.Fatal(err)
	}
	got, err := e.Eval(Values(map[string]float64{}))
	if err != nil || got != 1 {
		t.Errorf("Eval() = %v, %v, want 1", got, err)
	}
}

func TestLookupError(t *testing.T) {
	e, _ := Parse("@fA + 1")
	sentinel := errors.New("not numeric")
	_, err := e.Eval(func(string) (float64, bool, error) { return 0, false, sentinel })
	if !errors.Is(err, sentinel) {
		t.Errorf("Eval() error = %v, want wrapped sentinel", err)
	}
}

func TestParseErrors(t *testing.T) {
	bad := []string{
		"",
		"1 +",
		"(1 + 2",
		"1 2",
		"foo(1)",
		"bar",
		"sin()",
		"clamp(1, 2)",
		"pow(1, 2, 3)",
		"$fA",
		"${fA",
		"${}",
		"@",
		"%fA",
		"%f A%",
		"1 ; 2",
		"alert('x')",
	}
	for _, src := range bad {
		t.Run(src, func(t *testing.T) {
			_, err := Parse(src)
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Errorf("Parse(%q) error = %v, want *SyntaxError", src, err)
			}
		})
	}
}

func TestRuntimeErrors(t *testing.T) {
	for _, src := range []string{"1 / 0", "sqrt(-1)", "@fA / @fB"} {
		t.Run(src, func(t *testing.T) {
			e, err := Parse(src)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", src, err)
			}
			if _, err := e.Eval(Values(map[string]float64{"fA": 1, "fB": 0})); err == nil {
				t.Errorf("Eval(%q) should fail", src)
			}
		})
	}

	e, _ := Parse("sqrt(-1)")
	if _, err := e.Eval(nil); !errors.Is(err, ErrNonFinite) {
		t.Errorf("sqrt(-1) error = %v, want ErrNonFinite", err)
	}
}
