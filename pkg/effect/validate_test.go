package effect

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		state     *State
		wantCount int
		wantText  string
	}{
		{
			name:      "Valid",
			state:     &State{Name: "fx", Params: map[string]Value{"fParticleLifeTime": 1.0, "nCount": 0.0}},
			wantCount: 0,
		},
		{
			name:      "Empty name",
			state:     &State{Name: "  "},
			wantCount: 1,
			wantText:  "name is empty",
		},
		{
			name:      "Zero lifetime",
			state:     &State{Name: "fx", Params: map[string]Value{"fParticleLifeTime": 0.0}},
			wantCount: 1,
			wantText:  "greater than 0",
		},
		{
			name:      "Negative count",
			state:     &State{Name: "fx", Params: map[string]Value{"nParticleCount": -1.0}},
			wantCount: 1,
			wantText:  "must not be negative",
		},
		{
			name:      "Non numeric lifetime",
			state:     &State{Name: "fx", Params: map[string]Value{"fLifetime": "long"}},
			wantCount: 1,
			wantText:  "not numeric",
		},
		{
			name:      "Negative duration",
			state:     &State{Name: "fx", Timeline: Timeline{Duration: -2}},
			wantCount: 1,
			wantText:  "timeline duration",
		},
		{
			name: "Everything wrong",
			state: &State{Params: map[string]Value{
				"fParticleLifeTime": -1.0,
				"nCount":            -5.0,
			}},
			wantCount: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(tt.state)
			if len(got) != tt.wantCount {
				t.Fatalf("Validate() = %v, want %d warnings", got, tt.wantCount)
			}
			if tt.wantText != "" && !strings.Contains(got[0], tt.wantText) {
				t.Errorf("Validate() = %q, want containing %q", got[0], tt.wantText)
			}
		})
	}
}

func TestValidateTree(t *testing.T) {
	root := New("Fire")
	child := New("")
	child.Params["nCount"] = -3.0
	root.Children = []*State{child}

	got := ValidateTree(root)
	if len(got) != 2 {
		t.Fatalf("ValidateTree() = %v, want 2 warnings", got)
	}
	for _, w := range got {
		if !strings.HasPrefix(w, "Fire/<unnamed>: ") {
			t.Errorf("warning %q should carry the effect path", w)
		}
	}
}
