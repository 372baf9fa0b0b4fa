package effect

import (
	"strings"
	"testing"

	"github.com/decker502/fxlib/internal/particle"
	"github.com/decker502/fxlib/internal/schema"
)

const sampleLibraryYAML = `
name: Fire
effects:
  - name: Torch
    params:
      fParticleLifeTime: 2.5
      nCount: 40
      bContinuous: true
      vSize: [1, 2.5, 0]
      cColor: {r: 255, g: 128, b: 0}
      sTexture: textures/flame.dds
    expressions:
      fAlpha: "${fParticleLifeTime} / 5"
    curves:
      alphaOverLife: "0,1 EaseOut 1,0"
      sizeOverLife:
        points:
          - {x: 1, y: 2}
          - {x: 0, y: 1}
    timeline: {start: 0.5, duration: 3}
    children:
      - name: Sparks
        visible: false
        params:
          nCount: 100
      - name: Smoke
        locked: true
`

func TestLoadLibraryYAML(t *testing.T) {
	lib, err := LoadLibraryYAML([]byte(sampleLibraryYAML))
	if err != nil {
		t.Fatalf("LoadLibraryYAML() error = %v", err)
	}
	if lib.Name != "Fire" || len(lib.Effects) != 1 {
		t.Fatalf("library = %q with %d effects", lib.Name, len(lib.Effects))
	}

	torch := lib.Effects[0]
	if torch.Params["fParticleLifeTime"] != 2.5 {
		t.Errorf("fParticleLifeTime = %#v", torch.Params["fParticleLifeTime"])
	}
	if torch.Params["nCount"] != 40.0 {
		t.Errorf("integers should normalize to float64, got %#v", torch.Params["nCount"])
	}
	if torch.Params["bContinuous"] != true {
		t.Errorf("bContinuous = %#v", torch.Params["bContinuous"])
	}
	if v, ok := torch.Params["vSize"].([]float64); !ok || len(v) != 3 || v[1] != 2.5 {
		t.Errorf("vSize = %#v", torch.Params["vSize"])
	}
	if c, ok := torch.Params["cColor"].(schema.Color); !ok || c != (schema.Color{R: 255, G: 128, B: 0}) {
		t.Errorf("cColor = %#v", torch.Params["cColor"])
	}
	if torch.Params["sTexture"] != "textures/flame.dds" {
		t.Errorf("sTexture = %#v", torch.Params["sTexture"])
	}
	if torch.Expressions["fAlpha"] != "${fParticleLifeTime} / 5" {
		t.Errorf("expression = %q", torch.Expressions["fAlpha"])
	}

	alpha := torch.Curves["alphaOverLife"]
	if len(alpha.Points) != 2 || alpha.Interpolation != particle.EaseOut {
		t.Errorf("alphaOverLife = %+v", alpha)
	}
	size := torch.Curves["sizeOverLife"]
	if len(size.Points) != 2 || size.Points[0].X != 0 {
		t.Errorf("sizeOverLife should be sorted, got %+v", size.Points)
	}
	if torch.Timeline != (Timeline{Start: 0.5, Duration: 3}) {
		t.Errorf("timeline = %+v", torch.Timeline)
	}

	if !torch.Visible {
		t.Error("visible should default to true")
	}
	if len(torch.Children) != 2 {
		t.Fatalf("children = %d, want 2", len(torch.Children))
	}
	if torch.Children[0].Visible {
		t.Error("Sparks declares visible: false")
	}
	if !torch.Children[1].Locked || !torch.Children[1].Visible {
		t.Errorf("Smoke = %+v", torch.Children[1])
	}
	if torch.Children[1].Params == nil || torch.Children[1].Expressions == nil {
		t.Error("decoded effects should have non-nil maps")
	}
}

func TestLoadLibraryYAMLErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"Empty", "name: x\n", "no effects"},
		{"Bad vector", "effects:\n  - name: a\n    params:\n      v: [1, x]\n", "vector element"},
		{"Bad color", "effects:\n  - name: a\n    params:\n      c: {r: 1, g: 2}\n", "missing channel"},
		{"Bad curve", "effects:\n  - name: a\n    curves:\n      c: \"0,1,2\"\n", "curve"},
		{"Not YAML", "effects: [", "failed to parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadLibraryYAML([]byte(tt.doc))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("LoadLibraryYAML() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestWalkAndFlatten(t *testing.T) {
	root := New("root")
	a := New("a")
	b := New("b")
	a.Children = []*State{New("a1"), New("a2")}
	root.Children = []*State{a, b}

	var names []string
	var depths []int
	root.Walk(func(e *State, depth int) {
		names = append(names, e.Name)
		depths = append(depths, depth)
	})
	if got := strings.Join(names, ","); got != "root,a,a1,a2,b" {
		t.Errorf("Walk order = %s", got)
	}
	if depths[2] != 2 || depths[4] != 1 {
		t.Errorf("depths = %v", depths)
	}

	flat := Flatten([]*State{root, New("other"), nil})
	if len(flat) != 6 || flat[5].Name != "other" {
		t.Errorf("Flatten() returned %d effects", len(flat))
	}
	if Find([]*State{root}, "a2") == nil || Find([]*State{root}, "zz") != nil {
		t.Error("Find() did not search the hierarchy")
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := New("fx")
	s.Params["v"] = []float64{1, 2, 3}
	s.Expressions["a"] = "@b"
	s.SetCurve("c", []particle.Point{{X: 1, Y: 1}, {X: 0, Y: 0}})
	s.Children = []*State{New("child")}

	c := s.Clone()
	c.Params["v"].([]float64)[0] = 99
	c.Expressions["a"] = "@z"
	c.Curves["c"].Points[0].Y = 42
	c.Children[0].Name = "renamed"

	if s.Params["v"].([]float64)[0] != 1 {
		t.Error("vector shared between clone and original")
	}
	if s.Expressions["a"] != "@b" {
		t.Error("expressions shared between clone and original")
	}
	if s.Curves["c"].Points[0].Y != 0 {
		t.Error("curve points shared between clone and original")
	}
	if s.Children[0].Name != "child" {
		t.Error("children shared between clone and original")
	}
}

func TestSetCurveSorts(t *testing.T) {
	s := &State{Name: "fx"}
	in := []particle.Point{{X: 0.8, Y: 1}, {X: 0.2, Y: 0}}
	s.SetCurve("alpha", in)
	if s.Curves["alpha"].Points[0].X != 0.2 {
		t.Errorf("points not sorted: %v", s.Curves["alpha"].Points)
	}
	if in[0].X != 0.8 {
		t.Error("SetCurve must not reorder the caller's slice")
	}
}
