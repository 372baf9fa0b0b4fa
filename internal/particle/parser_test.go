package particle

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleLibrary = `<?xml version="1.0" encoding="UTF-8"?>
<ParticleLibrary Name="Fire" SandboxVersion="1.0.0.1" ParticleVersion="24">
 <Particles Name="Torch" GUID="0f8fad5b-d9cb-469f-a165-70867728950e">
  <Params Inheritance="System" ParticleSystem="All" fParticleLifeTime="2.500" cColor="1.000,0.500,0.000"/>
 </Particles>
 <Particles Name="Torch.Sparks" GUID="7c9e6679-7425-40de-944b-e07fc1f90ae7">
  <Params Inheritance="System" ParticleSystem="All" nCount="40" fAlpha_Expr="${fParticleLifeTime} * 0.5"/>
 </Particles>
</ParticleLibrary>`

// TestParseLibraryXML tests decoding of an exported library
func TestParseLibraryXML(t *testing.T) {
	lib, err := ParseLibraryXML([]byte(sampleLibrary))
	if err != nil {
		t.Fatalf("ParseLibraryXML() error = %v", err)
	}

	if lib.Name != "Fire" || lib.SandboxVersion != "1.0.0.1" || lib.ParticleVersion != "24" {
		t.Errorf("library header = %q %q %q", lib.Name, lib.SandboxVersion, lib.ParticleVersion)
	}
	if len(lib.Effects) != 2 {
		t.Fatalf("Expected 2 effects, got %d", len(lib.Effects))
	}

	torch := lib.Effects[0]
	if torch.Name != "Torch" || torch.GUID == "" {
		t.Errorf("first effect = %+v", torch)
	}
	if len(torch.Params.Attrs) != 4 {
		t.Errorf("Expected 4 attributes, got %d", len(torch.Params.Attrs))
	}
	if torch.Params.Attrs[2].Name.Local != "fParticleLifeTime" {
		t.Errorf("attributes should keep document order, third is %s", torch.Params.Attrs[2].Name.Local)
	}
	if v, ok := torch.Params.Get("cColor"); !ok || v != "1.000,0.500,0.000" {
		t.Errorf("Get(cColor) = %q, %v", v, ok)
	}

	sparks := lib.Effects[1]
	if v, _ := sparks.Params.Get("fAlpha_Expr"); v != "${fParticleLifeTime} * 0.5" {
		t.Errorf("expression attribute = %q", v)
	}
	if _, ok := sparks.Params.Get("missing"); ok {
		t.Error("Get(missing) should report absent")
	}
}

// TestParseLibraryXML_Invalid tests error handling for malformed documents
func TestParseLibraryXML_Invalid(t *testing.T) {
	for _, doc := range []string{
		"<ParticleLibrary Name=\"x\"><Particles>",
		"<ParticleLibrary></ParticleLibrary>",
		"<Other Name=\"x\"/>",
	} {
		if _, err := ParseLibraryXML([]byte(doc)); err == nil {
			t.Errorf("ParseLibraryXML(%q) should fail", doc)
		}
	}
}

// TestParseLibraryFile tests reading from disk and the missing file case
func TestParseLibraryFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fire.xml")
	if err := os.WriteFile(path, []byte(sampleLibrary), 0o644); err != nil {
		t.Fatal(err)
	}
	lib, err := ParseLibraryFile(path)
	if err != nil {
		t.Fatalf("ParseLibraryFile() error = %v", err)
	}
	if len(lib.Effects) != 2 {
		t.Errorf("Expected 2 effects, got %d", len(lib.Effects))
	}

	if _, err := ParseLibraryFile(filepath.Join(t.TempDir(), "nope.xml")); err == nil {
		t.Error("Expected error for non-existent file, got nil")
	}
}
