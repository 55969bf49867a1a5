package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadProject(t *testing.T) {
	dir := t.TempDir()
	yaml := `
entrypoint: start
deny-warnings: true
warnings:
  unused-definition: false
`
	if err := os.WriteFile(filepath.Join(dir, ProjectFileName), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	proj, err := LoadProject(filepath.Join(dir, "prog.wv"))
	if err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	if proj.Entrypoint != "start" {
		t.Errorf("entrypoint = %q, want start", proj.Entrypoint)
	}
	if !proj.DenyWarnings {
		t.Errorf("deny-warnings not picked up")
	}
	if proj.WarningEnabled("unused-definition") {
		t.Errorf("unused-definition should be muted")
	}
	if !proj.WarningEnabled("redundant-match") {
		t.Errorf("unlisted warnings default to enabled")
	}
}

func TestLoadProjectMissingFile(t *testing.T) {
	proj, err := LoadProject(filepath.Join(t.TempDir(), "prog.wv"))
	if err != nil {
		t.Fatalf("missing project file must not error: %v", err)
	}
	if proj == nil || proj.Entrypoint != "" {
		t.Errorf("missing file should yield the zero project")
	}
}

func TestLoadProjectBadYaml(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ProjectFileName), []byte("entrypoint: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadProject(filepath.Join(dir, "prog.wv")); err == nil {
		t.Errorf("malformed yaml must error")
	}
}

func TestTrimSourceExt(t *testing.T) {
	if got := TrimSourceExt("prog.wv"); got != "prog" {
		t.Errorf("TrimSourceExt = %q", got)
	}
	if got := TrimSourceExt("prog.txt"); got != "prog.txt" {
		t.Errorf("unknown extension must pass through, got %q", got)
	}
	if !HasSourceExt("a/b/c.weave") || HasSourceExt("a/b/c.go") {
		t.Errorf("HasSourceExt misclassifies")
	}
}
