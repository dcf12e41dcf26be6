package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	project := t.TempDir()
	home := t.TempDir()

	cfg, err := Load(Options{ProjectDir: project, Home: home})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.ProjectDir != project {
		t.Errorf("expected project dir %q, got %q", project, cfg.ProjectDir)
	}
	if cfg.DefaultsDir != filepath.Join(home, "defaults") {
		t.Errorf("unexpected defaults dir %q", cfg.DefaultsDir)
	}
	if filepath.Dir(cfg.LogPath) != filepath.Join(home, "logs") {
		t.Errorf("log should live under %s/logs, got %q", home, cfg.LogPath)
	}
	if !strings.HasSuffix(cfg.LogPath, ".log") {
		t.Errorf("expected .log suffix, got %q", cfg.LogPath)
	}
	if cfg.AskTimeout != DefaultAskTimeout {
		t.Errorf("expected default timeout, got %v", cfg.AskTimeout)
	}
	if cfg.RealShell == "" {
		t.Error("expected a real shell default")
	}
	if cfg.Tool != "" {
		t.Errorf("expected no tool detected in empty project, got %q", cfg.Tool)
	}
}

func TestLoad_ExplicitOptionsWin(t *testing.T) {
	project := t.TempDir()
	if err := os.Mkdir(filepath.Join(project, ".claude"), 0755); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(Options{
		ProjectDir: project,
		Home:       t.TempDir(),
		Tool:       "opencode",
		ProjectTag: "my project/1",
		RealShell:  "/usr/bin/zsh",
		AskTimeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Tool != "opencode" {
		t.Errorf("explicit tool should win over detection, got %q", cfg.Tool)
	}
	if filepath.Base(cfg.LogPath) != "my_project_1.log" {
		t.Errorf("expected sanitized tag in log name, got %q", filepath.Base(cfg.LogPath))
	}
	if cfg.RealShell != "/usr/bin/zsh" || cfg.AskTimeout != 5*time.Second {
		t.Errorf("explicit shell/timeout not kept: %q %v", cfg.RealShell, cfg.AskTimeout)
	}
}

func TestDetectTool(t *testing.T) {
	tests := []struct {
		marker string
		isDir  bool
		want   string
	}{
		{".claude", true, "claude"},
		{"CLAUDE.md", false, "claude"},
		{".opencode", true, "opencode"},
		{"opencode.json", false, "opencode"},
		{".cursor", true, "cursor"},
		{".windsurfrules", false, "windsurf"},
	}

	for _, tt := range tests {
		dir := t.TempDir()
		path := filepath.Join(dir, tt.marker)
		var err error
		if tt.isDir {
			err = os.Mkdir(path, 0755)
		} else {
			err = os.WriteFile(path, nil, 0644)
		}
		if err != nil {
			t.Fatal(err)
		}
		if got := DetectTool(dir); got != tt.want {
			t.Errorf("marker %s: expected %q, got %q", tt.marker, tt.want, got)
		}
	}
}

func TestProjectTag_StableAndDistinct(t *testing.T) {
	a := ProjectTag("/home/u/work/app")
	b := ProjectTag("/home/u/other/app")
	if a != ProjectTag("/home/u/work/app") {
		t.Error("tag should be stable for the same path")
	}
	if a == b {
		t.Errorf("same-named projects should get distinct tags, both %q", a)
	}
	if !strings.HasPrefix(a, "app-") {
		t.Errorf("tag should start with the directory name, got %q", a)
	}
}

func TestSanitizeTag(t *testing.T) {
	tests := map[string]string{
		"app":        "app",
		"../etc":     "etc",
		"a b/c":      "a_b_c",
		"":           "default",
		"...":        "default",
		"web-app_v2": "web-app_v2",
	}
	for in, want := range tests {
		if got := SanitizeTag(in); got != want {
			t.Errorf("SanitizeTag(%q) = %q, want %q", in, got, want)
		}
	}
}
