// Package config resolves the per-invocation settings of llmsec: which
// project is being guarded, which agent tool is calling, where the user-level
// files live and which real shell runs approved commands.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const (
	DefaultConfigDir   = ".llmsec"
	DefaultsSubdir     = "defaults"
	LogsSubdir         = "logs"
	DefaultAskTimeout  = 60 * time.Second
	fallbackRealShell  = "/bin/sh"
	preferredRealShell = "/bin/bash"
)

// Options are the raw inputs, normally command-line flags. Zero values
// select defaults.
type Options struct {
	ProjectDir string
	Tool       string
	Home       string // overrides ~/.llmsec
	ProjectTag string
	RealShell  string
	AskTimeout time.Duration
}

type Config struct {
	ProjectDir  string
	ProjectTag  string
	Tool        string
	ConfigDir   string // ~/.llmsec
	DefaultsDir string // ~/.llmsec/defaults
	LogDir      string // ~/.llmsec/logs
	LogPath     string
	RealShell   string
	AskTimeout  time.Duration
}

func Load(opts Options) (*Config, error) {
	projectDir := opts.ProjectDir
	if projectDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}
		projectDir = wd
	}
	projectDir, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("resolve project directory: %w", err)
	}

	configDir := opts.Home
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(homeDir, DefaultConfigDir)
	}

	cfg := &Config{
		ProjectDir:  projectDir,
		ProjectTag:  opts.ProjectTag,
		Tool:        opts.Tool,
		ConfigDir:   configDir,
		DefaultsDir: filepath.Join(configDir, DefaultsSubdir),
		LogDir:      filepath.Join(configDir, LogsSubdir),
		RealShell:   opts.RealShell,
		AskTimeout:  opts.AskTimeout,
	}

	if cfg.Tool == "" {
		cfg.Tool = DetectTool(projectDir)
	}
	if cfg.ProjectTag == "" {
		cfg.ProjectTag = ProjectTag(projectDir)
	}
	cfg.LogPath = filepath.Join(cfg.LogDir, SanitizeTag(cfg.ProjectTag)+".log")
	if cfg.RealShell == "" {
		cfg.RealShell = defaultRealShell()
	}
	if cfg.AskTimeout <= 0 {
		cfg.AskTimeout = DefaultAskTimeout
	}

	return cfg, nil
}

// toolMarkers are checked in order; the first marker present in the
// project names the tool.
var toolMarkers = []struct {
	tool   string
	marker string
}{
	{"claude", ".claude"},
	{"claude", "CLAUDE.md"},
	{"opencode", ".opencode"},
	{"opencode", "opencode.json"},
	{"cursor", ".cursor"},
	{"cursor", ".cursorrules"},
	{"windsurf", ".windsurf"},
	{"windsurf", ".windsurfrules"},
}

// DetectTool guesses the calling agent from marker files in projectDir.
// It returns "" when nothing is recognized.
func DetectTool(projectDir string) string {
	for _, m := range toolMarkers {
		if _, err := os.Stat(filepath.Join(projectDir, m.marker)); err == nil {
			return m.tool
		}
	}
	return ""
}

// ProjectTag derives a stable log tag from the project path: the directory
// name plus a short hash of the absolute path, so two checkouts named "app"
// do not share a log.
func ProjectTag(projectDir string) string {
	sum := sha256.Sum256([]byte(projectDir))
	base := filepath.Base(projectDir)
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "root"
	}
	return SanitizeTag(base) + "-" + hex.EncodeToString(sum[:4])
}

var unsafeTagChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeTag makes tag safe to use as a file name.
func SanitizeTag(tag string) string {
	tag = unsafeTagChars.ReplaceAllString(tag, "_")
	tag = strings.Trim(tag, "._")
	if tag == "" {
		return "default"
	}
	return tag
}

func defaultRealShell() string {
	if _, err := os.Stat(preferredRealShell); err == nil {
		return preferredRealShell
	}
	return fallbackRealShell
}
