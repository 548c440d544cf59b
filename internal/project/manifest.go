// Package project locates and loads the optional sv2v.toml project
// manifest, which names the source files and conversion options of a
// design so repeated runs need no flags.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// Manifest is a loaded sv2v.toml with its location.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

type Config struct {
	Design  DesignConfig  `toml:"design"`
	Convert ConvertConfig `toml:"convert"`
}

type DesignConfig struct {
	Name  string   `toml:"name"`
	Files []string `toml:"files"`
}

type ConvertConfig struct {
	Output  string            `toml:"output"`
	Incdirs []string          `toml:"incdirs"`
	Defines map[string]string `toml:"defines"`
}

// FindManifest walks up from startDir to locate sv2v.toml.
func FindManifest(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "sv2v.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load reads the manifest at startDir or above, if one exists.
func Load(startDir string) (*Manifest, bool, error) {
	manifestPath, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	var cfg Config
	if _, err := toml.DecodeFile(manifestPath, &cfg); err != nil {
		return nil, true, fmt.Errorf("%s: failed to parse TOML: %w", manifestPath, err)
	}
	return &Manifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}

// SourceFiles resolves the manifest's file entries (paths or globs)
// against the manifest root, sorted and deduplicated.
func (m *Manifest) SourceFiles() ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, entry := range m.Config.Design.Files {
		pattern := entry
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(m.Root, pattern)
		}
		if strings.ContainsAny(entry, "*?[") {
			matches, err := filepath.Glob(pattern)
			if err != nil {
				return nil, fmt.Errorf("%s: bad file pattern %q: %w", m.Path, entry, err)
			}
			for _, match := range matches {
				if !seen[match] {
					seen[match] = true
					files = append(files, match)
				}
			}
			continue
		}
		if !seen[pattern] {
			seen[pattern] = true
			files = append(files, pattern)
		}
	}
	sort.Strings(files)
	return files, nil
}

// Incdirs resolves include directories against the manifest root.
func (m *Manifest) Incdirs() []string {
	dirs := make([]string, 0, len(m.Config.Convert.Incdirs))
	for _, dir := range m.Config.Convert.Incdirs {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(m.Root, dir)
		}
		dirs = append(dirs, dir)
	}
	return dirs
}
