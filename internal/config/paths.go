// Package config manages adaptive configuration and filesystem paths.
//
// Configuration includes the locations of adaptive data directories, which
// can be customized via environment variables, plus the viper-backed
// settings file holding workflow defaults. The default root is ~/.adaptive/
// containing reports/ and adaptive.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains all the filesystem paths used by adaptive.
type Paths struct {
	// Root is the base directory for all adaptive data (default: ~/.adaptive)
	Root string

	// Reports is the default directory for run reports
	Reports string

	// Config is the path to the settings file
	Config string
}

// DefaultPaths returns the default paths for adaptive.
// Paths can be overridden with environment variables:
// - ADAPTIVE_HOME: Override the root directory
func DefaultPaths() (*Paths, error) {
	root := os.Getenv("ADAPTIVE_HOME")
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		root = filepath.Join(home, ".adaptive")
	}

	return &Paths{
		Root:    root,
		Reports: filepath.Join(root, "reports"),
		Config:  filepath.Join(root, "adaptive.yaml"),
	}, nil
}

// EnsureDirectories creates all necessary directories if they don't exist.
func (p *Paths) EnsureDirectories() error {
	dirs := []string{
		p.Root,
		p.Reports,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
