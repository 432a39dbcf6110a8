package registry

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"

	"github.com/matrixforge/ledhost/internal/infrastructure/logging"
)

// Manifest shapes how a built-in app appears in the menu. Manifests
// cannot introduce apps; constructors are compiled in.
type Manifest struct {
	App     string `toml:"app"`
	Label   string `toml:"label"`
	Enabled *bool  `toml:"enabled"`
}

// Seeder applies TOML manifests from a directory to a registry.
type Seeder struct {
	registry *Registry
	dir      string
	log      *logging.Logger
}

// NewSeeder creates a manifest seeder. An empty dir makes Seed a no-op.
func NewSeeder(registry *Registry, dir string, log *logging.Logger) *Seeder {
	if log == nil {
		log = logging.NewNop()
	}
	return &Seeder{registry: registry, dir: dir, log: log}
}

// Seed reads every *.toml in the manifest directory and applies it.
// Manifests for unknown apps are skipped with a warning; a missing
// directory is not an error.
func (s *Seeder) Seed() error {
	if s.dir == "" {
		return nil
	}
	if _, err := os.Stat(s.dir); os.IsNotExist(err) {
		s.log.Warn("manifest directory not found", zap.String("dir", s.dir))
		return nil
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return err
	}

	var applied int
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		if err := s.apply(path); err != nil {
			s.log.Warn("manifest skipped",
				zap.String("file", entry.Name()),
				zap.Error(err))
			continue
		}
		applied++
	}

	s.log.Info("manifests applied",
		zap.Int("applied", applied),
		zap.Int("apps", s.registry.Len()))
	return nil
}

func (s *Seeder) apply(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return err
	}

	if _, ok := s.registry.Get(m.App); !ok {
		s.log.Warn("manifest references unknown app", zap.String("app", m.App))
		return nil
	}

	if m.Enabled != nil && !*m.Enabled {
		s.registry.remove(m.App)
		s.log.Info("app disabled by manifest", zap.String("app", m.App))
		return nil
	}

	if m.Label != "" {
		s.registry.relabel(m.App, m.Label)
	}
	return nil
}
