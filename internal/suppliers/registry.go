// Package suppliers holds the static per-supplier price-list
// configuration and resolves user-supplied supplier keys against it.
package suppliers

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/goccy/go-yaml"
	"golang.org/x/text/cases"
)

// Columns lists the accepted header aliases for each logical field of
// a price list. Aliases are compared case-insensitively against the
// header row.
type Columns struct {
	Code  []string `yaml:"code"`
	Name  []string `yaml:"name"`
	Price []string `yaml:"price"`
}

// Config describes one supplier's price-list layout. The engine never
// mutates it.
type Config struct {
	Key       string  `yaml:"key"`
	Name      string  `yaml:"name"`
	Owner     string  `yaml:"owner"`
	HeaderRow int     `yaml:"header_row"`
	Columns   Columns `yaml:"columns"`
	Folder    string  `yaml:"folder"`
}

type registryFile struct {
	Suppliers []Config `yaml:"suppliers"`
}

// Registry is an immutable, ordered collection of supplier configs.
type Registry struct {
	keys    []string
	configs map[string]Config
	logger  *slog.Logger
	folder  cases.Caser
}

// NewRegistry builds a registry from the given configs, preserving
// declaration order. Entries with a duplicate key are dropped with a
// warning.
func NewRegistry(logger *slog.Logger, configs []Config) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		configs: make(map[string]Config, len(configs)),
		logger:  logger,
		folder:  cases.Fold(),
	}
	for _, cfg := range configs {
		if cfg.Key == "" {
			logger.Warn("supplier config without key skipped", slog.String("name", cfg.Name))
			continue
		}
		if _, exists := r.configs[cfg.Key]; exists {
			logger.Warn("duplicate supplier key skipped", slog.String("key", cfg.Key))
			continue
		}
		if cfg.Name == "" {
			cfg.Name = cfg.Key
		}
		r.keys = append(r.keys, cfg.Key)
		r.configs[cfg.Key] = cfg
	}
	return r
}

// Load reads a YAML registry file.
func Load(path string, logger *slog.Logger) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("suppliers: read registry: %w", err)
	}
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("suppliers: parse registry: %w", err)
	}
	return NewRegistry(logger, file.Suppliers), nil
}

// Keys returns the supplier keys in declaration order.
func (r *Registry) Keys() []string {
	return append([]string(nil), r.keys...)
}

// Get returns the config stored under the canonical key.
func (r *Registry) Get(key string) (Config, bool) {
	cfg, ok := r.configs[key]
	return cfg, ok
}

// Resolve maps a free-form supplier key to its canonical registry
// key. Exact matches win; otherwise both sides are case-folded and
// compared. When several keys fold to the same value the first one in
// declaration order is returned and the ambiguity is logged. A miss
// returns ok=false so that callers can degrade by dropping the
// filter.
func (r *Registry) Resolve(key string) (string, bool) {
	if key == "" {
		return "", false
	}
	if _, ok := r.configs[key]; ok {
		return key, true
	}

	folded := r.folder.String(key)
	var matches []string
	for _, k := range r.keys {
		if r.folder.String(k) == folded {
			matches = append(matches, k)
		}
	}
	switch len(matches) {
	case 0:
		return "", false
	case 1:
		return matches[0], true
	default:
		r.logger.Warn("ambiguous supplier key",
			slog.String("key", key),
			slog.Int("matches", len(matches)),
			slog.String("chosen", matches[0]))
		return matches[0], true
	}
}
