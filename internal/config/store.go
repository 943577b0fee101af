package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// Store provides dotted-path read/write access over a Config, persisting every
// Set immediately by rewriting the backing TOML file. It backs the config CLI
// commands and the dashboard's configuration endpoints.
type Store struct {
	mu   sync.Mutex
	path string
	cfg  *Config
}

// NewStore wraps cfg with dotted-path access backed by the file at path.
func NewStore(cfg *Config, path string) *Store {
	return &Store{cfg: cfg, path: path}
}

// Config returns the current configuration snapshot.
func (s *Store) Config() *Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Path returns the backing file location.
func (s *Store) Path() string {
	return s.path
}

// Get resolves a dotted key ("duplicate_detection.compare_method") against the
// current configuration.
func (s *Store) Get(key string) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tree, err := s.tree()
	if err != nil {
		return nil, err
	}
	value, ok := lookup(tree, splitKey(key))
	if !ok {
		return nil, fmt.Errorf("unknown configuration key %q", key)
	}
	return value, nil
}

// Set updates a dotted key and persists the full configuration. String values
// are coerced to the key's existing type so CLI input like "false" or
// "jpg,png" lands as the right TOML shape. Unknown keys are rejected because
// they would not survive a reload.
func (s *Store) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tree, err := s.tree()
	if err != nil {
		return err
	}
	parts := splitKey(key)
	existing, ok := lookup(tree, parts)
	if !ok {
		return fmt.Errorf("unknown configuration key %q", key)
	}
	coerced, err := coerceValue(existing, value)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	if err := assign(tree, parts, coerced); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}

	updated, err := configFromTree(tree)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	if err := s.write(tree); err != nil {
		return err
	}
	s.cfg = updated
	return nil
}

// All returns the full configuration as a nested map keyed the same way the
// TOML file is.
func (s *Store) All() (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree()
}

// Keys lists every addressable dotted key in sorted order.
func (s *Store) Keys() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tree, err := s.tree()
	if err != nil {
		return nil, err
	}
	var keys []string
	collectKeys(tree, "", &keys)
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) tree() (map[string]any, error) {
	encoded, err := toml.Marshal(s.cfg)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	tree := map[string]any{}
	if err := toml.Unmarshal(encoded, &tree); err != nil {
		return nil, fmt.Errorf("decode config tree: %w", err)
	}
	return tree, nil
}

func configFromTree(tree map[string]any) (*Config, error) {
	encoded, err := toml.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("encode config tree: %w", err)
	}
	cfg := Default()
	if err := toml.Unmarshal(encoded, &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *Store) write(tree map[string]any) error {
	encoded, err := toml.Marshal(tree)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".config-*.toml")
	if err != nil {
		return fmt.Errorf("stage config write: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(encoded); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("persist config: %w", err)
	}
	return nil
}

func splitKey(key string) []string {
	parts := strings.Split(strings.TrimSpace(key), ".")
	out := parts[:0]
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func lookup(tree map[string]any, parts []string) (any, bool) {
	if len(parts) == 0 {
		return nil, false
	}
	var current any = tree
	for _, part := range parts {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func assign(tree map[string]any, parts []string, value any) error {
	if len(parts) == 0 {
		return fmt.Errorf("empty key")
	}
	node := tree
	for _, part := range parts[:len(parts)-1] {
		child, ok := node[part].(map[string]any)
		if !ok {
			return fmt.Errorf("%q is not a table", part)
		}
		node = child
	}
	node[parts[len(parts)-1]] = value
	return nil
}

func collectKeys(tree map[string]any, prefix string, out *[]string) {
	for key, value := range tree {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if child, ok := value.(map[string]any); ok {
			collectKeys(child, full, out)
			continue
		}
		*out = append(*out, full)
	}
}

// coerceValue converts raw (typically a CLI string) to match the type of the
// existing value at the target key. Values already carrying a concrete type,
// such as JSON-decoded dashboard payloads, pass through with a compatibility
// check.
func coerceValue(existing, raw any) (any, error) {
	str, isString := raw.(string)
	switch existing.(type) {
	case bool:
		if isString {
			parsed, err := strconv.ParseBool(strings.TrimSpace(str))
			if err != nil {
				return nil, fmt.Errorf("expected boolean, got %q", str)
			}
			return parsed, nil
		}
		if b, ok := raw.(bool); ok {
			return b, nil
		}
		return nil, fmt.Errorf("expected boolean, got %T", raw)
	case int64:
		if isString {
			parsed, err := strconv.ParseInt(strings.TrimSpace(str), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("expected integer, got %q", str)
			}
			return parsed, nil
		}
		switch v := raw.(type) {
		case int64:
			return v, nil
		case int:
			return int64(v), nil
		case float64:
			return int64(v), nil
		}
		return nil, fmt.Errorf("expected integer, got %T", raw)
	case float64:
		if isString {
			parsed, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
			if err != nil {
				return nil, fmt.Errorf("expected number, got %q", str)
			}
			return parsed, nil
		}
		switch v := raw.(type) {
		case float64:
			return v, nil
		case int64:
			return float64(v), nil
		case int:
			return float64(v), nil
		}
		return nil, fmt.Errorf("expected number, got %T", raw)
	case string:
		if isString {
			return str, nil
		}
		return nil, fmt.Errorf("expected string, got %T", raw)
	case []any:
		if isString {
			fields := strings.Split(str, ",")
			values := make([]any, 0, len(fields))
			for _, field := range fields {
				if field = strings.TrimSpace(field); field != "" {
					values = append(values, field)
				}
			}
			return values, nil
		}
		if list, ok := raw.([]any); ok {
			return list, nil
		}
		if list, ok := raw.([]string); ok {
			values := make([]any, 0, len(list))
			for _, item := range list {
				values = append(values, item)
			}
			return values, nil
		}
		return nil, fmt.Errorf("expected list, got %T", raw)
	default:
		return raw, nil
	}
}
