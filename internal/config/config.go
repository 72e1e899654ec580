// Package config loads meshdeck's TOML configuration. A missing file
// is not an error; defaults apply and the app works out of the box.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"meshdeck/internal/mesh"
)

// Config holds everything meshdeck reads from its config file.
type Config struct {
	// Path the config was loaded from, for the file watcher.
	Path string

	// FeedPath is the file or FIFO the external decoder writes
	// JSON-lines events to.
	FeedPath string

	// OwnID is the operator's node id.
	OwnID mesh.NodeID

	// OperatorPosition is the explicitly configured coordinate, nil
	// when unset. It outranks the own node's reported GPS for
	// distance calculations.
	OperatorPosition *mesh.Coordinate

	Theme string
}

const (
	defaultConfigPath = "~/.config/meshdeck/config.toml"
	defaultFeedPath   = "~/.local/share/meshdeck/events.jsonl"
	defaultTheme      = "Dracula"
)

type rawConfig struct {
	FeedPath  string   `toml:"feed_path"`
	OwnID     string   `toml:"own_id"`
	Latitude  *float64 `toml:"own_latitude"`
	Longitude *float64 `toml:"own_longitude"`
	Altitude  *float64 `toml:"own_altitude"`
	Theme     string   `toml:"theme"`
}

// Load locates and parses the config, falling back to defaults when
// the file is missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Path:     resolved,
		FeedPath: mustExpand(defaultFeedPath),
		Theme:    defaultTheme,
	}

	bytes, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.FeedPath); v != "" {
		cfg.FeedPath = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.Theme); v != "" {
		cfg.Theme = v
	}
	if v := strings.TrimSpace(raw.OwnID); v != "" {
		id, err := ParseNodeID(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse own_id: %w", err)
		}
		cfg.OwnID = id
	}
	// A position needs both latitude and longitude; altitude rides
	// along when present.
	if raw.Latitude != nil && raw.Longitude != nil {
		pos := mesh.Coordinate{Latitude: *raw.Latitude, Longitude: *raw.Longitude}
		if raw.Altitude != nil {
			pos.Altitude = *raw.Altitude
		}
		cfg.OperatorPosition = &pos
	}

	return cfg, nil
}

// ParseNodeID accepts the firmware's "!hex" form or a plain decimal or
// hex number.
func ParseNodeID(s string) (mesh.NodeID, error) {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "!"); ok {
		v, err := strconv.ParseUint(rest, 16, 32)
		if err != nil {
			return 0, fmt.Errorf("node id %q: %w", s, err)
		}
		return mesh.NodeID(v), nil
	}
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("node id %q: %w", s, err)
	}
	return mesh.NodeID(v), nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
