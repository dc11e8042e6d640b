package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/tidwall/jsonc"
)

const mapFileVersion = 1

var ErrMapNotFound = errors.New("map not found")

var validate = validator.New()

// MapFile is the on-disk form of a map.
type MapFile struct {
	Version     int           `json:"version" validate:"gte=1"`
	ID          string        `json:"id" validate:"required"`
	Title       string        `json:"title"`
	Nodes       []Node        `json:"nodes" validate:"dive"`
	Connections []Connection  `json:"connections" validate:"dive"`
	Viewport    ViewportState `json:"viewport"`
}

// MapSummary is a listing entry.
type MapSummary struct {
	ID    string
	Title string
	Nodes int
}

// encodeMap snapshots a document for saving.
func encodeMap(m *Map, v *Viewport) MapFile {
	f := MapFile{
		Version:     mapFileVersion,
		ID:          m.ID,
		Title:       m.Title,
		Nodes:       m.Nodes(),
		Connections: m.Connections(),
	}
	if v != nil {
		f.Viewport = v.State()
	}
	return f
}

// parseMapFile strips comments and trailing commas, then decodes and
// validates a map file.
func parseMapFile(data []byte) (*MapFile, error) {
	var f MapFile
	if err := json.Unmarshal(jsonc.ToJSON(data), &f); err != nil {
		return nil, fmt.Errorf("parsing map: %w", err)
	}
	if f.Version == 0 {
		f.Version = mapFileVersion
	}
	if err := validate.Struct(&f); err != nil {
		return nil, fmt.Errorf("invalid map: %w", err)
	}
	seen := make(map[string]bool, len(f.Nodes))
	for _, n := range f.Nodes {
		if seen[n.ID] {
			return nil, fmt.Errorf("invalid map: duplicate node id %s", n.ID)
		}
		seen[n.ID] = true
	}
	return &f, nil
}

// decodeMap builds a Map from a parsed file. Connections that reference
// missing nodes, or repeat an already connected pair, are dropped.
func decodeMap(f *MapFile, estimator SizeEstimator, logger *slog.Logger) *Map {
	m := NewMap(f.Title, estimator)
	m.ID = f.ID
	for _, n := range f.Nodes {
		m.AddNodeWithID(n, m.Len())
	}
	for _, c := range f.Connections {
		if _, ok := m.Node(c.From); !ok {
			logger.Warn("dropping dangling connection", "map", f.ID, "connection", c.ID, "from", c.From)
			continue
		}
		if _, ok := m.Node(c.To); !ok {
			logger.Warn("dropping dangling connection", "map", f.ID, "connection", c.ID, "to", c.To)
			continue
		}
		if m.Connected(c.From, c.To) {
			logger.Warn("dropping duplicate connection", "map", f.ID, "connection", c.ID)
			continue
		}
		m.RestoreConnection(c)
	}
	return m
}

// Store keeps maps as JSON files named by map id inside one directory.
type Store struct {
	dir       string
	estimator SizeEstimator
	logger    *slog.Logger
}

func NewStore(dir string, estimator SizeEstimator, logger *slog.Logger) *Store {
	return &Store{dir: dir, estimator: estimator, logger: logger}
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Save writes the map atomically through a temp file and rename.
func (s *Store) Save(m *Map, v *Viewport) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}
	return writeMapFile(s.path(m.ID), encodeMap(m, v))
}

func writeMapFile(path string, f MapFile) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding map %s: %w", f.ID, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("renaming %s: %w", tmp, err)
	}
	return nil
}

// Load reads the map with the given id.
func (s *Store) Load(id string) (*Map, ViewportState, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ViewportState{}, fmt.Errorf("load %s: %w", id, ErrMapNotFound)
		}
		return nil, ViewportState{}, fmt.Errorf("load %s: %w", id, err)
	}
	f, err := parseMapFile(data)
	if err != nil {
		return nil, ViewportState{}, fmt.Errorf("load %s: %w", id, err)
	}
	return decodeMap(f, s.estimator, s.logger), f.Viewport, nil
}

// List returns every readable map, sorted by title then id. Unreadable
// files are logged and skipped.
func (s *Store) List() ([]MapSummary, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing maps: %w", err)
	}

	var out []MapSummary
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			s.logger.Warn("skipping unreadable map", "file", name, "error", err)
			continue
		}
		f, err := parseMapFile(data)
		if err != nil {
			s.logger.Warn("skipping invalid map", "file", name, "error", err)
			continue
		}
		out = append(out, MapSummary{ID: f.ID, Title: f.Title, Nodes: len(f.Nodes)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) Delete(id string) error {
	if err := os.Remove(s.path(id)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("delete %s: %w", id, ErrMapNotFound)
		}
		return fmt.Errorf("delete %s: %w", id, err)
	}
	return nil
}

// Import reads a map file from an arbitrary path. The map keeps its id, so
// saving it afterwards places it in the store.
func (s *Store) Import(path string) (*Map, ViewportState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ViewportState{}, fmt.Errorf("reading %s: %w", path, err)
	}
	f, err := parseMapFile(data)
	if err != nil {
		return nil, ViewportState{}, fmt.Errorf("%s: %w", path, err)
	}
	return decodeMap(f, s.estimator, s.logger), f.Viewport, nil
}

// Export writes the map to an arbitrary path.
func (s *Store) Export(m *Map, v *Viewport, path string) error {
	return writeMapFile(path, encodeMap(m, v))
}
