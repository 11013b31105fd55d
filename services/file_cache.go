package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pick-ledger-go/logging"
	"pick-ledger-go/models"
)

// FileGameCache is the no-database fallback: one JSON file per (league,
// date) under a local cache directory. A refetch overwrites the day's file.
type FileGameCache struct {
	dir    string
	logger *logging.Logger
}

// NewFileGameCache creates a file cache rooted at dir, creating it if needed
func NewFileGameCache(dir string) (*FileGameCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir %s: %w", dir, err)
	}
	return &FileGameCache{
		dir:    dir,
		logger: logging.WithPrefix("FileCache"),
	}, nil
}

func (c *FileGameCache) dayPath(league models.League, date string) string {
	return filepath.Join(c.dir, strings.ToLower(string(league)), date+".json")
}

// PutDay writes one day's games for a league, replacing any previous fetch
func (c *FileGameCache) PutDay(league models.League, date string, games []*models.Game) error {
	path := c.dayPath(league, date)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create league cache dir: %w", err)
	}

	data, err := json.MarshalIndent(games, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode games for %s/%s: %w", league, date, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache file %s: %w", path, err)
	}

	return nil
}

// GetDay returns the cached games for one (league, date), or (nil, false)
// when the day was never fetched
func (c *FileGameCache) GetDay(league models.League, date string) ([]*models.Game, bool, error) {
	data, err := os.ReadFile(c.dayPath(league, date))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read cache file for %s/%s: %w", league, date, err)
	}

	var games []*models.Game
	if err := json.Unmarshal(data, &games); err != nil {
		return nil, false, fmt.Errorf("corrupt cache file for %s/%s: %w", league, date, err)
	}

	return games, true, nil
}
