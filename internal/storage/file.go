package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/deusflow/dailyreads/internal/urlnorm"
)

const defaultFile = "state/seen_urls.json"

// FileStore keeps seen URLs in a JSON file, rewritten on every insert.
type FileStore struct {
	filePath string
	items    map[string]SeenRecord
	mu       sync.RWMutex
}

// NewFileStore loads the store at path, starting empty when the file is missing.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		path = defaultFile
	}
	fs := &FileStore{filePath: path, items: make(map[string]SeenRecord)}
	if err := fs.load(); err != nil {
		return nil, err
	}
	return fs, nil
}

func (fs *FileStore) load() error {
	data, err := os.ReadFile(fs.filePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read state file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var records []SeenRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("failed to unmarshal state file: %w", err)
	}
	for _, r := range records {
		fs.items[r.URL] = r
	}
	return nil
}

// save writes through a temp file so a crash never leaves a truncated file.
func (fs *FileStore) save() error {
	records := fs.sorted()
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(fs.filePath), 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	tmp := fs.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return os.Rename(tmp, fs.filePath)
}

func (fs *FileStore) sorted() []SeenRecord {
	records := make([]SeenRecord, 0, len(fs.items))
	for _, r := range fs.items {
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].FirstSeenAt.Equal(records[j].FirstSeenAt) {
			return records[i].FirstSeenAt.Before(records[j].FirstSeenAt)
		}
		return records[i].URL < records[j].URL
	})
	return records
}

func (fs *FileStore) IsSeen(_ context.Context, rawURL string) (bool, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	_, ok := fs.items[urlnorm.Normalize(rawURL)]
	return ok, nil
}

func (fs *FileStore) MarkSeen(_ context.Context, rawURL string, at time.Time) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	u := urlnorm.Normalize(rawURL)
	if _, ok := fs.items[u]; ok {
		return nil
	}
	fs.items[u] = SeenRecord{URL: u, FirstSeenAt: at.UTC()}
	if err := fs.save(); err != nil {
		delete(fs.items, u)
		return err
	}
	return nil
}

func (fs *FileStore) List(context.Context) ([]SeenRecord, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.sorted(), nil
}

func (fs *FileStore) Close() error { return nil }
