package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/dukex/notimaster/pkg/models"
	"github.com/dukex/notimaster/pkg/persistence"
	"github.com/google/uuid"
)

// LogRepository keeps every activity entry in logs.json.
type LogRepository struct {
	path string
	mu   sync.Mutex
}

func NewLogRepository(root string) *LogRepository {
	return &LogRepository{path: filepath.Join(root, "logs.json")}
}

func (r *LogRepository) load() ([]*models.LogEntry, error) {
	entries := make([]*models.LogEntry, 0)

	_, err := readJSON(r.path, &entries)
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *LogRepository) Save(_ context.Context, entry *models.LogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load()
	if err != nil {
		return err
	}

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	return writeJSON(r.path, append(entries, entry))
}

// List returns entries newest first.
func (r *LogRepository) List(_ context.Context, opts persistence.ListLogsOptions) (*persistence.LogListResult, error) {
	opts = opts.Normalize()

	r.mu.Lock()
	entries, err := r.load()
	r.mu.Unlock()

	if err != nil {
		return nil, err
	}

	filtered := make([]*models.LogEntry, 0, len(entries))

	for _, entry := range entries {
		if opts.NotificationID != "" && entry.NotificationID != opts.NotificationID {
			continue
		}

		filtered = append(filtered, entry)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	result := &persistence.LogListResult{
		Entries:    make([]*models.LogEntry, 0),
		TotalCount: int64(len(filtered)),
	}

	if opts.Offset >= len(filtered) {
		return result, nil
	}

	end := min(opts.Offset+opts.Limit, len(filtered))
	result.Entries = filtered[opts.Offset:end]

	return result, nil
}

func (r *LogRepository) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load()
	if err != nil {
		return 0, err
	}

	kept := make([]*models.LogEntry, 0, len(entries))

	for _, entry := range entries {
		if !entry.CreatedAt.Before(cutoff) {
			kept = append(kept, entry)
		}
	}

	deleted := int64(len(entries) - len(kept))
	if deleted == 0 {
		return 0, nil
	}

	err = writeJSON(r.path, kept)
	if err != nil {
		return 0, err
	}

	return deleted, nil
}

func (r *LogRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := os.Remove(r.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear logs: %w", err)
	}

	return nil
}
