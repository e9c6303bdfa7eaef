package contextstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"github.com/doeshing/k8sllm/internal/domain"
	"github.com/doeshing/k8sllm/internal/pkg/filesystem"
	"github.com/doeshing/k8sllm/internal/ports"
)

// FileStore keeps interactions as a JSON array in a single file.
// Read-modify-write cycles are serialized across processes with a lock file.
type FileStore struct {
	path string
	mu   sync.Mutex
	lock *flock.Flock
	log  ports.Logger
}

// DefaultPath returns ~/.k8sllm/context.json.
func DefaultPath() string {
	return filepath.Join(filesystem.AppDir(), "context.json")
}

// NewFileStore creates a store backed by path (DefaultPath when empty).
func NewFileStore(path string, log ports.Logger) *FileStore {
	if path == "" {
		path = DefaultPath()
	}
	return &FileStore{
		path: path,
		lock: flock.New(path + ".lock"),
		log:  log,
	}
}

// Path returns the backing file path.
func (f *FileStore) Path() string {
	return f.path
}

// Load implements ports.ContextStore.
func (f *FileStore) Load(ctx context.Context) []domain.Interaction {
	records, err := f.read()
	if err != nil {
		f.warn("context load failed, starting empty", err)
		return []domain.Interaction{}
	}
	return records
}

// Append implements ports.ContextStore.
func (f *FileStore) Append(ctx context.Context, query, command, result string) error {
	return f.withLock(func() error {
		records, err := f.read()
		if err != nil {
			f.warn("context unreadable, overwriting", err)
			records = nil
		}
		records = append(records, newInteraction(query, command, result))
		return f.write(tail(records, domain.MaxStoredInteractions))
	})
}

// Clear implements ports.ContextStore.
func (f *FileStore) Clear(ctx context.Context) error {
	return f.withLock(func() error {
		return f.write([]domain.Interaction{})
	})
}

// FormattedContext implements ports.ContextStore.
func (f *FileStore) FormattedContext(ctx context.Context) (string, bool) {
	return Format(f.Load(ctx))
}

func (f *FileStore) read() ([]domain.Interaction, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []domain.Interaction{}, nil
		}
		return nil, err
	}
	var records []domain.Interaction
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.path, err)
	}
	if records == nil {
		records = []domain.Interaction{}
	}
	return records, nil
}

func (f *FileStore) write(records []domain.Interaction) error {
	data, err := json.Marshal(records)
	if err != nil {
		return err
	}
	if err := filesystem.WriteFileAtomic(f.path, data, domain.SecureFilePermissions); err != nil {
		return fmt.Errorf("write context: %w", err)
	}
	return nil
}

func (f *FileStore) withLock(fn func() error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(f.path), domain.DirectoryPermissions); err != nil {
		return err
	}
	if err := f.lock.Lock(); err != nil {
		return fmt.Errorf("lock context: %w", err)
	}
	defer func() {
		if err := f.lock.Unlock(); err != nil {
			f.warn("context unlock failed", err)
		}
	}()
	return fn()
}

func (f *FileStore) warn(msg string, err error) {
	if f.log == nil {
		return
	}
	f.log.Warn(msg, map[string]interface{}{"path": f.path, "error": err.Error()})
}

var _ ports.ContextStore = (*FileStore)(nil)
