package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested export file does not exist.
var ErrNotFound = errors.New("export file not found")

// Manager organizes export files in one directory per export.
type Manager struct {
	BaseDir string
}

// NewManager creates a manager rooted at baseDir.
func NewManager(baseDir string) *Manager {
	return &Manager{BaseDir: baseDir}
}

// EnsureBaseDir creates the base output directory.
func (m *Manager) EnsureBaseDir() error {
	return os.MkdirAll(m.BaseDir, 0o755)
}

// NewID returns a fresh export ID.
func (m *Manager) NewID() string {
	return uuid.New().String()
}

// CreateDir creates the directory of export id.
func (m *Manager) CreateDir(id string) (string, error) {
	dir := filepath.Join(m.BaseDir, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	return dir, nil
}

// FilePath returns the path of fileName inside export id, creating the
// directory. Any directory part of fileName is dropped.
func (m *Manager) FilePath(id, fileName string) (string, error) {
	dir, err := m.CreateDir(id)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, filepath.Base(fileName)), nil
}

// DownloadURL returns the API path serving fileName of export id.
func (m *Manager) DownloadURL(id, fileName string) string {
	return fmt.Sprintf("/api/v1/download/%s/%s", id, filepath.Base(fileName))
}

// Resolve returns the path of an existing export file. IDs must be UUIDs
// and file names plain names, so requests cannot escape the base directory.
func (m *Manager) Resolve(id, fileName string) (string, error) {
	if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("%w: invalid export id %q", ErrNotFound, id)
	}
	if fileName == "" || fileName != filepath.Base(fileName) || strings.HasPrefix(fileName, ".") {
		return "", fmt.Errorf("%w: invalid file name %q", ErrNotFound, fileName)
	}
	path := filepath.Join(m.BaseDir, id, fileName)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: %s/%s", ErrNotFound, id, fileName)
	}
	return path, nil
}

// FileType names the format of fileName from its extension.
func FileType(fileName string) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		return "csv"
	case ".json":
		return "json"
	case ".xlsx", ".xls":
		return "excel"
	case ".db", ".sqlite":
		return "sqlite"
	case ".png":
		return "png"
	default:
		return "unknown"
	}
}

// ContentType returns the MIME type served for fileName.
func ContentType(fileName string) string {
	switch FileType(fileName) {
	case "csv":
		return "text/csv"
	case "json":
		return "application/json"
	case "excel":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "sqlite":
		return "application/vnd.sqlite3"
	case "png":
		return "image/png"
	default:
		return "application/octet-stream"
	}
}

// FileSize returns the size of path in bytes.
func FileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
