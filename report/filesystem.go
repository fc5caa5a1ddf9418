package report

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/itsatony/go-cuserr"
)

const (
	errMsgEmptyRoot         = "filesystem store root must not be empty"
	errMsgCreateRoot        = "failed to create store root"
	errMsgStoreClosed       = "store is closed"
	errMsgEncodeReport      = "failed to encode report"
	errMsgWriteReport       = "failed to write report"
	errMsgUpdateLatest      = "failed to update latest pointer"
	errMsgReadReport        = "failed to read report"
	errMsgDecodeReport      = "failed to decode report"
	errMsgReadLatestPointer = "failed to read latest pointer"
)

// FilesystemStore stores one JSON file per run under root, plus a
// per-package pointer file recording the most recent run id.
type FilesystemStore struct {
	mu     sync.RWMutex
	root   string
	closed bool
}

type filesystemStoreDriver struct{}

func init() {
	RegisterArtifactDriver("filesystem", &filesystemStoreDriver{})
}

// Open creates a new FilesystemStore. The connection string is the root
// directory path.
func (d *filesystemStoreDriver) Open(connectionString string) (ArtifactStore, error) {
	return NewFilesystemStore(connectionString)
}

// NewFilesystemStore creates a filesystem-backed ArtifactStore rooted at
// root, creating the directory if it does not already exist.
func NewFilesystemStore(root string) (*FilesystemStore, error) {
	if root == "" {
		return nil, cuserr.NewValidationError(errCodeStorage, errMsgEmptyRoot)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, cuserr.WrapStdError(err, errCodeStorage, errMsgCreateRoot)
	}
	return &FilesystemStore{root: root}, nil
}

var _ ArtifactStore = (*FilesystemStore)(nil)

func (s *FilesystemStore) Save(ctx context.Context, runID string, r *Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return cuserr.NewValidationError(errCodeStorage, errMsgStoreClosed)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return cuserr.WrapStdError(err, errCodeReport, errMsgEncodeReport).WithMetadata(metaKeyRunID, runID)
	}

	path := s.runPath(runID)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return cuserr.WrapStdError(err, errCodeReport, errMsgWriteReport).WithMetadata(metaKeyRunID, runID)
	}

	pointer := s.latestPointerPath(r.TargetPackage)
	if err := os.WriteFile(pointer, []byte(runID), 0o644); err != nil {
		return cuserr.WrapStdError(err, errCodeReport, errMsgUpdateLatest).WithMetadata(metaKeyRunID, runID)
	}

	return nil
}

func (s *FilesystemStore) Load(ctx context.Context, runID string) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, cuserr.NewValidationError(errCodeStorage, errMsgStoreClosed)
	}

	data, err := os.ReadFile(s.runPath(runID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewRunNotFoundError(runID)
		}
		return nil, cuserr.WrapStdError(err, errCodeReport, errMsgReadReport).WithMetadata(metaKeyRunID, runID)
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, cuserr.WrapStdError(err, errCodeReport, errMsgDecodeReport).WithMetadata(metaKeyRunID, runID)
	}
	return &r, nil
}

func (s *FilesystemStore) Latest(ctx context.Context, targetPackage string) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	pointerPath := s.latestPointerPath(targetPackage)
	s.mu.RUnlock()

	data, err := os.ReadFile(pointerPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewRunNotFoundError(targetPackage)
		}
		return nil, cuserr.WrapStdError(err, errCodeReport, errMsgReadLatestPointer)
	}

	return s.Load(ctx, string(data))
}

func (s *FilesystemStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *FilesystemStore) runPath(runID string) string {
	return filepath.Join(s.root, sanitizeFileName(runID)+".json")
}

func (s *FilesystemStore) latestPointerPath(targetPackage string) string {
	return filepath.Join(s.root, "latest-"+sanitizeFileName(targetPackage)+".txt")
}

func sanitizeFileName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// listRuns returns every run id currently stored, sorted lexically. Mostly
// useful for CLI tooling and tests.
func (s *FilesystemStore) listRuns() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, err
	}
	var runs []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), "latest-") || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		runs = append(runs, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(runs)
	return runs, nil
}
