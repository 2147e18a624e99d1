package runs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"walkforward/src/datamodels"
	"walkforward/src/utils/errors"
)

const manifestFilename = "run.json"

// FileRunStore keeps one directory per run under a base directory, with the
// manifest serialized to run.json next to the run's artifacts.
type FileRunStore struct {
	baseDir string
}

func NewFileRunStore(baseDir string) (*FileRunStore, error) {
	if baseDir == "" {
		return nil, errors.New("runs base directory is required")
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, errors.Wrapf(err, "failed to create runs directory %s", baseDir)
	}
	return &FileRunStore{baseDir: baseDir}, nil
}

// BaseDir returns the directory all runs live under.
func (s *FileRunStore) BaseDir() string {
	return s.baseDir
}

// RunDir returns the directory holding the run's manifest and artifacts.
func (s *FileRunStore) RunDir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

func (s *FileRunStore) Create(ctx context.Context, name string, params *datamodels.BacktestParams) (*datamodels.RunManifest, error) {
	runID := strings.ReplaceAll(uuid.New().String(), "-", "")
	manifest := &datamodels.RunManifest{
		RunID:     runID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Status:    datamodels.RunStatusQueued,
		Params:    params,
	}

	if err := os.MkdirAll(s.RunDir(runID), 0755); err != nil {
		return nil, errors.Wrapf(err, "failed to create run directory for %s", runID)
	}
	if err := s.writeManifest(manifest); err != nil {
		return nil, err
	}
	return manifest, nil
}

func (s *FileRunStore) Get(ctx context.Context, runID string) (*datamodels.RunManifest, error) {
	raw, err := os.ReadFile(filepath.Join(s.RunDir(runID), manifestFilename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrRunNotFound, "run %s", runID)
		}
		return nil, err
	}
	var manifest datamodels.RunManifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return nil, errors.Wrapf(err, "corrupt manifest for run %s", runID)
	}
	return &manifest, nil
}

// List returns every run manifest, newest first.
func (s *FileRunStore) List(ctx context.Context) ([]*datamodels.RunManifest, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, err
	}

	manifests := make([]*datamodels.RunManifest, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		manifest, err := s.Get(ctx, entry.Name())
		if err != nil {
			continue // directories without a manifest are not runs
		}
		manifests = append(manifests, manifest)
	}

	sort.Slice(manifests, func(i, j int) bool {
		return manifests[i].CreatedAt.After(manifests[j].CreatedAt)
	})
	return manifests, nil
}

func (s *FileRunStore) Update(ctx context.Context, manifest *datamodels.RunManifest) error {
	if _, err := os.Stat(s.RunDir(manifest.RunID)); err != nil {
		return errors.Wrapf(ErrRunNotFound, "run %s", manifest.RunID)
	}
	return s.writeManifest(manifest)
}

// Artifacts lists the files under the run directory, relative paths sorted
// ascending.
func (s *FileRunStore) Artifacts(ctx context.Context, runID string) ([]string, error) {
	runDir := s.RunDir(runID)
	if _, err := os.Stat(runDir); err != nil {
		return nil, errors.Wrapf(ErrRunNotFound, "run %s", runID)
	}

	var files []string
	err := filepath.Walk(runDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(runDir, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

func (s *FileRunStore) writeManifest(manifest *datamodels.RunManifest) error {
	jsonBytes, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "failed to marshal manifest for run %s", manifest.RunID)
	}
	return os.WriteFile(filepath.Join(s.RunDir(manifest.RunID), manifestFilename), jsonBytes, 0644)
}
