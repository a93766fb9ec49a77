package artifacts

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/medflow/clinic-platform/internal/observability/metrics"
	"github.com/medflow/clinic-platform/pkg/logging"
)

// Store keeps prescription artifacts on the local filesystem under a
// date-sharded layout:
//
//	root/{class}/{yyyy}/{mm}/{dd}/{prescriptionID}/{class}_{epochMillis}{ext}
//
// The date components come from the artifact's creation time, not the
// prescription's. Lookup by prescription id therefore walks the dated tree.
type Store struct {
	root    string
	baseURL string
	index   *ShardIndex
	metrics *metrics.ClinicMetrics
	logger  *logging.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewStore creates a filesystem-backed artifact store rooted at root. The
// index and metrics are optional.
func NewStore(root, baseURL string, index *ShardIndex, m *metrics.ClinicMetrics, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{
		root:    filepath.Clean(root),
		baseURL: strings.TrimRight(baseURL, "/"),
		index:   index,
		metrics: m,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Save writes one artifact and returns its record. Directory creation is
// idempotent: concurrent writers racing to create the same date shard both
// succeed. Filenames embed a millisecond timestamp; two saves for the same
// prescription and class within the same millisecond remain a known,
// unresolved narrow race.
func (s *Store) Save(ctx context.Context, data []byte, prescriptionID string, class Class) (*SavedArtifact, error) {
	if strings.TrimSpace(prescriptionID) == "" {
		return nil, ErrMissingPrescriptionID
	}
	if !ValidClass(class) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidClass, class)
	}
	if len(data) == 0 {
		return nil, ErrEmptyPayload
	}

	now := s.now()
	shard := shardPath(class, now)
	relDir := path.Join(shard, prescriptionID)
	absDir := filepath.Join(s.root, filepath.FromSlash(relDir))

	if err := os.MkdirAll(absDir, 0o755); err != nil {
		s.metrics.ObserveArtifactOp("save", "error")
		return nil, fmt.Errorf("artifacts: create shard dir: %w", err)
	}

	ext, mimeType := extensionFor(class, data)
	filename := fmt.Sprintf("%s_%d%s", class, now.UnixMilli(), ext)
	absPath := filepath.Join(absDir, filename)

	if err := os.WriteFile(absPath, data, 0o644); err != nil {
		s.metrics.ObserveArtifactOp("save", "error")
		return nil, fmt.Errorf("artifacts: write %s: %w", filename, err)
	}

	if err := s.index.Record(ctx, prescriptionID, shard); err != nil {
		// The index is an accelerator; the dated tree stays authoritative.
		s.logger.Warn("artifact index record failed", "prescription_id", prescriptionID, "error", err)
	}

	relPath := "/" + path.Join(relDir, filename)
	record := &SavedArtifact{
		Filename:       filename,
		Path:           absPath,
		RelativePath:   relPath,
		URL:            s.baseURL + relPath,
		Size:           int64(len(data)),
		MimeType:       mimeType,
		PrescriptionID: prescriptionID,
		Class:          class,
		UploadedAt:     now,
	}

	s.metrics.ObserveArtifactOp("save", "ok")
	s.metrics.ObserveArtifactSize(string(class), len(data))
	s.logger.Info("artifact saved",
		"prescription_id", prescriptionID,
		"class", class,
		"path", relPath,
		"size", record.Size,
	)
	return record, nil
}

// List returns every artifact stored for the prescription, oldest first. A
// prescription with no artifacts yields an empty slice, not an error. The
// shard index is consulted first; a cold or unavailable index falls back to
// the full year→month→day scan.
func (s *Store) List(ctx context.Context, prescriptionID string) ([]*SavedArtifact, error) {
	if strings.TrimSpace(prescriptionID) == "" {
		return nil, ErrMissingPrescriptionID
	}

	if shards, err := s.index.Shards(ctx, prescriptionID); err == nil && len(shards) > 0 {
		records := s.collectShards(prescriptionID, shards)
		if len(records) > 0 {
			s.metrics.ObserveArtifactOp("list", "ok")
			return records, nil
		}
		// Stale index entries; fall through to the authoritative scan.
	}

	records := s.collectShards(prescriptionID, s.scanShards(prescriptionID))
	s.metrics.ObserveArtifactOp("list", "ok")
	return records, nil
}

// Delete removes every artifact for the prescription, then prunes now-empty
// dated directories children-first. A failed unlink is logged and skipped;
// the result counts files actually deleted.
func (s *Store) Delete(ctx context.Context, prescriptionID string) (*DeleteResult, error) {
	if strings.TrimSpace(prescriptionID) == "" {
		return nil, ErrMissingPrescriptionID
	}

	// Always scan: the index may lag behind concurrent saves.
	shards := s.scanShards(prescriptionID)
	records := s.collectShards(prescriptionID, shards)

	result := &DeleteResult{}
	for _, rec := range records {
		if err := os.Remove(rec.Path); err != nil {
			s.logger.Warn("artifact unlink failed", "path", rec.Path, "error", err)
			result.Failed = append(result.Failed, rec.RelativePath)
			continue
		}
		result.Deleted++
	}

	s.pruneShards(prescriptionID, shards)

	if err := s.index.Forget(ctx, prescriptionID); err != nil {
		s.logger.Warn("artifact index forget failed", "prescription_id", prescriptionID, "error", err)
	}

	outcome := "ok"
	if len(result.Failed) > 0 {
		outcome = "partial"
	}
	s.metrics.ObserveArtifactOp("delete", outcome)
	s.logger.Info("artifacts deleted",
		"prescription_id", prescriptionID,
		"deleted", result.Deleted,
		"failed", len(result.Failed),
	)
	return result, nil
}

// shardPath builds "class/yyyy/mm/dd" for a creation time.
func shardPath(class Class, t time.Time) string {
	return fmt.Sprintf("%s/%04d/%02d/%02d", class, t.Year(), int(t.Month()), t.Day())
}

// scanShards walks each class's year/month/day tree and returns every shard
// holding a subdirectory named after the prescription. The scan is bounded:
// three levels of directories per class, tested with a single stat at the leaf.
func (s *Store) scanShards(prescriptionID string) []string {
	var shards []string
	for _, class := range Classes {
		classDir := filepath.Join(s.root, string(class))
		for _, year := range readNumericDirs(classDir) {
			yearDir := filepath.Join(classDir, year)
			for _, month := range readNumericDirs(yearDir) {
				monthDir := filepath.Join(yearDir, month)
				for _, day := range readNumericDirs(monthDir) {
					leaf := filepath.Join(monthDir, day, prescriptionID)
					if info, err := os.Stat(leaf); err == nil && info.IsDir() {
						shards = append(shards, path.Join(string(class), year, month, day))
					}
				}
			}
		}
	}
	return shards
}

// collectShards enumerates the prescription's files inside the given shards.
func (s *Store) collectShards(prescriptionID string, shards []string) []*SavedArtifact {
	records := make([]*SavedArtifact, 0)
	for _, shard := range shards {
		class := Class(strings.SplitN(shard, "/", 2)[0])
		leafRel := path.Join(shard, prescriptionID)
		leafAbs := filepath.Join(s.root, filepath.FromSlash(leafRel))

		entries, err := os.ReadDir(leafAbs)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				s.logger.Warn("artifact stat failed", "path", entry.Name(), "error", err)
				continue
			}

			name := entry.Name()
			relPath := "/" + path.Join(leafRel, name)
			records = append(records, &SavedArtifact{
				Filename:       name,
				Path:           filepath.Join(leafAbs, name),
				RelativePath:   relPath,
				URL:            s.baseURL + relPath,
				Size:           info.Size(),
				MimeType:       mimeTypeFor(strings.ToLower(filepath.Ext(name))),
				PrescriptionID: prescriptionID,
				Class:          class,
				UploadedAt:     uploadedAtFromName(name, info.ModTime().UTC()),
			})
		}
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].UploadedAt.Equal(records[j].UploadedAt) {
			return records[i].RelativePath < records[j].RelativePath
		}
		return records[i].UploadedAt.Before(records[j].UploadedAt)
	})
	return records
}

// pruneShards removes now-empty directories post-order: the prescription leaf,
// then day, month, year, class. os.Remove refuses non-empty directories, which
// keeps shards holding other prescriptions' artifacts intact.
func (s *Store) pruneShards(prescriptionID string, shards []string) {
	for _, shard := range shards {
		dir := filepath.Join(s.root, filepath.FromSlash(shard), prescriptionID)
		for dir != s.root && strings.HasPrefix(dir, s.root) {
			if err := os.Remove(dir); err != nil {
				break
			}
			dir = filepath.Dir(dir)
		}
	}
}

// uploadedAtFromName recovers the creation time embedded in
// "{class}_{epochMillis}{ext}", falling back to the file mtime.
func uploadedAtFromName(name string, fallback time.Time) time.Time {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	idx := strings.LastIndexByte(base, '_')
	if idx < 0 {
		return fallback
	}
	millis, err := strconv.ParseInt(base[idx+1:], 10, 64)
	if err != nil {
		return fallback
	}
	return time.UnixMilli(millis).UTC()
}

// readNumericDirs lists subdirectory names made of digits only, sorted.
func readNumericDirs(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if name == "" || strings.IndexFunc(name, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
			continue
		}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
