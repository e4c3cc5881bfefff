package persistence

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/akolanti/GoIndex/internal/config"
	"github.com/akolanti/GoIndex/internal/domain/commonModels"
	"github.com/akolanti/GoIndex/pkg/logger_i"
	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

const (
	currentDir    = "current"
	backupSuffix  = ".bak"
	tmpPrefix     = ".tmp-"
	lockFile      = ".lock"
	manifestFile  = "manifest.json"
	documentsFile = "documents.jsonl"
	passagesFile  = "passages.jsonl"
	vectorFile    = "vectors.f32"
)

// Manifest describes one snapshot directory and how to interpret it.
type Manifest struct {
	FormatVersion int               `json:"format_version"`
	CreatedAt     string            `json:"created_at"`
	ModelID       string            `json:"model_id"`
	Dim           int               `json:"dim"`
	ChunkSize     int               `json:"chunk_size"`
	ChunkOverlap  int               `json:"chunk_overlap"`
	NextSeq       uint64            `json:"next_seq"`
	DocumentCount int               `json:"document_count"`
	PassageCount  int               `json:"passage_count"`
	Checksums     map[string]string `json:"sha256"`
}

// DirBackend keeps the snapshot under <dir>/current and owns <dir> through an advisory file lock.
type DirBackend struct {
	dir    string
	lock   *flock.Flock
	logger *logger_i.Logger
}

// OpenDir creates dir if needed and locks it. A second process on the same dir fails here.
func OpenDir(dir string) (*DirBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create snapshot dir %s: %w", dir, err)
	}
	l := flock.New(filepath.Join(dir, lockFile))
	locked, err := l.TryLock()
	if err != nil {
		return nil, fmt.Errorf("cannot lock snapshot dir: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("snapshot dir %s is in use by another process", dir)
	}
	return &DirBackend{dir: dir, lock: l, logger: logger_i.NewLogger("Snapshot Dir")}, nil
}

func (b *DirBackend) Close() error {
	return b.lock.Unlock()
}

func (b *DirBackend) Save(ctx context.Context, snap Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tmp := filepath.Join(b.dir, tmpPrefix+uuid.NewString())
	if err := writeSnapshot(tmp, snap); err != nil {
		_ = os.RemoveAll(tmp)
		return err
	}
	if err := AtomicSwap(tmp, filepath.Join(b.dir, currentDir)); err != nil {
		_ = os.RemoveAll(tmp)
		return fmt.Errorf("cannot swap snapshot into place: %w", err)
	}
	if err := syncDir(b.dir); err != nil {
		return fmt.Errorf("cannot sync snapshot dir: %w", err)
	}
	b.logger.Debug("snapshot saved", "documents", len(snap.Documents), "passages", len(snap.Passages))
	return nil
}

func (b *DirBackend) Load(ctx context.Context) (Snapshot, bool, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, false, err
	}
	if err := b.recover(); err != nil {
		return Snapshot{}, false, err
	}
	current := filepath.Join(b.dir, currentDir)
	if _, err := os.Stat(current); errors.Is(err, os.ErrNotExist) {
		return Snapshot{}, false, nil
	}
	snap, err := readSnapshot(current)
	if err != nil {
		return Snapshot{}, true, err
	}
	if err := Verify(snap); err != nil {
		return Snapshot{}, true, fmt.Errorf("snapshot %s is inconsistent: %w", current, err)
	}
	return snap, true, nil
}

// recover finishes or undoes a swap that a crash interrupted and drops abandoned temp dirs.
func (b *DirBackend) recover() error {
	current := filepath.Join(b.dir, currentDir)
	backup := current + backupSuffix

	_, curErr := os.Stat(current)
	_, bakErr := os.Stat(backup)
	switch {
	case errors.Is(curErr, os.ErrNotExist) && bakErr == nil:
		b.logger.Warn("restoring snapshot from backup after interrupted save", "backup", backup)
		if err := os.Rename(backup, current); err != nil {
			return fmt.Errorf("cannot restore snapshot backup: %w", err)
		}
	case curErr == nil && bakErr == nil:
		_ = os.RemoveAll(backup)
	}

	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return fmt.Errorf("cannot read snapshot dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), tmpPrefix) {
			_ = os.RemoveAll(filepath.Join(b.dir, e.Name()))
		}
	}
	return nil
}

// AtomicSwap replaces destDir with srcDir by renaming.
func AtomicSwap(srcDir, destDir string) error {
	backup := destDir + backupSuffix
	_ = os.RemoveAll(backup)
	if _, err := os.Stat(destDir); err == nil {
		if err := os.Rename(destDir, backup); err != nil {
			return err
		}
	}
	if err := os.Rename(srcDir, destDir); err != nil {
		// rollback best-effort
		if _, stErr := os.Stat(backup); stErr == nil {
			_ = os.Rename(backup, destDir)
		}
		return err
	}
	_ = os.RemoveAll(backup)
	return nil
}

func writeSnapshot(dir string, snap Snapshot) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create snapshot dir %s: %w", dir, err)
	}

	manifest := Manifest{
		FormatVersion: config.SnapshotFormatVer,
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
		ModelID:       snap.ModelID,
		Dim:           snap.Dimension,
		ChunkSize:     snap.ChunkSize,
		ChunkOverlap:  snap.ChunkOverlap,
		NextSeq:       snap.NextSeq,
		DocumentCount: len(snap.Documents),
		PassageCount:  len(snap.Passages),
		Checksums:     make(map[string]string, 3),
	}

	sum, err := writeFile(filepath.Join(dir, documentsFile), func(w io.Writer) error {
		return writeJSONLines(w, snap.Documents)
	})
	if err != nil {
		return err
	}
	manifest.Checksums[documentsFile] = sum

	sum, err = writeFile(filepath.Join(dir, passagesFile), func(w io.Writer) error {
		return writeJSONLines(w, snap.Passages)
	})
	if err != nil {
		return err
	}
	manifest.Checksums[passagesFile] = sum

	sum, err = writeFile(filepath.Join(dir, vectorFile), func(w io.Writer) error {
		for _, p := range snap.Passages {
			if len(p.Embedding) != snap.Dimension {
				return fmt.Errorf("passage %s has %d dimensions, want %d", p.Id, len(p.Embedding), snap.Dimension)
			}
			if err := binary.Write(w, binary.LittleEndian, p.Embedding); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	manifest.Checksums[vectorFile] = sum

	// manifest last: a directory without one is never loadable
	_, err = writeFile(filepath.Join(dir, manifestFile), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(manifest)
	})
	if err != nil {
		return err
	}
	return syncDir(dir)
}

// writeFile creates path, streams content through a sha256, fsyncs and returns the hex digest.
func writeFile(path string, content func(w io.Writer) error) (string, error) {
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("cannot create %s: %w", path, err)
	}
	h := sha256.New()
	bw := bufio.NewWriter(io.MultiWriter(f, h))
	if err := content(bw); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("cannot write %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("cannot write %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("cannot sync %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func writeJSONLines[T any](w io.Writer, records []T) error {
	enc := json.NewEncoder(w)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

func readSnapshot(dir string) (Snapshot, error) {
	manifestPath := filepath.Join(dir, manifestFile)
	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		return Snapshot{}, fmt.Errorf("cannot read manifest %s: %w", manifestPath, err)
	}
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return Snapshot{}, fmt.Errorf("invalid manifest JSON %s: %w", manifestPath, err)
	}
	if m.FormatVersion != config.SnapshotFormatVer {
		return Snapshot{}, fmt.Errorf("unsupported snapshot format version %d", m.FormatVersion)
	}
	if m.Dim < 0 || (m.PassageCount > 0 && m.Dim == 0) {
		return Snapshot{}, fmt.Errorf("invalid dim in manifest: %d", m.Dim)
	}

	var docs []commonModels.Document
	if err := readChecked(filepath.Join(dir, documentsFile), m.Checksums[documentsFile], func(r io.Reader) error {
		return readJSONLines(r, &docs)
	}); err != nil {
		return Snapshot{}, err
	}

	var passages []commonModels.Passage
	if err := readChecked(filepath.Join(dir, passagesFile), m.Checksums[passagesFile], func(r io.Reader) error {
		return readJSONLines(r, &passages)
	}); err != nil {
		return Snapshot{}, err
	}

	if len(docs) != m.DocumentCount || len(passages) != m.PassageCount {
		return Snapshot{}, fmt.Errorf("record count mismatch: documents %d/%d passages %d/%d",
			len(docs), m.DocumentCount, len(passages), m.PassageCount)
	}

	if err := readChecked(filepath.Join(dir, vectorFile), m.Checksums[vectorFile], func(r io.Reader) error {
		return readVectors(r, passages, m.Dim)
	}); err != nil {
		return Snapshot{}, err
	}

	return Snapshot{
		ModelID:      m.ModelID,
		Dimension:    m.Dim,
		ChunkSize:    m.ChunkSize,
		ChunkOverlap: m.ChunkOverlap,
		NextSeq:      m.NextSeq,
		Documents:    docs,
		Passages:     passages,
	}, nil
}

// readChecked reads path fully, compares its sha256 with want, then hands the bytes to parse.
func readChecked(path, want string, parse func(r io.Reader) error) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}
	if got := digest(sha256.New(), data); got != want {
		return fmt.Errorf("checksum mismatch for %s", filepath.Base(path))
	}
	if err := parse(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("invalid %s: %w", filepath.Base(path), err)
	}
	return nil
}

func digest(h hash.Hash, data []byte) string {
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// readJSONLines decodes one record per value; lines have no length cap, so escaped text of any size loads.
func readJSONLines[T any](r io.Reader, out *[]T) error {
	dec := json.NewDecoder(r)
	for dec.More() {
		var rec T
		if err := dec.Decode(&rec); err != nil {
			return err
		}
		*out = append(*out, rec)
	}
	return nil
}

func readVectors(r io.Reader, passages []commonModels.Passage, dim int) error {
	for i := range passages {
		vec := make([]float32, dim)
		if err := binary.Read(r, binary.LittleEndian, vec); err != nil {
			return fmt.Errorf("vector %d: %w", i, err)
		}
		passages[i].Embedding = vec
	}
	var extra [1]byte
	if n, _ := r.Read(extra[:]); n != 0 {
		return errors.New("trailing bytes after last vector")
	}
	return nil
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}
