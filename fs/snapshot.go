// Package fs provides file-based storage for the corpus: a binary snapshot
// used as the startup cache and a markdown export of the transcripts.
package fs

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/lawofone"
)

// Ensure SnapshotStore implements lawofone.CorpusCache at compile time.
var _ lawofone.CorpusCache = (*SnapshotStore)(nil)

// SnapshotFile is the snapshot's file name inside the data directory.
const SnapshotFile = "law_of_one_cache.snap"

// Snapshot layout: 4-byte magic with format version, 8-byte big-endian
// xxhash64 of the payload, gob-encoded Corpus.
var snapshotMagic = []byte{'L', 'O', 'O', 1}

const headerSize = 12

// SnapshotStore persists the corpus as a single checksummed file.
type SnapshotStore struct {
	path string
}

// NewSnapshotStore creates a store keeping its snapshot in dir.
func NewSnapshotStore(dir string) *SnapshotStore {
	return &SnapshotStore{path: filepath.Join(dir, SnapshotFile)}
}

// Path returns the snapshot file path.
func (s *SnapshotStore) Path() string {
	return s.path
}

// Load reads and verifies the snapshot.
func (s *SnapshotStore) Load(ctx context.Context) (*lawofone.Corpus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, lawofone.Errorf(lawofone.ENOTFOUND, "no snapshot at %s", s.path)
	} else if err != nil {
		return nil, lawofone.Errorf(lawofone.ECORRUPT, "read snapshot: %v", err)
	}

	if len(data) < headerSize {
		return nil, lawofone.Errorf(lawofone.ECORRUPT, "snapshot truncated")
	}
	if !bytes.Equal(data[:4], snapshotMagic) {
		return nil, lawofone.Errorf(lawofone.ECORRUPT, "unsupported snapshot format")
	}
	payload := data[headerSize:]
	if binary.BigEndian.Uint64(data[4:headerSize]) != xxhash.Sum64(payload) {
		return nil, lawofone.Errorf(lawofone.ECORRUPT, "snapshot checksum mismatch")
	}

	var corpus lawofone.Corpus
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&corpus); err != nil {
		return nil, lawofone.Errorf(lawofone.ECORRUPT, "decode snapshot: %v", err)
	}
	if !corpus.Valid() {
		return nil, lawofone.Errorf(lawofone.ECORRUPT, "snapshot holds an incomplete corpus")
	}
	return &corpus, nil
}

// Save writes corpus to a temporary file in the same directory and renames
// it over the snapshot.
func (s *SnapshotStore) Save(ctx context.Context, corpus *lawofone.Corpus) error {
	if corpus == nil {
		return lawofone.Errorf(lawofone.EINVALID, "corpus required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.Write(make([]byte, headerSize))
	if err := gob.NewEncoder(&buf).Encode(corpus); err != nil {
		return lawofone.Errorf(lawofone.EINTERNAL, "encode snapshot: %v", err)
	}
	data := buf.Bytes()
	copy(data, snapshotMagic)
	binary.BigEndian.PutUint64(data[4:headerSize], xxhash.Sum64(data[headerSize:]))

	return writeFileAtomic(s.path, data)
}

// writeFileAtomic replaces path with data so readers see the old or the new
// content, never a partial write.
func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
