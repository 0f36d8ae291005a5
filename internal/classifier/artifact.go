package classifier

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/blake2b"
)

// ArtifactVersion identifies the on-disk model format
const ArtifactVersion = 1

// ErrArtifactCorrupt is returned when a persisted model cannot be trusted
var ErrArtifactCorrupt = errors.New("model artifact corrupt")

type artifact struct {
	Version  int             `json:"version"`
	Checksum string          `json:"checksum"`
	Model    json.RawMessage `json:"model"`
}

func checksum(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Save writes the model to path, replacing any previous artifact atomically
func Save(path string, m *Model) error {
	if m == nil {
		return errors.New("cannot save nil model")
	}

	body, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}
	data, err := json.Marshal(artifact{
		Version:  ArtifactVersion,
		Checksum: checksum(body),
		Model:    body,
	})
	if err != nil {
		return fmt.Errorf("failed to encode artifact: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp artifact: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace artifact: %w", err)
	}
	return nil
}

// Load reads a model written by Save. A missing file returns an error
// satisfying errors.Is(err, fs.ErrNotExist); anything unreadable returns
// ErrArtifactCorrupt.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}

	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArtifactCorrupt, err)
	}
	if a.Version != ArtifactVersion {
		return nil, fmt.Errorf("%w: version %d, want %d", ErrArtifactCorrupt, a.Version, ArtifactVersion)
	}
	if a.Checksum != checksum(a.Model) {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrArtifactCorrupt)
	}

	m := &Model{}
	if err := json.Unmarshal(a.Model, m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArtifactCorrupt, err)
	}
	if err := m.check(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArtifactCorrupt, err)
	}
	return m, nil
}
