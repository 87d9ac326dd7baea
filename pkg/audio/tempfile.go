package audio

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// WriteTemp encodes the clip as WAV into a uniquely named file under dir
// (os.TempDir when dir is empty) and returns the path plus a cleanup function
// that removes the file. The caller must invoke cleanup after the
// transcription attempt, success or failure — temp recordings are never left
// behind.
func WriteTemp(dir string, clip Clip) (path string, cleanup func(), err error) {
	if dir == "" {
		dir = os.TempDir()
	}
	path = filepath.Join(dir, fmt.Sprintf("voicesearch-%s.wav", uuid.NewString()))

	if err := os.WriteFile(path, clip.WAV(), 0o600); err != nil {
		return "", nil, fmt.Errorf("audio: write temp wav: %w", err)
	}
	return path, func() { os.Remove(path) }, nil
}
