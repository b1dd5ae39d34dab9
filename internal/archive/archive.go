// Package archive exports finished sessions as zstd-compressed JSON so
// history can be shipped around or kept outside the live database.
package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/kellerdav/classroom-sim/internal/report"
)

// #region export

// Export bundles everything persisted about one session.
type Export struct {
	Record report.SessionRecord  `json:"record"`
	Report *report.SessionReport `json:"report,omitempty"` // nil for sessions that never ended
}

// Write compresses the export into dir/{session-id}.json.zst and returns
// the archive path.
func Write(ex Export, dir string) (string, error) {
	if ex.Record.SessionID == "" {
		return "", fmt.Errorf("export has no session id")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create archive dir: %w", err)
	}

	destPath := Path(ex.Record.SessionID, dir)
	dest, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("create archive: %w", err)
	}
	defer dest.Close()

	encoder, err := zstd.NewWriter(dest)
	if err != nil {
		return "", fmt.Errorf("create zstd encoder: %w", err)
	}
	if err := json.NewEncoder(encoder).Encode(ex); err != nil {
		encoder.Close()
		return "", fmt.Errorf("encode session %s: %w", ex.Record.SessionID, err)
	}
	if err := encoder.Close(); err != nil {
		return "", fmt.Errorf("finalize compression: %w", err)
	}
	return destPath, nil
}

// Read opens and decodes an archive written by Write.
func Read(path string) (Export, error) {
	src, err := os.Open(path)
	if err != nil {
		return Export{}, fmt.Errorf("open archive: %w", err)
	}
	defer src.Close()

	decoder, err := zstd.NewReader(src)
	if err != nil {
		return Export{}, fmt.Errorf("create zstd decoder: %w", err)
	}
	defer decoder.Close()

	var ex Export
	if err := json.NewDecoder(decoder).Decode(&ex); err != nil {
		return Export{}, fmt.Errorf("decode archive %s: %w", path, err)
	}
	return ex, nil
}

// IsArchived reports whether an archive exists for the session id.
func IsArchived(sessionID, dir string) bool {
	_, err := os.Stat(Path(sessionID, dir))
	return err == nil
}

// Path returns the deterministic archive path for a session id.
func Path(sessionID, dir string) string {
	return filepath.Join(dir, sessionID+".json.zst")
}

// #endregion export
