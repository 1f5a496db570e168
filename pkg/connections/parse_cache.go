package connections

import (
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"

	"railroute/internal/domain"
)

// DataFingerprint identifies a connection file by content.
func DataFingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func parsedCachePath(cacheDir, fingerprint string) string {
	return filepath.Join(cacheDir, fmt.Sprintf("connections_%s.gob.gz", fingerprint))
}

func LoadParsedRecords(cacheDir, fingerprint string) ([]domain.Record, string, error) {
	path := parsedCachePath(cacheDir, fingerprint)
	f, err := os.Open(path)
	if err != nil {
		return nil, path, err
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, path, err
	}
	defer zr.Close()

	var records []domain.Record
	if err := gob.NewDecoder(zr).Decode(&records); err != nil {
		return nil, path, err
	}
	return records, path, nil
}

// SaveParsedRecords writes records through a temp file so a concurrent reader
// never sees a partial cache entry.
func SaveParsedRecords(cacheDir, fingerprint string, records []domain.Record) (string, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return "", err
	}

	path := parsedCachePath(cacheDir, fingerprint)
	tmpPath := path + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return "", err
	}

	zw, err := gzip.NewWriterLevel(f, gzip.BestSpeed)
	if err != nil {
		f.Close()
		_ = os.Remove(tmpPath)
		return "", err
	}

	encErr := gob.NewEncoder(zw).Encode(records)
	closeErr := zw.Close()
	fileCloseErr := f.Close()
	for _, err := range []error{encErr, closeErr, fileCloseErr} {
		if err != nil {
			_ = os.Remove(tmpPath)
			return "", err
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return "", err
	}
	return path, nil
}
