package security

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DefaultMaxSnapshotMB caps the snapshot size accepted for loading.
const DefaultMaxSnapshotMB = 64

// SnapshotValidator checks a document snapshot before it is decoded, so a
// native project archive or a stray binary is rejected with a clear message
// instead of a decoder error.
type SnapshotValidator struct {
	MaxSize    int64 // Files larger than this are rejected
	HeaderSize int64 // Bytes inspected for signatures and binary data
}

func NewSnapshotValidator(maxMB int64) *SnapshotValidator {
	if maxMB <= 0 {
		maxMB = DefaultMaxSnapshotMB
	}
	return &SnapshotValidator{
		MaxSize:    maxMB * 1024 * 1024,
		HeaderSize: 64 * 1024,
	}
}

// ValidateFile stats and reads the header of path.
func (sv *SnapshotValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat snapshot: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > sv.MaxSize {
		return fmt.Errorf("snapshot is %d bytes, limit is %d", info.Size(), sv.MaxSize)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	header := make([]byte, sv.HeaderSize)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return fmt.Errorf("failed to read header: %w", err)
	}
	return sv.ValidateContent(path, header[:n])
}

// ValidateContent checks data already in memory. Only the first HeaderSize
// bytes are inspected.
func (sv *SnapshotValidator) ValidateContent(path string, data []byte) error {
	if int64(len(data)) > sv.MaxSize {
		return fmt.Errorf("snapshot is %d bytes, limit is %d", len(data), sv.MaxSize)
	}
	header := data
	if int64(len(header)) > sv.HeaderSize {
		header = header[:sv.HeaderSize]
	}

	if err := checkMagicBytes(header); err != nil {
		return err
	}
	if isBinaryData(header) {
		return errors.New("snapshot appears to be binary")
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return nil
	default:
		return validateJSONHeader(header)
	}
}

var archiveSignatures = []struct {
	name  string
	magic []byte
}{
	{"zip archive (a native project file?)", []byte{0x50, 0x4B, 0x03, 0x04}},
	{"gzip archive", []byte{0x1F, 0x8B}},
	{"7z archive", []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}},
}

func checkMagicBytes(header []byte) error {
	for _, sig := range archiveSignatures {
		if bytes.HasPrefix(header, sig.magic) {
			return fmt.Errorf("snapshot is a %s; export a JSON or TOML snapshot first", sig.name)
		}
	}
	return nil
}

// isBinaryData reports more than 30% control characters.
func isBinaryData(data []byte) bool {
	if len(data) == 0 {
		return false
	}

	nonPrintable := 0
	for _, b := range data {
		if b < 9 || (b > 13 && b < 32) || b == 127 {
			nonPrintable++
		}
	}
	return float64(nonPrintable)/float64(len(data)) > 0.3
}

func validateJSONHeader(header []byte) error {
	trimmed := bytes.TrimLeft(bytes.TrimPrefix(header, []byte("\xEF\xBB\xBF")), " \t\r\n")
	if len(trimmed) == 0 {
		return errors.New("snapshot is empty")
	}
	if trimmed[0] != '{' {
		return fmt.Errorf("JSON snapshot must start with '{', found %q", trimmed[0])
	}
	return nil
}
