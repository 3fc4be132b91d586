package id3v23

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// SaveFile writes t to the start of the media file at path, replacing the
// ID3v2 tag already there. The data after the old tag is kept.
//
// This is an atomic operation: writes to a temporary file first, then renames
// to the original path. If any step fails, the original file remains unchanged.
//
// Options can be provided to customize save behavior:
//
//	err := id3v23.SaveFile("song.mp3", tag,
//	    id3v23.WithBackup(".bak"),
//	    id3v23.WithValidation(),
//	)
func SaveFile(path string, t *Tag, opts ...SaveOption) error {
	return SaveFileAs(path, path, t, opts...)
}

// SaveFileAs reads the media file at src and writes it to dst with t in
// place of its ID3v2 tag. A file without a tag gets t prepended.
//
// This is an atomic operation: writes to a temporary file first, then renames
// to the output path. If any step fails, any partially written data is cleaned up.
func SaveFileAs(src, dst string, t *Tag, opts ...SaveOption) error { //nolint:gocyclo // Atomic file operations require sequential steps
	options := defaultSaveOptions()
	for _, opt := range opts {
		opt(options)
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}
	media := data
	if start, n, ok := Locate(data); ok {
		media = data[start+n:]
	}

	tagBytes, err := t.Bytes()
	if err != nil {
		return fmt.Errorf("serialize tag: %w", err)
	}

	// Get original file's mod time if we need to preserve it
	var origModTime os.FileInfo
	if options.preserveModTime {
		info, err := os.Stat(src)
		if err == nil {
			origModTime = info
		}
	}

	// Create temp file in same directory as output (for atomic rename)
	tempFile, err := os.CreateTemp(filepath.Dir(dst), ".id3v23-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	success := false
	defer func() {
		if !success {
			_ = tempFile.Close()    //nolint:errcheck // Best effort cleanup
			_ = os.Remove(tempPath) //nolint:errcheck // Best effort cleanup
		}
	}()

	if _, err := tempFile.Write(tagBytes); err != nil {
		return fmt.Errorf("write tag: %w", err)
	}
	if _, err := tempFile.Write(media); err != nil {
		return fmt.Errorf("write media data: %w", err)
	}

	// Sync temp file (fsync) to ensure data is on disk
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if options.validate {
		if err := validateWrittenFile(tempPath, tagBytes, t); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
	}

	if options.backupSuffix != "" {
		backupPath := dst + options.backupSuffix
		if _, err := os.Stat(dst); err == nil {
			if err := os.Rename(dst, backupPath); err != nil {
				return fmt.Errorf("create backup: %w", err)
			}
		}
	}

	// Atomic rename temp -> output
	if err := os.Rename(tempPath, dst); err != nil {
		return fmt.Errorf("rename temp to output: %w", err)
	}
	success = true

	if options.preserveModTime && origModTime != nil {
		_ = os.Chtimes(dst, origModTime.ModTime(), origModTime.ModTime()) //nolint:errcheck // Non-fatal: file was written successfully
	}

	t.cfg.Logger.WithFields(logrus.Fields{
		"path":      dst,
		"tag_bytes": len(tagBytes),
		"frames":    t.Len(),
	}).Debug("tag saved")

	return nil
}

// validateWrittenFile re-reads the tag at the start of path and checks it
// against what was written. It runs on the temporary file, before it
// replaces the destination.
func validateWrittenFile(path string, want []byte, t *Tag) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("re-read: %w", err)
	}
	start, n, ok := Locate(data)
	if !ok {
		return fmt.Errorf("no tag at start of %s", path)
	}
	if !bytes.Equal(data[start:start+n], want) {
		return fmt.Errorf("tag bytes differ from the %d bytes written", len(want))
	}

	written := &Tag{cfg: t.cfg, slots: make(map[string]*slot)}
	if err := written.parse(data[start : start+n]); err != nil {
		return fmt.Errorf("re-parse: %w", err)
	}
	if written.Len() != t.Len() {
		return fmt.Errorf("frame count mismatch: got %d, want %d", written.Len(), t.Len())
	}
	return nil
}
