// Package segregate partitions a mixed drop directory into the PDF and
// plain-text archives the extraction pipeline reads from.
package segregate

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const (
	// DataDir is the PDF archive created under the source directory.
	DataDir = "data_2"
	// TextDataDir is the plain-text archive nested inside DataDir.
	TextDataDir = "text_data"
)

// ErrDirectoryNotFound indicates the source directory does not exist.
// It is fatal: no document is touched when it fires.
var ErrDirectoryNotFound = eris.New("segregate: directory not found")

// Segregate moves each top-level, non-hidden file of srcDir into the
// PDF archive (.pdf) or the text archive (.txt) by extension. Other
// extensions are left untouched. Returns the count moved per archive.
//
// The destination directories live under srcDir, so the scan snapshot
// is taken before any move and never descends into them.
func Segregate(srcDir string) (txtCount, pdfCount int, err error) {
	info, err := os.Stat(srcDir)
	if err != nil || !info.IsDir() {
		return 0, 0, eris.Wrapf(ErrDirectoryNotFound, "%s", srcDir)
	}

	dataDir := filepath.Join(srcDir, DataDir)
	textDir := filepath.Join(dataDir, TextDataDir)
	if err := os.MkdirAll(textDir, 0o755); err != nil {
		return 0, 0, eris.Wrapf(err, "segregate: create %s", textDir)
	}

	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return 0, 0, eris.Wrapf(err, "segregate: read %s", srcDir)
	}

	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		src := filepath.Join(srcDir, entry.Name())
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".txt":
			if err := os.Rename(src, filepath.Join(textDir, entry.Name())); err != nil {
				return txtCount, pdfCount, eris.Wrapf(err, "segregate: move %s", entry.Name())
			}
			txtCount++
		case ".pdf":
			if err := os.Rename(src, filepath.Join(dataDir, entry.Name())); err != nil {
				return txtCount, pdfCount, eris.Wrapf(err, "segregate: move %s", entry.Name())
			}
			pdfCount++
		}
	}

	zap.L().Info("segregated files",
		zap.String("dir", srcDir),
		zap.Int("txt", txtCount),
		zap.Int("pdf", pdfCount),
	)
	return txtCount, pdfCount, nil
}
