package services

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/corpora-cli/internal/core/domain"
)

// readTableFile loads a CSV table from disk.
func readTableFile(path string) (*domain.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return domain.ReadTable(f)
}

// writeTableFile persists a CSV table, creating parent directories.
func writeTableFile(path string, t *domain.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := t.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// tableBytes serializes a table to CSV bytes for the artifact store.
func tableBytes(t *domain.Table) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// parseTable deserializes CSV bytes back into a table.
func parseTable(data []byte) (*domain.Table, error) {
	return domain.ReadTable(bytes.NewReader(data))
}

// copyFile copies src to dst, creating parent directories.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// zipDirectory bundles every file directly inside dir, plus any extra
// files (stored under their base names), into a zip at dest.
func zipDirectory(dir, dest string, extras ...string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	zw := zip.NewWriter(f)

	add := func(name, path string) error {
		w, err := zw.Create(name)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		if err := add(name, filepath.Join(dir, name)); err != nil {
			zw.Close()
			f.Close()
			return err
		}
	}
	for _, path := range extras {
		if err := add(filepath.Base(path), path); err != nil {
			zw.Close()
			f.Close()
			return err
		}
	}

	if err := zw.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// extractZip unpacks an archive into dir, flattening one leading path
// component when the archive wraps its contents in a single folder.
// macOS resource-fork entries are skipped.
func extractZip(src, dir string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer r.Close()

	prefix := commonArchivePrefix(r.File)

	for _, f := range r.File {
		name := f.Name
		if strings.HasPrefix(name, "__MACOSX/") || f.FileInfo().IsDir() {
			continue
		}
		name = strings.TrimPrefix(name, prefix)
		if name == "" {
			continue
		}

		dest := filepath.Join(dir, filepath.FromSlash(name))
		if !strings.HasPrefix(dest, filepath.Clean(dir)+string(os.PathSeparator)) {
			return fmt.Errorf("%w: archive entry %q escapes extraction directory", domain.ErrInvalidInput, f.Name)
		}

		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		out, err := os.Create(dest)
		if err != nil {
			rc.Close()
			return err
		}
		if _, err := io.Copy(out, rc); err != nil {
			out.Close()
			rc.Close()
			return err
		}
		out.Close()
		rc.Close()
	}
	return nil
}

// commonArchivePrefix returns "folder/" when every real entry lives under
// one top-level folder, "" otherwise.
func commonArchivePrefix(files []*zip.File) string {
	prefix := ""
	for _, f := range files {
		if strings.HasPrefix(f.Name, "__MACOSX/") {
			continue
		}
		slash := strings.Index(f.Name, "/")
		if slash < 0 {
			return ""
		}
		p := f.Name[:slash+1]
		if prefix == "" {
			prefix = p
		} else if p != prefix {
			return ""
		}
	}
	return prefix
}

// hasNonEmptyText reports whether dir contains at least one non-empty
// converted text file (.txt, or .csv for carried-through tables).
func hasNonEmptyText(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if e.IsDir() || (!strings.HasSuffix(e.Name(), ".txt") && !strings.HasSuffix(e.Name(), ".csv")) {
			continue
		}
		if info, err := e.Info(); err == nil && info.Size() > 0 {
			return true
		}
	}
	return false
}
