package project

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"

	"scenecraft/internal/fileutil"
	"scenecraft/internal/services"
)

const (
	// DocumentName is the archive entry holding the structured document.
	DocumentName = "document.json"
	// MediaDir is the archive directory for embedded media.
	MediaDir = "media"
)

// MediaEntryName returns the archive entry name for embedded media.
func MediaEntryName(mediaID, ext string) string {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	if ext == "" {
		return path.Join(MediaDir, mediaID)
	}
	return path.Join(MediaDir, mediaID+"."+ext)
}

// Entry is a non-document archive member sourced from a file on disk.
type Entry struct {
	Name       string
	SourcePath string
}

// EntryInfo describes an archive member.
type EntryInfo struct {
	Name           string
	Size           uint64
	CompressedSize uint64
}

// Load reads and decodes the document of the archive at archivePath.
func Load(archivePath string) (*Project, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, openError(archivePath, err)
	}
	defer zr.Close()
	return readDocument(&zr.Reader)
}

// ListEntries returns the archive members in stored order.
func ListEntries(archivePath string) ([]EntryInfo, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, openError(archivePath, err)
	}
	defer zr.Close()
	infos := make([]EntryInfo, 0, len(zr.File))
	for _, f := range zr.File {
		infos = append(infos, EntryInfo{Name: f.Name, Size: f.UncompressedSize64, CompressedSize: f.CompressedSize64})
	}
	return infos, nil
}

func openError(archivePath string, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return services.Wrap(services.ErrInput, "project", "open archive", archivePath, err)
	}
	return services.Wrap(services.ErrCorrupt, "project", "open archive", archivePath, err)
}

func readDocument(zr *zip.Reader) (*Project, error) {
	for _, f := range zr.File {
		if f.Name != DocumentName {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, services.Wrap(services.ErrCorrupt, "project", "read document", DocumentName, err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, services.Wrap(services.ErrCorrupt, "project", "read document", DocumentName, err)
		}
		return Decode(data)
	}
	return nil, services.Wrap(services.ErrCorrupt, "project", "read document", "archive has no "+DocumentName, nil)
}

// Extract unpacks every member of the archive into dir and decodes the
// document. It returns the non-document member names in stored order.
// Members that would escape dir are rejected as ErrCorrupt.
func Extract(archivePath, dir string) (*Project, []string, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, nil, openError(archivePath, err)
	}
	defer zr.Close()

	doc, err := readDocument(&zr.Reader)
	if err != nil {
		return nil, nil, err
	}

	var names []string
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, "/") {
			continue
		}
		target, err := memberPath(dir, f.Name)
		if err != nil {
			return nil, nil, err
		}
		if err := extractMember(f, target); err != nil {
			return nil, nil, err
		}
		if f.Name != DocumentName {
			names = append(names, f.Name)
		}
	}
	return doc, names, nil
}

func memberPath(dir, name string) (string, error) {
	clean := path.Clean(name)
	if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") || strings.Contains(name, "\\") {
		return "", services.Wrap(services.ErrCorrupt, "project", "extract", fmt.Sprintf("unsafe member name %q", name), nil)
	}
	return filepath.Join(dir, filepath.FromSlash(clean)), nil
}

func extractMember(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return services.Wrap(services.ErrResource, "project", "extract", target, err)
	}
	rc, err := f.Open()
	if err != nil {
		return services.Wrap(services.ErrCorrupt, "project", "extract", f.Name, err)
	}
	defer rc.Close()
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return services.Wrap(services.ErrResource, "project", "extract", target, err)
	}
	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return services.Wrap(services.ErrCorrupt, "project", "extract", f.Name, err)
	}
	if err := out.Close(); err != nil {
		return services.Wrap(services.ErrResource, "project", "extract", target, err)
	}
	return nil
}

// WriteArchive validates p and publishes it to dst together with the
// embedded media listed in sources (file id to source path). Every embedded
// file must have a source.
func WriteArchive(dst string, p *Project, sources map[string]string) error {
	if err := p.Validate(); err != nil {
		return err
	}
	var entries []Entry
	for _, f := range p.EmbeddedFiles() {
		src, ok := sources[f.ID]
		if !ok {
			return services.Wrap(services.ErrValidation, "project", "write archive", fmt.Sprintf("no source for embedded file %s", f.ID), nil)
		}
		entries = append(entries, Entry{Name: f.Path, SourcePath: src})
	}
	return PackArchive(dst, p, entries)
}

// PackArchive publishes the document plus entries to dst atomically. Entry
// bytes are copied unchanged. The destination filesystem is checked for room
// before anything is written.
func PackArchive(dst string, p *Project, entries []Entry) error {
	doc, err := p.Encode()
	if err != nil {
		return err
	}
	need := int64(len(doc))
	for _, e := range entries {
		info, err := os.Stat(e.SourcePath)
		if err != nil {
			return services.Wrap(services.ErrInput, "project", "write archive", fmt.Sprintf("media source %s", e.SourcePath), err)
		}
		need += info.Size()
	}
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return services.Wrap(services.ErrResource, "project", "write archive", dir, err)
	}
	if err := fileutil.EnsureFreeSpace(dir, need); err != nil {
		return services.Wrap(services.ErrResource, "project", "write archive", "preflight", err)
	}

	modified := p.Bookkeeping.UpdatedAt
	if modified.IsZero() {
		modified = time.Now()
	}
	err = fileutil.Publish(dst, func(w io.Writer) error {
		return writeZip(w, doc, entries, modified)
	})
	if err != nil {
		if errors.Is(err, services.ErrInput) || errors.Is(err, services.ErrResource) {
			return err
		}
		return services.Wrap(services.ErrResource, "project", "write archive", dst, err)
	}
	return nil
}

func writeZip(w io.Writer, doc []byte, entries []Entry, modified time.Time) error {
	zw := zip.NewWriter(w)
	docWriter, err := zw.CreateHeader(&zip.FileHeader{Name: DocumentName, Method: zip.Deflate, Modified: modified})
	if err != nil {
		return err
	}
	if _, err := docWriter.Write(doc); err != nil {
		return err
	}
	seen := map[string]struct{}{DocumentName: {}}
	for _, e := range entries {
		if _, dup := seen[e.Name]; dup {
			return services.Wrap(services.ErrValidation, "project", "write archive", fmt.Sprintf("duplicate entry %s", e.Name), nil)
		}
		seen[e.Name] = struct{}{}
		if err := copyEntry(zw, e, modified); err != nil {
			return err
		}
	}
	return zw.Close()
}

func copyEntry(zw *zip.Writer, e Entry, modified time.Time) error {
	src, err := os.Open(e.SourcePath)
	if err != nil {
		return services.Wrap(services.ErrInput, "project", "write archive", fmt.Sprintf("media source %s", e.SourcePath), err)
	}
	defer src.Close()
	method := zip.Deflate
	if strings.HasPrefix(e.Name, MediaDir+"/") {
		method = zip.Store
	}
	dst, err := zw.CreateHeader(&zip.FileHeader{Name: e.Name, Method: method, Modified: modified})
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("copy %s: %w", e.Name, err)
	}
	return nil
}
