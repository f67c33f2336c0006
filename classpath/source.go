package classpath

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/wippyai/jaot/errors"
)

const classSuffix = ".class"

// Source is one class path entry.
type Source interface {
	Open(name string) (io.ReadCloser, error)
	// Classes lists the binary names of every class the source holds.
	Classes() ([]string, error)
	Path() string
	Close() error
}

func notFound(name string) error {
	return errors.NotFound(errors.PhaseLoad, "class", name)
}

// Archive reads classes from a jar or zip file.
type Archive struct {
	closer  io.Closer
	entries map[string]*zip.File
	path    string
}

// OpenArchive opens a jar file.
func OpenArchive(path string) (*Archive, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.Load("open archive "+path, err)
	}
	a := newArchive(path, &rc.Reader)
	a.closer = rc
	return a, nil
}

// NewArchive reads a jar from r. path is used only for reporting.
func NewArchive(path string, r io.ReaderAt, size int64) (*Archive, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, errors.Load("read archive "+path, err)
	}
	return newArchive(path, zr), nil
}

func newArchive(path string, zr *zip.Reader) *Archive {
	a := &Archive{path: path, entries: make(map[string]*zip.File)}
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, classSuffix) && !f.FileInfo().IsDir() {
			a.entries[strings.TrimSuffix(f.Name, classSuffix)] = f
		}
	}
	return a
}

// Open opens the class entry for name.
func (a *Archive) Open(name string) (io.ReadCloser, error) {
	f, ok := a.entries[name]
	if !ok {
		return nil, notFound(name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, errors.Load("open "+f.Name+" in "+a.path, err)
	}
	return rc, nil
}

// Classes returns the class names in the archive, sorted.
func (a *Archive) Classes() ([]string, error) {
	out := make([]string, 0, len(a.entries))
	for name := range a.entries {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

func (a *Archive) Path() string { return a.path }

// Close releases the underlying file.
func (a *Archive) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// Directory reads classes from a directory tree laid out by package.
type Directory struct {
	root string
}

// NewDirectory creates a directory source.
func NewDirectory(root string) *Directory {
	return &Directory{root: root}
}

func (d *Directory) file(name string) string {
	return filepath.Join(d.root, filepath.FromSlash(name)+classSuffix)
}

// Open opens root/name.class.
func (d *Directory) Open(name string) (io.ReadCloser, error) {
	if !fs.ValidPath(name) {
		return nil, notFound(name)
	}
	f, err := os.Open(d.file(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(name)
		}
		return nil, errors.Load("open "+d.file(name), err)
	}
	return f, nil
}

// Classes walks the directory for .class files.
func (d *Directory) Classes() ([]string, error) {
	var out []string
	err := filepath.WalkDir(d.root, func(path string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if e.IsDir() || !strings.HasSuffix(path, classSuffix) {
			return nil
		}
		rel, err := filepath.Rel(d.root, path)
		if err != nil {
			return err
		}
		out = append(out, strings.TrimSuffix(filepath.ToSlash(rel), classSuffix))
		return nil
	})
	if err != nil {
		return nil, errors.Load("walk "+d.root, err)
	}
	sort.Strings(out)
	return out, nil
}

func (d *Directory) Path() string { return d.root }

func (d *Directory) Close() error { return nil }

// OpenSource opens a jar or zip file as an Archive and anything else as a
// Directory.
func OpenSource(path string) (Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Load("class path entry "+path, err)
	}
	if info.IsDir() {
		return NewDirectory(path), nil
	}
	return OpenArchive(path)
}
