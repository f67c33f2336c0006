package classpath

import (
	stderrors "errors"
	"io"

	"go.uber.org/zap"

	"github.com/wippyai/jaot/errors"
)

// ClassPath looks classes up across an ordered list of entries. The first
// entry holding a class wins. Entries are opened on first use.
type ClassPath struct {
	index   *Index
	sources map[string]Source
	open    func(string) (Source, error)
	entries []string
}

// New creates a class path over jar files and directories.
func New(entries ...string) *ClassPath {
	return &ClassPath{
		entries: entries,
		sources: make(map[string]Source),
		open:    OpenSource,
	}
}

// FromSources creates a class path over already opened sources.
func FromSources(sources ...Source) *ClassPath {
	cp := New()
	for _, s := range sources {
		cp.entries = append(cp.entries, s.Path())
		cp.sources[s.Path()] = s
	}
	return cp
}

// Entries returns the class path entries in lookup order.
func (cp *ClassPath) Entries() []string {
	return cp.entries
}

// UseIndex makes lookups consult idx before scanning entries. Entries the
// index has not seen are still scanned.
func (cp *ClassPath) UseIndex(idx *Index) {
	cp.index = idx
}

// BuildIndex records every archive entry in the index attached with UseIndex.
// Archives whose fingerprint is unchanged are skipped.
func (cp *ClassPath) BuildIndex() error {
	if cp.index == nil {
		return errors.InvalidConfig(errors.PhaseConfig, "index_cache", "no index attached")
	}
	for _, entry := range cp.entries {
		src, err := cp.source(entry)
		if err != nil {
			return err
		}
		if _, ok := src.(*Archive); !ok {
			continue
		}
		changed, err := cp.index.Refresh(src)
		if err != nil {
			return err
		}
		Logger().Debug("indexed archive", zap.String("path", entry), zap.Bool("changed", changed))
	}
	return nil
}

func (cp *ClassPath) source(entry string) (Source, error) {
	if s, ok := cp.sources[entry]; ok {
		return s, nil
	}
	s, err := cp.open(entry)
	if err != nil {
		return nil, err
	}
	cp.sources[entry] = s
	return s, nil
}

// Open returns the bytes of the named class from the first entry that has it.
func (cp *ClassPath) Open(name string) (io.ReadCloser, error) {
	if cp.index != nil {
		rc, err := cp.openIndexed(name)
		if err == nil || !isNotFound(err) {
			return rc, err
		}
	}
	for _, entry := range cp.entries {
		src, err := cp.source(entry)
		if err != nil {
			return nil, err
		}
		rc, err := src.Open(name)
		if err == nil {
			Logger().Debug("class found", zap.String("class", name), zap.String("entry", entry))
			return rc, nil
		}
		if !isNotFound(err) {
			return nil, err
		}
	}
	return nil, notFound(name)
}

// openIndexed only opens archives that precede or equal the first indexed
// holder, so index hits never change which entry wins.
func (cp *ClassPath) openIndexed(name string) (io.ReadCloser, error) {
	holders, err := cp.index.Archives(name)
	if err != nil {
		return nil, err
	}
	if len(holders) == 0 {
		return nil, notFound(name)
	}
	held := make(map[string]bool, len(holders))
	for _, h := range holders {
		held[h] = true
	}
	for _, entry := range cp.entries {
		if !held[entry] {
			known, err := cp.index.Known(entry)
			if err != nil {
				return nil, err
			}
			if !known {
				// an unindexed entry might shadow the class
				return nil, notFound(name)
			}
			continue
		}
		src, err := cp.source(entry)
		if err != nil {
			return nil, err
		}
		return src.Open(name)
	}
	return nil, notFound(name)
}

// Close closes every opened entry and returns the first error.
func (cp *ClassPath) Close() error {
	var first error
	for _, entry := range cp.entries {
		s, ok := cp.sources[entry]
		if !ok {
			continue
		}
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
		delete(cp.sources, entry)
	}
	return first
}

func isNotFound(err error) bool {
	var e *errors.Error
	return stderrors.As(err, &e) && e.Kind == errors.KindNotFound
}
