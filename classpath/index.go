package classpath

import (
	"database/sql"
	"encoding/hex"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/wippyai/jaot/errors"
)

const indexSchema = `
CREATE TABLE IF NOT EXISTS archives (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	path        TEXT NOT NULL UNIQUE,
	fingerprint TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS classes (
	archive_id INTEGER NOT NULL REFERENCES archives(id) ON DELETE CASCADE,
	name       TEXT NOT NULL,
	PRIMARY KEY (archive_id, name)
);

CREATE INDEX IF NOT EXISTS idx_classes_name ON classes(name);
`

// Index is a persistent record of which archive declares each class.
type Index struct {
	db   *sql.DB
	path string
}

// OpenIndex opens or creates the index database at path. ":memory:" keeps the
// index for the lifetime of the process only.
func OpenIndex(path string) (*Index, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "open index "+path)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "set pragma on "+path)
		}
	}
	if _, err := db.Exec(indexSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "initialize index schema")
	}
	return &Index{db: db, path: path}, nil
}

// Refresh records the classes of src unless the stored fingerprint already
// matches the file on disk. It reports whether the index changed.
func (x *Index) Refresh(src Source) (bool, error) {
	sum, err := Fingerprint(src.Path())
	if err != nil {
		return false, err
	}

	var stored string
	err = x.db.QueryRow(`SELECT fingerprint FROM archives WHERE path = ?`, src.Path()).Scan(&stored)
	switch {
	case err == nil && stored == sum:
		return false, nil
	case err != nil && err != sql.ErrNoRows:
		return false, x.fail(err, "query archive")
	}

	names, err := src.Classes()
	if err != nil {
		return false, err
	}

	tx, err := x.db.Begin()
	if err != nil {
		return false, x.fail(err, "begin")
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM archives WHERE path = ?`, src.Path()); err != nil {
		return false, x.fail(err, "delete archive")
	}
	res, err := tx.Exec(`INSERT INTO archives (path, fingerprint) VALUES (?, ?)`, src.Path(), sum)
	if err != nil {
		return false, x.fail(err, "insert archive")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return false, x.fail(err, "archive id")
	}
	stmt, err := tx.Prepare(`INSERT INTO classes (archive_id, name) VALUES (?, ?)`)
	if err != nil {
		return false, x.fail(err, "prepare")
	}
	defer stmt.Close()
	for _, name := range names {
		if _, err := stmt.Exec(id, name); err != nil {
			return false, x.fail(err, "insert class")
		}
	}
	if err := tx.Commit(); err != nil {
		return false, x.fail(err, "commit")
	}
	Logger().Info("archive indexed",
		zap.String("path", src.Path()),
		zap.Int("classes", len(names)),
		zap.String("fingerprint", sum[:12]))
	return true, nil
}

// Known reports whether the archive at path has been indexed.
func (x *Index) Known(path string) (bool, error) {
	var n int
	if err := x.db.QueryRow(`SELECT COUNT(*) FROM archives WHERE path = ?`, path).Scan(&n); err != nil {
		return false, x.fail(err, "query archive")
	}
	return n > 0, nil
}

// Archives returns the paths of the indexed archives declaring name.
func (x *Index) Archives(name string) ([]string, error) {
	rows, err := x.db.Query(`
		SELECT a.path FROM classes c
		JOIN archives a ON a.id = c.archive_id
		WHERE c.name = ?
		ORDER BY a.id`, name)
	if err != nil {
		return nil, x.fail(err, "query classes")
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, x.fail(err, "scan")
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, x.fail(err, "query classes")
	}
	return out, nil
}

// Close closes the database.
func (x *Index) Close() error {
	return x.db.Close()
}

func (x *Index) fail(err error, what string) error {
	return errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "index "+x.path+": "+what)
}

// Fingerprint returns the hex BLAKE2b-256 digest of the file at path.
func Fingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Load("fingerprint "+path, err)
	}
	defer f.Close()

	h, err := blake2b.New256(nil)
	if err != nil {
		return "", errors.Load("fingerprint "+path, err)
	}
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.Load("fingerprint "+path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
