package apw

import (
	"database/sql"
	"fmt"

	"github.com/klauspost/compress/zstd"
	_ "github.com/mattn/go-sqlite3"
)

// ImageDB caches encoded images keyed by the SHA-1 of the source file and
// the options used. The APW data is stored zstd compressed.
type ImageDB struct {
	db  *sql.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewImageDB opens the database at file, creating it if necessary.
func NewImageDB(file string) (*ImageDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	// Scan workers all write
	db.SetMaxOpenConns(1)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS image (id INTEGER PRIMARY KEY NOT NULL, sha1 TEXT NOT NULL, options TEXT NOT NULL, width INTEGER NOT NULL, height INTEGER NOT NULL, apw BLOB NOT NULL, UNIQUE(sha1, options))"); err != nil {
		db.Close()
		return nil, err
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		db.Close()
		return nil, err
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		db.Close()
		return nil, err
	}

	return &ImageDB{
		db:  db,
		enc: enc,
		dec: dec,
	}, nil
}

// Close closes the database.
func (db *ImageDB) Close() error {
	db.dec.Close()
	if err := db.enc.Close(); err != nil {
		db.db.Close()
		return err
	}
	return db.db.Close()
}

// Find returns the APW image previously stored for sha and options, or nil
// if there isn't one.
func (db *ImageDB) Find(sha, options string) ([]byte, error) {
	var b []byte
	switch err := db.db.QueryRow("SELECT apw FROM image WHERE sha1 = ? AND options = ?", sha, options).Scan(&b); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		return db.dec.DecodeAll(b, nil)
	default:
		return nil, err
	}
}

// Add stores an APW image, replacing any previous one for sha and options.
func (db *ImageDB) Add(sha, options string, width, height int, apw []byte) (int64, error) {
	result, err := db.db.Exec("INSERT OR REPLACE INTO image (sha1, options, width, height, apw) VALUES (?, ?, ?, ?, ?)", sha, options, width, height, db.enc.EncodeAll(apw, nil))
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// Count returns the number of images stored.
func (db *ImageDB) Count() (int, error) {
	var n int
	if err := db.db.QueryRow("SELECT COUNT(*) FROM image").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
