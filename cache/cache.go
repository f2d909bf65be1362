package cache

import (
	"debug/elf"
	"encoding/base64"
	"encoding/binary"
	stderrors "errors"
	"fmt"
	"io/fs"

	"github.com/cockroachdb/pebble"
	"gopkg.in/yaml.v3"

	elfnotes "github.com/wippyai/elf-notes"
	"github.com/wippyai/elf-notes/errors"
	"github.com/wippyai/elf-notes/image"
	bin "github.com/wippyai/elf-notes/internal/binary"
	"github.com/wippyai/elf-notes/note"
)

const keyPrefix = "notes/v1/"

// Key identifies one version of a file on disk.
type Key string

// KeyFor derives the cache key of the file at path from its size and
// modification time. A rewritten file gets a new key.
func KeyFor(path string, info fs.FileInfo) Key {
	return Key(fmt.Sprintf("%s\x00%d\x00%d", path, info.Size(), info.ModTime().UnixNano()))
}

func (k Key) bytes() []byte {
	return []byte(keyPrefix + string(k))
}

// Store is a persistent cache of decoded images. It is safe for concurrent use.
type Store struct {
	db  *pebble.DB
	dec *note.Decoder
}

// Open opens or creates a cache in dir.
func Open(dir string) (*Store, error) {
	return OpenWithOptions(dir, &pebble.Options{})
}

// OpenWithOptions opens a cache with explicit pebble options, e.g. an
// in-memory vfs.
func OpenWithOptions(dir string, opts *pebble.Options) (*Store, error) {
	db, err := pebble.Open(dir, opts)
	if err != nil {
		return nil, errors.IO(errors.PhaseCache, fmt.Sprintf("open %s", dir), err)
	}
	return &Store{db: db, dec: note.NewDecoder(nil)}, nil
}

// WithRegistry returns a Store sharing the same database whose Get attaches
// structured views from reg, or DefaultRegistry when reg is nil.
func (s *Store) WithRegistry(reg *note.Registry) *Store {
	dec := note.NewDecoder(reg)
	if dec.Registry() == s.dec.Registry() {
		return s
	}
	return &Store{db: s.db, dec: dec}
}

type imageRecord struct {
	ByteOrder string          `yaml:"byte_order"`
	Path      string          `yaml:"path"`
	Sections  []sectionRecord `yaml:"sections"`
	Class     int             `yaml:"class"`
	Machine   uint32          `yaml:"machine"`
}

type sectionRecord struct {
	Failure *failureRecord `yaml:"failure,omitempty"`
	Name    string         `yaml:"name"`
	Source  string         `yaml:"source"`
	Notes   string         `yaml:"notes"`
	Offset  uint64         `yaml:"offset"`
	Size    uint64         `yaml:"size"`
	Align   uint64         `yaml:"align"`
}

type failureRecord struct {
	Field    string `yaml:"field,omitempty"`
	Message  string `yaml:"message"`
	Offset   uint64 `yaml:"offset,omitempty"`
	Expected uint64 `yaml:"expected,omitempty"`
	Actual   uint64 `yaml:"actual,omitempty"`
}

// Put stores img under key. Notes are stored in their encoded record form.
func (s *Store) Put(key Key, img *image.Image) error {
	rec := imageRecord{
		ByteOrder: orderName(img.ByteOrder),
		Path:      img.Path,
		Class:     int(img.Class),
		Machine:   uint32(img.Machine),
	}
	for _, ns := range img.Sections {
		sr := sectionRecord{
			Name:   ns.Name,
			Source: string(ns.Source),
			Notes:  base64.StdEncoding.EncodeToString(note.EncodeSection(img.ByteOrder, ns.Align, ns.Notes)),
			Offset: ns.Offset,
			Size:   ns.Size,
			Align:  ns.Align,
		}
		if ns.Err != nil {
			sr.Failure = newFailureRecord(ns.Err)
		}
		rec.Sections = append(rec.Sections, sr)
	}

	data, err := yaml.Marshal(&rec)
	if err != nil {
		return errors.Wrap(errors.PhaseCache, errors.KindInvalidData, err, "marshal image")
	}
	if err := s.db.Set(key.bytes(), data, pebble.NoSync); err != nil {
		return errors.IO(errors.PhaseCache, "write entry", err)
	}
	return nil
}

// Get returns the image stored under key. A miss reports false and no error.
func (s *Store) Get(key Key) (*image.Image, bool, error) {
	data, closer, err := s.db.Get(key.bytes())
	if stderrors.Is(err, pebble.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.IO(errors.PhaseCache, "read entry", err)
	}
	defer closer.Close()

	var rec imageRecord
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, false, errors.Wrap(errors.PhaseCache, errors.KindInvalidData, err, "unmarshal image")
	}

	img, err := s.restore(&rec)
	if err != nil {
		return nil, false, err
	}
	return img, true, nil
}

// Delete removes the entry stored under key, if any.
func (s *Store) Delete(key Key) error {
	if err := s.db.Delete(key.bytes(), pebble.NoSync); err != nil {
		return errors.IO(errors.PhaseCache, "delete entry", err)
	}
	return nil
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) restore(rec *imageRecord) (*image.Image, error) {
	order, err := parseOrder(rec.ByteOrder)
	if err != nil {
		return nil, err
	}

	img := &image.Image{
		ByteOrder: order,
		Path:      rec.Path,
		Class:     elf.Class(rec.Class),
		Machine:   elf.Machine(rec.Machine),
	}
	for _, sr := range rec.Sections {
		raw, err := base64.StdEncoding.DecodeString(sr.Notes)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseCache, errors.KindInvalidData, err, "decode notes of "+sr.Name)
		}

		// Re-encoded records keep their original offsets: the encoder emits
		// the same canonical layout the section walk reads.
		cur := bin.NewBytesCursorAt(raw, sr.Offset, order)
		entries, err := s.dec.DecodeSection(cur, elfnotes.Section{
			Offset: sr.Offset,
			Size:   uint64(len(raw)),
			Align:  sr.Align,
		})
		if err != nil {
			return nil, errors.Wrap(errors.PhaseCache, errors.KindInvalidData, err, "decode notes of "+sr.Name)
		}

		ns := &image.NoteSection{
			Name:   sr.Name,
			Source: image.Source(sr.Source),
			Notes:  entries,
			Offset: sr.Offset,
			Size:   sr.Size,
			Align:  sr.Align,
		}
		if sr.Failure != nil {
			ns.Err = sr.Failure.err()
		}
		img.Sections = append(img.Sections, ns)
	}
	return img, nil
}

func newFailureRecord(err error) *failureRecord {
	fr := &failureRecord{Message: err.Error()}
	var tr *errors.TruncatedRecordError
	if stderrors.As(err, &tr) {
		fr.Field = tr.Field
		fr.Offset = tr.Offset
		fr.Expected = tr.Expected
		fr.Actual = tr.Actual
	}
	return fr
}

func (fr *failureRecord) err() error {
	if fr.Field != "" {
		return errors.Truncated(fr.Field, fr.Offset, fr.Expected, fr.Actual, nil)
	}
	return errors.InvalidData(errors.PhaseCache, nil, fr.Message)
}

func orderName(order binary.ByteOrder) string {
	if order == binary.BigEndian {
		return "big"
	}
	return "little"
}

func parseOrder(name string) (binary.ByteOrder, error) {
	switch name {
	case "little":
		return binary.LittleEndian, nil
	case "big":
		return binary.BigEndian, nil
	}
	return nil, errors.InvalidData(errors.PhaseCache, []string{"byte_order"}, fmt.Sprintf("unknown byte order %q", name))
}
