package image

import (
	"debug/elf"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	elfnotes "github.com/wippyai/elf-notes"
	"github.com/wippyai/elf-notes/errors"
	bin "github.com/wippyai/elf-notes/internal/binary"
	"github.com/wippyai/elf-notes/note"
)

// Source tells whether a note region came from the section or program header table.
type Source string

const (
	SourceSection Source = "section" // SHT_NOTE section
	SourceSegment Source = "segment" // PT_NOTE program header
)

// Options configures image loading.
type Options struct {
	Logger   *zap.Logger
	Registry *note.Registry
	Metrics  *Metrics
	// Strict aborts loading at the first malformed note region instead of
	// recording the error on the region and moving on.
	Strict bool
}

// DefaultOptions returns default loading configuration.
func DefaultOptions() Options {
	return Options{
		Logger:   zap.NewNop(),
		Registry: note.DefaultRegistry,
	}
}

// NoteSection is one decoded note region of an image.
type NoteSection struct {
	// Err is set when the region could not be fully decoded. Notes then
	// holds the records decoded before the failure.
	Err    error
	Name   string
	Source Source
	Notes  []*note.Entry
	Offset uint64
	Size   uint64
	Align  uint64
}

// Image holds the note regions of an ELF file. It keeps no reference to the
// file it was loaded from.
type Image struct {
	ByteOrder binary.ByteOrder
	Path      string
	Sections  []*NoteSection
	Class     elf.Class
	Machine   elf.Machine
}

// Open loads the note regions of the ELF file at path.
func Open(path string, opts Options) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.IO(errors.PhaseLoad, fmt.Sprintf("open %s", path), err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, errors.IO(errors.PhaseLoad, fmt.Sprintf("stat %s", path), err)
	}

	img, err := Load(f, st.Size(), opts)
	if err != nil {
		return nil, err
	}
	img.Path = path
	return img, nil
}

// Load reads the ELF headers from r and decodes every SHT_NOTE section. Images
// without note sections fall back to their PT_NOTE segments.
func Load(r io.ReaderAt, size int64, opts Options) (*Image, error) {
	opts = withDefaults(opts)

	f, err := elf.NewFile(r)
	if err != nil {
		return nil, errors.Load("parse elf headers", err)
	}

	cur, err := bin.NewCursor(io.NewSectionReader(r, 0, size), f.ByteOrder)
	if err != nil {
		return nil, errors.IO(errors.PhaseLoad, "create cursor", err)
	}

	img := &Image{
		ByteOrder: f.ByteOrder,
		Class:     f.Class,
		Machine:   f.Machine,
	}

	dec := note.NewDecoder(opts.Registry)
	for _, ns := range noteRegions(f) {
		if err := decodeRegion(dec, cur, ns); err != nil {
			ns.Err = err
			opts.Metrics.sectionFailed(err)
			if opts.Strict {
				return nil, errors.New(errors.PhaseLoad, errors.KindInvalidData).
					Path(ns.Name).
					Detail("decode %s at 0x%x", ns.Source, ns.Offset).
					Cause(err).
					Build()
			}
			opts.Logger.Warn("skipping malformed note region",
				zap.String("region", ns.Name),
				zap.String("source", string(ns.Source)),
				zap.Uint64("offset", ns.Offset),
				zap.Error(err))
		}
		opts.Metrics.notesDecoded(ns.Notes)
		img.Sections = append(img.Sections, ns)
	}

	opts.Metrics.imageLoaded()
	opts.Logger.Debug("loaded image",
		zap.Stringer("class", img.Class),
		zap.Stringer("machine", img.Machine),
		zap.Int("regions", len(img.Sections)),
		zap.Int("notes", len(img.Notes())))

	return img, nil
}

func withDefaults(opts Options) Options {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Registry == nil {
		opts.Registry = note.DefaultRegistry
	}
	return opts
}

func decodeRegion(dec *note.Decoder, cur *bin.Cursor, ns *NoteSection) error {
	if end := ns.Offset + ns.Size; end < ns.Offset || end > cur.Size() {
		return errors.OutOfBounds(errors.PhaseLoad, []string{ns.Name}, end, cur.Size())
	}

	entries, err := dec.DecodeSection(cur, elfnotes.Section{
		Offset: ns.Offset,
		Size:   ns.Size,
		Align:  ns.Align,
	})
	ns.Notes = entries
	return err
}

// noteRegions lists the SHT_NOTE sections of f, or its PT_NOTE segments when
// it has none.
func noteRegions(f *elf.File) []*NoteSection {
	var regions []*NoteSection
	for _, s := range f.Sections {
		if s.Type != elf.SHT_NOTE {
			continue
		}
		regions = append(regions, &NoteSection{
			Name:   s.Name,
			Source: SourceSection,
			Offset: s.Offset,
			Size:   s.Size,
			Align:  s.Addralign,
		})
	}
	if len(regions) > 0 {
		return regions
	}

	for i, p := range f.Progs {
		if p.Type != elf.PT_NOTE {
			continue
		}
		regions = append(regions, &NoteSection{
			Name:   fmt.Sprintf("PT_NOTE[%d]", i),
			Source: SourceSegment,
			Offset: p.Off,
			Size:   p.Filesz,
			Align:  p.Align,
		})
	}
	return regions
}

// Notes returns the notes of every region in file order.
func (img *Image) Notes() []*note.Entry {
	var all []*note.Entry
	for _, s := range img.Sections {
		all = append(all, s.Notes...)
	}
	return all
}

// Find returns the first note with the given owner and type.
func (img *Image) Find(owner string, t note.Type) (*note.Entry, bool) {
	for _, s := range img.Sections {
		for _, e := range s.Notes {
			if e.Name() == owner && e.Type() == t {
				return e, true
			}
		}
	}
	return nil, false
}

// Section returns the region with the given name.
func (img *Image) Section(name string) (*NoteSection, bool) {
	for _, s := range img.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// Failed returns the regions that could not be fully decoded.
func (img *Image) Failed() []*NoteSection {
	var failed []*NoteSection
	for _, s := range img.Sections {
		if s.Err != nil {
			failed = append(failed, s)
		}
	}
	return failed
}

// BuildID returns the hex GNU build ID of the image.
func (img *Image) BuildID() (string, bool) {
	e, ok := img.Find(note.OwnerGNU, note.TypeGNUBuildID)
	if !ok {
		return "", false
	}
	return e.BuildID()
}

// ABITag returns the GNU ABI tag of the image.
func (img *Image) ABITag() (note.AbiTag, bool) {
	e, ok := img.Find(note.OwnerGNU, note.TypeGNUABITag)
	if !ok {
		return note.AbiTag{}, false
	}
	return e.DescriptorAsAbiTag()
}
