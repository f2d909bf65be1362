package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/elf-notes/image"
	"github.com/wippyai/elf-notes/note"
	"github.com/wippyai/elf-notes/scan"
)

type fileView struct {
	Path     string        `json:"path" yaml:"path"`
	Error    string        `json:"error,omitempty" yaml:"error,omitempty"`
	Sections []sectionView `json:"sections,omitempty" yaml:"sections,omitempty"`
	Cached   bool          `json:"cached,omitempty" yaml:"cached,omitempty"`
}

type sectionView struct {
	Name   string     `json:"name" yaml:"name"`
	Source string     `json:"source" yaml:"source"`
	Error  string     `json:"error,omitempty" yaml:"error,omitempty"`
	Notes  []noteView `json:"notes" yaml:"notes"`
	Offset uint64     `json:"offset" yaml:"offset"`
}

type noteView struct {
	Owner      string `json:"owner" yaml:"owner"`
	Type       string `json:"type" yaml:"type"`
	Descriptor string `json:"descriptor" yaml:"descriptor"`
	ABITag     string `json:"abi_tag,omitempty" yaml:"abi_tag,omitempty"`
	BuildID    string `json:"build_id,omitempty" yaml:"build_id,omitempty"`
	Offset     uint64 `json:"offset" yaml:"offset"`
	TypeCode   uint32 `json:"type_code" yaml:"type_code"`
	Size       uint32 `json:"size" yaml:"size"`
}

func newFileView(r scan.Result) fileView {
	v := fileView{Path: r.Path, Cached: r.Cached}
	if r.Err != nil {
		v.Error = r.Err.Error()
		return v
	}
	for _, s := range r.Image.Sections {
		v.Sections = append(v.Sections, newSectionView(s))
	}
	return v
}

func newSectionView(s *image.NoteSection) sectionView {
	v := sectionView{
		Name:   s.Name,
		Source: string(s.Source),
		Offset: s.Offset,
		Notes:  []noteView{},
	}
	if s.Err != nil {
		v.Error = s.Err.Error()
	}
	for _, e := range s.Notes {
		v.Notes = append(v.Notes, newNoteView(e))
	}
	return v
}

func newNoteView(e *note.Entry) noteView {
	v := noteView{
		Owner:      e.Name(),
		Type:       e.Type().String(),
		Descriptor: hex.EncodeToString(e.RawDescriptor()),
		Offset:     e.Offset(),
		TypeCode:   uint32(e.Type()),
		Size:       e.DescriptorSize(),
	}
	if tag, ok := e.DescriptorAsAbiTag(); ok {
		v.ABITag = tag.String()
	}
	if id, ok := e.BuildID(); ok {
		v.BuildID = id
	}
	return v
}

func writeViews(w io.Writer, format string, views []fileView) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(views); err != nil {
			return err
		}
		return enc.Close()
	default:
		return writeText(w, views)
	}
}

func writeText(w io.Writer, views []fileView) error {
	for _, f := range views {
		if f.Error != "" {
			if _, err := fmt.Fprintf(w, "%s: error: %s\n", f.Path, f.Error); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "%s:\n", f.Path); err != nil {
			return err
		}
		for _, s := range f.Sections {
			fmt.Fprintf(w, "  %s (%s at 0x%x)\n", s.Name, s.Source, s.Offset)
			if s.Error != "" {
				fmt.Fprintf(w, "    error: %s\n", s.Error)
			}
			for _, n := range s.Notes {
				fmt.Fprintf(w, "    %-8s %-24s %4d bytes  %s\n", n.Owner, n.Type, n.Size, noteSummary(n))
			}
		}
	}
	return nil
}

func noteSummary(n noteView) string {
	switch {
	case n.ABITag != "":
		return n.ABITag
	case n.BuildID != "":
		return n.BuildID
	case len(n.Descriptor) > 32:
		return n.Descriptor[:32] + "..."
	default:
		return n.Descriptor
	}
}
