// Package elfnotes decodes ELF note records into owned, immutable entries.
//
// ELF images carry auxiliary metadata in note sections (SHT_NOTE) and note
// segments (PT_NOTE). Each note record is a (name, type, descriptor) triple
// with declared lengths and 4-byte alignment padding. This module reads those
// records through a Cursor, keeps a copy of every byte it consumes, and
// offers structured views of well-known vendor descriptors such as the GNU
// ABI tag.
//
// # Architecture Overview
//
//	elfnotes/            Root package with the Cursor contract and Section bounds
//	├── note/            Record decoder, descriptor registry, ABI tag codec, encoder
//	├── image/           Locates note sections in ELF files and decodes them
//	├── cache/           Persistent cache of decoded note sections (pebble)
//	├── scan/            Concurrent multi-file scanning with glob patterns
//	├── errors/          Structured error types for debugging
//	├── internal/binary/ Byte-order aware Cursor and Writer implementations
//	├── internal/config/ YAML configuration of the command
//	└── cmd/elfnotes/    Command line interface and interactive browser
//
// # Quick Start
//
// Read every note of an executable:
//
//	img, err := image.Open("/bin/ls", image.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, n := range img.Notes() {
//	    fmt.Println(n.Name(), n.Type(), len(n.RawDescriptor()))
//	}
//
//	if tag, ok := img.ABITag(); ok {
//	    fmt.Println(tag) // "Linux 3.2.0"
//	}
//
// Decode a single record from any Cursor:
//
//	entry, err := note.Decode(cursor, offset)
//
// # Vendor Descriptors
//
// Note types form an open set. Structured decoders are registered per type:
//
//	reg := note.NewRegistry()
//	reg.Register(myType, func(order binary.ByteOrder, desc []byte) (note.Descriptor, bool) {
//	    ...
//	})
//	dec := note.NewDecoder(reg)
//
// Unknown types are never errors; their raw descriptor bytes stay available.
//
// # Thread Safety
//
// Decoded entries hold no reference to the cursor or file and may be shared
// freely across goroutines. A Cursor must not be used concurrently.
package elfnotes
