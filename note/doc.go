// Package note decodes and encodes ELF note records.
//
// A note record is laid out as three words followed by two padded fields,
// all integers in the image's byte order:
//
//	offset  field       size
//	0       namesz      4
//	4       descsz      4
//	8       type        4
//	12      name        namesz (NUL terminated)
//	        padding     to the next 4-byte boundary
//	        descriptor  descsz
//
// # Decoding
//
// Decode one record from any elfnotes.Cursor:
//
//	e, err := note.Decode(cursor, offset)
//	if err != nil {
//	    var tr *errors.TruncatedRecordError
//	    if errors.As(err, &tr) {
//	        // tr.Field is "header", "name" or "descriptor"
//	    }
//	}
//	fmt.Println(e.Name(), e.Type())
//
// Decode every record of a section:
//
//	entries, err := note.DecodeSection(cursor, elfnotes.Section{Offset: off, Size: size, Align: 4})
//
// # Structured Descriptors
//
// The descriptor bytes are read once and copied into the Entry. Structured
// views are computed from that copy by the DecodeFunc registered for the
// note type:
//
//	if tag, ok := e.DescriptorAsAbiTag(); ok {
//	    fmt.Println(tag.OS, tag.Major, tag.Minor, tag.Subminor)
//	}
//
// DefaultRegistry knows NT_GNU_ABI_TAG. Add more with a custom Registry:
//
//	reg := note.DefaultRegistry.Clone()
//	reg.Register(myType, myDecodeFunc)
//	dec := note.NewDecoder(reg)
//
// Unknown types and descriptors too short for their decoder are not errors:
// Descriptor returns nil and RawDescriptor still has the bytes.
//
// # Encoding
//
//	data := note.Encode(binary.LittleEndian, "GNU", note.TypeGNUBuildID, id)
//	sec := note.EncodeSection(binary.LittleEndian, 4, entries)
package note
