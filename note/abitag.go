package note

import "encoding/binary"

// DecodeAbiTag decodes an NT_GNU_ABI_TAG descriptor: four words holding the
// operating system and the major, minor and subminor ABI version. It reports
// false when desc holds fewer than 16 bytes. Bytes beyond the first 16 are
// ignored.
func DecodeAbiTag(order binary.ByteOrder, desc []byte) (AbiTag, bool) {
	if len(desc) < AbiTagSize {
		return AbiTag{}, false
	}
	return AbiTag{
		OS:       OS(order.Uint32(desc[0:4])),
		Major:    order.Uint32(desc[4:8]),
		Minor:    order.Uint32(desc[8:12]),
		Subminor: order.Uint32(desc[12:16]),
	}, true
}

// EncodeAbiTag returns the 16-byte descriptor for tag.
func EncodeAbiTag(order binary.ByteOrder, tag AbiTag) []byte {
	desc := make([]byte, AbiTagSize)
	order.PutUint32(desc[0:4], uint32(tag.OS))
	order.PutUint32(desc[4:8], tag.Major)
	order.PutUint32(desc[8:12], tag.Minor)
	order.PutUint32(desc[12:16], tag.Subminor)
	return desc
}

func decodeAbiTagDescriptor(order binary.ByteOrder, desc []byte) (Descriptor, bool) {
	tag, ok := DecodeAbiTag(order, desc)
	if !ok {
		return nil, false
	}
	return tag, true
}
