package note

// Record layout sizes.
const (
	// HeaderSize is the size of the namesz, descsz and type words.
	HeaderSize = 12

	// WordAlign is the alignment of the name field and, in 4-byte aligned
	// sections, of the descriptor field.
	WordAlign = 4

	// AbiTagSize is the minimum descriptor size of an NT_GNU_ABI_TAG note.
	AbiTagSize = 16
)

// OwnerGNU is the name carried by notes of the GNU toolchain.
const OwnerGNU = "GNU"

// Note types defined by the GNU toolchain. Types are namespaced by the note
// owner; these values are meaningful for notes named "GNU".
const (
	TypeGNUABITag        Type = 1 // minimum kernel ABI, see AbiTag
	TypeGNUHWCap         Type = 2 // synthetic hwcap information
	TypeGNUBuildID       Type = 3 // unique build ID generated by ld --build-id
	TypeGNUGoldVersion   Type = 4 // version string of the gold linker
	TypeGNUPropertyType0 Type = 5 // program property array
)

// Operating systems named by the first word of an ABI tag descriptor.
const (
	OSLinux    OS = 0
	OSGNU      OS = 1
	OSSolaris2 OS = 2
	OSFreeBSD  OS = 3
)

var typeNames = map[Type]string{
	TypeGNUABITag:        "NT_GNU_ABI_TAG",
	TypeGNUHWCap:         "NT_GNU_HWCAP",
	TypeGNUBuildID:       "NT_GNU_BUILD_ID",
	TypeGNUGoldVersion:   "NT_GNU_GOLD_VERSION",
	TypeGNUPropertyType0: "NT_GNU_PROPERTY_TYPE_0",
}

var osNames = map[OS]string{
	OSLinux:    "Linux",
	OSGNU:      "GNU",
	OSSolaris2: "Solaris2",
	OSFreeBSD:  "FreeBSD",
}
