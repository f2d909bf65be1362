package cache_test

import (
	"bytes"
	"encoding/binary"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/elf-notes/cache"
	"github.com/wippyai/elf-notes/errors"
	"github.com/wippyai/elf-notes/image"
	"github.com/wippyai/elf-notes/internal/elftest"
	"github.com/wippyai/elf-notes/note"
)

func openMem(t *testing.T) *cache.Store {
	t.Helper()
	s, err := cache.OpenWithOptions("", &pebble.Options{FS: vfs.NewMem()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

type fileInfo struct {
	os.FileInfo
	size  int64
	mtime time.Time
}

func (fi fileInfo) Size() int64        { return fi.size }
func (fi fileInfo) ModTime() time.Time { return fi.mtime }

func loadSample(t *testing.T, order binary.ByteOrder) *image.Image {
	t.Helper()
	desc := note.EncodeAbiTag(order, note.AbiTag{OS: note.OSFreeBSD, Major: 13, Minor: 1})
	data := elftest.Build(elftest.Options{Order: order},
		elftest.Section{Name: ".note.ABI-tag", Data: note.Encode(order, note.OwnerGNU, note.TypeGNUABITag, desc)},
		elftest.Section{Name: ".note.gnu.build-id", Data: note.Encode(order, note.OwnerGNU, note.TypeGNUBuildID, []byte{0xde, 0xad, 0xbe, 0xef})},
	)
	img, err := image.Load(bytes.NewReader(data), int64(len(data)), image.DefaultOptions())
	require.NoError(t, err)
	img.Path = "/bin/sample"
	return img
}

func TestKeyFor(t *testing.T) {
	now := time.Unix(1700000000, 42)
	a := cache.KeyFor("/bin/ls", fileInfo{size: 10, mtime: now})
	b := cache.KeyFor("/bin/ls", fileInfo{size: 10, mtime: now})
	assert.Equal(t, a, b)

	assert.NotEqual(t, a, cache.KeyFor("/bin/ls", fileInfo{size: 11, mtime: now}))
	assert.NotEqual(t, a, cache.KeyFor("/bin/ls", fileInfo{size: 10, mtime: now.Add(time.Nanosecond)}))
	assert.NotEqual(t, a, cache.KeyFor("/bin/cat", fileInfo{size: 10, mtime: now}))
}

func TestGetMiss(t *testing.T) {
	s := openMem(t)
	img, ok, err := s.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, img)
}

func TestPutGet(t *testing.T) {
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		t.Run(order.String(), func(t *testing.T) {
			s := openMem(t)
			want := loadSample(t, order)
			require.NoError(t, s.Put("k", want))

			got, ok, err := s.Get("k")
			require.NoError(t, err)
			require.True(t, ok)

			assert.Equal(t, want.Path, got.Path)
			assert.Equal(t, want.Class, got.Class)
			assert.Equal(t, want.Machine, got.Machine)
			assert.Equal(t, want.ByteOrder, got.ByteOrder)
			require.Len(t, got.Sections, len(want.Sections))

			for i, ws := range want.Sections {
				gs := got.Sections[i]
				assert.Equal(t, ws.Name, gs.Name)
				assert.Equal(t, ws.Source, gs.Source)
				assert.Equal(t, ws.Offset, gs.Offset)
				assert.Equal(t, ws.Size, gs.Size)
				assert.Equal(t, ws.Align, gs.Align)
				require.Len(t, gs.Notes, len(ws.Notes))
				for j, we := range ws.Notes {
					ge := gs.Notes[j]
					assert.Equal(t, we.Offset(), ge.Offset())
					assert.Equal(t, we.Name(), ge.Name())
					assert.Equal(t, we.Type(), ge.Type())
					assert.Equal(t, we.RawDescriptor(), ge.RawDescriptor())
				}
			}

			tag, ok := got.ABITag()
			require.True(t, ok)
			assert.Equal(t, note.AbiTag{OS: note.OSFreeBSD, Major: 13, Minor: 1}, tag)

			id, ok := got.BuildID()
			require.True(t, ok)
			assert.Equal(t, "deadbeef", id)
		})
	}
}

func TestPutGetAlign8(t *testing.T) {
	order := binary.LittleEndian
	raw := note.Encode(order, note.OwnerGNU, note.TypeGNUPropertyType0, []byte{1, 2, 3, 4, 5, 6})
	raw = append(raw, note.Encode(order, note.OwnerGNU, note.TypeGNUHWCap, []byte{9})...)

	data := elftest.Build(elftest.Options{Order: order},
		elftest.Section{Name: ".note.gnu.property", Align: 8, Data: alignedSection(t, order, raw)})
	img, err := image.Load(bytes.NewReader(data), int64(len(data)), image.DefaultOptions())
	require.NoError(t, err)
	require.Empty(t, img.Failed())
	want := img.Notes()
	require.Len(t, want, 2)

	s := openMem(t)
	require.NoError(t, s.Put("k", img))
	got, ok, err := s.Get("k")
	require.NoError(t, err)
	require.True(t, ok)

	gotNotes := got.Notes()
	require.Len(t, gotNotes, 2)
	for i := range want {
		assert.Equal(t, want[i].Offset(), gotNotes[i].Offset())
		assert.Equal(t, want[i].Type(), gotNotes[i].Type())
		assert.Equal(t, want[i].RawDescriptor(), gotNotes[i].RawDescriptor())
	}
}

// alignedSection decodes 4-byte aligned records and encodes them again with
// 8-byte descriptor padding.
func alignedSection(t *testing.T, order binary.ByteOrder, raw []byte) []byte {
	t.Helper()
	data := elftest.Build(elftest.Options{Order: order}, elftest.Section{Name: ".n", Data: raw})
	img, err := image.Load(bytes.NewReader(data), int64(len(data)), image.DefaultOptions())
	require.NoError(t, err)
	return note.EncodeSection(order, 8, img.Notes())
}

func TestPutGetFailedSection(t *testing.T) {
	order := binary.LittleEndian
	var bad []byte
	bad = order.AppendUint32(bad, 4)
	bad = order.AppendUint32(bad, 64)
	bad = order.AppendUint32(bad, uint32(note.TypeGNUBuildID))
	bad = append(bad, 'G', 'N', 'U', 0)

	data := elftest.Build(elftest.Options{Order: order}, elftest.Section{Name: ".note.broken", Data: bad})
	img, err := image.Load(bytes.NewReader(data), int64(len(data)), image.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, img.Failed(), 1)

	s := openMem(t)
	require.NoError(t, s.Put("k", img))
	got, ok, err := s.Get("k")
	require.NoError(t, err)
	require.True(t, ok)

	failed := got.Failed()
	require.Len(t, failed, 1)
	var tr *errors.TruncatedRecordError
	require.True(t, stderrors.As(failed[0].Err, &tr))
	assert.Equal(t, "descriptor", tr.Field)
	assert.Equal(t, uint64(64), tr.Expected)
	assert.Equal(t, uint64(0), tr.Actual)
}

func TestDelete(t *testing.T) {
	s := openMem(t)
	require.NoError(t, s.Put("k", loadSample(t, binary.LittleEndian)))
	require.NoError(t, s.Delete("k"))

	_, ok, err := s.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Delete("never-stored"))
}

func TestWithRegistry(t *testing.T) {
	s := openMem(t)
	require.NoError(t, s.Put("k", loadSample(t, binary.LittleEndian)))

	assert.Same(t, s, s.WithRegistry(nil))
	assert.Same(t, s, s.WithRegistry(note.DefaultRegistry))

	got, ok, err := s.WithRegistry(note.NewRegistry()).Get("k")
	require.NoError(t, err)
	require.True(t, ok)

	_, ok = got.ABITag()
	assert.False(t, ok)
	e, ok := got.Find(note.OwnerGNU, note.TypeGNUABITag)
	require.True(t, ok)
	assert.Len(t, e.RawDescriptor(), note.AbiTagSize)
}

func TestPersistsAcrossReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	s, err := cache.Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.Put("k", loadSample(t, binary.BigEndian)))
	require.NoError(t, s.Close())

	s, err = cache.Open(dir)
	require.NoError(t, err)
	defer s.Close()

	got, ok, err := s.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, binary.BigEndian, got.ByteOrder)
}
