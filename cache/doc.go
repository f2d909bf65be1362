// Package cache persists decoded note images in a pebble database so repeated
// scans of unchanged files skip ELF parsing.
//
// Entries are keyed by path, size and modification time:
//
//	store, err := cache.Open(dir)
//	key := cache.KeyFor(path, info)
//	img, ok, err := store.Get(key)
//	if !ok {
//		img, err = image.Open(path, image.DefaultOptions())
//		err = store.Put(key, img)
//	}
//
// Notes are stored in their encoded record form and decoded again on Get, so
// a cached image reports the same offsets, names and structured views as a
// freshly loaded one.
package cache
