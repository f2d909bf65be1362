// Package scan loads the notes of many ELF files concurrently.
//
// Patterns are expanded with doublestar, so "**" matches across directories:
//
//	results, err := scan.Run(ctx, []string{"/usr/lib/**/*.so*"}, scan.DefaultOptions())
//	for _, r := range results {
//		if r.Err != nil {
//			continue
//		}
//		id, _ := r.Image.BuildID()
//		fmt.Println(r.Path, id)
//	}
//
// A failure to load one file never stops the others; it is reported on that
// file's Result. Setting Options.Cache skips files whose size and
// modification time have not changed since they were cached.
package scan
