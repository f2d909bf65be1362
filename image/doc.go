// Package image loads the note regions of ELF files.
//
// ELF header, section and program header parsing is delegated to debug/elf;
// this package only locates note regions and hands them to the note decoder.
//
// # Quick Start
//
//	img, err := image.Open("/usr/bin/env", image.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if id, ok := img.BuildID(); ok {
//	    fmt.Println("build id:", id)
//	}
//
// # Malformed Regions
//
// By default a region whose records cannot be decoded is kept with its Err
// set and the records decoded before the failure; other regions are still
// decoded. Set Options.Strict to abort the load instead:
//
//	opts := image.DefaultOptions()
//	opts.Strict = true
//	img, err := image.Open(path, opts)
//
// # Metrics
//
//	opts.Metrics = image.NewMetrics(prometheus.DefaultRegisterer)
package image
