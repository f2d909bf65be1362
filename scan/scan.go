package scan

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wippyai/elf-notes/cache"
	"github.com/wippyai/elf-notes/errors"
	"github.com/wippyai/elf-notes/image"
)

// DefaultWorkers is the number of files loaded concurrently when Options.Workers is unset.
const DefaultWorkers = 4

// Options configures a scan.
type Options struct {
	// Cache, when set, is consulted before loading a file and filled after.
	Cache  *cache.Store
	Logger *zap.Logger
	Image  image.Options
	// Workers bounds the number of files loaded at once.
	Workers int
}

// DefaultOptions returns default scan configuration.
func DefaultOptions() Options {
	return Options{
		Logger:  zap.NewNop(),
		Image:   image.DefaultOptions(),
		Workers: DefaultWorkers,
	}
}

// Result is the outcome for one file. Exactly one of Image and Err is set.
type Result struct {
	Image  *image.Image
	Err    error
	Path   string
	Cached bool
}

// Expand resolves glob patterns to a sorted, de-duplicated list of paths.
// Patterns without glob metacharacters are passed through unchanged so a
// missing file surfaces as a per-file error instead of vanishing.
func Expand(patterns []string) ([]string, error) {
	var paths []string
	for _, p := range patterns {
		if !hasMeta(p) {
			paths = append(paths, p)
			continue
		}
		if !doublestar.ValidatePathPattern(p) {
			return nil, errors.New(errors.PhaseScan, errors.KindInvalidInput).
				Value(p).
				Detail("invalid pattern %q", p).
				Cause(doublestar.ErrBadPattern).
				Build()
		}
		matches, err := doublestar.FilepathGlob(p, doublestar.WithFilesOnly())
		if err != nil {
			return nil, errors.Wrap(errors.PhaseScan, errors.KindIO, err, "expand "+p)
		}
		paths = append(paths, matches...)
	}
	slices.Sort(paths)
	return slices.Compact(paths), nil
}

func hasMeta(p string) bool {
	for i := 0; i < len(p); i++ {
		switch p[i] {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}

// Run expands patterns and loads every matching file with bounded
// concurrency. Per-file failures are reported in Result.Err; the returned
// error is set only for invalid patterns or when ctx is done. Results are in
// path order.
func Run(ctx context.Context, patterns []string, opts Options) ([]Result, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Workers < 1 {
		opts.Workers = DefaultWorkers
	}

	paths, err := Expand(patterns)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	for i, path := range paths {
		if gctx.Err() != nil {
			break
		}
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = scanFile(path, opts)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(errors.PhaseScan, errors.KindIO, err, "scan cancelled")
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.PhaseScan, errors.KindIO, err, "scan cancelled")
	}

	opts.Logger.Debug("scan finished", zap.Int("files", len(results)))
	return results, nil
}

func scanFile(path string, opts Options) Result {
	res := Result{Path: path}
	log := opts.Logger.With(zap.String("path", path))

	info, err := os.Stat(path)
	switch {
	case stderrors.Is(err, fs.ErrNotExist):
		res.Err = errors.NotFound(errors.PhaseScan, "file", path, err)
		return res
	case err != nil:
		res.Err = errors.IO(errors.PhaseScan, "stat "+path, err)
		return res
	}
	if info.IsDir() {
		res.Err = errors.InvalidInput(errors.PhaseScan, path+" is a directory")
		return res
	}

	var key cache.Key
	if opts.Cache != nil {
		key = cache.KeyFor(path, info)
		img, ok, err := opts.Cache.WithRegistry(opts.Image.Registry).Get(key)
		switch {
		case err != nil:
			log.Warn("cache lookup failed", zap.Error(err))
		case ok && opts.Image.Strict && len(img.Failed()) > 0:
			// Cached from a lenient run; reload so the failure surfaces.
		case ok:
			img.Path = path
			res.Image, res.Cached = img, true
			opts.Image.Metrics.CacheHit()
			return res
		}
	}

	img, err := image.Open(path, opts.Image)
	if err != nil {
		res.Err = err
		log.Debug("load failed", zap.Error(err))
		return res
	}
	res.Image = img

	if opts.Cache != nil {
		if err := opts.Cache.Put(key, img); err != nil {
			log.Warn("cache store failed", zap.Error(err))
		}
	}
	return res
}

// Errors returns the per-file errors of results joined into one error, or
// nil when every file loaded.
func Errors(results []Result) error {
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return stderrors.Join(errs...)
}
