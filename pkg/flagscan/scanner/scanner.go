// Package scanner locates references to a feature-flag key in a checked-out
// source tree and scores how safe each one is to remove automatically.
//
// A scan walks the tree in lexical order, skipping ignored directories,
// unknown languages and oversized or unreadable files, and applies the
// language profile's occurrence patterns to every line of each remaining
// file. The result lists matches in visitation order, then line order.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-enry/go-enry/v2"
	"golang.org/x/sync/errgroup"

	"github.com/idlab-discover/FlagScan-cli/pkg/flagscan/languages"
)

var defaultIgnoreDirs = []string{
	// version control
	".git", ".hg", ".svn",
	// dependencies and virtual envs
	"node_modules", "vendor", ".venv", "venv", ".tox",
	// build output
	"dist", "build", "target", ".next", ".nuxt",
	// caches
	"__pycache__", ".mypy_cache", ".pytest_cache",
	// coverage output
	"coverage", ".nyc_output", "htmlcov",
}

// DefaultIgnoreDirs returns the directory names a scan never descends into.
func DefaultIgnoreDirs() []string {
	out := make([]string, len(defaultIgnoreDirs))
	copy(out, defaultIgnoreDirs)
	return out
}

// candidate is a file that passed the walk-time filters.
type candidate struct {
	rel  string
	abs  string
	lang string
}

type fileOutcome struct {
	matches []Match
	scanned bool
}

// Scan walks root and returns every line that references flagKey.
//
// Only a missing, non-directory or unreadable root, an empty flag key, an
// invalid exclude pattern or a cancelled context fail the call. Per-file
// problems are counted in Result.SkippedFiles.
func Scan(ctx context.Context, root, flagKey string, opts Options) (*Result, error) {
	start := time.Now()

	if strings.TrimSpace(flagKey) == "" {
		return nil, ErrEmptyFlagKey
	}
	absRoot, err := checkRoot(root)
	if err != nil {
		return nil, err
	}
	for _, p := range opts.Exclude {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid exclude pattern %q", p)
		}
	}

	reg := opts.Registry
	if reg == nil {
		reg = languages.Default()
	}
	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	ignoreNames := opts.IgnoreDirs
	if ignoreNames == nil {
		ignoreNames = defaultIgnoreDirs
	}
	ignore := make(map[string]struct{}, len(ignoreNames))
	for _, n := range ignoreNames {
		ignore[n] = struct{}{}
	}

	skipped := 0
	var files []candidate

	walkErr := filepath.WalkDir(absRoot, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if p == absRoot {
				return fmt.Errorf("%w: %s: %v", ErrRootUnreadable, root, err)
			}
			logf(flagKey, "skipping unreadable directory %s: %v", relPath(absRoot, p), err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel := relPath(absRoot, p)
		if d.IsDir() {
			if p == absRoot {
				return nil
			}
			if _, ok := ignore[d.Name()]; ok {
				return filepath.SkipDir
			}
			if excluded(opts.Exclude, rel, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || excluded(opts.Exclude, rel, d.Name()) {
			return nil
		}

		lang, ok := reg.DetectLanguage(d.Name())
		if !ok {
			skipped++
			return nil
		}
		info, err := d.Info()
		if err != nil {
			logf(flagKey, "skipping %s: %v", rel, err)
			skipped++
			return nil
		}
		if info.Size() > maxSize {
			logf(flagKey, "skipping %s: %d bytes exceeds limit of %d", rel, info.Size(), maxSize)
			skipped++
			return nil
		}
		files = append(files, candidate{rel: rel, abs: p, lang: lang})
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	// Each worker writes only its own slot, so slot order is visitation
	// order and no sort is needed afterwards.
	outcomes := make([]fileOutcome, len(files))
	plan := newFlagPlan(reg, flagKey)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = scanCandidate(plan, files[i], maxSize)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{
		FlagKey:  flagKey,
		Provider: opts.Provider,
		Repo:     opts.Repo,
		Matches:  []Match{},
	}
	if res.Provider == "" {
		res.Provider = DefaultProvider
	}
	if res.Repo == "" {
		res.Repo = filepath.Base(absRoot)
	}
	for _, o := range outcomes {
		if !o.scanned {
			skipped++
			continue
		}
		res.ScannedFiles++
		res.Matches = append(res.Matches, o.matches...)
	}
	res.SkippedFiles = skipped
	res.TotalMatches = len(res.Matches)
	res.ScanDurationMs = time.Since(start).Milliseconds()

	logf(flagKey, "scanned=%d skipped=%d matches=%d duration=%dms",
		res.ScannedFiles, res.SkippedFiles, res.TotalMatches, res.ScanDurationMs)
	return res, nil
}

func scanCandidate(plan *flagPlan, c candidate, maxSize int64) fileOutcome {
	data, err := os.ReadFile(c.abs)
	if err != nil {
		logf(plan.key, "skipping %s: %v", c.rel, err)
		return fileOutcome{}
	}
	// The file may have grown between the walk and the read.
	if int64(len(data)) > maxSize {
		logf(plan.key, "skipping %s: %d bytes exceeds limit of %d", c.rel, len(data), maxSize)
		return fileOutcome{}
	}
	if enry.IsBinary(data) {
		logf(plan.key, "skipping %s: binary content", c.rel)
		return fileOutcome{}
	}
	return fileOutcome{
		matches: plan.scan(c.rel, string(data), c.lang),
		scanned: true,
	}
}

// checkRoot validates the scan root and returns its absolute, symlink-free
// form.
func checkRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrRootUnreadable, root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrRootNotFound, root)
		}
		return "", fmt.Errorf("%w: %s: %v", ErrRootUnreadable, root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrRootNotDir, root)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	return abs, nil
}

func relPath(root, p string) string {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}

func excluded(patterns []string, rel, name string) bool {
	for _, pattern := range patterns {
		if matched, err := doublestar.Match(pattern, rel); err == nil && matched {
			return true
		}
		if matched, err := doublestar.Match(pattern, name); err == nil && matched {
			return true
		}
	}
	return false
}
