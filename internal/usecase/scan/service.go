// Package scan ingests whole package directories into the document table.
package scan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/srcdex/internal/domain"
	domdoc "github.com/kailas-cloud/srcdex/internal/domain/document"
	logpkg "github.com/kailas-cloud/srcdex/internal/logger"
	"github.com/kailas-cloud/srcdex/internal/metrics"
	"github.com/kailas-cloud/srcdex/internal/pathcodec"
)

// DefaultIgnore lists the patterns skipped when none are configured.
var DefaultIgnore = []string{".git", ".hg", ".svn", "CVS", "*~", "*.o", "*.so", "*.a", "*.class"}

// Options controls which files a scan offers to the table.
type Options struct {
	// Ignore holds filepath.Match patterns. A pattern containing a slash is
	// matched against the whole restpath, otherwise against each path element.
	Ignore []string
	// MaxFileSize skips larger files; zero means no limit.
	MaxFileSize int64
}

// Failure is a file that could not be ingested.
type Failure struct {
	Restpath string
	Err      error
}

// Report summarizes one package scan.
type Report struct {
	Package   string
	New       int
	Updated   int
	Unchanged int
	Skipped   int
	Removed   int
	Failed    []Failure
	Duration  time.Duration
}

// Total is the number of files offered to the table.
func (r *Report) Total() int {
	return r.New + r.Updated + r.Unchanged + len(r.Failed)
}

func (r *Report) count(o domdoc.Outcome) {
	switch o {
	case domdoc.NewFile:
		r.New++
	case domdoc.Updated:
		r.Updated++
	default:
		r.Unchanged++
	}
}

// Service walks package directories.
type Service struct {
	table  Table
	opts   Options
	logger *zap.Logger
}

// New creates a scan service.
func New(table Table, opts Options) *Service {
	if opts.Ignore == nil {
		opts.Ignore = DefaultIgnore
	}
	return &Service{table: table, opts: opts, logger: zap.NewNop()}
}

// WithLogger sets the logger.
func (s *Service) WithLogger(l *zap.Logger) *Service {
	if l != nil {
		s.logger = l
	}
	return s
}

func (s *Service) log(ctx context.Context) *zap.Logger {
	return logpkg.FromContextOr(ctx, s.logger)
}

// ScanPackage adds every regular file under dir to the table as package name
// (the base name of dir when empty), then removes documents of that package
// whose files are gone. Per-file IO and encoding failures are collected in
// the report; any other error aborts the scan.
func (s *Service) ScanPackage(ctx context.Context, dir, name string) (Report, error) {
	start := time.Now()
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return Report{}, domain.NewIOError(dir, err)
	}
	if name == "" {
		name = filepath.Base(absDir)
	}
	pkg, err := pathcodec.ToUTF8(name)
	if err != nil {
		return Report{}, domain.NewEncodingError(name, err)
	}

	report := Report{Package: pkg}
	defer metrics.ObserveScan(pkg, start)

	err = filepath.WalkDir(absDir, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(absDir, path)
		if err != nil {
			return err
		}
		if walkErr != nil {
			if path == absDir {
				return domain.NewIOError(path, walkErr)
			}
			report.Failed = append(report.Failed, Failure{Restpath: filepath.ToSlash(rel), Err: walkErr})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path == absDir {
			return nil
		}
		if s.Ignored(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			report.Skipped++
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if s.tooLarge(d) {
			report.Skipped++
			return nil
		}
		return s.addFile(ctx, absDir, rel, name, &report)
	})
	if err != nil {
		return report, fmt.Errorf("scan %s: %w", absDir, err)
	}

	report.Removed, err = s.table.CleanupPackageName(ctx, pkg, nil)
	if err != nil {
		return report, fmt.Errorf("cleanup %s: %w", pkg, err)
	}
	report.Duration = time.Since(start)

	s.log(ctx).Info("Package scanned",
		zap.String("package", pkg),
		zap.Int("new", report.New),
		zap.Int("updated", report.Updated),
		zap.Int("unchanged", report.Unchanged),
		zap.Int("removed", report.Removed),
		zap.Int("failed", len(report.Failed)),
		zap.Duration("duration", report.Duration),
	)
	return report, nil
}

func (s *Service) addFile(ctx context.Context, absDir, rel, name string, report *Report) error {
	outcome, err := s.table.Add(ctx, absDir, rel, name)
	switch {
	case err == nil:
		report.count(outcome)
		return nil
	case errors.Is(err, domain.ErrIO), errors.Is(err, domain.ErrEncoding):
		s.log(ctx).Warn("Skipping unreadable file",
			zap.String("package", report.Package),
			zap.String("restpath", rel),
			zap.Error(err),
		)
		report.Failed = append(report.Failed, Failure{Restpath: filepath.ToSlash(rel), Err: err})
		return nil
	default:
		return err
	}
}

// Ignored reports whether a package-relative path matches an ignore pattern.
func (s *Service) Ignored(restpath string) bool {
	rel := filepath.ToSlash(filepath.Clean(restpath))
	parts := strings.Split(rel, "/")
	for _, pattern := range s.opts.Ignore {
		if strings.Contains(pattern, "/") {
			if ok, _ := filepath.Match(pattern, rel); ok {
				return true
			}
			continue
		}
		for _, part := range parts {
			if ok, _ := filepath.Match(pattern, part); ok {
				return true
			}
		}
	}
	return false
}

func (s *Service) tooLarge(d fs.DirEntry) bool {
	if s.opts.MaxFileSize <= 0 {
		return false
	}
	info, err := d.Info()
	if err != nil {
		return false
	}
	return info.Size() > s.opts.MaxFileSize
}
