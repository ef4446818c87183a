package fix

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gnolang/virfix/internal/virtext"
)

// FileResult is the outcome of fixing one program file.
type FileResult struct {
	Path   string
	Report Report
}

// Processor fixes the program file at path.
type Processor func(ctx context.Context, p *Pipeline, path string) (FileResult, error)

// ProcessFile loads the program at path and fixes it.
func ProcessFile(ctx context.Context, p *Pipeline, path string) (FileResult, error) {
	prog, err := virtext.LoadProgram(path)
	if err != nil {
		return FileResult{}, err
	}
	report, err := p.FixProgram(ctx, prog)
	if err != nil {
		return FileResult{}, fmt.Errorf("%s: %w", path, err)
	}
	return FileResult{Path: path, Report: report}, nil
}

// ProcessFiles processes each of paths in turn. See ProcessPath. The
// results of every path are returned, and their errors are joined.
func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	p *Pipeline,
	paths []string,
	processor Processor,
) ([]FileResult, error) {
	var (
		all  []FileResult
		errs []error
	)
	for _, path := range paths {
		results, err := ProcessPath(ctx, logger, p, path, processor)
		all = append(all, results...)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			}
			errs = append(errs, err)
			if ctx.Err() != nil {
				break
			}
		}
	}
	return all, errors.Join(errs...)
}

// ProcessPath processes the program file at path, or every program file
// below path if it is a directory. Directories are processed concurrently
// with a progress bar written to progress; results are sorted by path. A
// file that cannot be processed is logged and skipped, and its error is
// returned together with the results of the other files.
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	p *Pipeline,
	path string,
	processor Processor,
) ([]FileResult, error) {
	return processPath(ctx, logger, p, path, processor, os.Stderr)
}

func processPath(
	ctx context.Context,
	logger *zap.Logger,
	p *Pipeline,
	path string,
	processor Processor,
	progress io.Writer,
) ([]FileResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}
	if !info.IsDir() {
		result, err := processor(ctx, p, path)
		if err != nil {
			return nil, err
		}
		return []FileResult{result}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(filePath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && hasDesiredExtension(filePath) {
			files = append(files, filePath)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking %s: %w", path, err)
	}
	sort.Strings(files)

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetDescription(path),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	results := make([]FileResult, len(files))
	errs := make([]error, len(files))

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, filePath := range files {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			results[i], errs[i] = processor(ctx, p, filePath)
			if errs[i] != nil {
				logger.Error("Error processing file", zap.String("file", filePath), zap.Error(errs[i]))
			}
			_ = bar.Add(1)
			return nil
		})
	}
	_ = g.Wait()
	fmt.Fprintln(progress)

	var processed []FileResult
	for i := range files {
		if errs[i] == nil && results[i].Path != "" {
			processed = append(processed, results[i])
		}
	}
	if err := ctx.Err(); err != nil {
		return processed, err
	}
	return processed, errors.Join(errs...)
}

var desiredExtensions = map[string]bool{
	".yaml": true,
	".yml":  true,
}

func hasDesiredExtension(path string) bool {
	return desiredExtensions[filepath.Ext(path)] && filepath.Base(path) != DefaultConfigFile
}
