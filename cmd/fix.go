package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/virfix/fix"
	"github.com/gnolang/virfix/formatter"
	"github.com/gnolang/virfix/internal/virtext"
)

var (
	writeInPlace bool
	watchMode    bool
)

var fixCmd = &cobra.Command{
	Use:   "fix [paths...]",
	Short: "Rename snapshot labels and havoc loop targets",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cfgFile)
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.String("config", cfgFile), zap.Error(err))
		}
		p := fix.New(cfg, logger)

		if watchMode {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			if err := runWatch(ctx, logger, p, args, writeInPlace, cmd.OutOrStdout(), cmd.ErrOrStderr()); err != nil && ctx.Err() == nil {
				logger.Fatal("Watch failed", zap.Error(err))
			}
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		defects, err := runFix(ctx, logger, p, args, writeInPlace, cmd.OutOrStdout(), cmd.ErrOrStderr())
		if err != nil {
			logger.Error("Error processing files", zap.Error(err))
			os.Exit(1)
		}
		if defects > 0 {
			os.Exit(1)
		}
	},
}

func init() {
	fixCmd.Flags().BoolVarP(&writeInPlace, "write", "w", false, "Write the fixed program back to its file")
	fixCmd.Flags().BoolVar(&watchMode, "watch", false, "Fix program files again whenever they change")
}

// runFix fixes every program under paths and returns the number of
// defects found.
func runFix(ctx context.Context, logger *zap.Logger, p *fix.Pipeline, paths []string, write bool, out, errOut io.Writer) (int, error) {
	results, err := fix.ProcessFiles(ctx, logger, p, paths, fix.ProcessFile)
	defects := 0
	for _, r := range results {
		defects += emitResult(logger, r, write, out, errOut)
	}
	return defects, err
}

func runWatch(ctx context.Context, logger *zap.Logger, p *fix.Pipeline, paths []string, write bool, out, errOut io.Writer) error {
	w, err := fix.NewWatcher(p, fix.ProcessFile, logger, func(r fix.FileResult, err error) {
		if err != nil {
			logger.Error("Error processing file", zap.Error(err))
			return
		}
		emitResult(logger, r, write, out, errOut)
	})
	if err != nil {
		return err
	}
	for _, path := range paths {
		if err := w.Add(path); err != nil {
			return err
		}
	}
	return w.Run(ctx)
}

// emitResult prints the defects of r and either prints or writes back the
// fixed program. It returns the number of defects.
func emitResult(logger *zap.Logger, r fix.FileResult, write bool, out, errOut io.Writer) int {
	defects := r.Report.Defects()
	if len(defects) > 0 {
		source, err := formatter.ReadSourceCode(r.Path)
		if err != nil {
			logger.Error("Error reading source file", zap.String("file", r.Path), zap.Error(err))
		}
		fmt.Fprint(errOut, formatter.GenerateFormattedDefects(r.Path, defects, source))
	}

	d, err := virtext.EncodeProgram(r.Report.Program)
	if err != nil {
		logger.Error("Error encoding program", zap.String("file", r.Path), zap.Error(err))
		return len(defects)
	}
	if !write {
		fmt.Fprintf(out, "# %s\n%s", r.Path, d)
		return len(defects)
	}
	// unchanged files are not rewritten so that watch mode settles
	current, err := os.ReadFile(r.Path)
	if err == nil && string(current) == string(d) {
		return len(defects)
	}
	if err := os.WriteFile(r.Path, d, 0o644); err != nil {
		logger.Error("Error writing fixed program", zap.String("file", r.Path), zap.Error(err))
	}
	return len(defects)
}
