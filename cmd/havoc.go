package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/virfix/internal/fixes"
	"github.com/gnolang/virfix/internal/vir"
	"github.com/gnolang/virfix/internal/virtext"
)

var havocCmd = &cobra.Command{
	Use:   "havoc file [methods...]",
	Short: "List the locals assigned by every loop",
	Long: `Prints, for every loop of the given methods (all methods by default),
the locals its body may assign. These are the variables the fix command
havocs in front of the loop.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cfgFile)
		if err != nil {
			return err
		}
		prog, err := virtext.LoadProgram(args[0])
		if err != nil {
			return err
		}
		logger.Debug("Listing loop targets", zap.String("file", args[0]))
		return printLoopTargets(cmd.OutOrStdout(), prog, args[1:], cfg.HavocOptions())
	},
}

func printLoopTargets(out io.Writer, prog vir.Program, names []string, opts fixes.HavocOptions) error {
	methods := prog.Methods
	if len(names) > 0 {
		methods = methods[:0:0]
		for _, name := range names {
			m, ok := prog.Method(name)
			if !ok {
				return fmt.Errorf("method %q not found", name)
			}
			methods = append(methods, m)
		}
	}

	for _, m := range methods {
		if m.Body == nil {
			continue
		}
		w := &vir.StmtWalker{
			While: func(w *vir.StmtWalker, s vir.WhileStmt) bool {
				var targets []string
				for _, v := range opts.AssignedLocals(s.Body) {
					targets = append(targets, v.Name)
				}
				fmt.Fprintf(out, "%s %s: %s\n", m.Name, s.Position, strings.Join(targets, ", "))
				return true
			},
		}
		w.Walk(*m.Body)
	}
	return nil
}
