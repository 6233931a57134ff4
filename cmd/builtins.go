package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/josephlewis42/jobsh/core/shell"
	"github.com/spf13/cobra"
)

var builtinsCmd = &cobra.Command{
	Use:   "builtins",
	Short: "Show the commands the shell runs itself.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, name := range shell.BuiltinNames() {
			fmt.Fprintf(w, "%s\t%s\n", name, shell.AllBuiltins[name].Short)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(builtinsCmd)
}
