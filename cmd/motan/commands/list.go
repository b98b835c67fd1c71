package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/arloliu/motan/dataset"
	"github.com/arloliu/motan/signal"
)

// NewListCommand creates the list subcommand.
func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available dataset kinds and analyzers",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Raw datasets:")
			for _, name := range sortedKeys(signal.Kinds) {
				fmt.Fprintf(out, "  %s\n", name)
			}
			fmt.Fprintln(out, "Analyzers:")
			for _, name := range sortedKeys(dataset.Analyzers) {
				fmt.Fprintf(out, "  %s\n", name)
			}
		},
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}
