package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnema/ferry/internal/adapters/in/cli/ui/components"
)

// newReposCmd creates the repos command group.
func newReposCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repos",
		Short: "Inspect configured repositories",
	}
	cmd.AddCommand(newReposListCmd(configPath))
	return cmd
}

func newReposListCmd(configPath *string) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List repository keys and their bindings",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			local, err := openLocal(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer local.Close()

			registry := local.Registry()
			keys := registry.Keys()
			out := cmd.OutOrStdout()
			if len(keys) == 0 {
				return cliWriteLine(out, cliRenderMuted("No repositories configured."))
			}

			rows := make([][]string, 0, len(keys))
			for _, key := range keys {
				repo, err := registry.Get(key)
				if err != nil {
					return err
				}
				opts := repo.Assembler.Options
				checksums := make([]string, len(opts.Checksums))
				for i, alg := range opts.Checksums {
					checksums[i] = string(alg)
				}
				rows = append(rows, []string{
					repo.Key,
					string(repo.Transport.Protocol),
					repo.Transport.Endpoint,
					fmt.Sprintf("%s/%s", opts.Archive, opts.Compression),
					strings.Join(checksums, ","),
				})
			}

			tbl := components.NewTable([]components.Column{
				{Title: "KEY"},
				{Title: "PROTOCOL"},
				{Title: "ENDPOINT", Width: 48},
				{Title: "PACKAGE"},
				{Title: "CHECKSUMS"},
			}, rows)
			if plain {
				tbl = tbl.Plain()
			}

			if err := cliWriteLine(out, cliRenderTitle("Repositories")); err != nil {
				return err
			}
			return cliWriteLine(out, tbl.Render())
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "Disable colors")
	return cmd
}
