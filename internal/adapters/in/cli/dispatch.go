package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/ferry/internal/adapters/in/cli/ui/styles"
	"github.com/bnema/ferry/internal/domain"
)

// newDispatchCmd creates the dispatch command.
func newDispatchCmd(configPath *string) *cobra.Command {
	var depositID string

	cmd := &cobra.Command{
		Use:   "dispatch",
		Short: "Run one synchronous dispatch attempt for a deposit",
		Long: `Load a deposit from the store, assemble its package and transmit it to
the target repository, then print the resulting status. The attempt follows
the same status rules as the worker pool.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			local, err := openLocal(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer local.Close()

			dep, disposition, err := local.DispatchDeposit(cmd.Context(), depositID)
			if dep == nil {
				if err == nil {
					err = fmt.Errorf("deposit %s: %w", depositID, domain.ErrEntityNotFound)
				}
				return err
			}

			w := cmd.OutOrStdout()
			if werr := cliWritef(w, "%s %s\n", cliRenderMeta("Deposit:", dep.ID), styles.RenderDepositStatus(string(dep.Status))); werr != nil {
				return werr
			}
			_ = cliWriteLine(w, cliRenderMeta("Repository:", dep.RepositoryKey))
			if dep.Receipt != "" {
				_ = cliWriteLine(w, cliRenderMeta("Receipt:", dep.Receipt))
			}
			if disposition == domain.DispositionDefer && !dep.Status.IsTerminal() {
				_ = cliWriteLine(w, cliRenderWarning("Deposit is not resolved yet; run dispatch again or let the server retry it"))
			}
			if err != nil {
				_ = cliWriteLine(cmd.ErrOrStderr(), cliRenderError(err.Error()))
			}

			if dep.Status == domain.DepositStatusFailed {
				return fmt.Errorf("deposit %s failed", dep.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&depositID, "deposit", "", "Deposit identifier")
	_ = cmd.MarkFlagRequired("deposit")

	return cmd
}
