package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newSeedCmd creates the seed command.
func newSeedCmd(configPath *string) *cobra.Command {
	var submissionFile string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert a submission and its deposits into the store",
		Long: `Insert a submission document and the deposits it lists into the entity
store. Each deposit must target a configured repository. Publish a
"deposit" or "submission" event to the webhook afterwards to dispatch them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readSubmissionDocument(submissionFile)
			if err != nil {
				return err
			}
			sub, err := doc.ToDomain()
			if err != nil {
				return err
			}
			deposits, err := doc.DepositsToDomain()
			if err != nil {
				return err
			}

			local, err := openLocal(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer local.Close()

			if err := local.Seed(cmd.Context(), sub, deposits); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if err := cliWriteLine(w, cliRenderSuccess(fmt.Sprintf("Submission %s stored with %d deposit(s)", sub.ID, len(deposits)))); err != nil {
				return err
			}
			for _, dep := range deposits {
				_ = cliWriteLine(w, cliRenderListItem(fmt.Sprintf("%s -> %s", dep.ID, dep.RepositoryKey)))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&submissionFile, "submission", "", "Submission JSON document (- for stdin)")
	_ = cmd.MarkFlagRequired("submission")

	return cmd
}
