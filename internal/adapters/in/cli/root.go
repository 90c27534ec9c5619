// Package cli implements the CLI adapter for ferry.
// This package provides Cobra commands that delegate to the app layer.
package cli

import (
	"context"
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bnema/ferry/internal/app"
	"github.com/bnema/ferry/internal/boundaries/in"
	"github.com/bnema/ferry/internal/domain"
	"github.com/bnema/ferry/pkg/version"
)

// localServices is what local commands need from the app kernel.
type localServices interface {
	Registry() in.RepositoryRegistry
	Assembler() in.PackageAssembler
	Seed(ctx context.Context, sub *domain.Submission, deposits []*domain.Deposit) error
	DispatchDeposit(ctx context.Context, depositID string) (*domain.Deposit, domain.Disposition, error)
	Close() error
}

// openLocal builds the in-process services. Replaced in tests.
var openLocal = func(ctx context.Context, configPath string) (localServices, error) {
	return app.NewKernel(ctx, configPath)
}

// runServer starts the long-running service. Replaced in tests.
var runServer = app.Run

// NewRootCmd creates the root command for the ferry CLI.
func NewRootCmd() *cobra.Command {
	var (
		configPath string
		envFile    string
	)

	rootCmd := &cobra.Command{
		Use:   "ferry",
		Short: "ferry - package assembly and deposit dispatch",
		Long: `ferry assembles submissions into deposit-ready packages and transmits
them to configured repositories over SWORD or FTP.

Entity-changed events arrive on the webhook and are processed by a pool of
workers; deposit statuses are written back to the entity store.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadEnvFile(envFile, cmd.Flags().Changed("env-file"))
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Dotenv file loaded before the configuration")

	rootCmd.AddCommand(newServeCmd(&configPath))
	rootCmd.AddCommand(newReposCmd(&configPath))
	rootCmd.AddCommand(newPackageCmd(&configPath))
	rootCmd.AddCommand(newDispatchCmd(&configPath))
	rootCmd.AddCommand(newSeedCmd(&configPath))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// loadEnvFile loads a dotenv file without overriding the environment. A
// missing default file is not an error.
func loadEnvFile(path string, explicit bool) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if err != nil && !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// newVersionCmd creates the version command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(version.Get().String())
		},
	}
}

// SetVersionInfo sets the version information for the CLI.
func SetVersionInfo(v, commit, date string) {
	version.Set(v, commit, date)
}
