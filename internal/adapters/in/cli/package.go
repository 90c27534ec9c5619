package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/bnema/ferry/internal/adapters/dto"
	"github.com/bnema/ferry/internal/domain"
)

// newPackageCmd creates the package command.
func newPackageCmd(configPath *string) *cobra.Command {
	var (
		submissionFile string
		repoKey        string
		outPath        string
	)

	cmd := &cobra.Command{
		Use:   "package",
		Short: "Assemble a submission locally for inspection",
		Long: `Assemble the package a repository would receive for a submission and
write it to a file. Nothing is transmitted and the store is not touched.`,
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

			local, err := openLocal(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer local.Close()

			repo, err := local.Registry().Get(repoKey)
			if err != nil {
				return err
			}

			pkg, err := local.Assembler().Assemble(cmd.Context(), sub, repo.Assembler)
			if err != nil {
				return err
			}
			defer pkg.Close()

			if outPath == "" {
				outPath = pkg.Name
			} else if info, err := os.Stat(outPath); err == nil && info.IsDir() {
				outPath = filepath.Join(outPath, pkg.Name)
			}

			body, err := pkg.Take()
			if err != nil {
				return err
			}
			written, err := writeFile(outPath, body)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if err := cliWriteLine(w, cliRenderSuccess(fmt.Sprintf("Package written to %s", outPath))); err != nil {
				return err
			}
			_ = cliWriteLine(w, cliRenderMeta("Media type:", pkg.MediaType))
			_ = cliWriteLine(w, cliRenderMeta("Size:", fmt.Sprintf("%d bytes", written)))
			if pkg.Spec != "" {
				_ = cliWriteLine(w, cliRenderMeta("Packaging:", pkg.Spec))
			}

			algs := make([]domain.ChecksumAlgorithm, 0, len(pkg.Digests))
			for alg := range pkg.Digests {
				algs = append(algs, alg)
			}
			sort.Slice(algs, func(i, j int) bool { return algs[i] < algs[j] })
			for _, alg := range algs {
				_ = cliWriteLine(w, cliRenderMeta(string(alg)+":", pkg.Digests[alg]))
			}
			for _, entry := range pkg.Manifest {
				_ = cliWriteLine(w, cliRenderListItem(fmt.Sprintf("%s (%d bytes)", entry.Path, entry.Size)))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&submissionFile, "submission", "", "Submission JSON document (- for stdin)")
	cmd.Flags().StringVar(&repoKey, "repo", "", "Repository key")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file or directory (default: package name)")
	_ = cmd.MarkFlagRequired("submission")
	_ = cmd.MarkFlagRequired("repo")

	return cmd
}

func readSubmissionDocument(path string) (dto.SubmissionDocument, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return dto.SubmissionDocument{}, fmt.Errorf("failed to open submission: %w", err)
		}
		defer f.Close()
		r = f
	}

	var doc dto.SubmissionDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return dto.SubmissionDocument{}, fmt.Errorf("failed to decode submission: %w", err)
	}
	return doc, nil
}

func writeFile(path string, r io.Reader) (int64, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", path, err)
	}

	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return n, nil
}
