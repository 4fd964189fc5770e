package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/resume-matcher/internal/services"
)

var (
	ingestUserID    string
	ingestUserEmail string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest FILE...",
	Short: "Parse local resume files and store them",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVar(&ingestUserID, "user-id", "", "owner recorded on every ingested resume")
	ingestCmd.Flags().StringVar(&ingestUserEmail, "user-email", "", "optional owner email")
	_ = ingestCmd.MarkFlagRequired("user-id")
}

func runIngest(cmd *cobra.Command, files []string) error {
	ctx := cmd.Context()

	deps, log, err := buildDeps(ctx)
	if err != nil {
		return err
	}
	defer deps.Close()
	defer log.Sync()

	failed := 0
	for _, path := range files {
		if !services.IsSupportedExtension(path) {
			log.Warn("skipping unsupported file", zap.String("file", path))
			failed++
			continue
		}

		resume, err := deps.Intake.Ingest(ctx, services.IntakeRequest{
			FilePath:  path,
			FileName:  filepath.Base(path),
			UserID:    ingestUserID,
			UserEmail: ingestUserEmail,
		})
		if err != nil {
			failed++
			continue
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", path, resume.Email, resume.ResumeURL)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	return nil
}
