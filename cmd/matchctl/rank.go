package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"alfredoptarigan/resume-matcher/internal/models"
	"alfredoptarigan/resume-matcher/internal/services"
)

var rankJobFile string

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank stored resumes against a job description and print the shortlist",
	Long: `Rank reads a JSON job file with the same fields as POST /company and prints
the full shortlist as JSON. Nothing is persisted and no email is sent.`,
	Args: cobra.NoArgs,
	RunE: runRank,
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().StringVar(&rankJobFile, "job-file", "", "path to a JSON job description")
	_ = rankCmd.MarkFlagRequired("job-file")
}

func readJobFile(path string) (models.CompanyRequest, error) {
	var req models.CompanyRequest

	raw, err := os.ReadFile(path)
	if err != nil {
		return req, fmt.Errorf("reading job file: %w", err)
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return req, fmt.Errorf("decoding job file: %w", err)
	}
	if strings.TrimSpace(req.JobDescription) == "" {
		return req, errors.New("job file must contain job_description")
	}
	return req, nil
}

func runRank(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	req, err := readJobFile(rankJobFile)
	if err != nil {
		return err
	}

	deps, log, err := buildDeps(ctx)
	if err != nil {
		return err
	}
	defer deps.Close()
	defer log.Sync()

	job := services.NewJobQuery(req, time.Now())
	shortlist, err := deps.Ranking.Rank(ctx, job, deps.Resumes.StreamAll(ctx))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(models.CompanyResponse{
		Message:      fmt.Sprintf("%d candidates at or above %d", len(shortlist), services.MatchThreshold),
		TotalMatches: len(shortlist),
		TopMatches:   shortlist,
	})
}
