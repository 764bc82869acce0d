package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/me/jobbind/pkg/model"
)

func newPassesCmd() *cobra.Command {
	var limit, offset int
	var jobID string

	cmd := &cobra.Command{
		Use:   "passes",
		Short: "List recorded binding passes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, err := jsonOutput()
			if err != nil {
				return err
			}
			if cfg.DBPath == "" {
				return fmt.Errorf("no database configured (use --db or db_path)")
			}
			st, err := openStore(cmd.Context(), cfg.DBPath)
			if err != nil {
				return err
			}
			defer st.Close()

			opts := model.ListOptions{Limit: limit, Offset: offset, JobID: jobID}
			opts.Clamp()
			passes, total, err := st.ListPasses(cmd.Context(), opts)
			if err != nil {
				return fmt.Errorf("list passes: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				if passes == nil {
					passes = []*model.Pass{}
				}
				return writeJSON(out, passes)
			}
			if len(passes) == 0 {
				fmt.Fprintln(out, "No passes found.")
				return nil
			}

			fmt.Fprintf(out, "%-42s  %-20s  %-16s  %s\n", "ID", "JOB", "DIGEST", "CREATED")
			fmt.Fprintf(out, "%-42s  %-20s  %-16s  %s\n", "----", "---", "------", "-------")
			for _, p := range passes {
				digest := p.Digest
				if len(digest) > 16 {
					digest = digest[:16]
				}
				fmt.Fprintf(out, "%-42s  %-20s  %-16s  %s\n", p.ID, p.JobID, digest, p.CreatedAt.Format(time.RFC3339))
			}
			if opts.Offset+len(passes) < total {
				fmt.Fprintf(out, "\n(%d of %d shown)\n", len(passes), total)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum passes to list")
	cmd.Flags().IntVar(&offset, "offset", 0, "Passes to skip")
	cmd.Flags().StringVar(&jobID, "job", "", "Only list passes of this job")
	return cmd
}
