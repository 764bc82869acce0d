package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/jobbind/internal/binding"
	"github.com/me/jobbind/internal/jobdoc"
	"github.com/me/jobbind/internal/store"
)

func newBindCmd() *cobra.Command {
	var workDir string
	var mapInputs bool

	cmd := &cobra.Command{
		Use:   "bind <job.yml>",
		Short: "Stage a job's requirements and print its argv",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, err := jsonOutput()
			if err != nil {
				return err
			}
			doc, err := jobdoc.ParseFile(args[0])
			if err != nil {
				return err
			}
			if workDir != "" {
				doc.WorkDir = workDir
			}

			st, err := openStore(cmd.Context(), cfg.DBPath)
			if err != nil {
				return err
			}
			var passStore store.Store
			if st != nil {
				defer st.Close()
				passStore = st
			}

			svc := binding.New(passStore, cfg.Mapper(), logger,
				binding.WithMapInputs(cfg.MapInputs || mapInputs),
				binding.WithWorkRoot(cfg.WorkRoot),
			)
			pass, err := svc.Bind(cmd.Context(), doc)
			if err != nil {
				return fmt.Errorf("bind %s: %w", doc.Job.ID, err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, pass)
			}
			fmt.Fprintf(out, "pass:    %s\n", pass.ID)
			fmt.Fprintf(out, "job:     %s\n", pass.JobID)
			fmt.Fprintf(out, "workdir: %s\n", pass.WorkDir)
			fmt.Fprintf(out, "digest:  %s\n", pass.Digest)
			if pass.ShortCircuit != "" {
				fmt.Fprintf(out, "staging stopped at literal %s\n", pass.ShortCircuit)
			}
			for _, name := range pass.Skipped {
				fmt.Fprintf(out, "skipped: %s (source missing)\n", name)
			}
			fmt.Fprintf(out, "argv:    %s\n", shellJoin(pass.Argv))
			return nil
		},
	}
	cmd.Flags().StringVar(&workDir, "workdir", "", "Working directory (overrides the document)")
	cmd.Flags().BoolVar(&mapInputs, "map-inputs", false, "Translate staged input paths through the configured mappings")
	return cmd
}
