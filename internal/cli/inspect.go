package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/jobbind/internal/binding"
	"github.com/me/jobbind/internal/cmdline"
	"github.com/me/jobbind/internal/jobdoc"
	"github.com/me/jobbind/internal/transform"
	"github.com/me/jobbind/pkg/value"
)

func newArgvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "argv <job.yml>",
		Short: "Flatten a job's command line without staging",
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
			argv := cmdline.Build(doc.BaseCommand, doc.CommandLine...)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"argv":   argv,
					"digest": cmdline.Digest(argv),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), shellJoin(argv))
			return nil
		},
	}
}

func newInferCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "infer <job.yml>",
		Short: "Print the inferred type of each job input",
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
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, binding.InputTypes(doc.Job.Inputs))
			}
			for _, f := range doc.Job.Inputs.Fields {
				fmt.Fprintf(out, "%s\t%s\n", f.Name, value.Infer(f.Value))
			}
			return nil
		},
	}
}

type fileEntry struct {
	Side     string `json:"side"`
	Class    string `json:"class"`
	Path     string `json:"path,omitempty"`
	Location string `json:"location,omitempty"`
}

func newFilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "files <job.yml>",
		Short: "List the files referenced by a job's inputs and outputs",
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

			var entries []fileEntry
			add := func(side string, files []value.FileLike) {
				for _, f := range files {
					class := "File"
					if f.IsDirectory() {
						class = "Directory"
					}
					entries = append(entries, fileEntry{side, class, f.Base().Path, f.Base().Location})
				}
			}
			add("input", transform.InputFiles(doc.Job))
			add("output", transform.OutputFiles(doc.Job))

			out := cmd.OutOrStdout()
			if asJSON {
				if entries == nil {
					entries = []fileEntry{}
				}
				return writeJSON(out, entries)
			}
			for _, e := range entries {
				ref := e.Path
				if ref == "" {
					ref = e.Location
				}
				fmt.Fprintf(out, "%s\t%s\t%s\n", e.Side, e.Class, ref)
			}
			return nil
		},
	}
}
