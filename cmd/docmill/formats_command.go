package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"docmill/internal/docformat"
)

func newFormatsCommand() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:         "formats",
		Short:       "List supported input formats",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			type format struct {
				Extension string `json:"extension"`
				Kind      string `json:"kind"`
				Output    string `json:"output"`
			}
			formats := make([]format, 0, len(docformat.Extensions()))
			for _, ext := range docformat.Extensions() {
				formats = append(formats, format{
					Extension: ext,
					Kind:      docformat.KindForExtension(ext).String(),
					Output:    ".pdf",
				})
			}

			if jsonOut {
				return writeJSON(cmd, formats)
			}

			rows := make([][]string, 0, len(formats))
			for _, f := range formats {
				rows = append(rows, []string{f.Extension, f.Kind, f.Output})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Extension", "Kind", "Output"}, rows, nil))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the format list as JSON")
	return cmd
}
