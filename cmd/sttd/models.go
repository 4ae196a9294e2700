package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sttd/internal/registry"
)

// newModelsCmd lists the catalogue and which models are already on disk.
func newModelsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List known models and their local status",
		RunE: func(cmd *cobra.Command, args []string) error {
			applyFileConfig(cmd, opts)
			local := map[string]bool{}
			if found, err := registry.ScanDir(opts.modelsDir); err == nil {
				for _, m := range found {
					local[m.Name] = true
				}
			}
			for _, name := range registry.Names() {
				m, _ := registry.Lookup(name)
				status := "not downloaded"
				if local[m.FileName] {
					status = "downloaded"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %-22s %s\n", name, m.FileName, status)
			}
			return nil
		},
	}
}
