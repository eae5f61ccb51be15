package main

import (
	"fmt"

	"hostelverse-workers/internal/common/config"
	"hostelverse-workers/pkg/registry"

	"github.com/spf13/cobra"
)

func registryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect the activity registry",
	}

	var path string
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Check that every activity declares a task type and a compilable input schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(path)
			if err != nil {
				return err
			}
			if err := reg.Validate(); err != nil {
				return fmt.Errorf("%s is invalid:\n%w", path, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s is valid (version %s, %d activities)\n", path, reg.Version, len(reg.Activities))
			for _, a := range reg.Activities {
				fmt.Fprintf(cmd.OutOrStdout(), "  - %s (%s)\n", a.TaskType, a.Version)
			}
			return nil
		},
	}
	validateCmd.Flags().StringVar(&path, "path", config.DefaultRegistryPath, "Path to registry file")

	cmd.AddCommand(validateCmd)
	return cmd
}
