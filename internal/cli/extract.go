package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"msbuild-packages/internal/app"
)

type extractOptions struct {
	Project    string
	Properties []string
}

func newExtractCommand() *cobra.Command {
	opts := extractOptions{}
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Print the package references of a single project file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExtract(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Project, "project", "", "Project file path")
	cmd.Flags().StringArrayVar(&opts.Properties, "property", nil, "Extra MSBuild property as Name=Value (repeatable)")
	_ = viper.BindPFlag("project", cmd.Flags().Lookup("project"))
	return cmd
}

func runExtract(cmd *cobra.Command, opts extractOptions) error {
	props, err := propertiesFlag(cmd, opts.Properties)
	if err != nil {
		return err
	}
	service, err := newAppService()
	if err != nil {
		return err
	}
	result, err := service.Extract(cmd.Context(), app.ExtractRequest{
		ProjectPath: resolveString(cmd, opts.Project, "project", "project"),
		Properties:  props,
	})
	if err != nil {
		return err
	}
	for _, ref := range result.References {
		fmt.Printf("%s %s\n", ref.ID, ref.Version)
	}
	return nil
}
