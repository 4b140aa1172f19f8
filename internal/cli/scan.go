package cli

import (
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"msbuild-packages/internal/app"
	"msbuild-packages/internal/shared"
	"msbuild-packages/internal/types"
)

type scanOptions struct {
	Workspace  []string
	OutputDir  string
	Format     string
	Workers    int
	FailFast   bool
	Properties []string
	SBOM       bool
	SBOMName   string
	SBOMTime   string
}

func newScanCommand() *cobra.Command {
	opts := scanOptions{}
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan workspaces for MSBuild projects and report their package references",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScan(cmd, opts)
		},
	}
	cmd.Flags().StringSliceVar(&opts.Workspace, "workspace", nil, "Workspace root(s) or project file(s)")
	cmd.Flags().StringVar(&opts.OutputDir, "output", "out", "Output directory")
	cmd.Flags().StringVar(&opts.Format, "format", string(types.ReportFormatText), "Report format (text, json, yaml, toml)")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "Projects scanned in parallel (0 = number of CPUs)")
	cmd.Flags().BoolVar(&opts.FailFast, "fail-fast", false, "Stop at the first project that cannot be parsed")
	cmd.Flags().StringArrayVar(&opts.Properties, "property", nil, "Extra MSBuild property as Name=Value (repeatable)")
	cmd.Flags().BoolVar(&opts.SBOM, "sbom", false, "Also write an SPDX SBOM into the output directory")
	cmd.Flags().StringVar(&opts.SBOMName, "sbom-name", "packages", "SBOM document name")
	cmd.Flags().StringVar(&opts.SBOMTime, "sbom-created", "", "SBOM creation time (RFC3339, default now)")

	_ = viper.BindPFlag("workspace", cmd.Flags().Lookup("workspace"))
	_ = viper.BindPFlag("output", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("format", cmd.Flags().Lookup("format"))
	_ = viper.BindPFlag("workers", cmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("fail_fast", cmd.Flags().Lookup("fail-fast"))
	_ = viper.BindPFlag("property", cmd.Flags().Lookup("property"))
	_ = viper.BindPFlag("sbom", cmd.Flags().Lookup("sbom"))
	_ = viper.BindPFlag("sbom_name", cmd.Flags().Lookup("sbom-name"))
	_ = viper.BindPFlag("sbom_created", cmd.Flags().Lookup("sbom-created"))
	return cmd
}

func runScan(cmd *cobra.Command, opts scanOptions) error {
	props, err := propertiesFlag(cmd, opts.Properties)
	if err != nil {
		return err
	}
	service, err := newAppService()
	if err != nil {
		return err
	}
	result, err := service.Scan(cmd.Context(), app.ScanRequest{
		Workspace:     resolveStrings(cmd, opts.Workspace, "workspace", "workspace"),
		OutputDir:     resolveString(cmd, opts.OutputDir, "output", "output"),
		Format:        types.ReportFormat(resolveString(cmd, opts.Format, "format", "format")),
		Workers:       resolveInt(cmd, opts.Workers, "workers", "workers"),
		FailFast:      resolveBool(cmd, opts.FailFast, "fail_fast", "fail-fast"),
		Properties:    props,
		SBOM:          resolveBool(cmd, opts.SBOM, "sbom", "sbom"),
		SBOMName:      resolveString(cmd, opts.SBOMName, "sbom_name", "sbom-name"),
		SBOMCreatedAt: resolveString(cmd, opts.SBOMTime, "sbom_created", "sbom-created"),
	})
	if err != nil {
		return err
	}
	fmt.Printf("projects: %d (failed: %d)\n", result.Projects, result.Failed)
	fmt.Printf("package references: %d\n", result.References)
	if result.ReportPath != "" {
		fmt.Printf("wrote report: %s\n", result.ReportPath)
	}
	if result.SBOMPath != "" {
		fmt.Printf("wrote sbom: %s\n", result.SBOMPath)
	}
	return nil
}

func propertiesFlag(cmd *cobra.Command, values []string) (types.PropertySet, error) {
	props, err := shared.ParseProperties(resolveStrings(cmd, values, "property", "property"))
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid --property value").
			WithCause(err)
	}
	return props, nil
}
