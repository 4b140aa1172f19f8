package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"msbuild-packages/internal/app"
)

type inspectOptions struct {
	Report string
}

func newInspectCommand() *cobra.Command {
	opts := inspectOptions{}
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Summarize a scan report by package",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInspect(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Report, "report", "out/packages.txt", "Report file")
	_ = viper.BindPFlag("report", cmd.Flags().Lookup("report"))
	return cmd
}

func runInspect(cmd *cobra.Command, opts inspectOptions) error {
	service, err := newAppService()
	if err != nil {
		return err
	}
	result, err := service.Inspect(app.InspectRequest{
		ReportPath: resolveString(cmd, opts.Report, "report", "report"),
	})
	if err != nil {
		return err
	}

	fmt.Printf("projects: %d\n", result.Projects)
	fmt.Printf("package references: %d\n", result.References)
	fmt.Println("packages:")
	for _, pkg := range result.Packages {
		marker := ""
		if pkg.Drifted() {
			marker = " (multiple versions)"
		}
		fmt.Printf("- %s %s: %d projects%s\n", pkg.ID, strings.Join(pkg.Versions, ", "), pkg.Projects, marker)
	}
	if len(result.Failures) > 0 {
		fmt.Printf("failed projects: %d\n", len(result.Failures))
		for _, failure := range result.Failures {
			fmt.Printf("- %s: %s\n", failure.Path, failure.Error)
		}
	}
	return nil
}
