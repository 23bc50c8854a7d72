package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fresco-dev/fresco/internal/version"
	"github.com/spf13/cobra"
)

var versionFormat string

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Display version information: semantic version, git commit, build
time, Go version, and target platform.

Examples:
  fresco version
  fresco version --format json`,
	RunE: runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().StringVarP(&versionFormat, "format", "f", "text", "Output format (text, json)")
}

func runVersion(cmd *cobra.Command, args []string) error {
	info := version.Get()

	switch versionFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	case "text":
		fmt.Printf("fresco %s\n", version.Short())
		fmt.Printf("  go:       %s\n", info.GoVersion)
		fmt.Printf("  platform: %s\n", info.Platform)
		if !info.BuildTime.IsZero() {
			fmt.Printf("  built:    %s\n", info.BuildTime.Format("2006-01-02 15:04:05 MST"))
		}
		return nil
	default:
		return fmt.Errorf("unsupported format: %s (supported: text, json)", versionFormat)
	}
}
