package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "projmedic",
	Short: "Clone student repositories and normalize them into importable Eclipse projects",
	Long: `ProjMedic clones a classroom's worth of student GitHub repositories and
normalizes each one into a well-formed, importable Eclipse Java project.

For every repository it pins the last revision before the assignment deadline,
repairs or creates the .project and .classpath descriptors, reorganizes Java
sources into a package-mirroring src/ tree, and gives the project a unique
name derived from the repository. One broken repository never stops the batch.

Examples:
	# Show available commands and global flags
	projmedic --help

	# Clone and normalize an assignment
	projmedic clone lab --number 1 --org my-course --roster students.csv

	# Print build info
	projmedic version

Output:
	By default, commands write human-readable output to stdout.
	Structured outcome records can be written via --out (see clone --help).`,
}

func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}

	rootCmd.Version = fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func BuildInfo() (version, commit, date string) {
	return buildVersion, buildCommit, buildDate
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
