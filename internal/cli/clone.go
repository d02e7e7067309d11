package cli

import (
	"context"
	"fmt"
	"os"

	"projmedic/internal/config"
	"projmedic/internal/engine"
	"projmedic/internal/flags"
	gh "projmedic/internal/github"

	"github.com/spf13/cobra"
)

var cfg = config.New()

const cloneHelpTemplate = `{{with (or .Long .Short)}}{{. | trimTrailingWhitespaces}}

{{end}}Usage:
  {{.UseLine}}

{{if .HasAvailableLocalFlags}}Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableInheritedFlags}}Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}Environment:
	ProjMedic authenticates to GitHub using an access token. Public repositories
	clone anonymously; private student repositories and org discovery need one.

	Sources (in order):
	1) GITHUB_TOKEN environment variable (a .env file in the working directory
	   is loaded first, so GITHUB_TOKEN can live there)
	2) GitHub CLI (gh) authentication via gh auth token (if gh is installed and
	   logged in)

	Flag defaults from the environment (a flag set on the command line wins):
	  PROJMEDIC_ROSTER      default for --roster
	  PROJMEDIC_ORG         default for --org
	  PROJMEDIC_TARGET_DIR  default for --target-dir

  Examples:
    # macOS/Linux
    export GITHUB_TOKEN="<your_token>"
    projmedic clone lab --number 1 --org my-course --roster students.csv

    # GitHub CLI auth
    gh auth login
    projmedic clone lab --number 1 --org my-course --roster students.csv

{{if .HasAvailableSubCommands}}Available Commands:
{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}

{{end}}{{if .HasAvailableSubCommands}}Use "{{.CommandPath}} [command] --help" for more information about a command.
{{end}}`

var cloneCmd = &cobra.Command{
	Use:   "clone <assignment-type>",
	Short: "Clone and normalize a batch of student repositories",
	Long: `Clone every student repository of an assignment and normalize each working
copy into a well-formed Eclipse Java project.

Repository names follow the classroom convention
<type>[-<number>][-<name>]-<username>. With --roster, the set of repositories
is derived from the roster's usernames; without one, the organization's
repositories matching that prefix are discovered via the GitHub API.

Per repository, in order:
  1. clone (or reuse) the working copy
  2. pin the last revision committed before the --deadline date
  3. validate or repair the .project descriptor
  4. validate or repair the .classpath descriptor
  5. move Java sources into a package-mirroring src/ tree
  6. set a unique project name derived from the repository

A failure in any stage marks that repository failed and the batch moves on.

Output:
	Console output is controlled by --console-format (default: text).
	Structured outcome records can be written via --out / --out-format as an
	aggregate JSON array or an NDJSON stream. --no-console suppresses the
	console sink for machine consumption.

Exit codes:
	0 = clean run, every repository already well-formed
	1 = at least one repository needed repairs or has recorded conflicts
	2 = at least one repository failed a pipeline stage
	3 = fatal error (the batch did not run)

Examples:
  # Roster-driven batch with a submission deadline
  projmedic clone lab --number 1 --org my-course --roster students.csv --deadline 2025-09-09

  # Discover repositories from the org instead of a roster
  projmedic clone project --name mastermind --org my-course --exclude '*-solution'

  # Machine-readable outcomes
  projmedic clone lab --number 1 --org my-course --roster students.csv --no-console --out outcomes.ndjson
`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 && cmd.Flags().NFlag() == 0 {
			_ = cmd.Help()
			return
		}
		if len(args) == 1 {
			cfg.Assignment.Type = args[0]
		}

		if err := config.LoadEnvDefaults(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(3)
		}
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(3)
		}

		ctx := context.Background()
		token, _, err := gh.ResolveAuthToken(ctx, "")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to resolve GitHub auth token: %v\n", err)
			os.Exit(3)
		}

		// The REST client is only needed for org discovery; roster-driven runs
		// clone straight over git-HTTPS.
		var client *gh.Client
		if cfg.Targeting.Roster == "" {
			client, err = gh.NewClient(ctx, token)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: failed to create GitHub client: %v\n", err)
				os.Exit(3)
			}
		}

		eng := engine.NewEngine(client, token)
		os.Exit(eng.Run(ctx, cfg))
	},
}

func init() {
	rootCmd.AddCommand(cloneCmd)
	cloneCmd.SetHelpTemplate(cloneHelpTemplate)

	// MAINTAINER NOTE: If you add/change/remove any clone-affecting flags here,
	// keep internal/config/config.go's field docs in sync.

	// Assignment
	cloneCmd.Flags().IntVar(&cfg.Assignment.Number, flags.FlagNumber, 0, "Assignment number, e.g. 1 for lab-1 (0 = no number segment)")
	cloneCmd.Flags().StringVar(&cfg.Assignment.Name, flags.FlagName, "", "Assignment name segment, e.g. mastermind (spaces become dashes)")
	cloneCmd.Flags().StringVar(&cfg.Assignment.Deadline, flags.FlagDeadline, "", "Submission deadline as YYYY-MM-DD; pins each repo to its last commit before local midnight of that day")
	cloneCmd.Flags().StringVar(&cfg.Assignment.Tests, flags.FlagTests, "", "Path to a TA test suite to record alongside the run")

	// Targeting
	cloneCmd.Flags().StringVar(&cfg.Targeting.Roster, flags.FlagRoster, "", "CSV roster of student,username pairs (default: discover repos from the org)")
	cloneCmd.Flags().StringVar(&cfg.Targeting.Org, flags.FlagOrg, "", "GitHub organization that owns the student repositories (required)")
	cloneCmd.Flags().StringVar(&cfg.Targeting.TargetDir, flags.FlagTargetDir, ".", "Directory to clone working copies into")
	cloneCmd.Flags().StringSliceVar(&cfg.Targeting.Exclude, flags.FlagExclude, nil, "Exclude discovered repos by name pattern (repeatable; comma-separated accepted; Go path.Match style)")
	cloneCmd.Flags().IntVar(&cfg.Targeting.MaxRepos, flags.FlagMaxRepos, 0, "Maximum number of repositories to process (0 = unlimited)")
	cloneCmd.Flags().BoolVar(&cfg.Targeting.DryRun, flags.FlagDryRun, false, "Resolve the repository set and print it without cloning")

	// Output
	cloneCmd.Flags().StringVar(&cfg.Output.ConsoleFormat, flags.FlagConsoleFormat, "text", "Console output format: text|json|ndjson (default: text)")
	cloneCmd.Flags().StringVar(&cfg.Output.Out, flags.FlagOut, "", "Write structured outcome records to this path")
	cloneCmd.Flags().StringVar(&cfg.Output.OutFormat, flags.FlagOutFormat, "", "Structured output format for --out: json|ndjson (default: inferred from file extension)")
	cloneCmd.Flags().BoolVar(&cfg.Output.NoConsole, flags.FlagNoConsole, false, "Suppress console output (use with --out)")

	// Runtime
	cloneCmd.Flags().IntVar(&cfg.Runtime.Concurrency, flags.FlagConcurrency, 1, "Concurrent repositories (default: 1, keeps outcome order stable)")
	cloneCmd.Flags().DurationVar(&cfg.Runtime.Timeout, flags.FlagTimeout, cfg.Runtime.Timeout, "Global timeout for the whole batch (default: 30m)")
}
