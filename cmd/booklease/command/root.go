package command

// root.go defines the root command for the booklease CLI.
// set up the global flags here.

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var apiURL string // Global flag for API server URL

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "booklease",
	Short: "booklease - BookLease command line interface",
	Long: `booklease talks to the BookLease API and administers its database. Use it to:
- Browse the catalog and rent or extend e-books
- Check active rentals, history and spending
- Migrate and seed the database, or mint a token for a user

Use "booklease command --help" to see all available commands.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err) // Print error to standard error
		os.Exit(1)
	}
}

func init() {
	defaultAPI := os.Getenv("BOOKLEASE_API")
	if defaultAPI == "" {
		defaultAPI = "http://localhost:8080"
	}
	// Global persistent flags = available to all subcommands
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", defaultAPI, "API server URL")
}
