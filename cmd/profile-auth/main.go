// Command profile-auth serves the profile API behind bearer token
// authentication.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "profile-auth",
	Short: "Profile API with JWKS-backed bearer token authentication",

	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML, JSON or TOML config file")
	rootCmd.PersistentFlags().String("env-prefix", "PROFILE", "Prefix of the environment variables read as configuration")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
