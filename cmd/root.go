package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	httpcmd "github.com/clinicpulse/clinicpulse_backend/cmd/http"
	systemcmd "github.com/clinicpulse/clinicpulse_backend/cmd/system"
)

var (
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "clinicpulse",
	Short: "ClinicPulse clinic follow-up and patient engagement backend.",
	Long: `ClinicPulse is a multi-tenant backend for clinics: patient records,
prescriptions, scheduled push follow-ups with per-clinic credit balance,
review requests, reports, and a phone-OTP mobile patient surface.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global config flag, available for all commands.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")

	// Attach top-level command trees.
	rootCmd.AddCommand(systemcmd.NewSystemCommand())
	rootCmd.AddCommand(httpcmd.NewHTTPCommand())
}
