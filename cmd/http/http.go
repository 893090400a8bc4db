package http

import "github.com/spf13/cobra"

func NewHTTPCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "http",
		Short: "Run and manage the API server",
	}

	cmd.AddCommand(NewStartCommand())

	return cmd
}
