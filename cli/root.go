package cli

import "github.com/spf13/cobra"

var (
	version = "dev"
	commit  = "none"
)

type globalFlags struct {
	configPath string
	store      string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	cmd := &cobra.Command{
		Use:           "ecofinds",
		Short:         "EcoFinds marketplace API",
		Long:          "EcoFinds serves the second-hand marketplace REST API: listings, carts and orders.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Path to a YAML config file (default $ECOFINDS_CONFIG)")
	cmd.PersistentFlags().StringVar(&flags.store, "store", "", "Store driver: mongo or memory (default $STORE_DRIVER)")

	cmd.AddCommand(newServeCmd(flags))
	cmd.AddCommand(newSeedCmd(flags))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

func Execute() error {
	return newRootCmd().Execute()
}
