package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/openst/mosaic/log"
)

const (
	flagLogLevel  = "log-level"
	flagLogFormat = "log-format"
	flagLogOutput = "log-output"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mosaic",
	Short: "This application runs a mosaic node that commits two chains onto each other",
}

func init() {
	cobra.EnableCommandSorting = false

	rootCmd.SilenceUsage = true

	rootCmd.PersistentFlags().String(flagLogLevel, "INFO", "log level: DEBUG, INFO, WARN or ERROR")
	rootCmd.PersistentFlags().String(flagLogFormat, "text", "log format: text or json")
	rootCmd.PersistentFlags().String(flagLogOutput, "stderr", "log output: stdout or stderr")
	if err := viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup(flagLogLevel)); err != nil {
		panic(err)
	}
	if err := viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup(flagLogFormat)); err != nil {
		panic(err)
	}
	if err := viper.BindPFlag("log_output", rootCmd.PersistentFlags().Lookup(flagLogOutput)); err != nil {
		panic(err)
	}
	viper.SetEnvPrefix("mosaic")
	viper.AutomaticEnv()

	rootCmd.AddCommand(
		startCmd(),
	)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	rootCmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		return log.InitLogger(
			viper.GetString("log_level"),
			viper.GetString("log_format"),
			viper.GetString("log_output"),
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}
