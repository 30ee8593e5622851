package main

import (
	"fmt"
	"os"

	"github.com/01moynul/farinez-golang/internal/config"
	"github.com/01moynul/farinez-golang/internal/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	envFile string

	cfg *config.Config
	log *logrus.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "farinez-api",
	Short: "Farinez storefront and admin panel API",
	Long: `farinez-api serves the Farinez gluten-free storefront: catalog, session
cart, checkout with Mercado Pago, and the admin panel endpoints.

Run without arguments to start the HTTP server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 0. --- Load Environment Variables (.env) ---
		loaded := config.LoadDotEnv(envFile)

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		log = logging.New(cfg.LogLevel, cfg.LogFormat)
		if !loaded {
			log.Warn("Could not find or load .env file. Relying on system environment variables.")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file to load before reading the environment")
	rootCmd.AddCommand(serveCmd, migrateCmd, userCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
