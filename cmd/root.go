package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/questionnaire-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "questionnaire-cli",
	Short: "Compliance questionnaire reconciliation",
	Long:  "Matches each question in a partially answered questionnaire against a fully answered reference questionnaire, copies the reference answers, and scores question and answer agreement for human review.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
