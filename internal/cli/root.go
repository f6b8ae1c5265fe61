package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	port          string
	configPath    string
	questionsPath string
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envPort := os.Getenv("PORT")
	if envPort == "" {
		envPort = "8080"
	}
	envConfig := os.Getenv("CONFIG_PATH")
	envQuestions := os.Getenv("QUESTIONS_FILE")
	if envQuestions == "" {
		envQuestions = "questions.yaml"
	}

	cmd := &cobra.Command{
		Use:   "ocp-quiz",
		Short: "Facilitator-driven live quiz server",
	}

	cmd.PersistentFlags().StringVar(&port, "port", envPort, "port to listen on")
	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to YAML config (optional)")
	cmd.PersistentFlags().StringVar(&questionsPath, "questions", envQuestions, "path to the YAML question bank")
	cmd.AddCommand(NewStartCmd(&configPath, &port, &questionsPath))
	cmd.AddCommand(NewMigrateCmd(&configPath))
	return cmd
}
