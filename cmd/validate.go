package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/qnet-sim/qnet-sim/sim/modelfile"
)

// validateCmd checks a model file end to end without running it: YAML
// decoding, file-level rules, and engine-level configuration rules.
var validateCmd = &cobra.Command{
	Use:   "validate <model.yml>",
	Short: "Check a model file without running it",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		model, err := modelfile.Load(args[0])
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		cfg, err := model.BaseConfig()
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if err := cfg.Validate(); err != nil {
			logrus.Fatalf("%v", err)
		}
		fmt.Printf("%s: model is valid (%d queues, %d routes)\n", args[0], len(cfg.Nodes), len(cfg.Routes))
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
