package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/qnet-sim/qnet-sim/sim"
	"github.com/qnet-sim/qnet-sim/sim/batch"
	"github.com/qnet-sim/qnet-sim/sim/modelfile"
)

var (
	outPath string // result destination, empty derives from the model path
	workers int    // concurrent replications for multi-seed models
)

// runCmd executes a model file: one engine for a seeded model, the batch
// runner when the model lists seeds.
var runCmd = &cobra.Command{
	Use:   "run <model.yml>",
	Short: "Run the simulation described by a model file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		path := args[0]

		model, err := modelfile.Load(path)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		cfg, err := model.BaseConfig()
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		if seeds := model.SeedList(); len(seeds) > 0 {
			runBatch(path, cfg, seeds)
			return
		}
		runSingle(path, cfg)
	},
}

func runSingle(modelPath string, cfg sim.Config) {
	engine, err := sim.New(cfg)
	if err != nil {
		logrus.Fatalf("%v", err)
	}
	if err := engine.Run(); err != nil {
		logrus.Fatalf("%v", err)
	}
	results := engine.Results()
	results.Print()

	out := outPath
	if out == "" {
		out = resultPath(modelPath, ".result.json")
	}
	if err := writeJSON(out, results); err != nil {
		logrus.Fatalf("writing results: %v", err)
	}
	fmt.Printf("\nResults saved to: %s\n", out)
}

func runBatch(modelPath string, base sim.Config, seeds []int64) {
	runner := &batch.Runner{Base: base, Seeds: seeds, Workers: workers}
	summary, err := runner.Run()
	if err != nil {
		logrus.Fatalf("%v", err)
	}

	keyed := make(map[string]*sim.Results, len(summary.Runs))
	for _, run := range summary.Runs {
		fmt.Printf("\n--- RESULTS FOR SEED: %d ---\n", run.Seed)
		run.Results.Print()
		keyed[fmt.Sprintf("seed_%d", run.Seed)] = run.Results
	}
	fmt.Println()
	summary.Print()

	out := outPath
	if out == "" {
		out = resultPath(modelPath, ".results.json")
	}
	if err := writeJSON(out, keyed); err != nil {
		logrus.Fatalf("writing results: %v", err)
	}
	fmt.Printf("\nAll seed results saved to: %s\n", out)
}

// resultPath swaps the model file's extension for the result suffix, so
// network.yml lands next to network.result.json.
func resultPath(modelPath, suffix string) string {
	return strings.TrimSuffix(modelPath, filepath.Ext(modelPath)) + suffix
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func init() {
	runCmd.Flags().StringVar(&outPath, "out", "", "Result JSON path (default: model path with .result(s).json)")
	runCmd.Flags().IntVar(&workers, "workers", 0, "Concurrent replications for a multi-seed model (0 = one per CPU)")
	rootCmd.AddCommand(runCmd)
}
