package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/qnet-sim/qnet-sim/sim/analytic"
)

var (
	arrivalRate float64 // lambda
	serviceRate float64 // mu, per server
	servers     int
	capacity    int
)

// analyzeCmd prints the closed-form M/M/c/K solution for one station,
// for checking simulated occupancy distributions against theory.
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Print closed-form M/M/c/K results for one station",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		model, err := analytic.NewMMCK(arrivalRate, serviceRate, servers, capacity)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		model.Print()
	},
}

func init() {
	analyzeCmd.Flags().Float64Var(&arrivalRate, "arrival-rate", 1.0, "Arrival rate lambda")
	analyzeCmd.Flags().Float64Var(&serviceRate, "service-rate", 1.0, "Per-server service rate mu")
	analyzeCmd.Flags().IntVar(&servers, "servers", 1, "Parallel servers c")
	analyzeCmd.Flags().IntVar(&capacity, "capacity", 1, "System capacity K, waiting and in service")
	rootCmd.AddCommand(analyzeCmd)
}
