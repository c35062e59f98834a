package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"

	"github.com/dumbnose/treedb/change"
	"github.com/dumbnose/treedb/ids"
	"github.com/dumbnose/treedb/logging"
	"github.com/dumbnose/treedb/maybe"
	"github.com/dumbnose/treedb/store"
	"github.com/dumbnose/treedb/transaction"
	"github.com/dumbnose/treedb/tree"
)

var (
	benchRuns    int
	benchInserts int
)

var benchCmd = &cobra.Command{
	Use:   "bench <baseline-name>",
	Short: "Run N independent Build+Insert transactions against a baseline concurrently and report throughput",
	Args:  cobra.ExactArgs(1),
	RunE:  runBench,
}

func init() {
	benchCmd.Flags().IntVar(&benchRuns, "runs", 16, "number of independent concurrent transactions")
	benchCmd.Flags().IntVar(&benchInserts, "inserts", 10, "Build+Insert pairs applied per transaction")
	rootCmd.AddCommand(benchCmd)
}

func runBench(_ *cobra.Command, args []string) error {
	baselineName := args[0]

	shutdownTracing := setupTracing()
	defer shutdownTracing()
	setupMetricsServer()

	log := logging.New(*newLogger())
	defer log.Sync() //nolint:errcheck

	s, err := store.Open(storeDir, log)
	if err != nil {
		return err
	}
	defer s.Close()

	baseline, err := s.Load(baselineName)
	if err != nil {
		return err
	}

	trait := ids.TraitLabel("children")
	runs := make([]transaction.Run, benchRuns)
	for i := range runs {
		changes := make([]change.Change, 0, benchInserts*2)
		for j := 0; j < benchInserts; j++ {
			leaf := ids.GenerateNodeID()
			dest := ids.GenerateDetachedSequenceID()
			changes = append(changes,
				change.Build{Source: []change.EditNode{change.InlineNode(leaf, "leaf", nil, maybe.Nothing[[]byte]())}, Destination: dest},
				change.Insert{Source: dest, Destination: tree.EndOf(baseline.Root(), trait)},
			)
		}
		runs[i] = transaction.Run{Changes: changes}
	}

	start := time.Now()
	results, err := transaction.ApplyConcurrently(context.Background(), baseline, runs)
	elapsed := time.Since(start)
	if err != nil {
		return err
	}

	outcomes := make([]string, len(results))
	for i, r := range results {
		outcomes[i] = r.Outcome.String()
	}
	slices.Sort(outcomes)

	printf("runs: %d, inserts/run: %d, elapsed: %s\n", benchRuns, benchInserts, elapsed)
	printf("outcomes: %v\n", outcomes)
	return nil
}
