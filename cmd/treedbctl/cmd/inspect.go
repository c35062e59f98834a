package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dumbnose/treedb/logging"
	"github.com/dumbnose/treedb/metrics"
	"github.com/dumbnose/treedb/store"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <name>",
	Short: "Print summary information about a stored baseline snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(_ *cobra.Command, args []string) error {
	log := logging.New(*newLogger())
	defer log.Sync() //nolint:errcheck

	s, err := store.Open(storeDir, log)
	if err != nil {
		return err
	}
	defer s.Close()

	snapshot, err := s.Load(args[0])
	if err != nil {
		return err
	}

	metrics.SnapshotNodes.Set(float64(snapshot.NodeCount()))

	printf("root: %s\n", snapshot.Root())
	printf("nodes: %d\n", snapshot.NodeCount())
	return nil
}

var namesCmd = &cobra.Command{
	Use:   "list",
	Short: "List every stored baseline snapshot name",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(namesCmd)
}

func runList(_ *cobra.Command, _ []string) error {
	log := logging.New(*newLogger())
	defer log.Sync() //nolint:errcheck

	s, err := store.Open(storeDir, log)
	if err != nil {
		return err
	}
	defer s.Close()

	names, err := s.Names()
	if err != nil {
		return err
	}
	for _, n := range names {
		fmt.Println(n)
	}
	return nil
}
