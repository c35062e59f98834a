package cmd

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dumbnose/treedb/change"
	"github.com/dumbnose/treedb/change/wire"
	"github.com/dumbnose/treedb/logging"
	"github.com/dumbnose/treedb/store"
	"github.com/dumbnose/treedb/transaction"
)

var applyOutputName string

var applyCmd = &cobra.Command{
	Use:   "apply <baseline-name> <script-file>",
	Short: "Apply a length-prefixed script of wire-encoded changes to a baseline",
	Args:  cobra.ExactArgs(2),
	RunE:  runApply,
}

func init() {
	applyCmd.Flags().StringVar(&applyOutputName, "save-as", "", "name to save the resulting view under (defaults to overwriting the baseline)")
	rootCmd.AddCommand(applyCmd)
}

func runApply(_ *cobra.Command, args []string) error {
	baselineName, scriptPath := args[0], args[1]

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

	f, err := os.Open(scriptPath)
	if err != nil {
		return err
	}
	defer f.Close()

	changes, err := readScript(f)
	if err != nil {
		return fmt.Errorf("decode script: %w", err)
	}

	txn := transaction.New(baseline).WithLogger(log)
	ctx := context.Background()
	for i, c := range changes {
		if outcome := txn.Apply(ctx, c); outcome != transaction.Applied {
			printf("change %d: %s\n", i, outcome)
			break
		}
	}

	outcome, view := txn.Close(ctx)
	printf("outcome: %s\n", outcome)
	if outcome != transaction.Applied {
		return nil
	}

	destName := applyOutputName
	if destName == "" {
		destName = baselineName
	}
	return s.Save(destName, view)
}

// readScript decodes a sequence of uint32-length-prefixed wire.EncodeChange
// records, the on-disk script format treedbctl consumes.
func readScript(r io.Reader) ([]change.Change, error) {
	var out []change.Change
	for {
		var n uint32
		if err := binary.Read(r, binary.BigEndian, &n); err != nil {
			if err == io.EOF {
				return out, nil
			}
			return nil, err
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		c, err := wire.DecodeChange(buf)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
}
