package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push queued changes to the server",
	Args:  cobra.NoArgs,
	RunE:  runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	if a.syncer.ForcedOffline() {
		return fmt.Errorf("offline mode is on; run `timeflowctl offline off` first")
	}

	pending := a.queue.Len()
	if pending == 0 {
		fmt.Println("Nothing to sync")
		return nil
	}

	if !a.syncer.Probe(cmd.Context()) {
		return fmt.Errorf("server unreachable; %d %s still queued", pending, plural(pending, "change", "changes"))
	}

	if err := a.syncer.SyncToServer(cmd.Context()); err != nil {
		return err
	}

	if left := a.queue.Len(); left > 0 {
		fmt.Printf("Synced %d of %d changes; %d skipped or pending\n", pending-left, pending, left)
	} else {
		fmt.Printf("Synced %d %s\n", pending, plural(pending, "change", "changes"))
	}
	return nil
}
