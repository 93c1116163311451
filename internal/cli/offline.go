package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var offlineCmd = &cobra.Command{
	Use:   "offline [on|off]",
	Short: "Force offline mode, or leave it",
	Long: `With no argument, reports whether offline mode is forced.

"offline on" stops all network traffic until you turn it back off;
changes keep queueing locally. "offline off" clears the flag and
flushes the queue if the server is reachable.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runOffline,
}

func init() {
	rootCmd.AddCommand(offlineCmd)
}

func runOffline(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	if len(args) == 0 {
		if a.syncer.ForcedOffline() {
			fmt.Println("Offline mode is on")
		} else {
			fmt.Println("Offline mode is off")
		}
		return nil
	}

	switch args[0] {
	case "on":
		if err := a.syncer.SetForcedOffline(true); err != nil {
			return err
		}
		fmt.Println("Offline mode on; changes will queue locally")
		return nil
	case "off":
		if err := a.syncer.TryGoOnline(cmd.Context()); err != nil {
			return err
		}
		if a.syncer.EffectiveOnline() {
			fmt.Println("Back online")
			if n := a.queue.Len(); n > 0 {
				fmt.Printf("%d %s still queued\n", n, plural(n, "change", "changes"))
			}
		} else {
			fmt.Println("Offline mode off, but the server is unreachable; changes keep queueing")
		}
		return nil
	default:
		return fmt.Errorf("expected \"on\" or \"off\", got %q", args[0])
	}
}
