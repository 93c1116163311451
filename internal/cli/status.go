package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session, connectivity, and queue depth",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	a.connect(cmd)
	defer a.tracker.Close()

	session, tracking := a.tracker.Current()
	switch {
	case session == nil:
		fmt.Println("Not tracking")
	case tracking:
		fmt.Printf("Tracking %s for %s (started %s)\n",
			session.Activity.Name,
			formatDuration(a.tracker.Elapsed()),
			humanize.Time(session.StartedAt))
	default:
		fmt.Printf("Paused on %s\n", session.Activity.Name)
	}

	fmt.Printf("Mode: %s\n", modeLabel(a))
	if n := a.queue.Len(); n > 0 {
		fmt.Printf("Queued: %d pending %s\n", n, plural(n, "change", "changes"))
	}
	return nil
}

func modeLabel(a *app) string {
	if a.syncer.ForcedOffline() {
		return "offline (forced)"
	}
	if a.syncer.EffectiveOnline() {
		return "online"
	}
	return "offline (unreachable)"
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
