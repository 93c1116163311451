package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ms0ur/timeflow/internal/client"
)

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "timeflowctl",
	Short: "Offline-first time tracking client",
	Long: `timeflowctl - track what you are doing right now

Switches between activities, keeps working while offline, and syncs
queued changes back to the timeflow server when you go online again.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStatus(cmd, args)
	},
}

// app bundles the client context every command needs: config, durable
// state, queue, sync driver, and tracker.
type app struct {
	cfg     *client.Config
	store   *client.Store
	queue   *client.Queue
	api     *client.API
	syncer  *client.Syncer
	tracker *client.Tracker
}

func newApp() (*app, error) {
	cfg, err := client.LoadConfig()
	if err != nil {
		return nil, err
	}

	store, err := client.NewStore(cfg.StateDir)
	if err != nil {
		return nil, err
	}

	api := client.NewAPI(cfg.ServerURL, cfg.Token)
	queue := client.NewQueue(store)
	syncer := client.NewSyncer(api, queue, store)
	tracker := client.NewTracker(api, store, queue, syncer)

	return &app{
		cfg:     cfg,
		store:   store,
		queue:   queue,
		api:     api,
		syncer:  syncer,
		tracker: tracker,
	}, nil
}

// connect probes reachability (unless forced offline) and restores the
// tracker state.
func (a *app) connect(cmd *cobra.Command) {
	if !a.syncer.ForcedOffline() {
		a.syncer.Probe(cmd.Context())
	}
	a.tracker.Init(cmd.Context())
}
