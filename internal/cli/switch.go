package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ms0ur/timeflow/internal/model"
)

var switchCmd = &cobra.Command{
	Use:   "switch <activity>",
	Short: "Start tracking an activity, ending the current one",
	Args:  cobra.ExactArgs(1),
	RunE:  runSwitch,
}

func init() {
	rootCmd.AddCommand(switchCmd)
}

func runSwitch(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	a.connect(cmd)
	defer a.tracker.Close()

	activity, err := a.findActivity(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if err := a.tracker.SwitchActivity(cmd.Context(), activity.Display()); err != nil {
		return err
	}

	if a.syncer.EffectiveOnline() {
		fmt.Printf("Now tracking %s\n", activity.Name)
	} else {
		fmt.Printf("Now tracking %s (offline, change queued)\n", activity.Name)
	}
	return nil
}

// findActivity resolves a name or id against the cached list first so
// switching works offline; online, a cache miss refreshes from the
// server.
func (a *app) findActivity(ctx context.Context, ref string) (*model.Activity, error) {
	activities := a.store.ReadActivities()
	if match := matchActivity(activities, ref); match != nil {
		return match, nil
	}

	if a.syncer.EffectiveOnline() {
		fetched, err := a.api.Activities(ctx)
		if err != nil {
			return nil, err
		}
		_ = a.store.WriteActivities(fetched)
		if match := matchActivity(fetched, ref); match != nil {
			return match, nil
		}
	}
	return nil, fmt.Errorf("no activity named %q", ref)
}

func matchActivity(activities []model.Activity, ref string) *model.Activity {
	for i := range activities {
		if activities[i].ID == ref || strings.EqualFold(activities[i].Name, ref) {
			return &activities[i]
		}
	}
	return nil
}
