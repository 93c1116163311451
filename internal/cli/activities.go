package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ms0ur/timeflow/internal/model"
)

var activitiesCmd = &cobra.Command{
	Use:   "activities",
	Short: "List activities as a tree",
	Args:  cobra.NoArgs,
	RunE:  runActivities,
}

var activitiesAddParent string

var activitiesAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create an activity",
	Args:  cobra.ExactArgs(1),
	RunE:  runActivitiesAdd,
}

func init() {
	activitiesAddCmd.Flags().StringVar(&activitiesAddParent, "parent", "", "Parent activity name or id")
	activitiesCmd.AddCommand(activitiesAddCmd)
	rootCmd.AddCommand(activitiesCmd)
}

func runActivities(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	a.connect(cmd)

	activities := a.store.ReadActivities()
	if a.syncer.EffectiveOnline() {
		fetched, err := a.api.Activities(cmd.Context())
		if err == nil {
			activities = fetched
			_ = a.store.WriteActivities(fetched)
		}
	}
	if len(activities) == 0 {
		fmt.Println("No activities")
		return nil
	}

	printActivityTree(activities, nil, "")
	return nil
}

// printActivityTree prints children of parent (nil for roots),
// indenting one level per depth.
func printActivityTree(activities []model.Activity, parent *string, indent string) {
	var children []model.Activity
	for _, activity := range activities {
		if sameParent(activity.ParentID, parent) {
			children = append(children, activity)
		}
	}
	sort.Slice(children, func(i, j int) bool { return children[i].Name < children[j].Name })

	for _, child := range children {
		marker := ""
		if child.IsDefault {
			marker = " (default)"
		}
		fmt.Printf("%s%s%s\n", indent, child.Name, marker)
		id := child.ID
		printActivityTree(activities, &id, indent+"  ")
	}
}

func sameParent(got, want *string) bool {
	if got == nil || want == nil {
		return got == nil && want == nil
	}
	return *got == *want
}

func runActivitiesAdd(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	a.connect(cmd)

	if !a.syncer.EffectiveOnline() {
		return fmt.Errorf("creating activities needs a server connection")
	}

	var parentID *string
	if activitiesAddParent != "" {
		parent, err := a.findActivity(cmd.Context(), activitiesAddParent)
		if err != nil {
			return err
		}
		parentID = &parent.ID
	}

	activity, err := a.api.CreateActivity(cmd.Context(), args[0], parentID)
	if err != nil {
		return err
	}

	if fetched, err := a.api.Activities(cmd.Context()); err == nil {
		_ = a.store.WriteActivities(fetched)
	}

	fmt.Printf("Created %s\n", activity.Name)
	return nil
}
