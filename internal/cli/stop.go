package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop tracking",
	Args:  cobra.NoArgs,
	RunE:  runStop,
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume tracking on the default activity",
	Args:  cobra.NoArgs,
	RunE:  runResume,
}

func init() {
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(resumeCmd)
}

func runStop(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	a.connect(cmd)
	defer a.tracker.Close()

	session, _ := a.tracker.Current()
	if session == nil {
		fmt.Println("Nothing to stop")
		return nil
	}
	name := session.Activity.Name

	if err := a.tracker.StopTracking(cmd.Context()); err != nil {
		return err
	}
	fmt.Printf("Stopped %s\n", name)
	return nil
}

func runResume(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	a.connect(cmd)
	defer a.tracker.Close()

	if err := a.tracker.ResumeTracking(cmd.Context()); err != nil {
		return err
	}
	session, _ := a.tracker.Current()
	if session != nil {
		fmt.Printf("Resumed on %s\n", session.Activity.Name)
	}
	return nil
}
