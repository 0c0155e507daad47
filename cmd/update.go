package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/qudurat/qudurat/internal/selfupdate"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Install a newer qudurat release",
	Long: `Download a release, verify its checksum and install it over this
binary. The replaced binary is kept next to it as qudurat.previous so
--rollback can restore it. A running bot keeps the old code until it is
restarted.`,
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().String("to", "", "Install this release tag instead of the latest one")
	updateCmd.Flags().Bool("rollback", false, "Restore the binary replaced by the last update")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	checker := selfupdate.NewChecker(selfupdate.WithTimeout(2 * time.Minute))

	if rollback, _ := cmd.Flags().GetBool("rollback"); rollback {
		path, err := checker.Rollback()
		if errors.Is(err, selfupdate.ErrNoPrevious) {
			fmt.Fprintln(out, "Nothing to roll back: no previous binary was kept.")
			return nil
		}
		if err != nil {
			return permissionHint(err)
		}
		fmt.Fprintf(out, "Restored the previous binary at %s. Restart the bot to use it.\n", path)
		return nil
	}

	target, _ := cmd.Flags().GetString("to")
	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	res, err := checker.Update(ctx, &selfupdate.UpdateInput{
		CurrentVersion: version,
		TargetVersion:  target,
	}, func(_ selfupdate.Stage, msg string) {
		fmt.Fprintln(out, msg)
	})
	switch {
	case errors.Is(err, selfupdate.ErrDevBuild):
		fmt.Fprintln(out, "This is a development build; install a release build first.")
		return nil
	case errors.Is(err, selfupdate.ErrAlreadyLatest):
		fmt.Fprintf(out, "Already running %s.\n", version)
		return nil
	case err != nil:
		return permissionHint(err)
	}

	fmt.Fprintf(out, "Updated %s to %s. Restart the bot to serve the new release.\n", res.From, res.To)
	return nil
}

func permissionHint(err error) error {
	if errors.Is(err, os.ErrPermission) {
		return fmt.Errorf("%w\n\nThe binary is not writable by this user; try: sudo qudurat update", err)
	}
	return err
}
