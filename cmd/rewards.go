package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qudurat/qudurat/internal/config"
	"github.com/qudurat/qudurat/internal/rewards"
)

var rewardsCmd = &cobra.Command{
	Use:   "rewards",
	Short: "Manage reward targets",
}

var rewardsExportCmd = &cobra.Command{
	Use:   "export <file.xlsx>",
	Short: "Write the reward targets to an Excel workbook",
	Long: `Write the configured reward targets to an Excel workbook.

Edit the workbook and point QUDURAT_REWARDS_EXCEL at it to replace the
targets from the settings file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := rewards.WriteTargetsExcel(args[0], cfg.Settings.Rewards); err != nil {
			return err
		}
		fmt.Printf("Wrote %d targets to %s\n", len(cfg.Settings.Rewards), args[0])
		return nil
	},
}

var rewardsCheckCmd = &cobra.Command{
	Use:   "check <file.xlsx>",
	Short: "Validate a reward targets workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		targets, err := rewards.LoadTargetsExcel(args[0])
		if err != nil {
			return err
		}
		s := config.DefaultSettings()
		s.Rewards = targets
		if err := s.Validate(); err != nil {
			return err
		}
		for _, t := range targets {
			fmt.Printf("%-12s  %8.2f  %s\n", t.Metric, t.Value, t.Reward)
		}
		return nil
	},
}

func init() {
	rewardsCmd.AddCommand(rewardsExportCmd)
	rewardsCmd.AddCommand(rewardsCheckCmd)
}
