package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qudurat/qudurat/internal/rewards"
	"github.com/qudurat/qudurat/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats [user-id]",
	Short: "Show a user's statistics and reward progress",
	Long: `Show a user's statistics and reward progress.

Without a user id, prints the bank and user totals instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, cfg, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()
		ctx := cmd.Context()

		if len(args) == 0 {
			users, err := st.UserRepo().Count(ctx)
			if err != nil {
				return fmt.Errorf("count users: %w", err)
			}
			verbal, err := st.QuestionRepo().Count(ctx, store.QuestionTypeVerbal)
			if err != nil {
				return fmt.Errorf("count questions: %w", err)
			}
			quant, err := st.QuestionRepo().Count(ctx, store.QuestionTypeQuantitative)
			if err != nil {
				return fmt.Errorf("count questions: %w", err)
			}
			fmt.Printf("Users:                  %d\n", users)
			fmt.Printf("Verbal questions:       %d\n", verbal)
			fmt.Printf("Quantitative questions: %d\n", quant)
			return nil
		}

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid user id %q: %w", args[0], err)
		}
		u, err := st.UserRepo().Get(ctx, id)
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}
		if u == nil {
			return fmt.Errorf("user %d not found", id)
		}

		fmt.Printf("%s (@%s)\n", u.Name, u.Username)
		fmt.Println(strings.Repeat("─", 40))
		fmt.Println(rewards.Render(rewards.StatsFor(*u), cfg.Settings.Rewards))

		for _, kind := range []string{store.KindLevelDetermination, store.KindTest} {
			_, total, err := st.SessionRepo().ListByUser(ctx, id, kind, store.Page{Number: 1, Size: 1})
			if err != nil {
				return fmt.Errorf("list sessions: %w", err)
			}
			fmt.Printf("\n%s sessions: %d", kind, total)
		}
		fmt.Println()
		return nil
	},
}
