package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qudurat/qudurat/internal/llm"
	"github.com/qudurat/qudurat/internal/tutor"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the AI study assistant in the terminal",
	Long: `Talk to the AI study assistant in the terminal.

The conversation is stored under --user, so it continues where the bot
chat of the same user left off. Type /reset to forget it and /exit or an
empty line to leave.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().Int64("user", localUserID, "User id the conversation belongs to")
}

func runChat(cmd *cobra.Command, args []string) error {
	userID, _ := cmd.Flags().GetInt64("user")

	st, cfg, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()
	logger := newLogger(cfg, nil)

	ctx := cmd.Context()
	if err := cfg.LLM.Validate(); err != nil {
		return fmt.Errorf("LLM provider: %w", err)
	}
	provider, err := llm.NewProvider(ctx, cfg.LLM, st.EventRepo(), logger)
	if err != nil {
		return fmt.Errorf("LLM provider: %w", err)
	}
	assistant := tutor.NewAssistant(provider, st.ChatRepo(), tutor.DefaultConfig(), logger)

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Printf("Assistant (%s). Empty line or /exit to leave.\n\n", provider.ModelID())
	for {
		fmt.Print("أنت: ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "", "/exit":
			return nil
		case "/reset":
			if err := assistant.Reset(ctx, userID); err != nil {
				return err
			}
			fmt.Println("(conversation cleared)")
			fmt.Println()
			continue
		}

		reply, err := assistant.Reply(ctx, userID, line)
		if err != nil {
			fmt.Printf("\033[31m✗ %v\033[0m\n\n", err)
			continue
		}
		fmt.Printf("المساعد: %s\n\n", reply)
	}
}
