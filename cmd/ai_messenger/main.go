package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"ai_messenger/pkg/config"
	"ai_messenger/pkg/controller"
	"ai_messenger/pkg/conversation"
	"ai_messenger/pkg/ui"
	"ai_messenger/pkg/version"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := globalFlags{envFile: config.DefaultEnvFile}

	root := &cobra.Command{
		Use:           "ai_messenger",
		Short:         "Terminal messenger with contact and AI conversations",
		Version:       version.Summary(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), flags)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default ~/.ai_messenger/config.json)")
	pf.StringVar(&flags.envFile, "env-file", config.DefaultEnvFile, "dotenv file merged into the environment")
	pf.StringVar(&flags.store, "store", "", "storage backend: file, sqlite or memory")
	pf.StringVar(&flags.storePath, "store-path", "", "storage directory (file) or database (sqlite)")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")

	root.AddCommand(
		newSendCmd(&flags),
		newListCmd(&flags),
		newVersionCmd(),
	)
	return root
}

func runTUI(ctx context.Context, flags globalFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx, flags)
	if err != nil {
		return err
	}
	defer a.Close()

	model := ui.NewModel(a.ctrl, ui.Options{
		Provider: a.cfg.LLMProvider,
		Model:    a.cfg.Active().Model,
		Logger:   a.logger,
	})
	if _, err := tea.NewProgram(model).Run(); err != nil {
		return fmt.Errorf("error running UI: %w", err)
	}
	a.logger.Info("app_exited")
	return nil
}

func newSendCmd(flags *globalFlags) *cobra.Command {
	var chatID string

	cmd := &cobra.Command{
		Use:   "send --chat ID MESSAGE",
		Short: "Send a message to a conversation and print what was appended",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), *flags)
			if err != nil {
				return err
			}
			defer a.Close()

			if _, ok := a.ctrl.All().Select(chatID); !ok {
				return fmt.Errorf("unknown conversation %q", chatID)
			}
			a.ctrl.SelectConversation(chatID)
			a.ctrl.SetCompose(strings.Join(args, " "))

			appended, err := a.ctrl.Send(cmd.Context())
			printMessages(cmd.OutOrStdout(), appended)
			if errors.Is(err, controller.ErrEmptyMessage) {
				return err
			}
			if err != nil {
				a.logger.Warn("send_command_incomplete", "conversation_id", chatID, "error", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&chatID, "chat", "", "conversation id")
	_ = cmd.MarkFlagRequired("chat")
	return cmd
}

func newListCmd(flags *globalFlags) *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List conversations, optionally filtered by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), *flags)
			if err != nil {
				return err
			}
			defer a.Close()

			a.ctrl.UpdateSearch(query)
			printConversations(cmd.OutOrStdout(), a.ctrl.Conversations())
			return nil
		},
	}
	cmd.Flags().StringVar(&query, "search", "", "case-insensitive name filter")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printVersion(cmd.OutOrStdout())
		},
	}
}

func printMessages(w io.Writer, messages []conversation.Message) {
	for _, msg := range messages {
		fmt.Fprintf(w, "[%s] %s: %s\n", msg.Timestamp, msg.Sender, msg.Content)
	}
}

func printConversations(w io.Writer, coll conversation.Collection) {
	if len(coll) == 0 {
		fmt.Fprintln(w, "No conversations")
		return
	}
	for _, conv := range coll {
		kind := "contact"
		if conv.IsAI {
			kind = "ai"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", conv.ID, conv.Name, kind, conv.Timestamp, conv.LastMessage)
	}
}
