package main

import (
	"log/slog"

	"github.com/Veraticus/pennywise/internal/tui"
	"github.com/Veraticus/pennywise/internal/tui/themes"
	"github.com/spf13/cobra"
)

func init() {
	chatCmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive entry session",
		Long: `Open a full-screen session. Type what you spent or earned; complete
entries are saved as you go and missing details are asked for.

Commands inside the session: /save, /clear, /quit.`,
		Args: cobra.NoArgs,
		RunE: runChat,
	}
	chatCmd.Flags().String("theme", "default", "Color theme (default, catppuccin-mocha)")

	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	themeName, _ := cmd.Flags().GetString("theme")

	ctx := cmd.Context()
	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	return tui.Run(ctx,
		tui.WithProcessor(a.processor),
		tui.WithStore(a.store),
		tui.WithLocalizer(a.localizer),
		tui.WithLogger(slog.Default()),
		tui.WithTheme(themes.ByName(themeName)),
	)
}
