package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/markdave123-py/Vivid/internal/models"
	"github.com/markdave123-py/Vivid/internal/services"
)

func (c *cli) themeCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "theme [light|dark|toggle]",
		Short:     "Show or change the display theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"light", "dark", "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			kv, err := c.openKV(ctx)
			if err != nil {
				return err
			}
			defer kv.Close()
			prefs := services.NewPreferenceService(kv, c.logger)

			var theme models.Theme
			switch {
			case len(args) == 0:
				theme, err = prefs.Theme(ctx)
			case args[0] == "toggle":
				theme, err = prefs.ToggleTheme(ctx)
			default:
				theme, err = models.ParseTheme(args[0])
				if err == nil {
					err = prefs.SetTheme(ctx, theme)
				}
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), theme)
			return nil
		},
	}
}
