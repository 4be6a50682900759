package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/markdave123-py/Vivid/internal/core/profiles"
	"github.com/markdave123-py/Vivid/internal/models"
)

func (c *cli) profilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Manage the people the model should recognize by name",
	}
	cmd.AddCommand(c.profilesListCmd(), c.profilesAddCmd(), c.profilesRemoveCmd())
	return cmd
}

// withStore opens the KV store and loads the profiles for one command.
func (c *cli) withStore(cmd *cobra.Command, fn func(*profiles.Store) error) error {
	kv, err := c.openKV(cmd.Context())
	if err != nil {
		return err
	}
	defer kv.Close()

	store := profiles.NewStore(kv, c.logger)
	if err := store.Load(cmd.Context()); err != nil {
		return err
	}
	return fn(store)
}

func (c *cli) profilesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(store *profiles.Store) error {
				list := store.List()
				if len(list) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No profiles saved.")
					return nil
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tPRONOUNS\tDESCRIPTION")
				for _, p := range list {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Pronouns, p.Description)
				}
				return tw.Flush()
			})
		},
	}
}

func (c *cli) profilesAddCmd() *cobra.Command {
	var p models.Profile
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a profile, or edit one with --id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(store *profiles.Store) error {
				if p.ID != "" {
					if _, ok := store.Get(p.ID); !ok {
						return fmt.Errorf("%w: %s", profiles.ErrNotFound, p.ID)
					}
				}
				saved, err := store.Upsert(cmd.Context(), p)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%s)\n", saved.Name, saved.ID)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&p.ID, "id", "", "id of the profile to edit")
	f.StringVar(&p.Name, "name", "", "name the model should use")
	f.StringVar(&p.Pronouns, "pronouns", "", "pronouns, optional")
	f.StringVar(&p.Description, "description", "", "how to recognize the person")
	return cmd
}

func (c *cli) profilesRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(store *profiles.Store) error {
				if err := store.Remove(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
				return nil
			})
		},
	}
}
