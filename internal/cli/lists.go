package cli

import (
	"errors"
	"fmt"

	"taskLists/internal/client"
	"taskLists/internal/models/nullable"

	"github.com/spf13/cobra"
)

func newListsCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "lists",
		Aliases: []string{"list", "l"},
		Short:   "Manage lists",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:     "ls",
			Aliases: []string{"all"},
			Short:   "Show every list",
			Args:    cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				lists, err := e.store.Lists(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to get lists: %w", err)
				}
				return printLists(e.out, lists)
			},
		},
		&cobra.Command{
			Use:   "show ID",
			Short: "Show one list",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				l, err := e.store.List(cmd.Context(), id)
				if err != nil {
					return fmt.Errorf("failed to get list: %w", err)
				}
				return printList(e.out, l)
			},
		},
		newListAddCommand(e),
		newListEditCommand(e),
		&cobra.Command{
			Use:     "rm ID",
			Aliases: []string{"delete"},
			Short:   "Delete a list; its tasks are kept without a list",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				if err := e.store.DeleteList(cmd.Context(), id); err != nil {
					return fmt.Errorf("failed to delete list: %w", err)
				}
				fmt.Fprintf(e.out, "Deleted list %d\n", id)
				return nil
			},
		},
	)
	return cmd
}

func newListAddCommand(e *env) *cobra.Command {
	var color string

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Create a list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := client.ListInput{Name: nullable.Value(args[0])}
			if color != "" {
				in.Color = nullable.Value(color)
			}

			l, err := e.store.CreateList(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("failed to create list: %w", err)
			}
			fmt.Fprintf(e.out, "Created list %d: %s\n", l.ID, l.Name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&color, "color", "c", "", "List color, e.g. #3366ff")
	return cmd
}

func newListEditCommand(e *env) *cobra.Command {
	var (
		name       string
		color      string
		clearColor bool
	)

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Rename a list or change its color",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var in client.ListInput
			if cmd.Flags().Changed("name") {
				in.Name = nullable.Value(name)
			}
			switch {
			case clearColor:
				in.Color = nullable.Null[string]()
			case cmd.Flags().Changed("color"):
				in.Color = nullable.Value(color)
			}
			if !in.Name.IsSet() && !in.Color.IsSet() {
				return errors.New("nothing to change: use --name, --color or --clear-color")
			}

			l, err := e.store.UpdateList(cmd.Context(), id, in)
			if err != nil {
				return fmt.Errorf("failed to update list: %w", err)
			}
			fmt.Fprintf(e.out, "Updated list %d: %s\n", l.ID, l.Name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "New name")
	cmd.Flags().StringVarP(&color, "color", "c", "", "New color")
	cmd.Flags().BoolVar(&clearColor, "clear-color", false, "Remove the color")
	cmd.MarkFlagsMutuallyExclusive("color", "clear-color")
	return cmd
}
