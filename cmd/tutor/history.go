package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/tutorgraph/pkg/tutor"
)

func newHistoryCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the conversation saved for a thread",
		RunE: func(cmd *cobra.Command, _ []string) error {
			conv, err := a.conversation(cmd.Context())
			if err != nil {
				return err
			}

			thread := a.thread()
			state, found, err := conv.History(cmd.Context(), thread)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(state)
			}
			if !found {
				fmt.Fprintf(out, "no conversation on %s\n", thread)
				return nil
			}
			user, ok := tutor.UserOf(thread)
			if !ok {
				user = "unknown"
			}
			fmt.Fprintf(out, "thread %s (user %s, level %s, language %s)\n", thread, user, state.Level, state.Language)
			fmt.Fprint(out, state.Transcript())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "print the full state as JSON")
	return cmd
}

func newNewCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Start a fresh conversation and print its thread id",
		Long: `Print a new thread id for the user. Pass it to --thread to continue on it.
The previous conversation is kept, not deleted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.userID == "" {
				return errors.New("--user must not be empty")
			}
			fmt.Fprintln(cmd.OutOrStdout(), tutor.NewThreadID(a.userID))
			return nil
		},
	}
}

func newResumeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Finish a turn that was interrupted after a checkpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			conv, err := a.conversation(cmd.Context())
			if err != nil {
				return err
			}
			state, err := conv.Resume(cmd.Context(), a.thread())
			if err != nil {
				return err
			}
			printTurn(cmd.OutOrStdout(), state)
			return nil
		},
	}
}
