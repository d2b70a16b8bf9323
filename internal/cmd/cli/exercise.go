package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/nareb/msgstore/internal/exercise"
)

// newExerciseCommand constructs the `exercise` subcommand.
func newExerciseCommand() *cobra.Command {
	exerciseCmd := &cobra.Command{
		Use:   "exercise",
		Short: "Store messages, read them back at random and report tier hits",
		RunE: func(cmd *cobra.Command, _ []string) error {
			messages, _ := cmd.Flags().GetInt("messages")
			accesses, _ := cmd.Flags().GetInt("accesses")
			firstID, _ := cmd.Flags().GetInt32("first-id")
			seed, _ := cmd.Flags().GetInt64("seed")

			rt, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			rep, err := exercise.Run(cmd.Context(), rt.Store(), rt.LogPath(), rt.Policy(), exercise.Options{
				FirstID:  firstID,
				Messages: messages,
				Accesses: accesses,
				Seed:     seed,
				Logger:   rt.Logger(),
			})
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		},
	}
	exerciseCmd.Flags().Int("messages", exercise.DefaultMessages, "Messages to store")
	exerciseCmd.Flags().Int("accesses", exercise.DefaultAccesses, "Random reads after storing")
	exerciseCmd.Flags().Int32("first-id", 1, "Id of the first stored message")
	exerciseCmd.Flags().Int64("seed", 0, "Seed for the access pattern (0 = time based)")
	return exerciseCmd
}
