package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nareb/msgstore/internal/tierstore"
)

// newStoreCommand constructs the `store` subcommand.
func newStoreCommand() *cobra.Command {
	storeCmd := &cobra.Command{
		Use:   "store",
		Short: "Append a message to the log",
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, _ := cmd.Flags().GetInt32("id")
			sender, _ := cmd.Flags().GetString("sender")
			receiver, _ := cmd.Flags().GetString("receiver")
			content, _ := cmd.Flags().GetString("content")

			rt, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			rec := tierstore.CreateRecord(id, sender, receiver, content)
			if err := rt.Store().Store(cmd.Context(), rec, rt.LogPath(), rt.Policy()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored id=%d log=%s\n", rec.ID, rt.LogPath())
			return nil
		},
	}
	storeCmd.Flags().Int32("id", 0, "Message id")
	storeCmd.Flags().String("sender", "", "Sender (up to 50 bytes)")
	storeCmd.Flags().String("receiver", "", "Receiver (up to 50 bytes)")
	storeCmd.Flags().String("content", "", "Content (up to 500 bytes)")
	_ = storeCmd.MarkFlagRequired("id")
	return storeCmd
}
