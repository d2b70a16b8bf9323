package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nareb/msgstore/internal/message"
)

type retrieveOutput struct {
	Tier   string         `json:"tier"`
	Record message.Record `json:"record"`
}

// newRetrieveCommand constructs the `retrieve` subcommand.
func newRetrieveCommand() *cobra.Command {
	retrieveCmd := &cobra.Command{
		Use:   "retrieve",
		Short: "Look up a message by id and print it as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, _ := cmd.Flags().GetInt32("id")

			rt, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			res, err := rt.Store().Retrieve(cmd.Context(), id, rt.LogPath(), rt.Policy())
			if err != nil {
				return fmt.Errorf("message %d: %w", id, err)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(retrieveOutput{Tier: res.Tier.String(), Record: res.Record})
		},
	}
	retrieveCmd.Flags().Int32("id", 0, "Message id")
	_ = retrieveCmd.MarkFlagRequired("id")
	return retrieveCmd
}
