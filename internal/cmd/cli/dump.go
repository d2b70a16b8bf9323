package cli

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"github.com/nareb/msgstore/internal/message"
	"github.com/nareb/msgstore/internal/msgfilter"
)

var errLimitReached = errors.New("limit reached")

// newDumpCommand constructs the `dump` subcommand.
func newDumpCommand() *cobra.Command {
	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Print log records in append order, one JSON object per line",
		RunE: func(cmd *cobra.Command, _ []string) error {
			expr, _ := cmd.Flags().GetString("filter")
			limit, _ := cmd.Flags().GetInt("limit")

			filter, err := msgfilter.Compile(expr)
			if err != nil {
				return err
			}
			rt, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			enc := json.NewEncoder(cmd.OutOrStdout())
			n := 0
			err = rt.Store().Walk(cmd.Context(), rt.LogPath(), func(rec message.Record) error {
				if !filter.Match(rec) {
					return nil
				}
				if err := enc.Encode(rec); err != nil {
					return err
				}
				n++
				if limit > 0 && n >= limit {
					return errLimitReached
				}
				return nil
			})
			if errors.Is(err, errLimitReached) {
				return nil
			}
			return err
		},
	}
	dumpCmd.Flags().String("filter", "", "CEL filter over id, sender, receiver, content, created_at_s, delivered, now_s")
	dumpCmd.Flags().Int("limit", 0, "Stop after N records (0 = all)")
	return dumpCmd
}
