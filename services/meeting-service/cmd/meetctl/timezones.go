package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/availability"
)

func newTimezonesCmd() *cobra.Command {
	var prefix string
	cmd := &cobra.Command{
		Use:     "timezones",
		Aliases: []string{"tz"},
		Short:   "List known IANA time zones",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, zone := range availability.Timezones() {
				if prefix != "" && !strings.HasPrefix(zone, prefix) {
					continue
				}
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), zone); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "only zones starting with this prefix, e.g. Europe/")
	return cmd
}
