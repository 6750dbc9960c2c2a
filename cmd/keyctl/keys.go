package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"ytstream.api/internal/keys"
)

func newCreateCmd(opts *options) *cobra.Command {
	var p keys.CreateParams

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an API key and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.store()
			if err != nil {
				return err
			}
			if p.DailyLimit <= 0 {
				p.DailyLimit = opts.cfg.Auth.DefaultDailyLimit
			}
			k, err := s.Create(cmd.Context(), p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "id:          %d\nkey:         %s\nvalid until: %s\ndaily limit: %d\n",
				k.ID, k.Key, k.ValidUntil.Format(time.RFC3339), k.DailyLimit)
			return nil
		},
	}
	cmd.Flags().StringVarP(&p.Name, "name", "n", "", "key owner name")
	cmd.Flags().IntVarP(&p.DaysValid, "days", "d", 30, "days the key stays valid")
	cmd.Flags().IntVarP(&p.DailyLimit, "limit", "l", 0, "requests per day (defaults to auth.default_daily_limit)")
	cmd.Flags().BoolVar(&p.IsAdmin, "admin", false, "grant admin rights")
	lo.Must0(cmd.MarkFlagRequired("name"))
	return cmd
}

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List API keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.store()
			if err != nil {
				return err
			}
			list, err := s.List(cmd.Context())
			if err != nil {
				return err
			}

			now := time.Now()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tADMIN\tVALID UNTIL\tREMAINING\tKEY")
			for _, k := range list {
				validity := k.ValidUntil.Format("2006-01-02")
				if k.IsExpired(now) {
					validity += " (expired)"
				}
				fmt.Fprintf(w, "%d\t%s\t%t\t%s\t%d/%d\t%s\n",
					k.ID, k.Name, k.IsAdmin, validity, k.Remaining(now), k.DailyLimit, k.Key)
			}
			return w.Flush()
		},
	}
}

func newRevokeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <id>",
		Short: "Delete a non-admin API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid key id %q", args[0])
			}
			s, err := opts.store()
			if err != nil {
				return err
			}
			if err := s.Revoke(cmd.Context(), uint(id)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "revoked key %d\n", id)
			return nil
		},
	}
}
