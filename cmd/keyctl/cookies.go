package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ytstream.api/internal/cookie"
	"ytstream.api/pkg/storage"
)

func newCookiesCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cookies",
		Short: "Manage the cookie artifact the refresher distributes",
	}

	var key string
	push := &cobra.Command{
		Use:   "push <cookies.txt>",
		Short: "Validate a Netscape cookies.txt and upload it to the artifact bucket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			n, err := cookie.Validate(data)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			p, err := storage.NewS3Provider(opts.cfg)
			if err != nil {
				return err
			}
			if key == "" {
				key = opts.cfg.Cookies.ObjectKey
			}
			if err := p.Put(cmd.Context(), key, data); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "uploaded %d cookies to s3://%s/%s\n", n, opts.cfg.AWS.Bucket, key)
			return nil
		},
	}
	push.Flags().StringVar(&key, "key", "", "object key (defaults to cookies.object_key)")

	cmd.AddCommand(push)
	return cmd
}
