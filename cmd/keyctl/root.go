package main

import (
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"ytstream.api/internal/config"
	"ytstream.api/internal/keys"
	"ytstream.api/pkg/database"
)

type options struct {
	cfg *config.Config
	dsn string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "keyctl",
		Short:         "Manage API keys and the YouTube cookie artifact",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			opts.cfg = cfg
			if !cmd.Flags().Changed("dsn") {
				opts.dsn = cfg.Database.DSN
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.dsn, "dsn", "", "database DSN (defaults to database.dsn from config)")

	root.AddCommand(
		newCreateCmd(opts),
		newListCmd(opts),
		newRevokeCmd(opts),
		newCookiesCmd(opts),
	)
	lo.Must0(root.RegisterFlagCompletionFunc("dsn", cobra.NoFileCompletions))
	return root
}

func (o *options) store() (*keys.Store, error) {
	db, err := database.Connect(o.dsn)
	if err != nil {
		return nil, err
	}
	s := keys.NewStore(db)
	if err := s.Migrate(); err != nil {
		return nil, err
	}
	return s, nil
}
