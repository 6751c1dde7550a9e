package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/feedbackhub/internal/config"
)

// newTokenCmd は開発用のアクセストークンを発行するコマンドを生成する。
// ローカル認証基盤でのみ利用できる。
func newTokenCmd(flags *globalFlags) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a development access token (local auth provider only)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := flags.load()
			if err != nil {
				return err
			}
			if cfg.Auth.Provider != config.AuthProviderLocal {
				return errors.New("token コマンドは AUTH_PROVIDER=local でのみ利用できます")
			}

			db, _, err := openDatabase(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			_, issuer, err := newIdentity(cmd.Context(), cfg, db)
			if err != nil {
				return err
			}
			user, err := issuer.EnsureUser(cmd.Context(), email)
			if err != nil {
				return fmt.Errorf("ユーザーの作成に失敗: %w", err)
			}
			token, err := issuer.IssueToken(&user.Identity)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address of the development user")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
