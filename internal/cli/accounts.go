package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/commuteplanner/planner/internal/core/domain"
	mongostore "github.com/commuteplanner/planner/internal/infrastructure/db/mongo"
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Provision identity accounts",
}

var accountInput struct {
	domain.NewAccountInput
	groups []string
}

var accountsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an account and add it to groups",
	Long: `Create a password account with the identity provider and record its
group memberships, e.g. to bootstrap the first administrator:

  planner accounts create --email ops@example.com --group administrator`,
	RunE: runAccountsCreate,
}

func init() {
	f := accountsCreateCmd.Flags()
	f.StringVar(&accountInput.Email, "email", "", "login email (required)")
	f.StringVar(&accountInput.Password, "password", "", "initial password")
	f.StringVar(&accountInput.GivenName, "given-name", "", "given name")
	f.StringVar(&accountInput.Surname, "surname", "", "surname")
	f.StringSliceVar(&accountInput.groups, "group", nil, "group to join, repeatable")
	_ = accountsCreateCmd.MarkFlagRequired("email")
	accountsCmd.AddCommand(accountsCreateCmd)
}

func runAccountsCreate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	account, err := newIdentityProvider(cfg).CreateAccount(ctx, accountInput.NewAccountInput)
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "created %s\n", account.Href)
	if len(accountInput.groups) == 0 {
		return nil
	}

	client, db, err := connectMongo(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	directory := mongostore.NewDirectoryRepository(db)
	for _, group := range accountInput.groups {
		if err := directory.AddToGroup(ctx, account.Href, group); err != nil {
			return err
		}
		fmt.Fprintf(out, "joined %s\n", group)
	}
	return nil
}
