package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/commuteplanner/planner/internal/core/domain"
	"github.com/commuteplanner/planner/internal/core/service"
	mongostore "github.com/commuteplanner/planner/internal/infrastructure/db/mongo"
)

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "Manage authorization groups",
}

var groupsCreateCmd = &cobra.Command{
	Use:   "create [names...]",
	Short: "Create groups (default: administrator, manager, commuter)",
	Long: `Create groups in the directory. Existing groups are reported and left
untouched. Without arguments the default groups are created.`,
	RunE: runGroupsCreate,
}

func init() {
	groupsCmd.AddCommand(groupsCreateCmd)
}

func runGroupsCreate(cmd *cobra.Command, args []string) error {
	names := args
	if len(names) == 0 {
		names = domain.DefaultGroups
	}

	ctx := cmd.Context()
	client, db, err := connectMongo(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	svc := service.NewDirectoryService(mongostore.NewDirectoryRepository(db), log)
	results, err := svc.CreateGroups(ctx, names)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, r := range results {
		status := "exists"
		if r.Created {
			status = "created"
		}
		fmt.Fprintf(out, "%-24s %s\n", r.Name, status)
	}
	return nil
}
