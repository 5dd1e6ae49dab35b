package main

import (
	"context"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/deltaneutral/dnfilevault-go/internal/vault"
)

// newGroupsCmd lists the account's groups without downloading anything.
func newGroupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "groups",
		Short: "List your groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listCollections(cmd, func(ctx context.Context, c *vault.Client) ([]vault.Collection, error) {
				return c.ListGroups(ctx)
			})
		},
	}
}

// newPurchasesCmd lists the account's purchases without downloading anything.
func newPurchasesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purchases",
		Short: "List your purchases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listCollections(cmd, func(ctx context.Context, c *vault.Client) ([]vault.Collection, error) {
				return c.ListPurchases(ctx)
			})
		},
	}
}

// listCollections connects (pinned base URL or discovery), logs in, runs
// one listing call, and prints the result.
func listCollections(cmd *cobra.Command, list func(context.Context, *vault.Client) ([]vault.Collection, error)) error {
	ctx := cmd.Context()
	logger := buildLogger()

	endpoint := vault.Endpoint{URL: resolvedCfg.BaseURL, Label: "pinned"}

	if resolvedCfg.BaseURL == "" {
		resolver := vault.NewResolver(resolvedCfg.DiscoveryURL, nil, http.DefaultClient, logger)

		selected, err := resolver.SelectHealthy(ctx, resolver.Resolve(ctx))
		if err != nil {
			return err
		}

		endpoint = selected
	}

	client, err := vault.Login(ctx, endpoint, resolvedCfg.Email, resolvedCfg.Password, http.DefaultClient, logger)
	if err != nil {
		return err
	}

	collections, err := list(ctx, client)
	if err != nil {
		return err
	}

	if len(collections) == 0 {
		cmd.Println("No collections found.")
		return nil
	}

	for _, col := range collections {
		cmd.Printf("  %d  %s\n", col.ID, col.Name)
	}

	return nil
}
