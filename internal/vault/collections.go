package vault

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// ListGroups enumerates the account's groups. A failure here is scoped to
// this call; the caller decides whether the run can continue without groups.
func (c *Client) ListGroups(ctx context.Context) ([]Collection, error) {
	resp, err := c.get(ctx, "/groups", listTimeout)
	if err != nil {
		return nil, fmt.Errorf("vault: listing groups: %w", err)
	}
	defer resp.Body.Close()

	var body groupsListResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("vault: parsing groups response: %w", err)
	}

	collections := make([]Collection, 0, len(body.Groups))
	for _, g := range body.Groups {
		collections = append(collections, Collection{ID: g.ID, Name: g.Name, Type: CollectionGroup})
	}

	c.logger.Debug("listed groups", slog.Int("count", len(collections)))

	return collections, nil
}

// ListPurchases enumerates the account's purchases. Purchases are modeled as
// collections like groups; only the remote field naming differs.
func (c *Client) ListPurchases(ctx context.Context) ([]Collection, error) {
	resp, err := c.get(ctx, "/purchases", listTimeout)
	if err != nil {
		return nil, fmt.Errorf("vault: listing purchases: %w", err)
	}
	defer resp.Body.Close()

	var body purchasesListResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("vault: parsing purchases response: %w", err)
	}

	collections := make([]Collection, 0, len(body.Purchases))
	for _, p := range body.Purchases {
		collections = append(collections, Collection{ID: p.ID, Name: p.ProductName, Type: CollectionPurchase})
	}

	c.logger.Debug("listed purchases", slog.Int("count", len(collections)))

	return collections, nil
}

// ListFiles enumerates the file records of one collection. Errors are scoped
// to this collection: the caller logs, skips it, and continues with siblings.
func (c *Client) ListFiles(ctx context.Context, col Collection) ([]FileRecord, error) {
	path := fmt.Sprintf("/%s/%d/files", col.Type, col.ID)

	resp, err := c.get(ctx, path, listTimeout)
	if err != nil {
		return nil, fmt.Errorf("vault: listing files for %s %d: %w", col.Type, col.ID, err)
	}
	defer resp.Body.Close()

	var body filesListResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("vault: parsing files response for %s %d: %w", col.Type, col.ID, err)
	}

	c.logger.Debug("listed files",
		slog.String("collection", col.Name),
		slog.Int("count", len(body.Files)),
	)

	return body.Files, nil
}
