package commands

import (
	"context"
	"fmt"
	"strings"
)

type OutletsCmd struct {
	Query string `help:"Only list outlets whose name contains this text" short:"q"`
}

func (o *OutletsCmd) Run(ctx context.Context, globals *Globals) error {
	ctx = globals.context(ctx)

	outlets, err := globals.client().Outlets(ctx, o.Query)
	if err != nil {
		return explain("failed to list outlets", err)
	}

	if len(outlets) == 0 {
		fmt.Println("No outlets found.")
		return nil
	}

	fmt.Printf("%-25s %-20s %-12s %-30s\n", "Outlet", "Manager", "Phone", "Address")
	fmt.Println(strings.Repeat("─", 90))

	for _, outlet := range outlets {
		fmt.Printf("%-25s %-20s %-12s %-30s\n",
			truncate(outlet.Name, 25),
			truncate(outlet.ManagerName, 20),
			outlet.Phone,
			truncate(outlet.Address, 30))
	}

	fmt.Printf("\nTotal outlets: %d\n", len(outlets))
	return nil
}

type ActiveCmd struct{}

func (a *ActiveCmd) Run(ctx context.Context, globals *Globals) error {
	ctx = globals.context(ctx)

	c, err := globals.authedClient(ctx)
	if err != nil {
		return err
	}

	active, err := c.ActiveToken(ctx)
	if err != nil {
		return explain("failed to fetch active token", err)
	}
	if active.Token == nil {
		fmt.Println("No token has been issued yet.")
		return nil
	}

	t := active.Token
	fmt.Printf("%-16s %s\n", "Token:", t.Token)
	fmt.Printf("%-16s %s\n", "Issued:", formatMillis(t.CreatedAt))
	fmt.Printf("%-16s %s\n", "Cylinder type:", t.CylinderType)
	fmt.Printf("%-16s %d\n", "Cylinder count:", t.CylinderCount)
	fmt.Printf("%-16s %s\n", "Status:", t.Status)
	if active.Quote != nil {
		fmt.Printf("%-16s Rs. %.2f\n", "Estimated cost:", *active.Quote)
	}
	return nil
}

type HistoryCmd struct{}

func (h *HistoryCmd) Run(ctx context.Context, globals *Globals) error {
	ctx = globals.context(ctx)

	c, err := globals.authedClient(ctx)
	if err != nil {
		return err
	}

	tokens, err := c.CompletedTokens(ctx)
	if err != nil {
		return explain("failed to fetch order history", err)
	}

	if len(tokens) == 0 {
		fmt.Println("No completed orders.")
		return nil
	}

	fmt.Printf("%-20s %-20s %-10s %-6s %-12s\n", "Token", "Issued", "Type", "Count", "Outlet")
	fmt.Println(strings.Repeat("─", 72))

	for _, t := range tokens {
		fmt.Printf("%-20s %-20s %-10s %-6d %-12s\n",
			truncate(t.Token, 20),
			formatMillis(t.CreatedAt),
			t.CylinderType,
			t.CylinderCount,
			t.OutletID)
	}

	fmt.Printf("\nTotal completed orders: %d\n", len(tokens))
	return nil
}

// truncate shortens s to width runes, marking the cut with "...".
func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}
