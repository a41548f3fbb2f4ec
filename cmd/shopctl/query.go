package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/money"
	"github.com/example/storefront/internal/readmodel"
	"github.com/spf13/cobra"
)

func newQueryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "query [query-string]",
		Short: "Run a shop query string against the catalog",
		Long: `Filters, sorts and paginates the catalog exactly as the shop page does.

  shopctl query 'category=shoes&sort=price-asc&page=2'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := ""
			if len(args) == 1 {
				raw = args[0]
			}
			return a.runQuery(cmd, raw)
		},
	}
}

func (a *app) runQuery(cmd *cobra.Command, raw string) error {
	products, err := a.loader().Products(commandContext(cmd))
	if err != nil {
		return err
	}

	pipeline := a.pipeline()
	now := time.Now()
	q := catalog.Decode(raw)
	page := pipeline.Apply(products, q, now)

	if a.asJSON {
		items := make([]readmodel.ProductReadModel, len(page.Items))
		for i, p := range page.Items {
			items[i] = readmodel.NewProduct(p, now, pipeline.Options().FreshnessWindow)
		}
		shown := q.WithPage(page.Page)
		return writeJSON(cmd, readmodel.ProductPageReadModel{
			Items:      items,
			Total:      page.Total,
			Page:       page.Page,
			PageSize:   pipeline.Options().PageSize,
			TotalPages: page.TotalPages,
			Sort:       string(shown.Sort),
			Query:      catalog.Encode(shown),
			Clamped:    page.Clamped,
		})
	}

	out := cmd.OutOrStdout()
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tBRAND\tNAME\tCATEGORY\tPRICE\tSTOCK")
	for _, p := range page.Items {
		stock := "in stock"
		if !p.HasStock() {
			stock = "sold out"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", p.ID, p.Brand, p.Name, p.Category, money.FormatUSD(p.EffectivePrice()), stock)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	summary := fmt.Sprintf("page %d of %d, %d products", page.Page, page.TotalPages, page.Total)
	if page.Clamped {
		summary += " (page clamped)"
	}
	if canonical := catalog.Encode(q.WithPage(page.Page)); canonical != "" {
		summary += "\nquery: " + canonical
	}
	_, err = fmt.Fprintln(out, strings.TrimSpace(summary))
	return err
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
