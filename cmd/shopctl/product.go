package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/example/storefront/internal/money"
	"github.com/example/storefront/internal/readmodel"
	"github.com/spf13/cobra"
)

func newProductCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "product <id>",
		Short: "Print one normalized catalog product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid product id %q", args[0])
			}
			return a.runProduct(cmd, id)
		},
	}
}

func (a *app) runProduct(cmd *cobra.Command, id int) error {
	p, err := a.loader().Product(commandContext(cmd), id)
	if err != nil {
		return fmt.Errorf("product %d: %w", id, err)
	}

	if a.asJSON {
		return writeJSON(cmd, readmodel.NewProduct(p, time.Now(), a.pipeline().Options().FreshnessWindow))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s (#%d)\n", p.Brand, p.Name, p.ID)
	fmt.Fprintf(out, "category: %s\n", p.Category)
	if p.OnSale() {
		fmt.Fprintf(out, "price:    %s (was %s)\n", money.FormatUSD(p.EffectivePrice()), money.FormatUSD(p.Price))
	} else {
		fmt.Fprintf(out, "price:    %s\n", money.FormatUSD(p.Price))
	}
	fmt.Fprintf(out, "rating:   %.1f\n", p.RatingValue())
	if len(p.Tags) > 0 {
		fmt.Fprintf(out, "tags:     %s\n", strings.Join(p.Tags, ", "))
	}
	fmt.Fprintln(out, "variants:")
	for _, v := range p.Variants {
		fmt.Fprintf(out, "  %-12s %-10s %d\n", v.Color, v.Size, v.Stock)
	}
	return nil
}
