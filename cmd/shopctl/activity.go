package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/example/storefront/internal/domain/activity"
	"github.com/example/storefront/internal/infrastructure/kafka"
	"github.com/spf13/cobra"
)

func newActivityCmd(a *app) *cobra.Command {
	var (
		brokers []string
		groupID string
	)
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Tail the storefront activity topic",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(brokers) == 0 {
				return errors.New("no kafka brokers configured, set --brokers or STOREFRONT_KAFKA_BROKERS")
			}
			ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			consumer := kafka.NewConsumer(brokers, a.cfg.Kafka.Topic, groupID, a.log)
			defer consumer.Close()

			err := consumer.Consume(ctx, func(_ context.Context, event activity.Event) error {
				return a.printActivity(cmd, event)
			})
			if ctx.Err() != nil {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringSliceVar(&brokers, "brokers", a.cfg.Kafka.Brokers, "kafka brokers")
	cmd.Flags().StringVar(&a.cfg.Kafka.Topic, "topic", a.cfg.Kafka.Topic, "activity topic")
	cmd.Flags().StringVar(&groupID, "group", "shopctl", "consumer group id")
	return cmd
}

func (a *app) printActivity(cmd *cobra.Command, event activity.Event) error {
	if a.asJSON {
		return writeJSON(cmd, event)
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %-18s cart=%d wishlist=%d\n",
		event.At.Format("2006-01-02 15:04:05"), event.ProfileID, event.Action, event.CartCount, event.WishlistCount)
	return err
}
