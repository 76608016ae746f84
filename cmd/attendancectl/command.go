package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"attendance/internal/env"
	"attendance/internal/models"
	"attendance/pkg/kafkaclient"
)

var actions = map[string]models.Action{
	"checkin": models.ActionCheckIn,
	"select":  models.ActionSelect,
}

// newCommandCmd publishes one interaction command to the command topic.
func newCommandCmd(use string) *cobra.Command {
	action := actions[use]
	return &cobra.Command{
		Use:   use + " <name>",
		Short: fmt.Sprintf("Send a %s command for a location", action),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := env.Load().Kafka
			broker := cfg.Broker
			if broker == "" {
				broker = env.MustGetEnv("KAFKA_BROKER")
			}
			publisher := kafkaclient.NewPublisher(broker, cfg.CommandTopic)
			defer publisher.Close()

			command := models.Command{Action: action, Name: args[0]}
			if err := publisher.PublishJSON(cmd.Context(), command.Name, command); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sent %s %q to %s\n", action, command.Name, publisher.Topic())
			return nil
		},
	}
}
