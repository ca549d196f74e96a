package main

import (
	"context"
	"fmt"
	"time"

	"QuantFuse/internal/di"
	pkgkafka "QuantFuse/pkg/kafka"

	"github.com/spf13/cobra"
)

var topicsTimeout time.Duration

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Create the configured Kafka topics",
	RunE:  runTopics,
}

func init() {
	topicsCmd.Flags().DurationVar(&topicsTimeout, "timeout", 30*time.Second, "provisioning timeout")
	rootCmd.AddCommand(topicsCmd)
}

func runTopics(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	specs := di.ProvideTopicSpecs(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), topicsTimeout)
	defer cancel()
	if err := pkgkafka.EnsureTopics(ctx, cfg.Kafka.Brokers, specs, nil); err != nil {
		return err
	}
	for _, s := range specs {
		fmt.Printf("%-20s partitions=%d replication=%d retention=%s\n", s.Name, s.Partitions, s.ReplicationFactor, s.Retention)
	}
	return nil
}
