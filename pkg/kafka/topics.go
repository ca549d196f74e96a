package kafka

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

// TopicSpec describes one topic to provision.
type TopicSpec struct {
	Name              string
	Partitions        int
	ReplicationFactor int
	Retention         time.Duration
}

// TopicAdmin is the subset of kafka.Conn used for provisioning.
type TopicAdmin interface {
	CreateTopics(topics ...kafka.TopicConfig) error
	Close() error
}

// Dialer opens an admin connection to the cluster controller.
type Dialer func(ctx context.Context, broker string) (TopicAdmin, error)

// DialController connects to broker, looks up the controller and returns a
// connection to it. Topic creation must go through the controller.
func DialController(ctx context.Context, broker string) (TopicAdmin, error) {
	conn, err := kafka.DialContext(ctx, "tcp", broker)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", broker, err)
	}
	defer conn.Close()

	ctrl, err := conn.Controller()
	if err != nil {
		return nil, fmt.Errorf("lookup controller: %w", err)
	}
	addr := net.JoinHostPort(ctrl.Host, strconv.Itoa(ctrl.Port))
	cc, err := kafka.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial controller %s: %w", addr, err)
	}
	return cc, nil
}

// EnsureTopics creates every topic in specs. Topics that already exist are
// left untouched.
func EnsureTopics(ctx context.Context, brokers []string, specs []TopicSpec, dial Dialer) error {
	if len(brokers) == 0 {
		return fmt.Errorf("brokers are required")
	}
	if len(specs) == 0 {
		return nil
	}
	if dial == nil {
		dial = DialController
	}

	var admin TopicAdmin
	var errs []error
	for _, b := range brokers {
		a, err := dial(ctx, b)
		if err == nil {
			admin = a
			break
		}
		errs = append(errs, err)
	}
	if admin == nil {
		return fmt.Errorf("no reachable broker: %w", errors.Join(errs...))
	}
	defer admin.Close()

	configs := make([]kafka.TopicConfig, 0, len(specs))
	for _, s := range specs {
		configs = append(configs, topicConfig(s))
	}
	if err := admin.CreateTopics(configs...); err != nil && !errors.Is(err, kafka.TopicAlreadyExists) {
		return fmt.Errorf("create topics: %w", err)
	}
	return nil
}

func topicConfig(s TopicSpec) kafka.TopicConfig {
	tc := kafka.TopicConfig{
		Topic:             s.Name,
		NumPartitions:     s.Partitions,
		ReplicationFactor: s.ReplicationFactor,
	}
	if tc.NumPartitions <= 0 {
		tc.NumPartitions = 1
	}
	if tc.ReplicationFactor <= 0 {
		tc.ReplicationFactor = 1
	}
	if s.Retention > 0 {
		tc.ConfigEntries = []kafka.ConfigEntry{{
			ConfigName:  "retention.ms",
			ConfigValue: strconv.FormatInt(s.Retention.Milliseconds(), 10),
		}}
	}
	return tc
}
