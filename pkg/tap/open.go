package tap

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/papercomputeco/plexbot/pkg/config"
	"github.com/papercomputeco/plexbot/pkg/eventstream"
	"github.com/papercomputeco/plexbot/pkg/eventstream/kafka"
	"github.com/papercomputeco/plexbot/pkg/merkle"
)

// Open builds a Pool from tap configuration. It returns nil, nil when no
// sink is configured.
func Open(c config.TapConfig, logger *zap.Logger) (*Pool, error) {
	if !c.Enabled() {
		return nil, nil
	}

	var (
		storer    merkle.Storer
		publisher eventstream.Publisher
	)

	if c.SQLitePath != "" {
		s, err := merkle.NewSQLiteStorer(c.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("opening transcript store: %w", err)
		}
		storer = s
	}

	if len(c.KafkaBrokers) > 0 {
		p, err := kafka.NewPublisher(kafka.Config{
			Brokers: c.KafkaBrokers,
			Topic:   c.KafkaTopic,
		})
		if err != nil {
			if storer != nil {
				_ = storer.Close()
			}
			return nil, fmt.Errorf("creating kafka publisher: %w", err)
		}
		publisher = p
	}

	return NewPool(&Config{
		Storer:     storer,
		Publisher:  publisher,
		NumWorkers: c.Workers,
		Logger:     logger,
	})
}
