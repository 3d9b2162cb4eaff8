// Package tap records settled conversation turns off the chat hot path.
//
// The pool stores each settled history as a merkle chain and publishes a
// turn event. Failures are logged and never reach the conversation.
package tap

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/plexbot/pkg/conversation"
	"github.com/papercomputeco/plexbot/pkg/eventstream"
	"github.com/papercomputeco/plexbot/pkg/eventstream/nop"
	"github.com/papercomputeco/plexbot/pkg/llm"
	"github.com/papercomputeco/plexbot/pkg/merkle"
	"github.com/papercomputeco/plexbot/pkg/utils"
)

// DefaultProvider is recorded in every bucket.
const DefaultProvider = "perplexity"

const questionPreviewLen = 60

var (
	defaultNumWorkers   uint = 2
	defaultJobQueueSize uint = 256
)

// Job is one settled exchange waiting to be recorded.
type Job struct {
	Exchange conversation.Exchange
}

// Config is the configuration options for the tap pool.
type Config struct {
	// Storer persists transcript nodes. Nil skips storage.
	Storer merkle.Storer

	// Publisher receives one event per job. Nil uses the no-op publisher.
	Publisher eventstream.Publisher

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	Provider string

	Logger *zap.Logger
}

// Pool records jobs asynchronously. It implements conversation.Observer.
type Pool struct {
	config *Config
	queue  chan Job
	wg     sync.WaitGroup
	logger *zap.Logger

	closeOnce sync.Once
	closed    chan struct{}
	mu        sync.RWMutex
}

// NewPool creates a Pool and starts its workers.
func NewPool(c *Config) (*Pool, error) {
	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}
	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}
	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}
	if c.Publisher == nil {
		c.Publisher = nop.NewPublisher()
	}
	if c.Provider == "" {
		c.Provider = DefaultProvider
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}

	p := &Pool{
		config: c,
		queue:  make(chan Job, c.QueueSize),
		logger: c.Logger,
		closed: make(chan struct{}),
	}

	p.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go p.worker(i)
	}

	return p, nil
}

// Storer returns the transcript store the workers write to, or nil. It is
// closed by Close after the queue drains, so readers must stop before then.
func (p *Pool) Storer() merkle.Storer {
	return p.config.Storer
}

// TurnSettled enqueues the exchange for recording.
func (p *Pool) TurnSettled(_ context.Context, ex conversation.Exchange) {
	p.Enqueue(Job{Exchange: ex})
}

// Enqueue submits a job without blocking. It returns false when the queue
// is full or the pool is closed; the job is dropped.
func (p *Pool) Enqueue(job Job) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	select {
	case <-p.closed:
		p.logger.Warn("tap closed, job dropped",
			zap.String("conversation_id", job.Exchange.ConversationID),
		)
		return false
	default:
	}

	select {
	case p.queue <- job:
		p.logger.Debug("job queued",
			zap.String("conversation_id", job.Exchange.ConversationID),
			zap.String("model", job.Exchange.Model),
		)
		return true
	default:
		p.logger.Error("job not queued, queue full, job dropped",
			zap.String("conversation_id", job.Exchange.ConversationID),
			zap.String("model", job.Exchange.Model),
		)
		return false
	}
}

// Close stops accepting jobs, drains the queue and closes the sinks.
func (p *Pool) Close() error {
	var errs []error

	p.closeOnce.Do(func() {
		p.mu.Lock()
		close(p.closed)
		close(p.queue)
		p.mu.Unlock()

		p.wg.Wait()

		if p.config.Storer != nil {
			if err := p.config.Storer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("closing storer: %w", err))
			}
		}
		if err := p.config.Publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing publisher: %w", err))
		}
	})

	return errors.Join(errs...)
}

func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("tap worker started", zap.Uint("worker_id", id))

	for job := range p.queue {
		p.processJob(job)
	}

	p.logger.Debug("tap worker stopped", zap.Uint("worker_id", id))
}

func (p *Pool) processJob(job Job) {
	ctx := context.Background()
	ex := job.Exchange

	var dag eventstream.DAGMeta
	if p.config.Storer != nil {
		var err error
		dag, err = p.storeHistory(ctx, ex)
		if err != nil {
			p.logger.Error("transcript storage failed",
				zap.String("conversation_id", ex.ConversationID),
				zap.Error(err),
			)
		} else {
			p.logger.Info("transcript stored",
				zap.String("conversation_id", ex.ConversationID),
				zap.String("head", dag.HeadHash),
				zap.Int("new_nodes", len(dag.NewNodeHashes)),
			)
		}
	}

	event := NewEvent(ex, dag, time.Now())
	p.logger.Debug("publishing turn event",
		zap.String("event_id", event.EventID),
		zap.String("question", utils.Preview(event.Question, questionPreviewLen)),
	)
	if err := p.config.Publisher.PublishTurn(ctx, event); err != nil {
		p.logger.Error("turn event publish failed",
			zap.String("conversation_id", ex.ConversationID),
			zap.String("event_id", event.EventID),
			zap.Error(err),
		)
	}
}

// storeHistory puts the chain for the settled history. Prefixes shared with
// earlier turns hash identically and are not new.
func (p *Pool) storeHistory(ctx context.Context, ex conversation.Exchange) (eventstream.DAGMeta, error) {
	buckets := make([]merkle.Bucket, 0, len(ex.History))
	for _, t := range ex.History {
		buckets = append(buckets, merkle.BucketFromTurn(t, p.config.Provider))
	}

	nodes := merkle.Chain(buckets, merkle.NodeMeta{Model: ex.Model})
	if len(nodes) == 0 {
		return eventstream.DAGMeta{}, nil
	}

	dag := eventstream.DAGMeta{
		RootHash: nodes[0].Hash,
		HeadHash: nodes[len(nodes)-1].Hash,
	}

	for _, n := range nodes {
		isNew, err := p.config.Storer.Put(ctx, n)
		if err != nil {
			return eventstream.DAGMeta{}, fmt.Errorf("storing node: %w", err)
		}

		p.logger.Debug("stored node",
			zap.String("hash", n.Hash),
			zap.String("role", string(n.Bucket.Role)),
			zap.Bool("is_new", isNew),
		)

		if isNew {
			dag.NewNodeHashes = append(dag.NewNodeHashes, n.Hash)
		}
	}

	return dag, nil
}

// NewEvent builds the turn event for a settled exchange.
func NewEvent(ex conversation.Exchange, dag eventstream.DAGMeta, now time.Time) *eventstream.TurnRecordedEvent {
	event := eventstream.NewTurnRecordedEvent(ex.ConversationID, now)
	event.Request = eventstream.RequestMeta{
		Model:        ex.Model,
		MessageCount: len(ex.Messages),
		StartedAt:    ex.StartedAt,
		DurationMs:   ex.Duration.Milliseconds(),
		Failed:       ex.Failed(),
	}
	event.DAG = dag
	event.Reply = ex.Turn

	if n := len(ex.History); n >= 2 && ex.History[n-2].Role == llm.RoleUser {
		event.Question = ex.History[n-2].Text
	}

	return event
}

var _ conversation.Observer = (*Pool)(nil)
