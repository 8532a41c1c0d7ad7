// Package queue sends transactional emails off the request path.
package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/commuteplanner/planner/internal/api/metrics"
	"github.com/commuteplanner/planner/internal/core/domain"
	"github.com/commuteplanner/planner/internal/core/ports"
)

const (
	defaultWorkers = 4
	shardCapacity  = 256
	flushTimeout   = 10 * time.Second
)

type shard struct {
	id    int
	jobs  chan domain.EmailJob
	depth prometheus.Gauge
}

// Dispatcher owns one goroutine per shard. A recipient always lands on the
// same shard, so one person's emails keep their queue order.
type Dispatcher struct {
	shards []*shard
	mailer ports.Mailer
	log    zerolog.Logger
	wg     sync.WaitGroup
}

// NewDispatcher builds n shards; n <= 0 means defaultWorkers.
func NewDispatcher(n int, mailer ports.Mailer, log zerolog.Logger) *Dispatcher {
	if n <= 0 {
		n = defaultWorkers
	}
	d := &Dispatcher{mailer: mailer, log: log}
	for i := range n {
		d.shards = append(d.shards, &shard{
			id:    i,
			jobs:  make(chan domain.EmailJob, shardCapacity),
			depth: metrics.EmailQueueDepth.WithLabelValues(strconv.Itoa(i)),
		})
	}
	return d
}

// Start runs the shard loops until ctx is done. Jobs still queued then are
// sent with a fresh deadline of flushTimeout before the loop returns.
func (d *Dispatcher) Start(ctx context.Context) {
	for _, s := range d.shards {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.drain(ctx, s)
		}()
	}
}

// Wait blocks until every shard loop has returned.
func (d *Dispatcher) Wait() { d.wg.Wait() }

// Enqueue never blocks. When the recipient's shard is full the job is
// dropped and counted.
func (d *Dispatcher) Enqueue(job domain.EmailJob) {
	s := d.shards[d.shardIndex(job.To.Email)]
	select {
	case s.jobs <- job:
		s.depth.Set(float64(len(s.jobs)))
	default:
		metrics.EmailsSentTotal.WithLabelValues(job.Template, "queue_full").Inc()
		d.log.Warn().Str("template", job.Template).Int("shard", s.id).Msg("email queue full, job dropped")
	}
}

func (d *Dispatcher) shardIndex(recipient string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(recipient)))
	return int(h.Sum32() % uint32(len(d.shards)))
}

func (d *Dispatcher) drain(ctx context.Context, s *shard) {
	for {
		select {
		case <-ctx.Done():
			d.flush(s)
			return
		case job := <-s.jobs:
			s.depth.Set(float64(len(s.jobs)))
			d.deliver(ctx, s.id, job)
		}
	}
}

func (d *Dispatcher) flush(s *shard) {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	for ctx.Err() == nil {
		select {
		case job := <-s.jobs:
			s.depth.Set(float64(len(s.jobs)))
			d.deliver(ctx, s.id, job)
		default:
			return
		}
	}
	if left := len(s.jobs); left > 0 {
		d.log.Warn().Int("shard", s.id).Int("dropped", left).Msg("shutdown deadline reached with emails queued")
	}
}

func (d *Dispatcher) deliver(ctx context.Context, shardID int, job domain.EmailJob) {
	log := d.log.With().Str("template", job.Template).Int("shard", shardID).Logger()
	receipt, err := d.mailer.Send(ctx, job)
	if err != nil {
		log.Error().Err(err).Msg("email delivery failed")
		return
	}
	log.Debug().Str("transmission_id", receipt.ID).Msg("email delivered")
}
