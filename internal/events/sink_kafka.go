package events

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/sasl/plain"
	"github.com/twmb/franz-go/plugin/kotel"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

const (
	ChannelBufferLimit = 256

	batchSize            = 50
	singleRequestTimeout = 30 * time.Second
	tickerTimeout        = 1 * time.Second
)

type KafkaConfig struct {
	Seeds    []string
	Topic    string
	User     string
	Password string
}

type KafkaSink struct {
	logger      *zap.SugaredLogger
	KafkaClient *kgo.Client
	topic       string

	producerChan chan *Event
	done         chan struct{}
	stopped      chan struct{}

	started  atomic.Bool
	stopOnce sync.Once
}

func NewKafkaSink(logger *zap.SugaredLogger, cfg *KafkaConfig) (*KafkaSink, error) {
	tracer := kotel.NewTracer(kotel.TracerProvider(otel.GetTracerProvider()))
	kotelService := kotel.NewKotel(kotel.WithTracer(tracer))

	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Seeds...),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.WithHooks(kotelService.Hooks()...),
	}

	if cfg.User != "" {
		opts = append(opts, kgo.SASL(plain.Auth{User: cfg.User, Pass: cfg.Password}.AsMechanism()))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, err
	}

	return &KafkaSink{
		logger:       logger,
		KafkaClient:  client,
		topic:        cfg.Topic,
		producerChan: make(chan *Event, ChannelBufferLimit),
		done:         make(chan struct{}),
		stopped:      make(chan struct{}),
	}, nil
}

// Publish never blocks; events are dropped when the buffer is full or the
// sink is stopped.
func (s *KafkaSink) Publish(event *Event) {
	select {
	case <-s.done:
		return
	default:
	}

	select {
	case s.producerChan <- event:
	default:
		s.logger.Warnw("Event channel full, dropping event", "url", event.URL, "status", event.Status)
	}
}

// StartProducer batches events and produces them until Stop.
func (s *KafkaSink) StartProducer() {
	s.started.Store(true)
	defer close(s.stopped)

	items := make([]*Event, 0, batchSize)
	flushTicker := time.NewTicker(tickerTimeout)
	defer flushTicker.Stop()

	for {
		select {
		case item := <-s.producerChan:
			items = append(items, item)
			if len(items) >= batchSize {
				s.sendToKafka(items)
				items = make([]*Event, 0, batchSize)
			}
		case <-flushTicker.C:
			if len(items) > 0 {
				s.sendToKafka(items)
				items = make([]*Event, 0, batchSize)
			}
		case <-s.done:
			for len(s.producerChan) > 0 {
				items = append(items, <-s.producerChan)
			}
			if len(items) > 0 {
				s.sendToKafka(items)
			}
			return
		}
	}
}

func (s *KafkaSink) sendToKafka(items []*Event) {
	records := make([]*kgo.Record, 0, len(items))

	for _, event := range items {
		value, err := event.MarshalBinary()
		if err != nil {
			s.logger.Warnw("Failed to marshal event", "event", event, "err", err)
			continue
		}

		records = append(records, &kgo.Record{
			Topic: s.topic,
			Key:   []byte(event.URL),
			Value: value,
		})
	}

	s.produceRecords(records)
}

func (s *KafkaSink) produceRecords(records []*kgo.Record) {
	ctx, cancel := context.WithTimeout(context.Background(), singleRequestTimeout)
	defer cancel()

	var wg sync.WaitGroup

	for _, record := range records {
		wg.Add(1)
		s.KafkaClient.Produce(ctx, record, func(r *kgo.Record, err error) {
			defer wg.Done()
			if err != nil {
				s.logger.Warnw("Failed to produce event record in kafka", "key", string(r.Key), "err", err)
			}
		})
	}

	wg.Wait()

	s.logger.Debugw("Produced events", "count", len(records))
}

func (s *KafkaSink) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() {
		close(s.done)
	})

	if s.started.Load() {
		select {
		case <-s.stopped:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s.KafkaClient.Close()
	return nil
}
