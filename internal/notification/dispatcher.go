package notification

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var ErrQueueFull = errors.New("notification queue is full")

// FailureSink receives every confirmation that could not be delivered.
type FailureSink interface {
	Failure(msg ReservationConfirmation, res Result)
}

// LogSink reports failures through zap.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Failure(msg ReservationConfirmation, res Result) {
	s.logger.Warn("reservation confirmation not delivered",
		zap.String("reservation", msg.ReservationNumber),
		zap.String("email", msg.DestinationEmail),
		zap.String("message", res.Message),
		zap.String("error", res.Error),
	)
}

type DispatcherConfig struct {
	Workers     int
	QueueSize   int
	SendTimeout time.Duration
}

// Dispatcher hands confirmations to a fixed pool of workers over a bounded
// channel. Enqueue never blocks the caller.
type Dispatcher struct {
	gateway Gateway
	sink    FailureSink
	logger  *zap.Logger
	timeout time.Duration

	queue chan ReservationConfirmation
	wg    sync.WaitGroup
	mu    sync.RWMutex
	done  bool
}

func NewDispatcher(gateway Gateway, sink FailureSink, logger *zap.Logger, cfg DispatcherConfig) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{
		gateway: gateway,
		sink:    sink,
		logger:  logger,
		timeout: cfg.SendTimeout,
		queue:   make(chan ReservationConfirmation, cfg.QueueSize),
	}
	d.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go d.work()
	}
	return d
}

// Enqueue reports false when the message was dropped.
func (d *Dispatcher) Enqueue(msg ReservationConfirmation) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.done {
		d.sink.Failure(msg, Failed("dispatcher closed", nil))
		return false
	}
	select {
	case d.queue <- msg:
		return true
	default:
		d.sink.Failure(msg, Failed("queue full", ErrQueueFull))
		return false
	}
}

// Close stops accepting work and waits for queued messages to be sent.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.done {
		d.mu.Unlock()
		return
	}
	d.done = true
	close(d.queue)
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for msg := range d.queue {
		d.send(msg)
	}
}

func (d *Dispatcher) send(msg ReservationConfirmation) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("notification gateway panicked", zap.Any("panic", r))
			d.sink.Failure(msg, Result{Message: "gateway panic"})
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	res := d.gateway.SendReservationConfirmation(ctx, msg)
	if !res.Success {
		d.sink.Failure(msg, res)
		return
	}
	d.logger.Debug("reservation confirmation sent",
		zap.String("reservation", msg.ReservationNumber),
		zap.String("email", msg.DestinationEmail))
}
