/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements. See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License. You may obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package shipper

import (
	"github.com/cenkalti/backoff/v4"
	"github.com/go-errors/errors"
	"github.com/inhies/go-bytesize"
	"github.com/pgship/pgship/internal/filtering"
	"github.com/pgship/pgship/internal/logging"
	"github.com/pgship/pgship/internal/stats"
	"github.com/pgship/pgship/internal/waiting"
	spiconfig "github.com/pgship/pgship/spi/config"
	"github.com/pgship/pgship/spi/encoding"
	"github.com/pgship/pgship/spi/record"
	spisidechannel "github.com/pgship/pgship/spi/sidechannel"
	"sync"
	"time"
)

const defaultFlushInterval = time.Second * 5

type batchEntry struct {
	eventTime time.Time
	rec       record.Record
	size      int
}

// Shipper buffers incoming records and flushes them to the
// destination table as one multi-row INSERT per batch. A batch is
// flushed when it reaches the configured row count, its encoded
// size estimate, or the flush interval, whichever comes first.
// There is exactly one flush goroutine, so the write path is
// never invoked concurrently with itself.
type Shipper struct {
	logger      *logging.Logger
	sideChannel spisidechannel.SideChannel
	filter      filtering.Filter
	reporter    *stats.Reporter

	maxRows       int
	maxBytes      int
	flushInterval time.Duration
	maxRetries    uint64

	queue           chan batchEntry
	intakeMutex     sync.RWMutex
	intakeClosed    bool
	shutdownAwaiter *waiting.ShutdownAwaiter
}

func NewShipper(
	config *spiconfig.Config, sideChannel spisidechannel.SideChannel,
	filter filtering.Filter, reporter *stats.Reporter,
) (*Shipper, error) {

	logger, err := logging.NewLogger("Shipper")
	if err != nil {
		return nil, err
	}

	maxSize, err := bytesize.Parse(
		spiconfig.GetOrDefault(config, spiconfig.PropertyBatchMaxSize, spiconfig.DefaultBatchMaxSize),
	)
	if err != nil {
		return nil, errors.Errorf("failed to parse batch max size: %s", err.Error())
	}

	flushInterval := spiconfig.GetOrDefault(
		config, spiconfig.PropertyBatchFlushInterval, defaultFlushInterval,
	)
	if flushInterval <= 0 {
		flushInterval = defaultFlushInterval
	}

	return &Shipper{
		logger:      logger,
		sideChannel: sideChannel,
		filter:      filter,
		reporter:    reporter,
		maxRows: spiconfig.GetOrDefault(
			config, spiconfig.PropertyBatchMaxRows, spiconfig.DefaultBatchMaxRows,
		),
		maxBytes:      int(maxSize),
		flushInterval: flushInterval,
		maxRetries: uint64(spiconfig.GetOrDefault(
			config, spiconfig.PropertyBatchMaxRetries, spiconfig.DefaultBatchMaxRetries,
		)),
		queue: make(chan batchEntry, spiconfig.GetOrDefault(
			config, spiconfig.PropertyBatchQueueLength, spiconfig.DefaultBatchQueueLength,
		)),
		shutdownAwaiter: waiting.NewShutdownAwaiter(),
	}, nil
}

// Start connects the side channel, resolves the destination
// schema and launches the flush loop.
func (s *Shipper) Start() error {
	if _, err := s.sideChannel.Connect(); err != nil {
		return err
	}

	go s.flushLoop()
	return nil
}

// Ship hands one record over to the batching loop. The record
// ownership transfers to the shipper; size is the caller's
// estimate of the serialized record size, driving the batch byte
// threshold. Blocks when the queue is full.
func (s *Shipper) Ship(
	eventTime time.Time, rec record.Record, size int,
) error {

	s.intakeMutex.RLock()
	defer s.intakeMutex.RUnlock()

	if s.intakeClosed {
		return errors.Errorf("shipper is shutting down")
	}

	accepted, err := s.filter.Evaluate(rec)
	if err != nil {
		// Fail open, a broken filter must not lose records
		s.logger.Warnf("filter evaluation failed: %s", err.Error())
		accepted = true
	}
	if !accepted {
		s.reporter.Incr("records_filtered")
		s.logger.Debugf("record dropped by filter")
		return nil
	}

	s.queue <- batchEntry{eventTime: eventTime, rec: rec, size: size}
	s.reporter.Incr("records_accepted")
	return nil
}

// Stop closes the intake, flushes the final partial batch and
// tears the connection down.
func (s *Shipper) Stop() error {
	s.intakeMutex.Lock()
	if s.intakeClosed {
		s.intakeMutex.Unlock()
		return nil
	}
	s.intakeClosed = true
	close(s.queue)
	s.intakeMutex.Unlock()

	if err := s.shutdownAwaiter.AwaitDone(); err != nil {
		return err
	}
	return s.sideChannel.Close()
}

func (s *Shipper) flushLoop() {
	ticker := time.NewTicker(s.flushInterval)
	defer ticker.Stop()

	pending := make([]batchEntry, 0, s.maxRows)
	pendingBytes := 0

	flush := func() {
		if len(pending) == 0 {
			return
		}
		s.writeBatch(pending)
		pending = pending[:0]
		pendingBytes = 0
	}

	for {
		select {
		case entry, ok := <-s.queue:
			if !ok {
				flush()
				s.shutdownAwaiter.SignalDone()
				return
			}

			pending = append(pending, entry)
			pendingBytes += entry.size
			if len(pending) >= s.maxRows || pendingBytes >= s.maxBytes {
				flush()
				ticker.Reset(s.flushInterval)
			}
		case <-ticker.C:
			flush()
		}
	}
}

// writeBatch encodes and writes one batch, redelivering it with
// exponential backoff for as long as the side channel reports the
// failure as retryable. The batch is re-encoded on every attempt
// since a reconnect re-resolves the schema.
func (s *Shipper) writeBatch(
	entries []batchEntry,
) {

	operation := func() error {
		resolved := s.sideChannel.Schema()
		if resolved == nil {
			reconnected, err := s.sideChannel.Connect()
			if err != nil {
				return &spisidechannel.RetryableError{Cause: err}
			}
			resolved = reconnected
		}

		encoder, err := encoding.NewRowEncoder(resolved)
		if err != nil {
			return backoff.Permanent(err)
		}

		tuples := make([]string, 0, len(entries))
		for _, entry := range entries {
			tuples = append(tuples, encoder.EncodeRow(entry.eventTime, entry.rec))
		}

		if err := s.sideChannel.WriteBatch(encoder.EncodeBatch(tuples)); err != nil {
			if spisidechannel.IsRetryable(err) {
				s.reporter.Incr("batch_retries")
				return err
			}
			return backoff.Permanent(err)
		}
		return nil
	}

	// Run with backoff (it'll automatically reset before starting)
	err := backoff.Retry(
		operation, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), s.maxRetries),
	)
	if err != nil {
		s.reporter.Incr("batches_failed")
		s.logger.Errorf(
			"batch of %d records failed after redelivery attempts were exhausted: %s",
			len(entries), err.Error(),
		)
		return
	}

	s.reporter.Add("rows_written", len(entries))
	s.reporter.Incr("batches_written")
}
