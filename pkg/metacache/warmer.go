// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metacache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/msoukhomlinov/autotask-mcp/pkg/observability"
)

// Warmer refreshes the field sets of a fixed resource list on a cron
// schedule, so tool calls rarely pay for a metadata round trip.
type Warmer struct {
	source    *CachedSource
	resources []string
	schedule  string
	logger    *zap.Logger
	tracer    observability.Tracer

	mu      sync.Mutex
	engine  *cron.Cron
	baseCtx context.Context
	cancel  context.CancelFunc
}

// NewWarmer validates schedule (standard five-field cron syntax or a
// descriptor such as "@every 6h") and returns a stopped warmer.
func NewWarmer(source *CachedSource, resources []string, schedule string, logger *zap.Logger, tracer observability.Tracer) (*Warmer, error) {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", schedule, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if tracer == nil {
		tracer = observability.NewNoOpTracer()
	}
	return &Warmer{
		source:    source,
		resources: append([]string(nil), resources...),
		schedule:  schedule,
		logger:    logger,
		tracer:    tracer,
	}, nil
}

// Start schedules the refresh job. Jobs run with a context derived from ctx
// and are cancelled by Stop.
func (w *Warmer) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.engine != nil {
		return fmt.Errorf("warmer already started")
	}

	w.baseCtx, w.cancel = context.WithCancel(ctx)
	engine := cron.New()
	if _, err := engine.AddFunc(w.schedule, func() {
		if _, err := w.Refresh(w.baseCtx); err != nil {
			w.logger.Warn("Scheduled metadata refresh incomplete", zap.Error(err))
		}
	}); err != nil {
		w.cancel()
		return fmt.Errorf("failed to schedule refresh: %w", err)
	}
	engine.Start()
	w.engine = engine

	w.logger.Info("Metadata warmer started",
		zap.String("schedule", w.schedule),
		zap.Int("resources", len(w.resources)))
	return nil
}

// Stop cancels running jobs and waits for them to return.
func (w *Warmer) Stop() {
	w.mu.Lock()
	engine := w.engine
	cancel := w.cancel
	w.engine = nil
	w.mu.Unlock()

	if engine == nil {
		return
	}
	cancel()
	cronCtx := engine.Stop()
	<-cronCtx.Done()
	w.logger.Info("Metadata warmer stopped")
}

// Refresh reloads every resource once and returns how many succeeded.
// Failures for individual resources are joined into the returned error.
func (w *Warmer) Refresh(ctx context.Context) (int, error) {
	ctx, span := w.tracer.StartSpan(ctx, observability.SpanMetadataRefresh)
	defer w.tracer.EndSpan(span)

	var (
		refreshed int
		errs      []error
	)
	for _, resource := range w.resources {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := w.source.Refresh(ctx, resource); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", resource, err))
			continue
		}
		refreshed++
	}

	span.SetAttribute("metadata.refreshed", refreshed)
	err := errors.Join(errs...)
	if err != nil {
		span.RecordError(err)
	} else {
		span.Status = observability.Status{Code: observability.StatusOK}
	}
	w.logger.Debug("Metadata refresh finished", zap.Int("refreshed", refreshed), zap.Int("failed", len(errs)))
	return refreshed, err
}
