/*
Copyright 2023.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package datastore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newGormLogrusLogger returns a gorm logger that writes through logrus.
// Statements slower than slowLogThreshold are logged at warn level.
func newGormLogrusLogger(entry *logrus.Entry, slowLogThreshold time.Duration) *gormLogger {
	return &gormLogger{
		entry:            entry,
		slowLogThreshold: slowLogThreshold,
		level:            logger.Info,
	}
}

var _ logger.Interface = &gormLogger{}

type gormLogger struct {
	entry            *logrus.Entry
	slowLogThreshold time.Duration
	level            logger.LogLevel
}

// forDataset tags every statement with the dataset it was issued for.
func (g *gormLogger) forDataset(name string) *gormLogger {
	clone := *g
	clone.entry = g.entry.WithField("dataset", name)
	return &clone
}

func (g *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *g
	clone.level = level
	return &clone
}

func (g *gormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if g.level >= logger.Info {
		g.withContext(ctx).Info(fmt.Sprintf(msg, data...))
	}
}

func (g *gormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if g.level >= logger.Warn {
		g.withContext(ctx).Warn(fmt.Sprintf(msg, data...))
	}
}

func (g *gormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if g.level >= logger.Error {
		g.withContext(ctx).Error(fmt.Sprintf(msg, data...))
	}
}

// withContext adds the trace id of the percentile request, if any.
func (g *gormLogger) withContext(ctx context.Context) *logrus.Entry {
	if ctx == nil {
		return g.entry
	}
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return g.entry
	}
	return g.entry.WithField("trace_id", sc.TraceID().String())
}

func (g *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)
	sql, rows := fc()
	fields := logrus.Fields{
		"rows":        rows,
		"duration_ms": float64(elapsed.Nanoseconds()) / 1e6,
	}
	entry := g.withContext(ctx)

	switch {
	case err != nil:
		// record not found is an expected error and thus not logged
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return
		}
		fields["error"] = err
		entry.WithFields(fields).Warn(sql)
	case g.slowLogThreshold > 0 && elapsed > g.slowLogThreshold:
		entry.WithFields(fields).Warnf("slow query: %v", sql)
	default:
		entry.WithFields(fields).Debug(sql)
	}
}
