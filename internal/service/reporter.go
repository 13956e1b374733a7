package service

import "go.uber.org/zap"

// Reporter receives progress events from the pipeline. The caller decides
// how to present them; library code only emits.
type Reporter interface {
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
}

type zapReporter struct {
	log *zap.SugaredLogger
}

// NewZapReporter adapts a zap logger into a Reporter.
func NewZapReporter(log *zap.Logger) Reporter {
	return &zapReporter{log: log.Sugar()}
}

func (r *zapReporter) Info(msg string, kv ...any)  { r.log.Infow(msg, kv...) }
func (r *zapReporter) Warn(msg string, kv ...any)  { r.log.Warnw(msg, kv...) }
func (r *zapReporter) Error(msg string, kv ...any) { r.log.Errorw(msg, kv...) }

// NopReporter discards every event.
type NopReporter struct{}

func (NopReporter) Info(string, ...any)  {}
func (NopReporter) Warn(string, ...any)  {}
func (NopReporter) Error(string, ...any) {}
