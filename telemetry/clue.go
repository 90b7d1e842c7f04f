package telemetry

import (
	"context"

	"goa.design/clue/log"
)

// ClueLogger adapts goa.design/clue/log to Logger, the way
// runtime/agent/telemetry/clue.go does in the teacher tree: the context
// passed in must already carry a clue log context (log.Context(...)).
type ClueLogger struct{}

// NewClueLogger returns a Logger backed by clue.
func NewClueLogger() ClueLogger { return ClueLogger{} }

func (ClueLogger) Debug(ctx context.Context, msg string, kvs ...KV) {
	log.Debug(ctx, fielders(msg, kvs)...)
}

func (ClueLogger) Info(ctx context.Context, msg string, kvs ...KV) {
	log.Info(ctx, fielders(msg, kvs)...)
}

func (ClueLogger) Warn(ctx context.Context, msg string, kvs ...KV) {
	log.Warn(ctx, fielders(msg, kvs)...)
}

func (ClueLogger) Error(ctx context.Context, msg string, kvs ...KV) {
	log.Error(ctx, nil, fielders(msg, kvs)...)
}

func fielders(msg string, kvs []KV) []log.Fielder {
	out := make([]log.Fielder, 0, len(kvs)+1)
	out = append(out, log.KV{K: "msg", V: msg})
	for _, kv := range kvs {
		out = append(out, log.KV{K: kv.K, V: kv.V})
	}
	return out
}
