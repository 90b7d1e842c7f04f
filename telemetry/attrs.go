package telemetry

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
)

func toAttrs(kvs []KV) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(kvs))
	for _, kv := range kvs {
		switch v := kv.V.(type) {
		case string:
			attrs = append(attrs, attribute.String(kv.K, v))
		case int:
			attrs = append(attrs, attribute.Int(kv.K, v))
		case int64:
			attrs = append(attrs, attribute.Int64(kv.K, v))
		case float64:
			attrs = append(attrs, attribute.Float64(kv.K, v))
		case bool:
			attrs = append(attrs, attribute.Bool(kv.K, v))
		default:
			attrs = append(attrs, attribute.String(kv.K, fmt.Sprintf("%v", v)))
		}
	}
	return attrs
}
