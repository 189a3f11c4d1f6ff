package logging

import "fmt"

// KeyValueLogger adapts a Logger to the key/value leveled logging signature
// used by HTTP client libraries (retryablehttp.LeveledLogger). Odd trailing
// keys are logged under "extra".
type KeyValueLogger struct {
	L Logger
}

func (k KeyValueLogger) Error(msg string, keysAndValues ...interface{}) {
	k.L.Error(msg, kvFields(keysAndValues)...)
}

func (k KeyValueLogger) Info(msg string, keysAndValues ...interface{}) {
	k.L.Info(msg, kvFields(keysAndValues)...)
}

// Debug logs at debug level; retry chatter lives here.
func (k KeyValueLogger) Debug(msg string, keysAndValues ...interface{}) {
	k.L.Debug(msg, kvFields(keysAndValues)...)
}

func (k KeyValueLogger) Warn(msg string, keysAndValues ...interface{}) {
	k.L.Warn(msg, kvFields(keysAndValues)...)
}

func kvFields(kv []interface{}) []Field {
	fields := make([]Field, 0, (len(kv)+1)/2)
	for i := 0; i < len(kv); i += 2 {
		if i+1 >= len(kv) {
			fields = append(fields, Field{Key: "extra", Value: fmt.Sprint(kv[i])})
			break
		}
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		fields = append(fields, Field{Key: key, Value: kv[i+1]})
	}
	return fields
}
