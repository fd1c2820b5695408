package logging

import (
	"time"
)

func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Strings(key string, values []string) Field {
	return Field{Key: key, Value: values}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Planner-specific fields.

func Component(name string) Field   { return String("component", name) }
func Stage(name string) Field       { return String("stage", name) }
func RunID(id string) Field         { return String("run_id", id) }
func Customer(name string) Field    { return String("customer", name) }
func Terminal(name string) Field    { return String("terminal", name) }
func Transformer(name string) Field { return String("transformer", name) }
func PathID(id string) Field        { return String("path_id", id) }
func Episode(n int) Field           { return Int("episode", n) }
func Count(n int) Field             { return Int("count", n) }

func Latency(d time.Duration) Field {
	return Duration("latency", d)
}
