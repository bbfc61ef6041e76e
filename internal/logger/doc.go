// Package logger wraps a process-wide zap logger behind context-aware helpers.
// Each level has plain, formatted (f) and key-value (KV) variants, and the level can be changed at runtime.
package logger
