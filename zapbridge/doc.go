// Package zapbridge adapts the JSON formatting pipeline to go.uber.org/zap
// by implementing zapcore.Core, so applications already instrumented with
// zap can switch record layouts without touching call sites.
package zapbridge
