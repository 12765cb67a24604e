// Package trace records what the bridge does with backend resources.
//
// It is the logging layer of llbridge: sessions, scanned files and every
// owned-resource create and dispose can be emitted as events, either
// streamed to a writer or kept in a ring buffer for post-mortem dumps.
//
// # Levels
//
//   - LevelOff: nothing
//   - LevelError: only failures
//   - LevelSession: session and file spans
//   - LevelResource: adds create/dispose of owned resources
//   - LevelDebug: adds every traced catalog call
//
// # Usage
//
//	tr, err := trace.New(trace.Config{Level: trace.LevelResource, Mode: trace.ModeStream})
//	ctx = trace.WithTracer(ctx, tr)
//
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopeFile, "scan:a.o", 0)
//	defer span.End("")
package trace
