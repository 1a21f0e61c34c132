// Package progress parses server-pushed progress frames for document tasks.
//
// Frames arrive as JSON discriminated by the task_type field. Decode turns a
// frame into its task-specific Update variant and rejects unrecognized tags;
// the keep-alive pong sentinel is detected separately so it never touches
// tracked state.
package progress
