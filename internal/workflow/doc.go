// Package workflow implements the session workflow controller, the state
// machine driving a server-confirmed product discovery session.
//
// # State machine
//
// A session moves through:
//
//	Idle → Starting → Streaming → AwaitingProduct | AwaitingVariant | AwaitingExtraction → Streaming → Completed | Failed
//
// with ExtractionRejected as an explicit terminal phase for a rejected URL
// extraction. Terminal phases are Completed, Failed, and ExtractionRejected.
//
// # Execution model
//
// The controller is single-threaded by contract: every method is called from
// the goroutine that owns it (the CLI pump or the bubbletea update loop).
// The progress stream's reader goroutine only delivers events on a channel;
// the owner receives them and feeds [Controller.HandleEvent]. No locking is
// needed because there is no parallel mutation.
//
// # Rendering
//
// The controller never touches presentation. [Controller.Snapshot] returns a
// description of what to show; the CLI formatter and the TUI are both
// adapters over snapshots. Idempotent redisplay of a confirmation prompt is a
// property of the phase: a duplicate status event for the kind already being
// awaited triggers no status fetch and no repopulation.
//
// # Failure semantics
//
// Network calls are never retried. A failed start or confirm surfaces the
// error and halts that sub-flow; a failed confirm leaves the awaiting phase
// intact so the user can retry. A progress stream that closes without a
// terminal event transitions the session to Failed via
// [Controller.StreamClosed] rather than leaving the UI streaming forever.
package workflow
