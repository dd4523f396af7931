package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"scout/internal/models"
	"scout/internal/services"
	"scout/internal/shared"
)

// Phase is the controller's position in the session state machine.
type Phase int

const (
	Idle Phase = iota
	Starting
	Streaming
	AwaitingProduct
	AwaitingVariant
	AwaitingExtraction
	ExtractionRejected
	Completed
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Starting:
		return "starting"
	case Streaming:
		return "streaming"
	case AwaitingProduct:
		return "awaiting_product"
	case AwaitingVariant:
		return "awaiting_variant"
	case AwaitingExtraction:
		return "awaiting_extraction"
	case ExtractionRejected:
		return "extraction_rejected"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return ""
	}
}

// Terminal reports whether no further events will be processed in this phase.
func (p Phase) Terminal() bool {
	return p == Completed || p == Failed || p == ExtractionRejected
}

// Awaiting reports whether the session is paused on a confirmation sub-flow.
func (p Phase) Awaiting() bool {
	return p == AwaitingProduct || p == AwaitingVariant || p == AwaitingExtraction
}

// ConfirmKind identifies which candidate list a selection or confirmation targets.
type ConfirmKind int

const (
	KindProduct ConfirmKind = iota
	KindVariant
)

func (k ConfirmKind) String() string {
	if k == KindVariant {
		return "variant"
	}
	return "product"
}

// SessionTracker records session starts and completions with the auth
// collaborator. Tracking failures never interrupt the workflow.
type SessionTracker interface {
	TrackSession(ctx context.Context, sessionID string, inputType models.InputType, userInput string) error
	CompleteSession(ctx context.Context, sessionID string) error
}

// Controller owns all state for one workflow session at a time.
//
// At most one progress stream is open per controller; starting a new session
// closes the previous subscription first.
type Controller struct {
	api     services.WorkflowAPI
	streams services.StreamOpener
	tracker SessionTracker
	logger  *log.Logger

	phase     Phase
	sessionID string
	inputType models.InputType
	userInput string

	logs      []models.LogEntry
	products  []models.ProductCandidate
	variants  []models.VariantCandidate
	extracted *models.ExtractedDetails

	selectedProduct int
	selectedVariant int

	results  []models.ResultItem
	errorMsg string

	stream services.Stream
}

// ControllerOpts contains dependencies for creating a Controller.
type ControllerOpts struct {
	API     services.WorkflowAPI
	Streams services.StreamOpener
	Tracker SessionTracker // optional
	Logger  *log.Logger
}

// NewController creates an idle controller with the provided dependencies.
func NewController(opts ControllerOpts) *Controller {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Controller{
		api:             opts.API,
		streams:         opts.Streams,
		tracker:         opts.Tracker,
		logger:          opts.Logger,
		phase:           Idle,
		selectedProduct: -1,
		selectedVariant: -1,
	}
}

// Phase returns the controller's current phase.
func (c *Controller) Phase() Phase { return c.phase }

// SessionID returns the active session id, empty when idle.
func (c *Controller) SessionID() string { return c.sessionID }

// Start begins a new workflow session and opens its progress stream.
//
// Empty or invalid input is rejected locally without a network call. Any
// previously open stream is closed before the new subscription is opened.
// Returns the event channel the owner must pump into HandleEvent.
func (c *Controller) Start(ctx context.Context, inputType models.InputType, userInput string) (<-chan models.ProgressEvent, error) {
	userInput = strings.TrimSpace(userInput)
	if !inputType.Valid() {
		return nil, fmt.Errorf("%w: input type must be 'keyword' or 'url'", shared.ErrInvalidInput)
	}
	if userInput == "" {
		return nil, fmt.Errorf("%w: input cannot be empty", shared.ErrInvalidInput)
	}

	c.closeStream()
	c.clearSession()

	c.phase = Starting
	c.inputType = inputType
	c.userInput = userInput

	sessionID, err := c.api.Start(ctx, inputType, userInput)
	if err != nil {
		c.fail(fmt.Sprintf("failed to start workflow: %v", err))
		return nil, err
	}
	c.sessionID = sessionID

	stream, err := c.streams.Progress(ctx, sessionID)
	if err != nil {
		c.fail(fmt.Sprintf("failed to open progress stream: %v", err))
		return nil, err
	}
	c.stream = stream
	c.phase = Streaming

	c.logger.Info("workflow session started", "session_id", sessionID, "input_type", inputType)

	if c.tracker != nil {
		if err := c.tracker.TrackSession(ctx, sessionID, inputType, userInput); err != nil {
			c.logger.Warn("failed to track session", "error", err)
		}
	}

	return stream.Events(), nil
}

// HandleEvent applies one progress event to the state machine.
func (c *Controller) HandleEvent(ctx context.Context, ev models.ProgressEvent) error {
	if c.phase.Terminal() || c.phase == Idle {
		// Late events after completion/reset are dropped.
		return nil
	}

	switch ev.Kind {
	case models.EventLog:
		if ev.Log != nil {
			c.logs = append(c.logs, *ev.Log)
		}
		return nil

	case models.EventStatus:
		if ev.Status == nil || !ev.Status.NeedsConfirmation() {
			return nil
		}
		return c.enterConfirmation(ctx, *ev.Status)

	case models.EventComplete:
		c.closeStream()
		c.results = ev.Results
		c.phase = Completed
		c.logger.Info("workflow completed", "session_id", c.sessionID, "results", len(ev.Results))
		c.completeTracking(ctx)
		return nil

	case models.EventError:
		c.closeStream()
		c.fail(ev.Err)
		return nil

	default:
		return fmt.Errorf("unhandled event kind %q", ev.Kind)
	}
}

// enterConfirmation transitions into the confirmation sub-flow the status
// event signals, fetching the full payload only on the first transition.
//
// The server emits repeated status events while waiting; a duplicate for the
// sub-flow already on screen must not refetch or repopulate candidates, or an
// in-progress selection would be reset.
func (c *Controller) enterConfirmation(ctx context.Context, flags models.StatusFlags) error {
	var target Phase
	switch {
	case flags.NeedsProductConfirmation:
		target = AwaitingProduct
	case flags.NeedsVariantConfirmation:
		target = AwaitingVariant
	case flags.NeedsURLExtractionConfirmation:
		target = AwaitingExtraction
	}

	if c.phase == target {
		return nil
	}

	status, err := c.api.Status(ctx, c.sessionID)
	if err != nil {
		// Stay in the current phase; the next status event retries naturally.
		c.logger.Warn("failed to fetch status payload", "error", err)
		return err
	}

	switch target {
	case AwaitingProduct:
		c.products = status.ProductCandidates
		c.selectedProduct = -1
	case AwaitingVariant:
		c.variants = status.VariantCandidates
		c.selectedVariant = -1
	case AwaitingExtraction:
		c.extracted = status.ExtractedDetails
	}

	c.phase = target
	return nil
}

// Select records a candidate choice locally. No network call is made; a later
// Confirm submits it. Selecting again overwrites the prior choice.
func (c *Controller) Select(kind ConfirmKind, index int) error {
	switch kind {
	case KindProduct:
		if c.phase != AwaitingProduct {
			return fmt.Errorf("%w: no product confirmation pending", shared.ErrInvalidArgument)
		}
		if index < 0 || index >= len(c.products) {
			return fmt.Errorf("%w: product index %d out of range", shared.ErrInvalidArgument, index)
		}
		c.selectedProduct = index
	case KindVariant:
		if c.phase != AwaitingVariant {
			return fmt.Errorf("%w: no variant confirmation pending", shared.ErrInvalidArgument)
		}
		if index < 0 || index >= len(c.variants) {
			return fmt.Errorf("%w: variant index %d out of range", shared.ErrInvalidArgument, index)
		}
		c.selectedVariant = index
	}
	return nil
}

// Confirm submits the recorded selection for the given kind.
//
// Without a prior Select the call is rejected locally. On success the
// selection is cleared and streaming resumes; on failure the awaiting phase
// is left intact so the user can retry.
func (c *Controller) Confirm(ctx context.Context, kind ConfirmKind) error {
	switch kind {
	case KindProduct:
		if c.phase != AwaitingProduct {
			return fmt.Errorf("%w: no product confirmation pending", shared.ErrInvalidArgument)
		}
		if c.selectedProduct < 0 {
			return shared.ErrNoSelection
		}
		if err := c.api.ConfirmProduct(ctx, c.sessionID, c.selectedProduct); err != nil {
			return err
		}
		c.selectedProduct = -1
		c.products = nil

	case KindVariant:
		if c.phase != AwaitingVariant {
			return fmt.Errorf("%w: no variant confirmation pending", shared.ErrInvalidArgument)
		}
		if c.selectedVariant < 0 {
			return shared.ErrNoSelection
		}
		if err := c.api.ConfirmVariant(ctx, c.sessionID, c.selectedVariant); err != nil {
			return err
		}
		c.selectedVariant = -1
		c.variants = nil
	}

	c.phase = Streaming
	return nil
}

// ConfirmExtraction accepts or rejects the extracted URL details.
//
// Accepting resumes streaming. Rejecting is terminal: the stream is closed
// and the session ends in the explicit ExtractionRejected phase.
func (c *Controller) ConfirmExtraction(ctx context.Context, confirmed bool) error {
	if c.phase != AwaitingExtraction {
		return fmt.Errorf("%w: no extraction confirmation pending", shared.ErrInvalidArgument)
	}

	if err := c.api.ConfirmExtraction(ctx, c.sessionID, confirmed); err != nil {
		return err
	}

	c.extracted = nil
	if confirmed {
		c.phase = Streaming
		return nil
	}

	c.closeStream()
	c.phase = ExtractionRejected
	c.errorMsg = "URL extraction rejected"
	c.completeTracking(ctx)
	return nil
}

// StreamClosed handles the event channel closing without a terminal event.
//
// A silent disconnect would otherwise leave the UI streaming forever; it is
// treated as a failure.
func (c *Controller) StreamClosed() {
	if c.phase != Streaming && !c.phase.Awaiting() {
		return
	}

	msg := "progress stream disconnected"
	if c.stream != nil {
		if err := c.stream.Err(); err != nil {
			msg = fmt.Sprintf("progress stream disconnected: %v", err)
		}
	}

	c.closeStream()
	c.fail(msg)
}

// Reset tears the session down and returns to Idle. Callable from any phase.
func (c *Controller) Reset(ctx context.Context) {
	c.closeStream()
	c.completeTracking(ctx)
	c.clearSession()
	c.phase = Idle
}

// Snapshot describes what a rendering adapter should show.
type Snapshot struct {
	Phase           Phase
	SessionID       string
	Logs            []models.LogEntry
	Products        []models.ProductCandidate
	Variants        []models.VariantCandidate
	Extracted       *models.ExtractedDetails
	SelectedProduct int
	SelectedVariant int
	Results         []models.ResultItem
	ErrorMessage    string
}

// Snapshot returns a copy of the current view state.
func (c *Controller) Snapshot() Snapshot {
	snap := Snapshot{
		Phase:           c.phase,
		SessionID:       c.sessionID,
		SelectedProduct: c.selectedProduct,
		SelectedVariant: c.selectedVariant,
		Extracted:       c.extracted,
		ErrorMessage:    c.errorMsg,
	}

	snap.Logs = append(snap.Logs, c.logs...)
	snap.Products = append(snap.Products, c.products...)
	snap.Variants = append(snap.Variants, c.variants...)
	snap.Results = append(snap.Results, c.results...)

	return snap
}

func (c *Controller) fail(msg string) {
	c.phase = Failed
	c.errorMsg = msg
	c.logger.Error("workflow failed", "session_id", c.sessionID, "error", msg)
}

// closeStream tears down the current subscription if one is open.
func (c *Controller) closeStream() {
	if c.stream != nil {
		c.stream.Close()
		c.stream = nil
	}
}

// completeTracking reports session completion to the auth collaborator, best effort.
func (c *Controller) completeTracking(ctx context.Context) {
	if c.tracker == nil || c.sessionID == "" {
		return
	}
	if err := c.tracker.CompleteSession(ctx, c.sessionID); err != nil {
		c.logger.Warn("failed to mark session complete", "error", err)
	}
}

// clearSession wipes all per-session state.
func (c *Controller) clearSession() {
	c.sessionID = ""
	c.inputType = ""
	c.userInput = ""
	c.logs = nil
	c.products = nil
	c.variants = nil
	c.extracted = nil
	c.selectedProduct = -1
	c.selectedVariant = -1
	c.results = nil
	c.errorMsg = ""
}
