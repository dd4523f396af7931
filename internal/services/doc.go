// Package services implements the HTTP clients for the Product Discovery backend.
//
// # Workflow API
//
// [DiscoveryService] drives the search workflow endpoints: session start, full
// status fetch, the three confirmation posts, and final results. It implements
// [WorkflowAPI] and [StreamOpener], the two interfaces the workflow controller
// depends on. Requests are throttled with a client-side [rate.Limiter].
//
// # Progress Stream
//
// [ProgressStream] subscribes to the per-session SSE endpoint and delivers
// decoded [models.ProgressEvent] values on a channel. One subscription per
// session; Close is idempotent and transport failures are reported via Err
// after the event channel closes.
//
// # Authentication
//
// [AuthService] handles the collaborator endpoints under /auth: phone login,
// logout, profile, session-limit checks, and session start/complete tracking.
// It attaches either a bearer token ([oauth2.Token], persisted as JSON) or the
// persistent guest UUID (X-Guest-Id header) to outgoing requests.
//
// # Error Handling
//
// Non-2xx responses become [*APIError] carrying the status code and the
// backend's detail message. Transport failures are wrapped with
// [shared.ErrAPIRequest]. Nothing is retried.
package services
