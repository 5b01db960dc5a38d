// Package server provides HTTP routing, middleware and the local control API used by `modsync serve`.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (first added runs outermost).
//
// The [BasicRouter] implementation registers "METHOD /path" patterns on an [http.ServeMux],
// so wildcards like {id} are available through [http.Request.PathValue].
//
// # Control API
//
// [SyncHandler] exposes the profile store and sync engine:
//
//	GET  /profiles                 profile summaries
//	GET  /profiles/{id}            full profile document
//	POST /profiles/{id}/sync       start a run (202, 409 when one is active)
//	POST /profiles/{id}/cancel     request cancellation (202, 409 when idle)
//	GET  /profiles/{id}/progress   latest progress event
//
// {id} accepts a profile ID or its name.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
