// Package ws implements the WebSocket hub for drillscope-server.
//
// Hub manages a set of connected clients and broadcasts the list of cached
// uploads to all of them on a configurable interval, and immediately after
// each new upload via Notify.
//
// Message format sent to clients:
//
//	{
//	  "event": "uploads",
//	  "data":  { /* same schema as GET /api/v1/uploads */ }
//	}
//
// The upgrader accepts all origins. Apply CORS restrictions at the reverse
// proxy level. The endpoint is mounted at /ws/stream by the server.
package ws
