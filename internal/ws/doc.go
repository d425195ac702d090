// Package ws streams session snapshots to websocket subscribers.
//
// The hub implements the controller's state sink, so status widgets receive
// every tick and transition live without polling the state file.
//
// Message Types (Client → Server):
//   - ping: keep-alive ping
//
// Message Types (Server → Client):
//   - system: connection banner
//   - snapshot: session state snapshot
//   - pong: keep-alive reply
//
// Example Usage:
//
//	hub := ws.NewHub(log)
//	router.GET("/stream", hub.HandleConnection)
package ws
