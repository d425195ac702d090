// Package http provides the control API handlers for the focus daemon.
//
// All endpoints use the Gin framework and JSON bodies.
//
// Endpoints:
//   - Health: / and /health
//   - Session: /session/start, /session/stop, /session/confirm,
//     /session/pause, /session/resume, /session/toggle, /session/status
//   - Policy: /policy/workspaces, /policy/apps, /policy/exceptions
//   - Events: /events/workspace, /events/spawn, /events/window
//   - Config: /config/reload
package http
