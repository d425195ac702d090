// Package host bridges the daemon to the Hyprland compositor over its IPC
// sockets.
//
// The request socket serves one command per connection (workspace queries,
// dispatchers, notifications); the event socket streams compositor events
// that feed workspace enforcement.
package host
