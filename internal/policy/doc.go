// Package policy decides which workspace switches and app launches are
// allowed during a focus session.
//
// The policy holds the workspace allow-list, window class exceptions, and the
// spawn whitelist. It reads the session-active and break-time flags owned by
// the controller and never calls into the scheduler, so decisions are cheap
// and deadlock-free.
//
// Rules:
//   - Negative workspace IDs are special workspaces, always allowed
//   - Breaks are unenforced unless configured otherwise
//   - Floating windows and excepted classes escape enforcement
//   - Spawn whitelist matches case-insensitive substrings
package policy
