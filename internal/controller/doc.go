// Package controller coordinates the session scheduler, enforcement policy,
// and exit challenge behind a single command surface.
//
// Every state mutation flows through the controller: API commands, scheduler
// transition callbacks, and compositor events. The engines never talk to each
// other directly.
//
// Commands:
//   - Start/Stop/ConfirmStop: session lifecycle with challenge gating
//   - Pause/Resume/Toggle: clock control
//   - AllowWorkspace/AllowApp/AddExceptionClass: live policy edits
//   - Status: read-only summary and snapshot
//
// Events:
//   - HandleWorkspaceChange: reverts disallowed switches
//   - HandleSpawn: allows or blocks app launches
//
// Example Usage:
//
//	ctrl := controller.New(cfg, hostClient, sink, state, shaker, metrics, log)
//	msg, err := ctrl.Start("1,2@50")
package controller
