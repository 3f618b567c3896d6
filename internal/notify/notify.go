// Package notify sends best-effort desktop notifications. Failures are
// swallowed: a missed notification never fails the action that triggered it.
package notify

import "github.com/gen2brain/beeep"

func Send(title, message string) {
	_ = beeep.Notify(title, message, "")
}
