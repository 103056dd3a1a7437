// Package oracle wraps the remote content-safety/generation service.
// Both operations are network calls with no SLA; callers are expected to
// bound them with a context deadline.
package oracle

import "context"

// Verdict is the outcome of a moderation check. HarmCategories lists the
// axes that rated above negligible severity when Allowed is false.
type Verdict struct {
	Allowed        bool
	HarmCategories []string
}

// Oracle is the moderation/generation boundary used by the comment service
// and the reply worker. Generate performs no retries itself; redelivery
// policy belongs to the job queue.
type Oracle interface {
	// Check classifies content (and an optional title) against harm
	// categories and returns an allow/block verdict.
	Check(ctx context.Context, content, title string) (Verdict, error)

	// Generate produces a free-form reply to the given content and optional
	// title. An empty response is reported as an error.
	Generate(ctx context.Context, content, title string) (string, error)
}
