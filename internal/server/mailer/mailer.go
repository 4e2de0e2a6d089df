// Package mailer sends the transactional emails (verification links, short
// codes, password resets). Services must only call it after their database
// transaction has committed: a unit of work that may be re-run under the
// serializable retry loop must not fire mail mid-flight.
package mailer

import "context"

// Message is a plain-text email.
type Message struct {
	To      string
	ToName  string
	Subject string
	Body    string
}

// Mailer delivers messages. Implementations must be safe for concurrent use.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
