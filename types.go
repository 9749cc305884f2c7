package authclient

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// IdentityStore mirrors the last-known Identity into durable local storage.
// Implementations must treat the stored record as a hint: it is written in
// lockstep with identity changes and is never authoritative on its own.
type IdentityStore interface {
	Load(ctx context.Context) (*User, error)
	Save(ctx context.Context, user *User) error
	Clear(ctx context.Context) error
}

// Subscriber receives the current identity whenever it changes. A nil user
// means the session ended.
type Subscriber func(user *User)

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTHCLIENT "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTHCLIENT "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTHCLIENT "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
