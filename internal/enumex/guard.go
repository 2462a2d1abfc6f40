package enumex

import "context"

// hook identifies one dispatcher entry point for the reentrancy guard.
type hook uint8

const (
	hookTypeGet hook = 1 << iota
	hookInstanceGet
	hookInstanceSet
	hookInstanceDelete
)

func (h hook) String() string {
	switch h {
	case hookTypeGet:
		return "type-get"
	case hookInstanceGet:
		return "instance-get"
	case hookInstanceSet:
		return "instance-set"
	case hookInstanceDelete:
		return "instance-delete"
	}
	return "unknown"
}

type guardKey struct{}

// reentering reports whether h is already active on ctx.
//
// Guard state lives in the context rather than in a global, so one goroutine's
// in-flight dispatch never suppresses enforcement for another.
func reentering(ctx context.Context, h hook) bool {
	active, _ := ctx.Value(guardKey{}).(hook)
	return active&h != 0
}

// enter returns a context with h marked active. Leaving the hook is implicit:
// callers keep using their original context once the hook body returns.
func enter(ctx context.Context, h hook) context.Context {
	active, _ := ctx.Value(guardKey{}).(hook)
	return context.WithValue(ctx, guardKey{}, active|h)
}

// hookFor maps an access to the guard key of the hook serving it.
// Calls go through the get hooks: a call is a get followed by invocation.
func hookFor(access Access, typeLevel bool) hook {
	if typeLevel {
		return hookTypeGet
	}
	switch access {
	case AccessSet:
		return hookInstanceSet
	case AccessDelete:
		return hookInstanceDelete
	default:
		return hookInstanceGet
	}
}
