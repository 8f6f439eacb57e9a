package httpapi

import "context"

// serverBaseCtx ends when the process shuts down. Handlers that wait on
// long operations join it with the request context.
var serverBaseCtx = context.Background()

// SetBaseContext sets the process-level context; nil resets it to Background.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	serverBaseCtx = ctx
}

// joinContexts derives from a and is additionally canceled when b is done.
// The returned cancel must be called when the handler returns.
func joinContexts(a, b context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(a)
	stop := context.AfterFunc(b, func() { cancel(context.Cause(b)) })
	return ctx, func() {
		stop()
		cancel(context.Canceled)
	}
}
