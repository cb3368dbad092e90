package llm

import "context"

type taskKey struct{}

// WithTask tags ctx with the decision task ("routing", "triage", "final")
// so middleware can label what a request was for.
func WithTask(ctx context.Context, task string) context.Context {
	return context.WithValue(ctx, taskKey{}, task)
}

// TaskFrom returns the task set by WithTask, or "" if none.
func TaskFrom(ctx context.Context) string {
	if task, ok := ctx.Value(taskKey{}).(string); ok {
		return task
	}
	return ""
}
