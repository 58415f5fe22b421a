package out

import "context"

// AgentMemory is short-lived scratch storage for multi-step agent runs,
// namespaced per user and thread
type AgentMemory interface {
	Append(ctx context.Context, namespace, entry string) error
	Recent(ctx context.Context, namespace string, limit int) ([]string, error)
	Clear(ctx context.Context, namespace string) error
}
