package simplemedia

import (
	"context"
	"log/slog"
)

// Hooks lets callers extend the manager's create, update and remove cycles
// without touching the provider. Hooks run in order; a hook can stop the rest
// of its chain through HookContext.StopChain.
type Hooks struct {
	BeforeMediaCreate []MediaHook
	AfterMediaCreate  []MediaHook
	BeforeMediaUpdate []MediaHook
	AfterMediaUpdate  []MediaHook
	BeforeMediaRemove []MediaHook
	AfterMediaRemove  []MediaHook

	OnError []ErrorHook
}

// HookContext carries information through the hook chain
type HookContext struct {
	Context   context.Context
	Metadata  map[string]interface{} // Custom metadata passed between hooks
	StopChain bool                   // Set to true to stop processing remaining hooks
}

// NewHookContext creates a new hook context
func NewHookContext(ctx context.Context) *HookContext {
	return &HookContext{
		Context:  ctx,
		Metadata: make(map[string]interface{}),
	}
}

// MediaHook is called around a media lifecycle step. Before hooks may modify the record.
type MediaHook func(hctx *HookContext, media *Media) error

// ErrorHook is called when an operation fails
type ErrorHook func(hctx *HookContext, operation string, err error)

// Merge appends the hooks of other after those already registered
func (h *Hooks) Merge(other *Hooks) {
	if other == nil {
		return
	}
	h.BeforeMediaCreate = append(h.BeforeMediaCreate, other.BeforeMediaCreate...)
	h.AfterMediaCreate = append(h.AfterMediaCreate, other.AfterMediaCreate...)
	h.BeforeMediaUpdate = append(h.BeforeMediaUpdate, other.BeforeMediaUpdate...)
	h.AfterMediaUpdate = append(h.AfterMediaUpdate, other.AfterMediaUpdate...)
	h.BeforeMediaRemove = append(h.BeforeMediaRemove, other.BeforeMediaRemove...)
	h.AfterMediaRemove = append(h.AfterMediaRemove, other.AfterMediaRemove...)
	h.OnError = append(h.OnError, other.OnError...)
}

func runMediaHooks(ctx context.Context, hooks []MediaHook, media *Media) error {
	if len(hooks) == 0 {
		return nil
	}

	hctx := NewHookContext(ctx)
	for _, hook := range hooks {
		if err := hook(hctx, media); err != nil {
			return err
		}
		if hctx.StopChain {
			break
		}
	}
	return nil
}

func (h *Hooks) executeOnError(ctx context.Context, operation string, err error) {
	if len(h.OnError) == 0 {
		return
	}

	hctx := NewHookContext(ctx)
	for _, hook := range h.OnError {
		hook(hctx, operation, err)
		if hctx.StopChain {
			break
		}
	}
}

// LoggingHooks logs completed operations and errors
func LoggingHooks(logger *slog.Logger) *Hooks {
	return &Hooks{
		AfterMediaCreate: []MediaHook{
			func(hctx *HookContext, media *Media) error {
				logger.Info("Media created", "media_id", media.ID, "provider_reference", media.ProviderReference, "size", media.Size)
				return nil
			},
		},
		AfterMediaUpdate: []MediaHook{
			func(hctx *HookContext, media *Media) error {
				logger.Info("Media updated", "media_id", media.ID, "provider_reference", media.ProviderReference)
				return nil
			},
		},
		AfterMediaRemove: []MediaHook{
			func(hctx *HookContext, media *Media) error {
				logger.Info("Media removed", "media_id", media.ID)
				return nil
			},
		},
		OnError: []ErrorHook{
			func(hctx *HookContext, operation string, err error) {
				logger.Error("Media operation failed", "operation", operation, "error", err)
			},
		},
	}
}

// BlobCleanupHooks deletes a record's stored file once the record is removed
func BlobCleanupHooks(provider Provider) *Hooks {
	return &Hooks{
		AfterMediaRemove: []MediaHook{
			func(hctx *HookContext, media *Media) error {
				if media.ProviderReference == "" {
					return nil
				}
				return provider.BlobStore().Delete(hctx.Context, provider.AbsolutePath(*media))
			},
		},
	}
}
