package artifact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/specialistvlad/opgrid/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

var (
	// ErrInvalidType is returned when an artifact is created with an unknown type.
	ErrInvalidType = errors.New("invalid artifact type")
	// ErrInvalidName is returned when an artifact is created without a name.
	ErrInvalidName = errors.New("artifact name cannot be empty")
)

// Owner is the operation an artifact is attached to.
type Owner interface {
	FullName() string
}

// Artifact is an immutable, typed, named payload attached to an operation.
type Artifact struct {
	typ       Type
	name      string
	payload   cty.Value
	reference any

	mu    sync.RWMutex
	owner Owner
}

// Option configures optional artifact fields.
type Option func(*Artifact)

// WithReference attaches a live, never-persisted object for in-process debugging.
func WithReference(ref any) Option {
	return func(a *Artifact) {
		a.reference = ref
	}
}

// New creates an artifact. The payload must be JSON-representable.
func New(typ Type, name string, payload any, opts ...Option) (*Artifact, error) {
	if !typ.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidType, typ)
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidName
	}
	val, err := ToValue(payload)
	if err != nil {
		return nil, fmt.Errorf("artifact %q: %w", name, err)
	}

	a := &Artifact{typ: typ, name: name, payload: val}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Type returns the artifact category.
func (a *Artifact) Type() Type { return a.typ }

// Name returns the artifact's key within its owner.
func (a *Artifact) Name() string { return a.name }

// Payload returns the normalised payload.
func (a *Artifact) Payload() cty.Value { return a.payload }

// Reference returns the live debugging reference, if any.
func (a *Artifact) Reference() any { return a.reference }

// Value returns the payload as plain Go values.
func (a *Artifact) Value() any {
	// Payloads are wholly known by construction, so conversion cannot fail.
	v, _ := FromValue(a.payload)
	return v
}

// Owner returns the operation the artifact is attached to, or nil.
func (a *Artifact) Owner() Owner {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.owner
}

// SetOwner records the owning operation. It is called on attach.
func (a *Artifact) SetOwner(o Owner) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.owner = o
}

// FullName is the owner's path followed by the artifact name.
func (a *Artifact) FullName() string {
	owner := "parentless"
	if o := a.Owner(); o != nil {
		owner = o.FullName()
	}
	return owner + " > " + a.name
}

// MarshalJSON implements json.Marshaler. The reference is never included.
func (a *Artifact) MarshalJSON() ([]byte, error) {
	payload, err := Encode(a.payload)
	if err != nil {
		return nil, fmt.Errorf("encoding artifact %q: %w", a.name, err)
	}
	return json.Marshal(struct {
		Type    Type            `json:"type"`
		Name    string          `json:"name"`
		Payload json.RawMessage `json:"payload"`
	}{a.typ, a.name, payload})
}

// Log writes the artifact through the context logger at info level.
func (a *Artifact) Log(ctx context.Context, msg string, args ...any) {
	ctxlog.FromContext(ctx).InfoContext(ctx, msg, a.logArgs(args)...)
}

// Trace is Log at debug level with the calling goroutine's stack attached.
func (a *Artifact) Trace(ctx context.Context, msg string, args ...any) {
	args = append(a.logArgs(args), "stack", string(debug.Stack()))
	ctxlog.FromContext(ctx).DebugContext(ctx, msg, args...)
}

func (a *Artifact) logArgs(extra []any) []any {
	payload, err := Encode(a.payload)
	if err != nil {
		payload = []byte(fmt.Sprintf("[unloggable payload: %v]", err))
	}
	args := []any{"artifact", a.FullName(), "type", string(a.typ), "payload", string(payload)}
	if a.reference != nil {
		args = append(args, "reference", fmt.Sprintf("%+v", a.reference))
	}
	return append(args, extra...)
}
