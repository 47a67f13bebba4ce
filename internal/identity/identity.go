// Package identity resolves who a verification request is from and
// supplies the stored face reference for authenticated submissions.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Mode distinguishes anonymous from authenticated submissions.
type Mode string

const (
	ModeAnonymous     Mode = "anonymous"
	ModeAuthenticated Mode = "authenticated"
)

var (
	// ErrNoFaceReference indicates an authenticated user never
	// registered a face. It is a setup problem, not a mismatch.
	ErrNoFaceReference = errors.New("no face reference registered for user")

	// ErrMissingUserID indicates an authenticated request without a
	// user identifier.
	ErrMissingUserID = errors.New("authenticated mode requires a user id")
)

// FaceReference is the stored embedding the authentication subsystem
// captured at registration. The verification core only reads it.
type FaceReference struct {
	UserID    string    `json:"user_id"`
	Embedding []float64 `json:"embedding"`
	CreatedAt time.Time `json:"created_at"`
}

// ReferenceStore is read-only access to registered face references.
type ReferenceStore interface {
	GetFaceReference(ctx context.Context, userID string) (*FaceReference, error)
}

// Context is the resolved identity of one request. The pipeline stays
// mode-agnostic: it only asks whether a reference is present.
type Context interface {
	Mode() Mode
	// Reference returns the stored face reference, or nil in
	// anonymous mode.
	Reference() *FaceReference
}

type anonymousContext struct{}

func (anonymousContext) Mode() Mode                { return ModeAnonymous }
func (anonymousContext) Reference() *FaceReference { return nil }

type authenticatedContext struct {
	ref *FaceReference
}

func (authenticatedContext) Mode() Mode                  { return ModeAuthenticated }
func (c authenticatedContext) Reference() *FaceReference { return c.ref }

// Anonymous returns the identity context for anonymous submissions.
func Anonymous() Context {
	return anonymousContext{}
}

// Resolve builds the identity context for a request. Authenticated mode
// requires a user id and a previously registered face reference.
func Resolve(ctx context.Context, mode Mode, userID string, store ReferenceStore) (Context, error) {
	switch mode {
	case ModeAnonymous:
		return Anonymous(), nil
	case ModeAuthenticated:
		if userID == "" {
			return nil, ErrMissingUserID
		}
		ref, err := store.GetFaceReference(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("looking up face reference for %s: %w", userID, err)
		}
		if ref == nil || len(ref.Embedding) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNoFaceReference, userID)
		}
		return authenticatedContext{ref: ref}, nil
	default:
		return nil, fmt.Errorf("unknown identity mode %q", mode)
	}
}
