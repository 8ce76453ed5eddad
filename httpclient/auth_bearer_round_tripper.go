/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrBearerTokenNotFound is wrapped by AuthBearerRoundTripperError when no token can be found for the request.
var ErrBearerTokenNotFound = errors.New("bearer token not found")

// AuthBearerRoundTripperError is returned in RoundTrip method of AuthBearerRoundTripper
// when the Authorization header cannot be built.
type AuthBearerRoundTripperError struct {
	Inner error
}

func (e *AuthBearerRoundTripperError) Error() string {
	return fmt.Sprintf("auth bearer round trip: %s", e.Inner.Error())
}

// Unwrap returns the next error in the error chain.
func (e *AuthBearerRoundTripperError) Unwrap() error {
	return e.Inner
}

// AuthProvider provides tokens for bearer authorization.
type AuthProvider interface {
	GetToken(ctx context.Context, scope ...string) (string, error)
}

// AuthProviderFunc is an adapter to allow the use of ordinary functions as AuthProvider.
type AuthProviderFunc func(ctx context.Context, scope ...string) (string, error)

// GetToken calls f(ctx, scope...).
func (f AuthProviderFunc) GetToken(ctx context.Context, scope ...string) (string, error) {
	return f(ctx, scope...)
}

// AuthBearerRoundTripperOpts is options for AuthBearerRoundTripper.
type AuthBearerRoundTripperOpts struct {
	TokenScope []string
}

// AuthBearerRoundTripper implements http.RoundTripper interface
// and sets Authorization HTTP header in all outgoing requests.
// The token is taken from the request context (see NewContextWithBearerToken) and,
// if it's not there, from AuthProvider.
// Requests that already have the Authorization header are passed as is.
type AuthBearerRoundTripper struct {
	Delegate     http.RoundTripper
	AuthProvider AuthProvider
	opts         AuthBearerRoundTripperOpts
}

// NewAuthBearerRoundTripper creates a new AuthBearerRoundTripper.
// authProvider may be nil, then only tokens from the request context are used.
func NewAuthBearerRoundTripper(delegate http.RoundTripper, authProvider AuthProvider) *AuthBearerRoundTripper {
	return NewAuthBearerRoundTripperWithOpts(delegate, authProvider, AuthBearerRoundTripperOpts{})
}

// NewAuthBearerRoundTripperWithOpts creates a new AuthBearerRoundTripper with options.
func NewAuthBearerRoundTripperWithOpts(delegate http.RoundTripper, authProvider AuthProvider,
	opts AuthBearerRoundTripperOpts) *AuthBearerRoundTripper {
	return &AuthBearerRoundTripper{delegate, authProvider, opts}
}

// RoundTrip executes a single HTTP transaction, returning a Response for the provided Request.
func (rt *AuthBearerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("Authorization") != "" {
		return rt.Delegate.RoundTrip(req)
	}
	token, err := rt.getToken(req.Context())
	if err != nil {
		if req.Body != nil {
			_ = req.Body.Close() // Per RoundTripper contract.
		}
		return nil, &AuthBearerRoundTripperError{Inner: err}
	}
	req = req.Clone(req.Context()) // Per RoundTripper contract.
	req.Header.Set("Authorization", "Bearer "+token)
	return rt.Delegate.RoundTrip(req)
}

func (rt *AuthBearerRoundTripper) getToken(ctx context.Context) (string, error) {
	if token := GetBearerTokenFromContext(ctx); token != "" {
		return token, nil
	}
	if rt.AuthProvider == nil {
		return "", ErrBearerTokenNotFound
	}
	token, err := rt.AuthProvider.GetToken(ctx, rt.opts.TokenScope...)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", ErrBearerTokenNotFound
	}
	return token, nil
}
