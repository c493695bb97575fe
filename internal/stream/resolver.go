// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package stream

import (
	"context"
	"errors"
	"net/url"
)

// ErrUnresolvable is returned when a cipher cannot be turned into a URL.
var ErrUnresolvable = errors.New("stream url unresolvable")

// Resolver turns an obfuscated cipher into a directly fetchable URL.
// The transform itself is supplied by the embedding environment.
type Resolver interface {
	Resolve(ctx context.Context, cipher string) (string, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, cipher string) (string, error)

// Resolve implements Resolver.
func (f ResolverFunc) Resolve(ctx context.Context, cipher string) (string, error) {
	return f(ctx, cipher)
}

// PlainCipherResolver accepts ciphers whose url field needs no signature
// transform (no "s" parameter) and rejects everything else.
var PlainCipherResolver = ResolverFunc(func(_ context.Context, cipher string) (string, error) {
	values, err := url.ParseQuery(cipher)
	if err != nil {
		return "", errors.Join(ErrUnresolvable, err)
	}
	raw := values.Get("url")
	if raw == "" || values.Get("s") != "" {
		return "", ErrUnresolvable
	}
	return raw, nil
})
