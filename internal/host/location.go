// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package host

import (
	"net/url"
	"strings"
)

// IsWatchLocation reports whether the location denotes a watch context, by
// path ("/watch") or by fragment route ("#/watch?v=...").
func IsWatchLocation(location string) bool {
	u, err := url.Parse(location)
	if err != nil {
		return false
	}
	if isWatchPath(u.Path) {
		return true
	}
	path, _, _ := strings.Cut(u.Fragment, "?")
	return isWatchPath(path)
}

func isWatchPath(p string) bool {
	p = strings.TrimSuffix(p, "/")
	return p == "/watch" || strings.HasSuffix(p, "/watch") || p == "watch"
}

// IdentityFromLocation extracts the video identity from the query string,
// then from the query embedded in the fragment.
func IdentityFromLocation(location string) (string, bool) {
	u, err := url.Parse(location)
	if err != nil {
		return "", false
	}
	if v := u.Query().Get("v"); v != "" {
		return v, true
	}
	_, rawQuery, ok := strings.Cut(u.Fragment, "?")
	if !ok {
		return "", false
	}
	q, err := url.ParseQuery(rawQuery)
	if err != nil {
		return "", false
	}
	if v := q.Get("v"); v != "" {
		return v, true
	}
	return "", false
}

// ResolveIdentity applies the identity priority: the player's accessor, then
// the location.
func ResolveIdentity(p Player, location string) (string, bool) {
	if p != nil {
		if id, ok := p.VideoID(); ok && id != "" {
			return id, true
		}
	}
	return IdentityFromLocation(location)
}
