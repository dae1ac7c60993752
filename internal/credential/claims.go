package credential

import (
	"encoding/json"
	"time"
)

// Claims is a generic bearer-token payload. Standard registered claims are
// all optional so the same type serves login tokens, service tokens, and
// anything in between; arbitrary extra fields flatten into the token body
// instead of nesting under a sub-object.
type Claims struct {
	Subject   string `json:"sub,omitempty"`
	ExpiresAt *int64 `json:"exp,omitempty"`
	IssuedAt  *int64 `json:"iat,omitempty"`
	NotBefore *int64 `json:"nbf,omitempty"`
	Issuer    string `json:"iss,omitempty"`
	Audience  string `json:"aud,omitempty"`
	ID        string `json:"jti,omitempty"`

	Extra map[string]any `json:"-"`
}

// NewClaims returns an empty Claims ready for the builder methods below.
func NewClaims() Claims {
	return Claims{Extra: map[string]any{}}
}

// ForUser builds the claim set minted on successful login: subject, a
// wall-clock expiration, issued-at, and the username carried as an extra
// field so the server frame and UI can render it without a lookup.
func ForUser(userID, username string, ttl time.Duration) Claims {
	now := time.Now()
	exp := now.Add(ttl).Unix()
	iat := now.Unix()
	return Claims{
		Subject:   userID,
		ExpiresAt: &exp,
		IssuedAt:  &iat,
		Extra:     map[string]any{"username": username},
	}
}

func (c Claims) WithSubject(sub string) Claims {
	c.Subject = sub
	return c
}

func (c Claims) WithExpiration(exp int64) Claims {
	c.ExpiresAt = &exp
	return c
}

func (c Claims) WithIssuer(iss string) Claims {
	c.Issuer = iss
	return c
}

func (c Claims) WithExtra(key string, value any) Claims {
	if c.Extra == nil {
		c.Extra = map[string]any{}
	}
	c.Extra[key] = value
	return c
}

// Username reads the "username" extra field, if present.
func (c Claims) Username() string {
	if c.Extra == nil {
		return ""
	}
	if v, ok := c.Extra["username"].(string); ok {
		return v
	}
	return ""
}

// IsExpired reports whether exp is set and earlier than the given instant.
// Claims with no exp claim never expire (mirrors the missing-exp-permitted
// rule in decode).
func (c Claims) IsExpired(at int64) bool {
	return c.ExpiresAt != nil && *c.ExpiresAt < at
}

// MarshalJSON flattens Extra alongside the registered fields.
func (c Claims) MarshalJSON() ([]byte, error) {
	type alias Claims
	base, err := json.Marshal(alias(c))
	if err != nil {
		return nil, err
	}
	if len(c.Extra) == 0 {
		return base, nil
	}
	var merged map[string]any
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, v := range c.Extra {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// UnmarshalJSON recovers registered fields plus whatever else was in the
// token body, stashing unrecognized keys in Extra.
func (c *Claims) UnmarshalJSON(data []byte) error {
	type alias Claims
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*c = Claims(a)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	known := map[string]bool{"sub": true, "exp": true, "iat": true, "nbf": true, "iss": true, "aud": true, "jti": true}
	c.Extra = map[string]any{}
	for k, v := range raw {
		if known[k] {
			continue
		}
		var val any
		if err := json.Unmarshal(v, &val); err == nil {
			c.Extra[k] = val
		}
	}
	return nil
}
