package credential

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTHandler signs and verifies bearer tokens with a single shared HMAC
// secret (HS256). It intentionally mirrors the credential library's role
// in the design: validate tokens and nothing more — routing, middleware
// wiring, and context plumbing live at the transport boundary.
type JWTHandler struct {
	secret []byte
}

func NewJWTHandler(secret string) *JWTHandler {
	return &JWTHandler{secret: []byte(secret)}
}

// Encode signs claims with HS256. A missing exp is allowed on the way in
// (Decode tolerates it on the way out too).
func (h *JWTHandler) Encode(claims Claims) (string, error) {
	body, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncodingFailed, err)
	}
	var mc jwt.MapClaims
	if err := json.Unmarshal(body, &mc); err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncodingFailed, err)
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, mc)
	signed, err := token.SignedString(h.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncodingFailed, err)
	}
	return signed, nil
}

// Decode validates the signature and, if present, the expiration, then
// returns the claims. A missing exp claim is permitted — not every token
// this library mints is time-bound (e.g. service tokens).
func (h *JWTHandler) Decode(tokenString string) (Claims, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return h.secret, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}

	claims, err := claimsFromToken(parsed)
	if err != nil {
		return Claims{}, err
	}
	if claims.IsExpired(time.Now().Unix()) {
		return Claims{}, ErrTokenExpired
	}
	return claims, nil
}

// DecodeUnverified parses the claims without checking the signature. It
// exists for debugging a token a client reports as broken; never use it
// to make an authorization decision.
func (h *JWTHandler) DecodeUnverified(tokenString string) (Claims, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	token, _, err := parser.ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrDecodingFailed, err)
	}
	return claimsFromToken(token)
}

func claimsFromToken(token *jwt.Token) (Claims, error) {
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, fmt.Errorf("%w: unexpected claims type", ErrDecodingFailed)
	}
	body, err := json.Marshal(mc)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrDecodingFailed, err)
	}
	var claims Claims
	if err := json.Unmarshal(body, &claims); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrDecodingFailed, err)
	}
	return claims, nil
}
