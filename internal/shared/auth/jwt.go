package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the identity contained in a bearer token issued by the
// identity provider.
type Claims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

var (
	errMissingSecret = errors.New("jwt secret not configured")
	ErrInvalidToken  = errors.New("invalid token")
)

// Options selects how tokens are verified. A PublicKeyPEM switches the
// verifier to RS256; otherwise tokens are HS256 signed with Secret.
type Options struct {
	Env          string
	PublicKeyPEM string
	Secret       string
	Issuer       string
}

// Verifier validates bearer tokens.
type Verifier struct {
	method    jwt.SigningMethod
	publicKey *rsa.PublicKey
	secret    []byte
	parser    *jwt.Parser
}

// NewVerifier builds a Verifier from opts.
func NewVerifier(opts Options) (*Verifier, error) {
	parserOpts := []jwt.ParserOption{jwt.WithLeeway(30 * time.Second)}
	if iss := strings.TrimSpace(opts.Issuer); iss != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(iss))
	}

	if pem := strings.TrimSpace(opts.PublicKeyPEM); pem != "" {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(normalizePEM(pem)))
		if err != nil {
			return nil, fmt.Errorf("parse AUTH_JWT_PUBLIC_KEY: %w", err)
		}
		parserOpts = append(parserOpts, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
		return &Verifier{
			method:    jwt.SigningMethodRS256,
			publicKey: key,
			parser:    jwt.NewParser(parserOpts...),
		}, nil
	}

	secret, err := secretKey(opts.Env, opts.Secret)
	if err != nil {
		return nil, err
	}
	parserOpts = append(parserOpts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	return &Verifier{
		method: jwt.SigningMethodHS256,
		secret: secret,
		parser: jwt.NewParser(parserOpts...),
	}, nil
}

// Verify checks signature, expiry and issuer, and returns the claims.
func (v *Verifier) Verify(token string) (Claims, error) {
	var claims Claims
	parsed, err := v.parser.ParseWithClaims(token, &claims, v.keyFunc)
	if err != nil || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}

// Sign issues an HS256 token. It is used by local tooling and tests; in
// production tokens come from the identity provider.
func (v *Verifier) Sign(claims Claims) (string, error) {
	if v.method != jwt.SigningMethodHS256 {
		return "", errors.New("signing requires an HS256 verifier")
	}
	if claims.Subject == "" {
		return "", errors.New("sub is required")
	}
	now := time.Now().UTC()
	if claims.IssuedAt == nil {
		claims.IssuedAt = jwt.NewNumericDate(now)
	}
	if claims.ExpiresAt == nil {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(24 * time.Hour))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

func (v *Verifier) keyFunc(token *jwt.Token) (any, error) {
	if v.publicKey != nil {
		return v.publicKey, nil
	}
	return v.secret, nil
}

func secretKey(env, secret string) ([]byte, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		if env == "production" {
			return nil, fmt.Errorf("%w: JWT_SECRET or AUTH_JWT_PUBLIC_KEY required in production", errMissingSecret)
		}
		secret = "dev-secret"
	}
	return []byte(secret), nil
}

// normalizePEM accepts keys passed through env vars with literal \n.
func normalizePEM(raw string) string {
	return strings.ReplaceAll(raw, `\n`, "\n")
}
