package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/crypto/hkdf"

	authDomain "github.com/svit-erp/portalgate/internal/auth/domain"
	apperrors "github.com/svit-erp/portalgate/internal/errors"
)

const (
	// MinSecretLength is the shortest accepted signing secret, in bytes.
	MinSecretLength = 32

	// sessionKeyInfo separates the session MAC key from any other use of the secret.
	sessionKeyInfo = "portal-session-v1"

	// tokenVersion prefixes every payload so the layout can change without ambiguity.
	tokenVersion byte = 1

	// maxTokenLength bounds the work done on attacker-supplied cookies.
	maxTokenLength = 4096
)

// tokenEncoding is strict so that no two distinct strings decode to the same bytes.
var tokenEncoding = base64.RawURLEncoding.Strict()

// sessionCodec implements SessionCodec with HMAC-SHA256 over a length-prefixed payload.
type sessionCodec struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// SessionCodecOption customizes a session codec.
type SessionCodecOption func(*sessionCodec)

// WithClock replaces time.Now, mainly for expiry tests.
func WithClock(now func() time.Time) SessionCodecOption {
	return func(c *sessionCodec) {
		c.now = now
	}
}

// NewSessionCodec derives the MAC key from secret with HKDF-SHA256 and returns a codec issuing
// tokens valid for ttl (DefaultSessionTTL when ttl <= 0).
func NewSessionCodec(secret []byte, ttl time.Duration, opts ...SessionCodecOption) (SessionCodec, error) {
	if len(secret) < MinSecretLength {
		return nil, apperrors.Wrapf(
			apperrors.ErrInvalidInput,
			"session secret must be at least %d bytes",
			MinSecretLength,
		)
	}
	if ttl <= 0 {
		ttl = authDomain.DefaultSessionTTL
	}

	key, err := deriveSessionKey(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to derive session key: %w", err)
	}

	codec := &sessionCodec{
		key: key,
		ttl: ttl,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(codec)
	}
	return codec, nil
}

// deriveSessionKey expands the configured secret into a 32-byte MAC key.
func deriveSessionKey(secret []byte) ([]byte, error) {
	reader := hkdf.New(sha256.New, secret, nil, []byte(sessionKeyInfo))
	key := make([]byte, 32)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, err
	}
	return key, nil
}

// TTL returns the validity window of issued tokens.
func (c *sessionCodec) TTL() time.Duration {
	return c.ttl
}

// Issue signs the identity's claims, valid from now for the codec's TTL.
// Format: base64url(payload) "." base64url(HMAC-SHA256(key, payload)).
func (c *sessionCodec) Issue(identity *authDomain.Identity) (string, error) {
	if identity == nil {
		return "", apperrors.Wrap(apperrors.ErrInvalidInput, "identity is required")
	}

	claims := authDomain.NewClaims(identity, c.now(), c.ttl)
	if err := claims.Validate(); err != nil {
		return "", apperrors.Wrap(apperrors.ErrInvalidInput, "identity is incomplete")
	}

	payload := encodeClaims(claims)
	return tokenEncoding.EncodeToString(payload) + "." + tokenEncoding.EncodeToString(c.sign(payload)), nil
}

// Parse returns the identity a valid token was issued for, or ErrInvalidToken.
func (c *sessionCodec) Parse(token string) (*authDomain.Identity, error) {
	claims, err := c.ParseClaims(token)
	if err != nil {
		return nil, err
	}
	return claims.Identity(), nil
}

// ParseClaims verifies the signature, shape and expiry of token. Every failure is
// ErrInvalidToken; malformed input never panics.
func (c *sessionCodec) ParseClaims(token string) (*authDomain.Claims, error) {
	if token == "" || len(token) > maxTokenLength {
		return nil, authDomain.ErrInvalidToken
	}

	encodedPayload, encodedMAC, ok := strings.Cut(token, ".")
	if !ok || strings.Contains(encodedMAC, ".") {
		return nil, authDomain.ErrInvalidToken
	}

	payload, err := tokenEncoding.DecodeString(encodedPayload)
	if err != nil {
		return nil, authDomain.ErrInvalidToken
	}
	mac, err := tokenEncoding.DecodeString(encodedMAC)
	if err != nil {
		return nil, authDomain.ErrInvalidToken
	}

	if !hmac.Equal(mac, c.sign(payload)) {
		return nil, authDomain.ErrInvalidToken
	}

	claims, err := decodeClaims(payload)
	if err != nil {
		return nil, authDomain.ErrInvalidToken
	}
	if err := claims.Validate(); err != nil {
		return nil, authDomain.ErrInvalidToken
	}
	if claims.Expired(c.now()) {
		return nil, authDomain.ErrInvalidToken
	}

	return claims, nil
}

func (c *sessionCodec) sign(payload []byte) []byte {
	mac := hmac.New(sha256.New, c.key)
	mac.Write(payload)
	return mac.Sum(nil)
}

// encodeClaims converts claims to their canonical byte representation.
// Format: version || id || username || role || name || iat || exp
// Strings are length-prefixed (4 bytes, big-endian); timestamps are 8-byte unix seconds.
func encodeClaims(claims *authDomain.Claims) []byte {
	buf := make([]byte, 0, 128)
	buf = append(buf, tokenVersion)
	buf = appendLengthPrefixed(buf, []byte(claims.ID))
	buf = appendLengthPrefixed(buf, []byte(claims.Username))
	buf = appendLengthPrefixed(buf, []byte(claims.Role))
	buf = appendLengthPrefixed(buf, []byte(claims.Name))
	buf = binary.BigEndian.AppendUint64(buf, uint64(claims.IssuedAt))
	buf = binary.BigEndian.AppendUint64(buf, uint64(claims.ExpiresAt))
	return buf
}

// decodeClaims is the strict inverse of encodeClaims; trailing bytes are an error.
func decodeClaims(payload []byte) (*authDomain.Claims, error) {
	r := &payloadReader{buf: payload}

	version, err := r.readByte()
	if err != nil {
		return nil, err
	}
	if version != tokenVersion {
		return nil, fmt.Errorf("unsupported token version %d", version)
	}

	var claims authDomain.Claims
	if claims.ID, err = r.readString(); err != nil {
		return nil, err
	}
	if claims.Username, err = r.readString(); err != nil {
		return nil, err
	}
	role, err := r.readString()
	if err != nil {
		return nil, err
	}
	claims.Role = authDomain.Kind(role)
	if claims.Name, err = r.readString(); err != nil {
		return nil, err
	}

	iat, err := r.readUint64()
	if err != nil {
		return nil, err
	}
	exp, err := r.readUint64()
	if err != nil {
		return nil, err
	}
	if iat > 1<<62 || exp > 1<<62 {
		return nil, fmt.Errorf("timestamp out of range")
	}
	claims.IssuedAt = int64(iat)
	claims.ExpiresAt = int64(exp)

	if r.remaining() != 0 {
		return nil, fmt.Errorf("trailing bytes in payload")
	}
	return &claims, nil
}

// appendLengthPrefixed adds a 4-byte big-endian length prefix followed by data.
func appendLengthPrefixed(buf []byte, data []byte) []byte {
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(data)))
	return append(buf, data...)
}

// payloadReader walks a canonical payload, failing on any short read.
type payloadReader struct {
	buf []byte
	off int
}

func (r *payloadReader) remaining() int {
	return len(r.buf) - r.off
}

func (r *payloadReader) next(n int) ([]byte, error) {
	if n < 0 || r.remaining() < n {
		return nil, io.ErrUnexpectedEOF
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *payloadReader) readByte() (byte, error) {
	b, err := r.next(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *payloadReader) readUint64() (uint64, error) {
	b, err := r.next(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (r *payloadReader) readString() (string, error) {
	b, err := r.next(4)
	if err != nil {
		return "", err
	}
	n := binary.BigEndian.Uint32(b)
	if int64(n) > int64(r.remaining()) {
		return "", io.ErrUnexpectedEOF
	}
	data, err := r.next(int(n))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
