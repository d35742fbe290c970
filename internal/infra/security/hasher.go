package security

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

var (
	// ErrMissingSecretSalt indicates the process-wide salt was not supplied.
	// The service must refuse to start rather than hash with an empty salt.
	ErrMissingSecretSalt = errors.New("security: secret salt is required")

	errInvalidHasherConfig = errors.New("security: invalid hasher configuration")
)

// HasherConfig defines tunable parameters for Argon2id password hashing.
type HasherConfig struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	KeyLength   uint32
}

// DefaultHasherConfig returns the default Argon2id parameters.
func DefaultHasherConfig() HasherConfig {
	return HasherConfig{
		Memory:      64 * 1024,
		Iterations:  3,
		Parallelism: 4,
		KeyLength:   32,
	}
}

// Hasher produces deterministic Argon2id digests keyed by a process-wide
// secret salt. Determinism (same password, same digest) is what allows the
// password history to be compared digest-to-digest.
type Hasher struct {
	salt []byte
	cfg  HasherConfig
}

// NewHasher constructs a Hasher. An empty secret salt is a hard failure.
func NewHasher(secretSalt string, cfg HasherConfig) (*Hasher, error) {
	if secretSalt == "" {
		return nil, ErrMissingSecretSalt
	}
	if err := validateHasherConfig(cfg); err != nil {
		return nil, err
	}

	return &Hasher{salt: []byte(secretSalt), cfg: cfg}, nil
}

func validateHasherConfig(cfg HasherConfig) error {
	if cfg.Memory < 8*1024 {
		return fmt.Errorf("%w: memory must be at least 8192", errInvalidHasherConfig)
	}
	if cfg.Iterations == 0 {
		return fmt.Errorf("%w: iterations must be greater than zero", errInvalidHasherConfig)
	}
	if cfg.Parallelism == 0 {
		return fmt.Errorf("%w: parallelism must be greater than zero", errInvalidHasherConfig)
	}
	if cfg.KeyLength < 16 {
		return fmt.Errorf("%w: key length must be at least 16 bytes", errInvalidHasherConfig)
	}
	return nil
}

// Hash derives the Argon2id digest of the password under the secret salt.
func (h *Hasher) Hash(password string) string {
	sum := argon2.IDKey([]byte(password), h.salt, h.cfg.Iterations, h.cfg.Memory, h.cfg.Parallelism, h.cfg.KeyLength)
	return base64.RawStdEncoding.EncodeToString(sum)
}

// Verify reports whether the password produces the stored digest. The
// comparison runs in constant time regardless of where a mismatch occurs.
func (h *Hasher) Verify(password, digest string) bool {
	if digest == "" {
		return false
	}
	computed := h.Hash(password)
	return DigestsEqual(computed, digest)
}

// DigestsEqual compares two encoded digests in constant time.
func DigestsEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
