package srl

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"os"

	"golang.org/x/crypto/pbkdf2"

	"github.com/r3e-network/substrate-core/kernelerr"
)

// MasterKeyEnv is the default environment variable holding the process-wide
// SRL master key (spec §4.6 "a process-wide master key loaded from
// environment"), mirroring the teacher's SECRETS_MASTER_KEY convention
// renamed for this domain.
const MasterKeyEnv = "SRL_MASTER_KEY"

// pbkdf2Iterations is the minimum iteration count spec §4.6 requires for
// deriving the AES key from the master key ("PBKDF2-HMAC-SHA256 with
// ≥100,000 iterations").
const pbkdf2Iterations = 100000

const keyLenBytes = 32 // AES-256

// saltLabel salts every key derivation with a fixed, non-secret label so
// the derived key is bound to this subsystem without needing a separately
// managed per-installation salt.
var saltLabel = []byte("substrate-core/srl/credentials")

// KeyDeriver derives the AES-256 key used for credential envelope
// encryption from a raw master key, via PBKDF2-HMAC-SHA256.
type KeyDeriver struct {
	key []byte
}

// NewKeyDeriver derives a key from masterKey. masterKey is typically read
// once at process startup from MasterKeyEnv and never logged.
func NewKeyDeriver(masterKey []byte) *KeyDeriver {
	key := pbkdf2.Key(masterKey, saltLabel, pbkdf2Iterations, keyLenBytes, sha256.New)
	return &KeyDeriver{key: key}
}

// KeyDeriverFromEnv reads MasterKeyEnv and builds a KeyDeriver from it.
func KeyDeriverFromEnv() (*KeyDeriver, error) {
	raw := os.Getenv(MasterKeyEnv)
	if raw == "" {
		return nil, fmt.Errorf("srl: %s is required", MasterKeyEnv)
	}
	return NewKeyDeriver([]byte(raw)), nil
}

func (d *KeyDeriver) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(d.key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Encrypt seals plaintext credential bytes into an opaque Credential. The
// nonce is generated fresh per call and stored as a prefix of the
// ciphertext, following the teacher's secrets.Manager envelope shape.
func (d *KeyDeriver) Encrypt(plaintext []byte) (*Credential, error) {
	aead, err := d.aead()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	sealed := aead.Seal(nil, nonce, plaintext, nil)
	return &Credential{ciphertext: append(nonce, sealed...)}, nil
}

// decrypt opens cred, returning plaintext owned by the caller. Callers
// MUST route through WithDecryptedCredentials rather than calling this
// directly, so the plaintext is always zeroed on exit.
func (d *KeyDeriver) decrypt(cred *Credential) ([]byte, error) {
	aead, err := d.aead()
	if err != nil {
		return nil, kernelerr.CredentialDecryptionFailed(err)
	}
	n := aead.NonceSize()
	if len(cred.ciphertext) < n {
		return nil, kernelerr.CredentialDecryptionFailed(fmt.Errorf("ciphertext too short"))
	}
	nonce, sealed := cred.ciphertext[:n], cred.ciphertext[n:]
	plain, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, kernelerr.CredentialDecryptionFailed(err)
	}
	return plain, nil
}

// WithDecryptedCredentials decrypts srl's credential, invokes fn with the
// plaintext, and zeroes the plaintext buffer on every exit path — success,
// error, or panic (spec §4.6: "decryption happens only inside a
// with_decrypted_credentials(|creds| …) scope whose buffer is overwritten
// on exit; decrypted credentials MUST NOT be logged, returned, or
// stored").
func WithDecryptedCredentials(d *KeyDeriver, s *SRL, fn func(plaintext []byte) error) error {
	if s.credential == nil {
		return fn(nil)
	}
	plain, err := d.decrypt(s.credential)
	if err != nil {
		return err
	}
	defer func() {
		for i := range plain {
			plain[i] = 0
		}
	}()
	return fn(plain)
}
