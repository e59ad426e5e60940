// Package srl implements Substrate Resource Locators (spec §4.6): special
// substrates that lazily materialize an external resource through an
// encrypted-credential, audited adapter fetch. Nothing in this package
// performs I/O except inside Table.Fetch and OpenPostgres, and only when
// explicitly called.
package srl

import (
	"hash/crc32"

	"github.com/r3e-network/substrate-core/identity"
)

// Kind identifies which adapter family an SRL targets (spec §6 SRL
// identity encoding, bits 63..48).
type Kind uint16

const (
	KindFile Kind = 1 + iota
	KindHTTP
	KindDatabase
	KindSocket
	KindCustom
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindHTTP:
		return "http"
	case KindDatabase:
		return "database"
	case KindSocket:
		return "socket"
	case KindCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// NamespaceHash and PathHash fold a host/container or path/port string down
// to 24 bits for the SRL identity encoding (spec §6). Two SRLs targeting
// the same resource string always fold to the same 24 bits, which is what
// guarantees "two SRLs targeting the same resource MUST produce the same
// identity".
func NamespaceHash(s string) uint32 {
	return crc32.ChecksumIEEE([]byte(s)) & 0xFFFFFF
}

func PathHash(s string) uint32 {
	return crc32.ChecksumIEEE([]byte("path:"+s)) & 0xFFFFFF
}

// Identity packs (kind, namespace, path) into the 64-bit SRL identity
// encoding (spec §6).
func Identity(kind Kind, namespaceHash, pathHash uint32) identity.Identity {
	return identity.Combine(uint16(kind), namespaceHash, pathHash)
}

// Credential is the opaque encrypted-at-rest credential payload for one
// SRL. It never appears un-redacted outside credentials.go.
type Credential struct {
	ciphertext []byte
}

// SRL is the externally-visible shape (spec §4.6): only id,
// substrate_identity, name, kind, status, created_at, last_used_at,
// fetch_count, and is_active ever cross a trust boundary. Connection
// string, credentials, adapter config, and last error live in unexported
// fields reachable only from inside this package.
type SRL struct {
	ID                identity.Identity
	SubstrateIdentity identity.Identity
	Name              string
	Kind              Kind

	status       State
	createdAtUnx int64
	lastUsedUnx  int64
	fetchCount   int
	consecutive  int

	connectionString string
	credential       *Credential
	adapterConfig    map[string]string
	lastError        string
}

// Status returns the SRL's current lifecycle state.
func (s *SRL) Status() State { return s.status }

// IsActive reports whether the SRL may currently be fetched from.
func (s *SRL) IsActive() bool {
	return s.status != StateDisabled && s.status != StateBlacklisted
}

// FetchCount returns the number of successful fetches recorded.
func (s *SRL) FetchCount() int { return s.fetchCount }

// CreatedAtUnixMs and LastUsedAtUnixMs expose only the externally visible
// timestamps (spec §4.6).
func (s *SRL) CreatedAtUnixMs() int64 { return s.createdAtUnx }
func (s *SRL) LastUsedAtUnixMs() int64 { return s.lastUsedUnx }

// New constructs an SRL in the disconnected state. connectionString,
// credential, and adapterConfig are intentionally unexported constructor
// parameters — callers outside this package cannot recover them later.
func New(name string, kind Kind, connectionString string, credential *Credential, adapterConfig map[string]string, createdAtUnixMs int64) *SRL {
	id := Identity(kind, NamespaceHash(connectionString), PathHash(name))
	return &SRL{
		ID:               id,
		Name:             name,
		Kind:             kind,
		status:           StateDisconnected,
		createdAtUnx:     createdAtUnixMs,
		connectionString: connectionString,
		credential:       credential,
		adapterConfig:    adapterConfig,
	}
}
