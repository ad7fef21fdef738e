// Package statekey implements the tagged family of global-state addresses.
//
// Every key is a one-byte discriminant tag followed by a fixed,
// variant-determined payload. Binary and formatted-text round trips are
// byte-exact: decoding then re-encoding yields the identical sequence.
package statekey

import (
	"encoding/binary"
	"fmt"

	"xdao.co/ledgerkeys/keypair"
	"xdao.co/ledgerkeys/lkerr"
)

// Tag is the one-byte discriminant identifying a key variant.
type Tag byte

const (
	TagAccount    Tag = 0x00
	TagHash       Tag = 0x01
	TagURef       Tag = 0x02
	TagTransfer   Tag = 0x03
	TagDeployInfo Tag = 0x04
	TagEraInfo    Tag = 0x05
	TagBalance    Tag = 0x06
	TagBid        Tag = 0x07
	TagWithdraw   Tag = 0x08
	TagDictionary Tag = 0x09
)

// HashLength is the payload size of every 33-byte variant and the address
// size of a URef.
const HashLength = 32

// Access-rights bits carried by a URef.
const (
	AccessNone  byte = 0
	AccessRead  byte = 1
	AccessWrite byte = 2
	AccessAdd   byte = 4
)

// ResolveTag maps a discriminant byte to a Tag.
func ResolveTag(b byte) (Tag, error) {
	if b > byte(TagDictionary) {
		return 0, lkerr.New(lkerr.KindUnknownKeyVariant, "LK-SK-001",
			fmt.Sprintf("unknown state key tag 0x%02x", b))
	}
	return Tag(b), nil
}

// TotalLength returns the full binary length of a key with the given tag,
// discriminant byte included. This drives the codec's peek-before-read
// discipline: a reader peeks the tag, asks for the total length, then
// consumes exactly that many bytes.
func TotalLength(tag Tag) (int, error) {
	switch tag {
	case TagEraInfo:
		return 9, nil
	case TagURef:
		return 34, nil
	case TagAccount, TagHash, TagTransfer, TagDeployInfo,
		TagBalance, TagBid, TagWithdraw, TagDictionary:
		return 33, nil
	}
	return 0, lkerr.New(lkerr.KindUnknownKeyVariant, "LK-SK-002",
		fmt.Sprintf("unknown state key tag 0x%02x", byte(tag)))
}

// prefixFor returns the canonical text prefix of a tag.
func prefixFor(tag Tag) string {
	switch tag {
	case TagAccount:
		return "account-hash-"
	case TagHash:
		return "hash-"
	case TagURef:
		return "uref-"
	case TagTransfer:
		return "transfer-"
	case TagDeployInfo:
		return "deploy-"
	case TagEraInfo:
		return "era-"
	case TagBalance:
		return "balance-"
	case TagBid:
		return "bid-"
	case TagWithdraw:
		return "withdraw-"
	case TagDictionary:
		return "dictionary-"
	}
	panic(fmt.Sprintf("statekey: prefix of unregistered tag 0x%02x", byte(tag)))
}

// Key is an immutable global-state address. The zero value is not valid;
// construct through the typed constructors or the parsing factories.
type Key struct {
	tag Tag
	// hash holds the 32-byte payload of every variant except EraInfo;
	// for URef it is the address portion.
	hash   [HashLength]byte
	eraID  uint64
	rights byte
}

// NewAccountKey builds an Account key from a derived account hash.
func NewAccountKey(accountHash [HashLength]byte) Key {
	return Key{tag: TagAccount, hash: accountHash}
}

// AccountKeyFromPublicKey builds the Account key addressing pub's account.
func AccountKeyFromPublicKey(pub keypair.PublicKey) Key {
	return NewAccountKey(pub.AccountHash())
}

// NewHashKey builds a contract Hash key.
func NewHashKey(hash [HashLength]byte) Key { return Key{tag: TagHash, hash: hash} }

// NewURef builds an unforgeable-reference key from its address and
// access-rights byte.
func NewURef(addr [HashLength]byte, rights byte) Key {
	return Key{tag: TagURef, hash: addr, rights: rights}
}

// NewTransferKey builds a Transfer key.
func NewTransferKey(hash [HashLength]byte) Key { return Key{tag: TagTransfer, hash: hash} }

// NewDeployInfoKey builds a DeployInfo key.
func NewDeployInfoKey(hash [HashLength]byte) Key { return Key{tag: TagDeployInfo, hash: hash} }

// NewEraInfoKey builds an EraInfo key for the given era id.
func NewEraInfoKey(eraID uint64) Key { return Key{tag: TagEraInfo, eraID: eraID} }

// NewBalanceKey builds a Balance key addressing a purse balance.
func NewBalanceKey(hash [HashLength]byte) Key { return Key{tag: TagBalance, hash: hash} }

// NewBidKey builds a Bid key.
func NewBidKey(hash [HashLength]byte) Key { return Key{tag: TagBid, hash: hash} }

// NewWithdrawKey builds a Withdraw key.
func NewWithdrawKey(hash [HashLength]byte) Key { return Key{tag: TagWithdraw, hash: hash} }

// NewDictionaryKey builds a Dictionary key.
func NewDictionaryKey(hash [HashLength]byte) Key { return Key{tag: TagDictionary, hash: hash} }

// Tag returns the key's discriminant.
func (k Key) Tag() Tag { return k.tag }

// Hash returns the 32-byte payload of a non-EraInfo variant (for URef, the
// address portion).
func (k Key) Hash() [HashLength]byte { return k.hash }

// URef returns the address and access-rights byte of a URef key.
func (k Key) URef() (addr [HashLength]byte, rights byte) { return k.hash, k.rights }

// EraID returns the era id of an EraInfo key.
func (k Key) EraID() uint64 { return k.eraID }

// Equal reports structural equality.
func (k Key) Equal(o Key) bool {
	return k.tag == o.tag && k.hash == o.hash && k.eraID == o.eraID && k.rights == o.rights
}

// Bytes returns the canonical binary form: the discriminant byte followed by
// the variant payload. The result always matches TotalLength(k.Tag()).
func (k Key) Bytes() []byte {
	switch k.tag {
	case TagEraInfo:
		out := make([]byte, 9)
		out[0] = byte(k.tag)
		binary.LittleEndian.PutUint64(out[1:], k.eraID)
		return out
	case TagURef:
		out := make([]byte, 34)
		out[0] = byte(k.tag)
		copy(out[1:33], k.hash[:])
		out[33] = k.rights
		return out
	default:
		out := make([]byte, 33)
		out[0] = byte(k.tag)
		copy(out[1:], k.hash[:])
		return out
	}
}

// FromBytes parses the canonical binary form. The remaining bytes after the
// discriminant must exactly equal the variant's declared payload length.
func FromBytes(data []byte) (Key, error) {
	if len(data) == 0 {
		return Key{}, lkerr.New(lkerr.KindInvalidLength, "LK-SK-101", "empty state key bytes")
	}
	tag, err := ResolveTag(data[0])
	if err != nil {
		return Key{}, err
	}
	total, err := TotalLength(tag)
	if err != nil {
		return Key{}, err
	}
	if len(data) != total {
		return Key{}, lkerr.New(lkerr.KindInvalidLength, "LK-SK-102",
			fmt.Sprintf("%s key must be %d bytes, got %d", prefixName(tag), total, len(data)))
	}
	k := Key{tag: tag}
	switch tag {
	case TagEraInfo:
		k.eraID = binary.LittleEndian.Uint64(data[1:])
	case TagURef:
		copy(k.hash[:], data[1:33])
		k.rights = data[33]
	default:
		copy(k.hash[:], data[1:])
	}
	return k, nil
}

// prefixName is the text prefix without its trailing dash, for messages.
func prefixName(tag Tag) string {
	p := prefixFor(tag)
	return p[:len(p)-1]
}
