package statekey

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"xdao.co/ledgerkeys/checksum"
	"xdao.co/ledgerkeys/lkerr"
)

// formatOrder lists tags longest-prefix-first so that parsing never matches a
// shorter prefix that happens to lead a longer one.
var formatOrder = []Tag{
	TagAccount,    // account-hash-
	TagDictionary, // dictionary-
	TagTransfer,   // transfer-
	TagWithdraw,   // withdraw-
	TagBalance,    // balance-
	TagDeployInfo, // deploy-
	TagHash,       // hash-
	TagURef,       // uref-
	TagEraInfo,    // era-
	TagBid,        // bid-
}

// ToFormattedString renders the canonical text form: the variant prefix
// followed by the payload in lowercase hex. A URef always carries its
// two-hex-digit access-rights suffix; an EraInfo key renders its era id in
// decimal.
func (k Key) ToFormattedString() string {
	switch k.tag {
	case TagEraInfo:
		return prefixFor(k.tag) + strconv.FormatUint(k.eraID, 10)
	case TagURef:
		return fmt.Sprintf("%s%s-%02x", prefixFor(k.tag), hex.EncodeToString(k.hash[:]), k.rights)
	default:
		return prefixFor(k.tag) + hex.EncodeToString(k.hash[:])
	}
}

// FromFormattedString parses the canonical text form. The longest known
// prefix wins; the remainder must decode to the variant's exact payload.
// Mixed-case hex is treated as checksummed and must verify.
func FromFormattedString(text string) (Key, error) {
	for _, tag := range formatOrder {
		prefix := prefixFor(tag)
		if !strings.HasPrefix(text, prefix) {
			continue
		}
		rest := text[len(prefix):]
		switch tag {
		case TagEraInfo:
			return parseEraInfo(rest)
		case TagURef:
			return parseURef(rest)
		default:
			payload, err := decodePayloadHex(rest, HashLength)
			if err != nil {
				return Key{}, err
			}
			k := Key{tag: tag}
			copy(k.hash[:], payload)
			return k, nil
		}
	}
	return Key{}, lkerr.New(lkerr.KindInvalidFormat, "LK-SK-201",
		fmt.Sprintf("no known state key prefix in %q", text))
}

func parseEraInfo(rest string) (Key, error) {
	id, err := strconv.ParseUint(rest, 10, 64)
	if err != nil {
		return Key{}, lkerr.Wrap(lkerr.KindInvalidFormat, "LK-SK-202",
			fmt.Sprintf("invalid era id %q", rest), err)
	}
	return NewEraInfoKey(id), nil
}

func parseURef(rest string) (Key, error) {
	// uref-<64 hex>-<2 hex>: the access-rights suffix is mandatory.
	idx := strings.LastIndexByte(rest, '-')
	if idx < 0 {
		return Key{}, lkerr.New(lkerr.KindInvalidFormat, "LK-SK-203",
			"uref key is missing its access-rights suffix")
	}
	addrPart, rightsPart := rest[:idx], rest[idx+1:]
	if len(rightsPart) != 2 {
		return Key{}, lkerr.New(lkerr.KindInvalidFormat, "LK-SK-204",
			fmt.Sprintf("uref access rights must be 2 hex digits, got %q", rightsPart))
	}
	rights, err := hex.DecodeString(strings.ToLower(rightsPart))
	if err != nil {
		return Key{}, lkerr.Wrap(lkerr.KindInvalidFormat, "LK-SK-205",
			fmt.Sprintf("invalid uref access rights %q", rightsPart), err)
	}
	addr, err := decodePayloadHex(addrPart, HashLength)
	if err != nil {
		return Key{}, err
	}
	k := Key{tag: TagURef, rights: rights[0]}
	copy(k.hash[:], addr)
	return k, nil
}

// decodePayloadHex decodes a fixed-length hex payload, enforcing the checksum
// on mixed-case input.
func decodePayloadHex(text string, want int) ([]byte, error) {
	if len(text) != 2*want {
		return nil, lkerr.New(lkerr.KindInvalidFormat, "LK-SK-206",
			fmt.Sprintf("state key payload must be %d hex characters, got %d", 2*want, len(text)))
	}
	if checksum.HasChecksum(text) {
		ok, err := checksum.Verify(text)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, lkerr.New(lkerr.KindChecksumMismatch, "LK-SK-207",
				"state key hex checksum mismatch")
		}
	}
	return checksum.Decode(text)
}
