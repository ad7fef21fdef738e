package statekey

import (
	"bytes"
	"testing"

	"xdao.co/ledgerkeys/checksum"
	"xdao.co/ledgerkeys/keypair"
	"xdao.co/ledgerkeys/lkerr"
)

func testHash() [HashLength]byte {
	var h [HashLength]byte
	for i := range h {
		h[i] = byte(i + 1)
	}
	return h
}

func allVariants() []Key {
	h := testHash()
	return []Key{
		NewAccountKey(h),
		NewHashKey(h),
		NewURef(h, AccessRead|AccessWrite|AccessAdd),
		NewTransferKey(h),
		NewDeployInfoKey(h),
		NewEraInfoKey(42),
		NewBalanceKey(h),
		NewBidKey(h),
		NewWithdrawKey(h),
		NewDictionaryKey(h),
	}
}

func TestKey_BinaryRoundTrip(t *testing.T) {
	for _, k := range allVariants() {
		b := k.Bytes()
		want, err := TotalLength(k.Tag())
		if err != nil {
			t.Fatalf("TotalLength(%#02x): %v", byte(k.Tag()), err)
		}
		if len(b) != want {
			t.Fatalf("tag %#02x: serialized length = %d, want %d", byte(k.Tag()), len(b), want)
		}
		if b[0] != byte(k.Tag()) {
			t.Fatalf("tag %#02x: leading byte = %#02x", byte(k.Tag()), b[0])
		}
		again, err := FromBytes(b)
		if err != nil {
			t.Fatalf("tag %#02x: FromBytes: %v", byte(k.Tag()), err)
		}
		if !k.Equal(again) {
			t.Fatalf("tag %#02x: binary round trip differs", byte(k.Tag()))
		}
	}
}

func TestKey_VariantLengths(t *testing.T) {
	cases := []struct {
		tag  Tag
		want int
	}{
		{TagAccount, 33},
		{TagHash, 33},
		{TagURef, 34},
		{TagTransfer, 33},
		{TagDeployInfo, 33},
		{TagEraInfo, 9},
		{TagBalance, 33},
		{TagBid, 33},
		{TagWithdraw, 33},
		{TagDictionary, 33},
	}
	for _, tc := range cases {
		got, err := TotalLength(tc.tag)
		if err != nil {
			t.Fatalf("TotalLength(%#02x): %v", byte(tc.tag), err)
		}
		if got != tc.want {
			t.Fatalf("TotalLength(%#02x) = %d, want %d", byte(tc.tag), got, tc.want)
		}
	}
}

func TestKey_FormattedRoundTrip(t *testing.T) {
	for _, k := range allVariants() {
		text := k.ToFormattedString()
		again, err := FromFormattedString(text)
		if err != nil {
			t.Fatalf("FromFormattedString(%q): %v", text, err)
		}
		if !k.Equal(again) {
			t.Fatalf("text round trip differs for %q", text)
		}
	}
}

func TestKey_FormattedPrefixes(t *testing.T) {
	h := testHash()
	cases := []struct {
		key    Key
		prefix string
	}{
		{NewAccountKey(h), "account-hash-"},
		{NewHashKey(h), "hash-"},
		{NewURef(h, AccessRead), "uref-"},
		{NewTransferKey(h), "transfer-"},
		{NewDeployInfoKey(h), "deploy-"},
		{NewEraInfoKey(7), "era-"},
		{NewBalanceKey(h), "balance-"},
		{NewBidKey(h), "bid-"},
		{NewWithdrawKey(h), "withdraw-"},
		{NewDictionaryKey(h), "dictionary-"},
	}
	for _, tc := range cases {
		text := tc.key.ToFormattedString()
		if len(text) < len(tc.prefix) || text[:len(tc.prefix)] != tc.prefix {
			t.Fatalf("formatted %q does not start with %q", text, tc.prefix)
		}
	}
}

func TestEraInfo_DecimalForm(t *testing.T) {
	k := NewEraInfoKey(12345)
	if got := k.ToFormattedString(); got != "era-12345" {
		t.Fatalf("era formatted = %q, want era-12345", got)
	}
	again, err := FromFormattedString("era-12345")
	if err != nil {
		t.Fatalf("FromFormattedString: %v", err)
	}
	if again.EraID() != 12345 {
		t.Fatalf("era id = %d, want 12345", again.EraID())
	}
}

func TestURef_RightsSuffix(t *testing.T) {
	k := NewURef(testHash(), AccessRead|AccessWrite)
	text := k.ToFormattedString()
	if text[len(text)-3:] != "-03" {
		t.Fatalf("uref suffix = %q, want -03", text[len(text)-3:])
	}
	again, err := FromFormattedString(text)
	if err != nil {
		t.Fatalf("FromFormattedString: %v", err)
	}
	addr, rights := again.URef()
	if addr != testHash() {
		t.Fatalf("uref address mismatch")
	}
	if rights != AccessRead|AccessWrite {
		t.Fatalf("uref rights = %#02x, want %#02x", rights, AccessRead|AccessWrite)
	}
}

func TestFromFormattedString_Errors(t *testing.T) {
	cases := []struct {
		name string
		text string
		kind lkerr.Kind
	}{
		{"no prefix", "bogus-0101", lkerr.KindInvalidFormat},
		{"short payload", "hash-abcd", lkerr.KindInvalidFormat},
		{"era not decimal", "era-xyz", lkerr.KindInvalidFormat},
		{"uref no suffix", "uref-" + lowerHex64(), lkerr.KindInvalidFormat},
		{"uref long suffix", "uref-" + lowerHex64() + "-007", lkerr.KindInvalidFormat},
		{"uref bad suffix", "uref-" + lowerHex64() + "-zz", lkerr.KindInvalidFormat},
	}
	for _, tc := range cases {
		_, err := FromFormattedString(tc.text)
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if !lkerr.IsKind(err, tc.kind) {
			t.Fatalf("%s: expected %s, got %v (rule %s)", tc.name, tc.kind, err, lkerr.RuleID(err))
		}
	}
}

func TestFromFormattedString_ChecksummedPayload(t *testing.T) {
	h := testHash()
	enc := checksum.Encode(h[:])
	if !checksum.HasChecksum(enc) {
		t.Skipf("encoding of test payload is single-case: %s", enc)
	}

	// The correctly checksummed payload parses.
	k, err := FromFormattedString("hash-" + enc)
	if err != nil {
		t.Fatalf("FromFormattedString(checksummed): %v", err)
	}
	if k.Hash() != h {
		t.Fatalf("payload mismatch")
	}

	// Swapping the case of one lowercase and one uppercase letter keeps the
	// string mixed-case but breaks its case pattern.
	b := []byte(enc)
	lower, upper := -1, -1
	for i, c := range b {
		if lower < 0 && c >= 'a' && c <= 'f' {
			lower = i
		}
		if upper < 0 && c >= 'A' && c <= 'F' {
			upper = i
		}
	}
	b[lower] -= 'a' - 'A'
	b[upper] += 'a' - 'A'
	_, err = FromFormattedString("hash-" + string(b))
	if err == nil {
		t.Fatalf("expected checksum error")
	}
	if !lkerr.IsKind(err, lkerr.KindChecksumMismatch) {
		t.Fatalf("expected KindChecksumMismatch, got %v (rule %s)", err, lkerr.RuleID(err))
	}
}

func TestFromBytes_Errors(t *testing.T) {
	if _, err := FromBytes(nil); !lkerr.IsKind(err, lkerr.KindInvalidLength) {
		t.Fatalf("empty: expected KindInvalidLength, got %v", err)
	}
	if _, err := FromBytes([]byte{0x7f}); !lkerr.IsKind(err, lkerr.KindUnknownKeyVariant) {
		t.Fatalf("unknown tag: expected KindUnknownKeyVariant, got %v", err)
	}
	if _, err := FromBytes([]byte{byte(TagHash), 0x01}); !lkerr.IsKind(err, lkerr.KindInvalidLength) {
		t.Fatalf("short payload: expected KindInvalidLength, got %v", err)
	}
}

func TestAccountKeyFromPublicKey(t *testing.T) {
	pub, err := keypair.NewPublicKeyFromHex("01381B36CD07aD85348607FFe0fa3A2d033Ea941d14763358EbeACe9c8ad3CB771")
	if err != nil {
		t.Fatalf("NewPublicKeyFromHex: %v", err)
	}
	k := AccountKeyFromPublicKey(pub)
	if k.Tag() != TagAccount {
		t.Fatalf("tag = %#02x, want %#02x", byte(k.Tag()), byte(TagAccount))
	}
	hash := pub.AccountHash()
	got := k.Hash()
	if !bytes.Equal(got[:], hash[:]) {
		t.Fatalf("account key hash differs from the public key's account hash")
	}
	if got := k.ToFormattedString(); got != "account-hash-07b30fdd279f21d29ab1922313b56ad3905e7dd6a654344b8012e0be9fefa51b" {
		t.Fatalf("formatted account key = %q", got)
	}
}

func lowerHex64() string {
	b := make([]byte, 64)
	for i := range b {
		b[i] = "0123456789abcdef"[i%16]
	}
	return string(b)
}
