package remotesign

import (
	"xdao.co/ledgerkeys/serialization"
)

// EncodeSignRequest packs a key name and a message into a single payload:
// the name written with a 4-byte length prefix, followed by the raw message.
func EncodeSignRequest(name string, message []byte) []byte {
	w := serialization.NewWriter()
	w.WriteString(name)
	w.WriteBytes(message)
	return w.Bytes()
}

// DecodeSignRequest is the inverse of EncodeSignRequest.
func DecodeSignRequest(payload []byte) (name string, message []byte, err error) {
	r := serialization.NewReader(payload)
	name, err = r.ReadString()
	if err != nil {
		return "", nil, err
	}
	message, err = r.ReadBytes(r.Remaining())
	if err != nil {
		return "", nil, err
	}
	return name, message, nil
}
