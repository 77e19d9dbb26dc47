package graph

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// cborEncMode uses canonical mode so that converted documents encode
// deterministically regardless of map iteration order.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("graph: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// MarshalDocument serializes a Document to canonical CBOR bytes. Used by
// producers that want the compact on-disk form.
func MarshalDocument(d *Document) ([]byte, error) {
	return cborEncMode.Marshal(d)
}

// UnmarshalDocument deserializes a Document from CBOR bytes.
func UnmarshalDocument(data []byte) (*Document, error) {
	var d Document
	if err := cbor.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("graph: unmarshal document: %w", err)
	}
	return &d, nil
}
