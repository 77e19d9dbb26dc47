package graph

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MaxFormatVersion is the newest graph document format this build
// understands. Newer documents are rejected at read time.
const MaxFormatVersion = 1

// LoadDocument reads one graph document from disk. The encoding is
// chosen by file extension: .cbor is decoded as canonical CBOR,
// everything else as JSON. A document that fails to decode, or that
// carries a format version newer than MaxFormatVersion, is a fatal
// read-time error.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read graph document %s: %w", path, err)
	}

	var doc *Document
	if strings.EqualFold(filepath.Ext(path), ".cbor") {
		doc, err = UnmarshalDocument(data)
	} else {
		doc = &Document{}
		err = json.Unmarshal(data, doc)
	}
	if err != nil {
		return nil, fmt.Errorf("malformed graph document %s: %w", path, err)
	}

	if doc.FormatVersion > MaxFormatVersion {
		return nil, fmt.Errorf("graph document %s uses format version %d, newest supported is %d",
			path, doc.FormatVersion, MaxFormatVersion)
	}
	return doc, nil
}

// LoadSet reads every listed graph document and returns their logical
// union. Documents keep their own id spaces; the Set only unions the
// name lookup.
func LoadSet(paths []string) (*Set, error) {
	set := &Set{}
	for _, p := range paths {
		doc, err := LoadDocument(p)
		if err != nil {
			return nil, err
		}
		set.Docs = append(set.Docs, doc)
	}
	return set, nil
}
