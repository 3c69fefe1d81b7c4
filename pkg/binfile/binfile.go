// Package binfile implements the compiler's binary output format: a fixed hand-rolled header (magic, version, metadata)
// followed by a textual, deterministic-key-order encoding of a compiled
// constraint set. The format satisfies the round-trip property
// deserialise(serialise(cs)) == cs for any cs produced by pkg/corset and
// pkg/lower.
package binfile

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/airlang/corset/pkg/schema"
)

// BinaryFile is the in-memory representation of a compiled constraint
// binary: a versioned header plus the schema it carries.
type BinaryFile struct {
	Header Header
	Schema wireConstraintSet
}

// NewBinaryFile constructs a BinaryFile from a compiled constraint set,
// stamping the header at the current format version and attaching the
// given metadata (e.g. from `-D key=value` flags).
func NewBinaryFile(cs *schema.ConstraintSet, metadata Metadata) (*BinaryFile, error) {
	header, err := NewHeader(metadata)
	if err != nil {
		return nil, fmt.Errorf("building header: %w", err)
	}

	wire, err := ToWire(cs)
	if err != nil {
		return nil, fmt.Errorf("encoding schema: %w", err)
	}

	return &BinaryFile{Header: header, Schema: wire}, nil
}

// ConstraintSet reconstructs the compiled constraint set this file carries.
func (bf *BinaryFile) ConstraintSet() (*schema.ConstraintSet, error) {
	return FromWire(bf.Schema)
}

// Serialise converts the BinaryFile into a sequence of bytes: the
// hand-rolled header, followed by a JSON encoding of the schema. JSON (not
// gob) is used for the body specifically so the format is textual and
// human-diffable.
func (bf *BinaryFile) Serialise() ([]byte, error) {
	var buffer bytes.Buffer

	headerBytes, err := bf.Header.MarshalBinary()
	if err != nil {
		return nil, err
	}

	buffer.Write(headerBytes)

	body, err := json.Marshal(bf.Schema)
	if err != nil {
		return nil, fmt.Errorf("encoding schema body: %w", err)
	}

	buffer.Write(body)

	return buffer.Bytes(), nil
}

// Deserialise parses a binary file previously produced by Serialise.
func Deserialise(data []byte) (*BinaryFile, error) {
	var bf BinaryFile

	buffer := bytes.NewBuffer(data)

	if err := bf.Header.UnmarshalBinary(buffer); err != nil {
		return nil, err
	}

	if !bf.Header.IsCompatible() {
		return nil, &ErrIncompatible{Major: bf.Header.MajorVersion, Minor: bf.Header.MinorVersion}
	}

	if err := json.Unmarshal(buffer.Bytes(), &bf.Schema); err != nil {
		return nil, fmt.Errorf("decoding schema body: %w", err)
	}

	return &bf, nil
}
