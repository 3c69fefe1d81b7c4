package binfile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// BINFILE_MAJOR_VERSION is the major version of the binary file format.
// Regardless of version, the file always begins with the ZKBINARY identifier
// followed by a hand-rolled binary Header. The encoding of everything after
// the header is determined by the major version.
const BINFILE_MAJOR_VERSION uint16 = 1

// BINFILE_MINOR_VERSION is the minor version of the binary file format.
// Files with a lower minor version remain readable by this implementation,
// but files produced by this implementation may not be readable by older
// versions.
const BINFILE_MINOR_VERSION uint16 = 0

// ZKBINARY is the 8-byte magic identifier every binary file begins with; it
// lets corrupted files be distinguished from genuine ones before any
// version check is attempted.
var ZKBINARY = [8]byte{'z', 'k', 'b', 'i', 'n', 'a', 'r', 'y'}

// Header is the fixed-layout prefix of every binary file: the magic
// identifier, the two version numbers, and an optional metadata blob (spec
// §6 "version-tagged"). It is serialised using a hand-rolled big-endian
// encoding rather than the same textual encoding as the body, so that the
// magic and version can be read without decoding the (potentially large)
// schema that follows.
type Header struct {
	Identifier   [8]byte
	MajorVersion uint16
	MinorVersion uint16
	// MetaData is a JSON-encoded Metadata map, or nil for none.
	MetaData []byte
}

// NewHeader constructs a header stamped at the current format version.
func NewHeader(metadata Metadata) (Header, error) {
	data, err := metadata.ToJSON()
	if err != nil {
		return Header{}, err
	}

	return Header{ZKBINARY, BINFILE_MAJOR_VERSION, BINFILE_MINOR_VERSION, data}, nil
}

// GetMetaData parses this header's metadata bytes. A header with no
// metadata yields an empty, non-nil map.
func (h *Header) GetMetaData() (Metadata, error) {
	return MetadataFromJSON(h.MetaData)
}

// SetMetaData replaces this header's metadata with a JSON encoding of m.
func (h *Header) SetMetaData(m Metadata) error {
	data, err := m.ToJSON()
	if err != nil {
		return err
	}

	h.MetaData = data

	return nil
}

// IsCompatible reports whether this header can be decoded by the current
// version of the implementation: the ZKBINARY magic identifier, an exact
// match on the major version, and a minor version no greater than the
// current minor version.
func (h *Header) IsCompatible() bool {
	return h.Identifier == ZKBINARY &&
		h.MajorVersion == BINFILE_MAJOR_VERSION &&
		h.MinorVersion <= BINFILE_MINOR_VERSION
}

// MarshalBinary converts the header into a sequence of bytes. Observe that
// we don't gob-encode here, to avoid tying the header's framing to the body
// encoding used for the rest of the file.
func (h *Header) MarshalBinary() ([]byte, error) {
	var (
		buffer     bytes.Buffer
		majorBytes [2]byte
		minorBytes [2]byte
		metaLength [4]byte
	)

	binary.BigEndian.PutUint16(majorBytes[:], h.MajorVersion)
	binary.BigEndian.PutUint16(minorBytes[:], h.MinorVersion)
	binary.BigEndian.PutUint32(metaLength[:], uint32(len(h.MetaData)))

	buffer.Write(h.Identifier[:])
	buffer.Write(majorBytes[:])
	buffer.Write(minorBytes[:])
	buffer.Write(metaLength[:])
	buffer.Write(h.MetaData)

	return buffer.Bytes(), nil
}

// UnmarshalBinary initialises this header from a given buffer, consuming
// exactly the bytes this header occupies and leaving the rest (the body)
// for the caller to decode. This must match MarshalBinary's encoding
// exactly.
func (h *Header) UnmarshalBinary(buffer *bytes.Buffer) error {
	var (
		majorBytes      [2]byte
		minorBytes      [2]byte
		metaLengthBytes [4]byte
	)

	if n, err := buffer.Read(h.Identifier[:]); err != nil {
		return err
	} else if n != len(h.Identifier) {
		return errors.New("malformed binary file")
	}

	if n, err := buffer.Read(majorBytes[:]); err != nil {
		return err
	} else if n != len(majorBytes) {
		return errors.New("malformed binary file")
	}

	if n, err := buffer.Read(minorBytes[:]); err != nil {
		return err
	} else if n != len(minorBytes) {
		return errors.New("malformed binary file")
	}

	if n, err := buffer.Read(metaLengthBytes[:]); err != nil {
		return err
	} else if n != len(metaLengthBytes) {
		return errors.New("malformed binary file")
	}

	metaLength := binary.BigEndian.Uint32(metaLengthBytes[:])
	metaBytes := make([]byte, metaLength)

	if metaLength > 0 {
		if n, err := buffer.Read(metaBytes); err != nil {
			return err
		} else if uint32(n) != metaLength {
			return errors.New("malformed binary file")
		}
	}

	h.MajorVersion = binary.BigEndian.Uint16(majorBytes[:])
	h.MinorVersion = binary.BigEndian.Uint16(minorBytes[:])
	h.MetaData = metaBytes

	return nil
}

// IsBinaryFile checks whether data begins with the expected ZKBINARY
// identifier, distinguishing genuine binary files from arbitrary/corrupt
// input without a full decode.
func IsBinaryFile(data []byte) bool {
	var magic [8]byte

	buffer := bytes.NewBuffer(data)
	if _, err := buffer.Read(magic[:]); err != nil {
		return false
	}

	return magic == ZKBINARY
}

// ErrIncompatible is returned when a binary file's header fails IsCompatible.
type ErrIncompatible struct {
	Major, Minor uint16
}

func (e *ErrIncompatible) Error() string {
	return fmt.Sprintf("incompatible binary file was v%d.%d, but expected v%d.%d",
		e.Major, e.Minor, BINFILE_MAJOR_VERSION, BINFILE_MINOR_VERSION)
}
