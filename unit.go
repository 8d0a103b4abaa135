package spongefish

import "io"

// UnitCodec fixes the canonical byte encoding of one sponge alphabet.
// Encodings are fixed width: every unit of a given alphabet serializes to
// exactly UnitSize bytes, so transcript layout is determined by the domain
// separator alone.
type UnitCodec[U any] interface {
	// UnitSize returns the serialized byte width of one unit.
	UnitSize() int

	// WriteUnits serializes units into w in order.
	WriteUnits(w io.Writer, units []U) error

	// ReadUnits fills units from r, consuming exactly
	// len(units)*UnitSize() bytes. It returns ErrDecoding (possibly
	// wrapped) if the bytes are not a canonical encoding.
	ReadUnits(r io.Reader, units []U) error

	// WipeUnits zeroes units in place.
	WipeUnits(units []U)
}

// ByteCodec is the UnitCodec of the raw byte alphabet.
type ByteCodec struct{}

func (ByteCodec) UnitSize() int { return 1 }

func (ByteCodec) WriteUnits(w io.Writer, units []byte) error {
	_, err := w.Write(units)
	return err
}

func (ByteCodec) ReadUnits(r io.Reader, units []byte) error {
	_, err := io.ReadFull(r, units)
	return err
}

func (ByteCodec) WipeUnits(units []byte) {
	for i := range units {
		units[i] = 0
	}
}
