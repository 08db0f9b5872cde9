// Package gwire implements the Module on-wire binary format (spec.md
// §6): a versioned blob with a fixed section order, little-endian
// integers and UTF-8 length-prefixed strings. The one exception is
// U128/U256 constants, which are written as a little-endian u16 byte
// count followed by the big-endian magnitude bytes. Grounded on
// the teacher's internal/vm.Bundle.Serialize/DeserializeAny
// (vm/bundle.go) for the magic+version+payload envelope shape, but
// uses a hand-rolled binary layout instead of gob — this spec's format
// is an interop contract between independent host implementations
// (spec.md §6), which gob's Go-specific reflection-based encoding
// cannot serve.
package gwire

import (
	"bytes"
	"encoding/binary"
	"math/big"

	"github.com/xelis-go/funxyvm/internal/gchunk"
	"github.com/xelis-go/funxyvm/internal/gerrors"
	"github.com/xelis-go/funxyvm/internal/gmodule"
	"github.com/xelis-go/funxyvm/internal/gvalue"
)

var magic = [4]byte{'F', 'X', 'V', 'M'}

const formatVersion uint8 = 1

// Encode serializes a Module to its on-wire binary form.
func Encode(m *gmodule.Module) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Write(magic[:])
	buf.WriteByte(formatVersion)

	if err := encodeConstants(buf, m.Constants); err != nil {
		return nil, err
	}
	encodeStructs(buf, m.Structs)
	encodeEnums(buf, m.Enums)
	if err := encodeChunks(buf, m.Chunks); err != nil {
		return nil, err
	}
	encodeEntries(buf, m.Entries)

	return buf.Bytes(), nil
}

// Decode parses a Module from its on-wire binary form.
func Decode(data []byte) (*gmodule.Module, error) {
	if len(data) < 5 {
		return nil, gerrors.New(gerrors.ModuleFormat, "module data too short")
	}
	if !bytes.Equal(data[:4], magic[:]) {
		return nil, gerrors.New(gerrors.ModuleFormat, "bad magic number, expected %q", magic)
	}
	version := data[4]
	if version != formatVersion {
		return nil, gerrors.New(gerrors.ModuleFormat, "unsupported module format version %d", version)
	}

	r := bytes.NewReader(data[5:])
	m := gmodule.New()

	constants, err := decodeConstants(r)
	if err != nil {
		return nil, err
	}
	m.Constants = constants

	if err := decodeStructs(r, m); err != nil {
		return nil, err
	}
	if err := decodeEnums(r, m); err != nil {
		return nil, err
	}
	chunks, err := decodeChunks(r)
	if err != nil {
		return nil, err
	}
	m.Chunks = chunks

	if err := decodeEntries(r, m); err != nil {
		return nil, err
	}

	return m, nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func writeString(buf *bytes.Buffer, s string) {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(s)))
	buf.Write(lenBuf[:])
	buf.WriteString(s)
}

func readString(r *bytes.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", gerrors.New(gerrors.ModuleFormat, "truncated string length: %v", err)
	}
	b := make([]byte, n)
	if _, err := r.Read(b); err != nil {
		return "", gerrors.New(gerrors.ModuleFormat, "truncated string body: %v", err)
	}
	return string(b), nil
}

func encodeType(buf *bytes.Buffer, t gvalue.Type) {
	buf.WriteByte(byte(t.Tag))
	switch t.Tag {
	case gvalue.TOpaque:
		binary.Write(buf, binary.LittleEndian, t.Opaque)
	case gvalue.TArray, gvalue.TOptional:
		encodeType(buf, *t.Inner)
	case gvalue.TStruct, gvalue.TEnum:
		binary.Write(buf, binary.LittleEndian, t.TypeID)
	}
}

func decodeType(r *bytes.Reader) (gvalue.Type, error) {
	tagByte, err := r.ReadByte()
	if err != nil {
		return gvalue.Type{}, gerrors.New(gerrors.ModuleFormat, "truncated type tag: %v", err)
	}
	t := gvalue.Type{Tag: gvalue.TypeTag(tagByte)}
	switch t.Tag {
	case gvalue.TOpaque:
		if err := binary.Read(r, binary.LittleEndian, &t.Opaque); err != nil {
			return gvalue.Type{}, gerrors.New(gerrors.ModuleFormat, "truncated opaque id: %v", err)
		}
	case gvalue.TArray, gvalue.TOptional:
		inner, err := decodeType(r)
		if err != nil {
			return gvalue.Type{}, err
		}
		t.Inner = &inner
	case gvalue.TStruct, gvalue.TEnum:
		if err := binary.Read(r, binary.LittleEndian, &t.TypeID); err != nil {
			return gvalue.Type{}, gerrors.New(gerrors.ModuleFormat, "truncated struct/enum type id: %v", err)
		}
	}
	return t, nil
}

func encodePrimitive(buf *bytes.Buffer, p gvalue.Primitive) error {
	buf.WriteByte(byte(p.Tag))
	switch p.Tag {
	case gvalue.TNull:
	case gvalue.TBool:
		buf.WriteByte(boolByte(p.AsBool()))
	case gvalue.TU8:
		buf.WriteByte(byte(p.AsU64()))
	case gvalue.TU16:
		binary.Write(buf, binary.LittleEndian, uint16(p.AsU64()))
	case gvalue.TU32:
		binary.Write(buf, binary.LittleEndian, uint32(p.AsU64()))
	case gvalue.TU64:
		binary.Write(buf, binary.LittleEndian, p.AsU64())
	case gvalue.TU128, gvalue.TU256:
		b := p.AsBig().Bytes()
		binary.Write(buf, binary.LittleEndian, uint16(len(b)))
		buf.Write(b)
	case gvalue.TString:
		writeString(buf, p.AsString())
	case gvalue.TRange:
		lo, hi, elem := p.AsRange()
		encodeType(buf, elem)
		if err := encodePrimitive(buf, lo); err != nil {
			return err
		}
		if err := encodePrimitive(buf, hi); err != nil {
			return err
		}
	default:
		return gerrors.New(gerrors.ModuleFormat, "primitive tag %s is not wire-encodable in the constant pool", p.Tag)
	}
	return nil
}

func decodePrimitive(r *bytes.Reader) (gvalue.Primitive, error) {
	tagByte, err := r.ReadByte()
	if err != nil {
		return gvalue.Primitive{}, gerrors.New(gerrors.ModuleFormat, "truncated primitive tag: %v", err)
	}
	tag := gvalue.TypeTag(tagByte)
	switch tag {
	case gvalue.TNull:
		return gvalue.Null(), nil
	case gvalue.TBool:
		b, err := r.ReadByte()
		if err != nil {
			return gvalue.Primitive{}, gerrors.New(gerrors.ModuleFormat, "truncated bool: %v", err)
		}
		return gvalue.Bool(b != 0), nil
	case gvalue.TU8:
		b, err := r.ReadByte()
		if err != nil {
			return gvalue.Primitive{}, gerrors.New(gerrors.ModuleFormat, "truncated u8: %v", err)
		}
		return gvalue.U8(b), nil
	case gvalue.TU16:
		var v uint16
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return gvalue.Primitive{}, gerrors.New(gerrors.ModuleFormat, "truncated u16: %v", err)
		}
		return gvalue.U16(v), nil
	case gvalue.TU32:
		var v uint32
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return gvalue.Primitive{}, gerrors.New(gerrors.ModuleFormat, "truncated u32: %v", err)
		}
		return gvalue.U32(v), nil
	case gvalue.TU64:
		var v uint64
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return gvalue.Primitive{}, gerrors.New(gerrors.ModuleFormat, "truncated u64: %v", err)
		}
		return gvalue.U64(v), nil
	case gvalue.TU128, gvalue.TU256:
		var n uint16
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return gvalue.Primitive{}, gerrors.New(gerrors.ModuleFormat, "truncated bigint length: %v", err)
		}
		b := make([]byte, n)
		if _, err := r.Read(b); err != nil {
			return gvalue.Primitive{}, gerrors.New(gerrors.ModuleFormat, "truncated bigint body: %v", err)
		}
		v := new(big.Int).SetBytes(b)
		if tag == gvalue.TU128 {
			return gvalue.U128(v), nil
		}
		return gvalue.U256(v), nil
	case gvalue.TString:
		s, err := readString(r)
		if err != nil {
			return gvalue.Primitive{}, err
		}
		return gvalue.Str(s), nil
	case gvalue.TRange:
		elem, err := decodeType(r)
		if err != nil {
			return gvalue.Primitive{}, err
		}
		lo, err := decodePrimitive(r)
		if err != nil {
			return gvalue.Primitive{}, err
		}
		hi, err := decodePrimitive(r)
		if err != nil {
			return gvalue.Primitive{}, err
		}
		return gvalue.RangeOf(lo, hi, elem), nil
	default:
		return gvalue.Primitive{}, gerrors.New(gerrors.ModuleFormat, "primitive tag %d is not wire-decodable", tagByte)
	}
}

func encodeCell(buf *bytes.Buffer, cell gvalue.ValueCell) error {
	buf.WriteByte(byte(cell.Tag))
	switch cell.Tag {
	case gvalue.CellDefault:
		return encodePrimitive(buf, cell.Prim)
	case gvalue.CellArray:
		return encodeSubSlice(buf, cell.Elems)
	case gvalue.CellStruct:
		binary.Write(buf, binary.LittleEndian, cell.StructType)
		return encodeSubSlice(buf, cell.Elems)
	case gvalue.CellEnum:
		binary.Write(buf, binary.LittleEndian, cell.EnumType)
		buf.WriteByte(cell.EnumVariant)
		return encodeSubSlice(buf, cell.Elems)
	case gvalue.CellOptional:
		if cell.Opt == nil {
			buf.WriteByte(0)
			return nil
		}
		buf.WriteByte(1)
		return encodeCell(buf, cell.Opt.Get().Clone())
	default:
		return gerrors.New(gerrors.ModuleFormat, "cell tag %d is not wire-encodable in the constant pool", cell.Tag)
	}
}

func encodeSubSlice(buf *bytes.Buffer, elems []gvalue.SubValue) error {
	binary.Write(buf, binary.LittleEndian, uint32(len(elems)))
	for _, e := range elems {
		if err := encodeCell(buf, e.Get().Clone()); err != nil {
			return err
		}
	}
	return nil
}

func decodeCell(r *bytes.Reader) (gvalue.ValueCell, error) {
	tagByte, err := r.ReadByte()
	if err != nil {
		return gvalue.ValueCell{}, gerrors.New(gerrors.ModuleFormat, "truncated cell tag: %v", err)
	}
	switch gvalue.CellTag(tagByte) {
	case gvalue.CellDefault:
		p, err := decodePrimitive(r)
		if err != nil {
			return gvalue.ValueCell{}, err
		}
		return gvalue.DefaultCell(p), nil
	case gvalue.CellArray:
		elems, err := decodeSubSlice(r)
		if err != nil {
			return gvalue.ValueCell{}, err
		}
		return gvalue.ArrayCell(elems), nil
	case gvalue.CellStruct:
		var structType uint32
		if err := binary.Read(r, binary.LittleEndian, &structType); err != nil {
			return gvalue.ValueCell{}, gerrors.New(gerrors.ModuleFormat, "truncated struct type id: %v", err)
		}
		elems, err := decodeSubSlice(r)
		if err != nil {
			return gvalue.ValueCell{}, err
		}
		return gvalue.StructCell(elems, structType), nil
	case gvalue.CellEnum:
		var enumType uint32
		if err := binary.Read(r, binary.LittleEndian, &enumType); err != nil {
			return gvalue.ValueCell{}, gerrors.New(gerrors.ModuleFormat, "truncated enum type id: %v", err)
		}
		variant, err := r.ReadByte()
		if err != nil {
			return gvalue.ValueCell{}, gerrors.New(gerrors.ModuleFormat, "truncated enum variant: %v", err)
		}
		elems, err := decodeSubSlice(r)
		if err != nil {
			return gvalue.ValueCell{}, err
		}
		return gvalue.EnumCell(elems, enumType, variant), nil
	case gvalue.CellOptional:
		present, err := r.ReadByte()
		if err != nil {
			return gvalue.ValueCell{}, gerrors.New(gerrors.ModuleFormat, "truncated optional tag: %v", err)
		}
		if present == 0 {
			return gvalue.EmptyOptionalCell(), nil
		}
		inner, err := decodeCell(r)
		if err != nil {
			return gvalue.ValueCell{}, err
		}
		return gvalue.OptionalCell(gvalue.NewSubValue(inner)), nil
	default:
		return gvalue.ValueCell{}, gerrors.New(gerrors.ModuleFormat, "cell tag %d is not wire-decodable", tagByte)
	}
}

func decodeSubSlice(r *bytes.Reader) ([]gvalue.SubValue, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, gerrors.New(gerrors.ModuleFormat, "truncated slice length: %v", err)
	}
	out := make([]gvalue.SubValue, n)
	for i := range out {
		cell, err := decodeCell(r)
		if err != nil {
			return nil, err
		}
		out[i] = gvalue.NewSubValue(cell)
	}
	return out, nil
}

func encodeConstants(buf *bytes.Buffer, constants []gvalue.ValueCell) error {
	binary.Write(buf, binary.LittleEndian, uint32(len(constants)))
	for _, c := range constants {
		if err := encodeCell(buf, c); err != nil {
			return err
		}
	}
	return nil
}

func decodeConstants(r *bytes.Reader) ([]gvalue.ValueCell, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, gerrors.New(gerrors.ModuleFormat, "truncated constant pool length: %v", err)
	}
	out := make([]gvalue.ValueCell, n)
	for i := range out {
		c, err := decodeCell(r)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

func encodeStructs(buf *bytes.Buffer, structs map[uint32]gmodule.StructType) {
	binary.Write(buf, binary.LittleEndian, uint32(len(structs)))
	for id, st := range structs {
		binary.Write(buf, binary.LittleEndian, id)
		writeString(buf, st.Name)
		binary.Write(buf, binary.LittleEndian, uint16(len(st.FieldTypes)))
		for _, ft := range st.FieldTypes {
			encodeType(buf, ft)
		}
	}
}

func decodeStructs(r *bytes.Reader, m *gmodule.Module) error {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return gerrors.New(gerrors.ModuleFormat, "truncated struct catalog length: %v", err)
	}
	for i := uint32(0); i < n; i++ {
		var id uint32
		if err := binary.Read(r, binary.LittleEndian, &id); err != nil {
			return gerrors.New(gerrors.ModuleFormat, "truncated struct id: %v", err)
		}
		name, err := readString(r)
		if err != nil {
			return err
		}
		var fieldCount uint16
		if err := binary.Read(r, binary.LittleEndian, &fieldCount); err != nil {
			return gerrors.New(gerrors.ModuleFormat, "truncated struct field count: %v", err)
		}
		fields := make([]gvalue.Type, fieldCount)
		for j := range fields {
			t, err := decodeType(r)
			if err != nil {
				return err
			}
			fields[j] = t
		}
		m.Structs[id] = gmodule.StructType{ID: id, Name: name, FieldTypes: fields}
	}
	return nil
}

func encodeEnums(buf *bytes.Buffer, enums map[uint32]gmodule.EnumType) {
	binary.Write(buf, binary.LittleEndian, uint32(len(enums)))
	for id, et := range enums {
		binary.Write(buf, binary.LittleEndian, id)
		writeString(buf, et.Name)
		binary.Write(buf, binary.LittleEndian, uint16(len(et.Variants)))
		for _, v := range et.Variants {
			writeString(buf, v.Name)
			binary.Write(buf, binary.LittleEndian, uint16(len(v.FieldTypes)))
			for _, ft := range v.FieldTypes {
				encodeType(buf, ft)
			}
		}
	}
}

func decodeEnums(r *bytes.Reader, m *gmodule.Module) error {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return gerrors.New(gerrors.ModuleFormat, "truncated enum catalog length: %v", err)
	}
	for i := uint32(0); i < n; i++ {
		var id uint32
		if err := binary.Read(r, binary.LittleEndian, &id); err != nil {
			return gerrors.New(gerrors.ModuleFormat, "truncated enum id: %v", err)
		}
		name, err := readString(r)
		if err != nil {
			return err
		}
		var variantCount uint16
		if err := binary.Read(r, binary.LittleEndian, &variantCount); err != nil {
			return gerrors.New(gerrors.ModuleFormat, "truncated enum variant count: %v", err)
		}
		variants := make([]gmodule.EnumVariant, variantCount)
		for j := range variants {
			vname, err := readString(r)
			if err != nil {
				return err
			}
			var fieldCount uint16
			if err := binary.Read(r, binary.LittleEndian, &fieldCount); err != nil {
				return gerrors.New(gerrors.ModuleFormat, "truncated variant field count: %v", err)
			}
			fields := make([]gvalue.Type, fieldCount)
			for k := range fields {
				t, err := decodeType(r)
				if err != nil {
					return err
				}
				fields[k] = t
			}
			variants[j] = gmodule.EnumVariant{Name: vname, FieldTypes: fields}
		}
		m.Enums[id] = gmodule.EnumType{ID: id, Name: name, Variants: variants}
	}
	return nil
}

func encodeChunks(buf *bytes.Buffer, chunks []*gchunk.Chunk) error {
	binary.Write(buf, binary.LittleEndian, uint16(len(chunks)))
	for _, c := range chunks {
		binary.Write(buf, binary.LittleEndian, c.ArgCount)
		binary.Write(buf, binary.LittleEndian, c.LocalCount)
		buf.WriteByte(c.Flags)
		binary.Write(buf, binary.LittleEndian, uint32(len(c.Code)))
		buf.Write(c.Code)
	}
	return nil
}

func decodeChunks(r *bytes.Reader) ([]*gchunk.Chunk, error) {
	var n uint16
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, gerrors.New(gerrors.ModuleFormat, "truncated chunk table length: %v", err)
	}
	out := make([]*gchunk.Chunk, n)
	for i := range out {
		var argCount, localCount uint16
		if err := binary.Read(r, binary.LittleEndian, &argCount); err != nil {
			return nil, gerrors.New(gerrors.ModuleFormat, "truncated chunk arg count: %v", err)
		}
		if err := binary.Read(r, binary.LittleEndian, &localCount); err != nil {
			return nil, gerrors.New(gerrors.ModuleFormat, "truncated chunk local count: %v", err)
		}
		flags, err := r.ReadByte()
		if err != nil {
			return nil, gerrors.New(gerrors.ModuleFormat, "truncated chunk flags: %v", err)
		}
		var codeLen uint32
		if err := binary.Read(r, binary.LittleEndian, &codeLen); err != nil {
			return nil, gerrors.New(gerrors.ModuleFormat, "truncated chunk code length: %v", err)
		}
		code := make([]byte, codeLen)
		if _, err := r.Read(code); err != nil {
			return nil, gerrors.New(gerrors.ModuleFormat, "truncated chunk code: %v", err)
		}
		chunk := gchunk.NewChunk(argCount, localCount, flags&1 != 0)
		chunk.Code = code
		out[i] = chunk
	}
	return out, nil
}

func encodeEntries(buf *bytes.Buffer, entries map[uint32]bool) {
	binary.Write(buf, binary.LittleEndian, uint16(len(entries)))
	for id := range entries {
		binary.Write(buf, binary.LittleEndian, uint16(id))
	}
}

func decodeEntries(r *bytes.Reader, m *gmodule.Module) error {
	var n uint16
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return gerrors.New(gerrors.ModuleFormat, "truncated entry index length: %v", err)
	}
	for i := uint16(0); i < n; i++ {
		var id uint16
		if err := binary.Read(r, binary.LittleEndian, &id); err != nil {
			return gerrors.New(gerrors.ModuleFormat, "truncated entry id: %v", err)
		}
		m.MarkEntry(id)
	}
	return nil
}
