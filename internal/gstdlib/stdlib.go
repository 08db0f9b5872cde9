// Package gstdlib registers the native function catalog a host
// typically wants available: string, array, map, and range operations
// over gvalue, wired into a genv.Builder the way the teacher wires its
// name-keyed builtins into an Environment (internal/evaluator/
// builtins_std.go, builtins.go's RegisterBuiltins), translated from
// string-dispatch over evaluator.Object into id-dispatch, receiver-
// typed Entry registrations over gvalue.
package gstdlib

import (
	"strings"

	"github.com/xelis-go/funxyvm/internal/gcontext"
	"github.com/xelis-go/funxyvm/internal/genv"
	"github.com/xelis-go/funxyvm/internal/gerrors"
	"github.com/xelis-go/funxyvm/internal/gvalue"
)

// Register installs the standard catalog into b.
func Register(b *genv.Builder) {
	registerString(b)
	registerArray(b)
	registerMap(b)
	registerRange(b)
}

func ret(cell gvalue.ValueCell) (*gvalue.ValueCell, error) { return &cell, nil }

func noReturn() (*gvalue.ValueCell, error) { return nil, nil }

func registerString(b *genv.Builder) {
	strType := gvalue.Simple(gvalue.TString)

	b.RegisterNativeFunction("len", &strType, nil,
		func(recv *gvalue.Path, args *genv.Deque, ctx *gcontext.Context) (*gvalue.ValueCell, error) {
			s := recv.AsRef().Prim.AsString()
			return ret(gvalue.DefaultCell(gvalue.U64(uint64(len(s)))))
		}, 1, typePtr(gvalue.TU64))

	b.RegisterNativeFunction("to_uppercase", &strType, nil,
		func(recv *gvalue.Path, args *genv.Deque, ctx *gcontext.Context) (*gvalue.ValueCell, error) {
			s := recv.AsRef().Prim.AsString()
			return ret(gvalue.DefaultCell(gvalue.Str(strings.ToUpper(s))))
		}, 2, &strType)

	b.RegisterNativeFunction("to_lowercase", &strType, nil,
		func(recv *gvalue.Path, args *genv.Deque, ctx *gcontext.Context) (*gvalue.ValueCell, error) {
			s := recv.AsRef().Prim.AsString()
			return ret(gvalue.DefaultCell(gvalue.Str(strings.ToLower(s))))
		}, 2, &strType)

	b.RegisterNativeFunction("contains", &strType,
		[]genv.Param{{Name: "needle", Type: strType}},
		func(recv *gvalue.Path, args *genv.Deque, ctx *gcontext.Context) (*gvalue.ValueCell, error) {
			needle, err := args.PopFront()
			if err != nil {
				return nil, err
			}
			s := recv.AsRef().Prim.AsString()
			n := needle.AsRef().Prim.AsString()
			return ret(gvalue.DefaultCell(gvalue.Bool(strings.Contains(s, n))))
		}, 3, typePtr(gvalue.TBool))

	b.RegisterNativeFunction("split", &strType,
		[]genv.Param{{Name: "sep", Type: strType}},
		func(recv *gvalue.Path, args *genv.Deque, ctx *gcontext.Context) (*gvalue.ValueCell, error) {
			sep, err := args.PopFront()
			if err != nil {
				return nil, err
			}
			s := recv.AsRef().Prim.AsString()
			parts := strings.Split(s, sep.AsRef().Prim.AsString())
			elems := make([]gvalue.SubValue, len(parts))
			for i, p := range parts {
				elems[i] = gvalue.NewSubValue(gvalue.DefaultCell(gvalue.Str(p)))
			}
			return ret(gvalue.ArrayCell(elems))
		}, 4, nil)
}

func registerArray(b *genv.Builder) {
	arrType := gvalue.Type{Tag: gvalue.TArray}

	b.RegisterNativeFunction("len", &arrType, nil,
		func(recv *gvalue.Path, args *genv.Deque, ctx *gcontext.Context) (*gvalue.ValueCell, error) {
			elems, ok := recv.AsRef().SubVec()
			if !ok {
				return nil, gerrors.New(gerrors.TypeMismatch, "len requires an Array receiver")
			}
			return ret(gvalue.DefaultCell(gvalue.U64(uint64(len(elems)))))
		}, 1, typePtr(gvalue.TU64))

	b.RegisterNativeFunction("push", &arrType,
		[]genv.Param{{Name: "value", Type: gvalue.Type{Tag: gvalue.TAny}}},
		func(recv *gvalue.Path, args *genv.Deque, ctx *gcontext.Context) (*gvalue.ValueCell, error) {
			v, err := args.PopFront()
			if err != nil {
				return nil, err
			}
			cell := recv.AsMut()
			cell.Elems = append(cell.Elems, gvalue.NewSubValue(v.IntoOwned()))
			return noReturn()
		}, 2, nil)

	b.RegisterNativeFunction("pop", &arrType, nil,
		func(recv *gvalue.Path, args *genv.Deque, ctx *gcontext.Context) (*gvalue.ValueCell, error) {
			cell := recv.AsMut()
			if len(cell.Elems) == 0 {
				return nil, gerrors.New(gerrors.OutOfBounds, "pop on empty array")
			}
			last := cell.Elems[len(cell.Elems)-1]
			cell.Elems = cell.Elems[:len(cell.Elems)-1]
			v := last.Get().Clone()
			return ret(v)
		}, 2, nil)

	b.RegisterNativeFunction("get", &arrType,
		[]genv.Param{{Name: "index", Type: gvalue.Simple(gvalue.TU64)}},
		func(recv *gvalue.Path, args *genv.Deque, ctx *gcontext.Context) (*gvalue.ValueCell, error) {
			idxPath, err := args.PopFront()
			if err != nil {
				return nil, err
			}
			idx := int(idxPath.AsRef().Prim.AsU64())
			elems, ok := recv.AsRef().SubVec()
			if !ok {
				return nil, gerrors.New(gerrors.TypeMismatch, "get requires an Array receiver")
			}
			if idx < 0 || idx >= len(elems) {
				return nil, gerrors.OutOfBoundsErr(idx, len(elems))
			}
			v := elems[idx].Get().Clone()
			return ret(v)
		}, 1, nil)
}

func registerMap(b *genv.Builder) {
	mapType := gvalue.Type{Tag: gvalue.TMap}

	b.RegisterNativeFunction("len", &mapType, nil,
		func(recv *gvalue.Path, args *genv.Deque, ctx *gcontext.Context) (*gvalue.ValueCell, error) {
			cell := recv.AsRef()
			if cell.Tag != gvalue.CellMap {
				return nil, gerrors.New(gerrors.TypeMismatch, "len requires a Map receiver")
			}
			return ret(gvalue.DefaultCell(gvalue.U64(uint64(cell.Map.Len()))))
		}, 1, typePtr(gvalue.TU64))

	b.RegisterNativeFunction("contains_key", &mapType,
		[]genv.Param{{Name: "key", Type: gvalue.Type{Tag: gvalue.TAny}}},
		func(recv *gvalue.Path, args *genv.Deque, ctx *gcontext.Context) (*gvalue.ValueCell, error) {
			key, err := args.PopFront()
			if err != nil {
				return nil, err
			}
			cell := recv.AsRef()
			if cell.Tag != gvalue.CellMap {
				return nil, gerrors.New(gerrors.TypeMismatch, "contains_key requires a Map receiver")
			}
			_, ok := cell.Map.Get(key.IntoOwned())
			return ret(gvalue.DefaultCell(gvalue.Bool(ok)))
		}, 3, typePtr(gvalue.TBool))

	b.RegisterNativeFunction("insert", &mapType,
		[]genv.Param{
			{Name: "key", Type: gvalue.Type{Tag: gvalue.TAny}},
			{Name: "value", Type: gvalue.Type{Tag: gvalue.TAny}},
		},
		func(recv *gvalue.Path, args *genv.Deque, ctx *gcontext.Context) (*gvalue.ValueCell, error) {
			key, err := args.PopFront()
			if err != nil {
				return nil, err
			}
			value, err := args.PopFront()
			if err != nil {
				return nil, err
			}
			cell := recv.AsMut()
			if cell.Tag != gvalue.CellMap {
				return nil, gerrors.New(gerrors.TypeMismatch, "insert requires a Map receiver")
			}
			cell.Map.Put(key.IntoOwned(), gvalue.NewSubValue(value.IntoOwned()))
			return noReturn()
		}, 4, nil)
}

func registerRange(b *genv.Builder) {
	rangeType := gvalue.Type{Tag: gvalue.TRange}

	b.RegisterNativeFunction("contains", &rangeType,
		[]genv.Param{{Name: "value", Type: gvalue.Type{Tag: gvalue.TAny}}},
		func(recv *gvalue.Path, args *genv.Deque, ctx *gcontext.Context) (*gvalue.ValueCell, error) {
			v, err := args.PopFront()
			if err != nil {
				return nil, err
			}
			lo, hi, _ := recv.AsRef().Prim.AsRange()
			val := v.AsRef().Prim
			loCmp, err := gvalue.Compare(lo, val)
			if err != nil {
				return nil, err
			}
			hiCmp, err := gvalue.Compare(val, hi)
			if err != nil {
				return nil, err
			}
			return ret(gvalue.DefaultCell(gvalue.Bool(loCmp <= 0 && hiCmp < 0)))
		}, 2, typePtr(gvalue.TBool))
}

func typePtr(tag gvalue.TypeTag) *gvalue.Type {
	t := gvalue.Simple(tag)
	return &t
}
