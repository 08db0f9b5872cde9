package gvalue

import "math/big"

// PathIterator yields Paths one at a time over an Array, a Map's keys,
// or a Range (spec.md §4.2). Exhaustion yields "end", not failure.
type PathIterator struct {
	kind iterKind

	arrayElems []SubValue
	arrayPos   int

	mapKeys []ValueCell
	mapPos  int

	rangeCur  *big.Int
	rangeEnd  *big.Int
	rangeElem Type
	rangeDone bool
}

type iterKind uint8

const (
	iterArray iterKind = iota
	iterMapKeys
	iterRange
)

// NewArrayIterator walks an Array cell's elements as Wrapper paths,
// preserving aliasing with the source container.
func NewArrayIterator(elems []SubValue) *PathIterator {
	return &PathIterator{kind: iterArray, arrayElems: elems}
}

// NewMapKeyIterator walks a Map cell's keys (spec.md §9: order
// unspecified; MapCell.Iterate's deterministic-but-arbitrary order is
// used here).
func NewMapKeyIterator(m *MapCell) *PathIterator {
	keys := make([]ValueCell, 0, m.Len())
	m.Iterate(func(key ValueCell, _ SubValue) bool {
		keys = append(keys, key)
		return true
	})
	return &PathIterator{kind: iterMapKeys, mapKeys: keys}
}

// NewRangeIterator walks a half-open [lo, hi) integer range.
func NewRangeIterator(lo, hi Primitive, elem Type) *PathIterator {
	return &PathIterator{
		kind:      iterRange,
		rangeCur:  lo.Big(),
		rangeEnd:  hi.Big(),
		rangeElem: elem,
	}
}

// Next returns the next element Path, or ok=false at exhaustion.
func (it *PathIterator) Next() (Path, bool) {
	switch it.kind {
	case iterArray:
		if it.arrayPos >= len(it.arrayElems) {
			return Path{}, false
		}
		sv := it.arrayElems[it.arrayPos]
		it.arrayPos++
		return NewWrapper(SharedPointer(sv)), true
	case iterMapKeys:
		if it.mapPos >= len(it.mapKeys) {
			return Path{}, false
		}
		key := it.mapKeys[it.mapPos]
		it.mapPos++
		return NewOwned(key), true
	case iterRange:
		if it.rangeDone || it.rangeCur.Cmp(it.rangeEnd) >= 0 {
			return Path{}, false
		}
		cur := fromBig(it.rangeCur, it.rangeElem.Tag)
		it.rangeCur = new(big.Int).Add(it.rangeCur, big.NewInt(1))
		return NewOwned(DefaultCell(cur)), true
	default:
		return Path{}, false
	}
}
