package enum

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/blueprint/pkg/errors"
)

type fill uint8

const (
	fillMajorWireframe fill = 1
	fillDenseWireframe fill = 2
	fillSolid          fill = 3
)

var fillTable = NewTable("FillMode",
	Variant[fill]{Value: fillMajorWireframe, Name: "MajorWireframe"},
	Variant[fill]{Value: fillDenseWireframe, Name: "DenseWireframe"},
	Variant[fill]{Value: fillSolid, Name: "Solid"},
)

func TestNewTablePanics(t *testing.T) {
	tests := []struct {
		name     string
		typeName string
		variants []Variant[fill]
	}{
		{"empty type name", "", []Variant[fill]{{Value: 1, Name: "A"}}},
		{"no variants", "X", nil},
		{"reserved code", "X", []Variant[fill]{{Value: 0, Name: "Zero"}}},
		{"empty name", "X", []Variant[fill]{{Value: 1, Name: ""}}},
		{"duplicate code", "X", []Variant[fill]{{Value: 1, Name: "A"}, {Value: 1, Name: "B"}}},
		{"duplicate name", "X", []Variant[fill]{{Value: 1, Name: "A"}, {Value: 2, Name: "A"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Panics(t, func() { NewTable(tt.typeName, tt.variants...) })
		})
	}
}

func TestTableIntrospection(t *testing.T) {
	assert.Equal(t, "FillMode", fillTable.TypeName())
	assert.Equal(t, 3, fillTable.Len())
	assert.Equal(t, []string{"MajorWireframe", "DenseWireframe", "Solid"}, fillTable.Names())

	variants := fillTable.Variants()
	variants[0].Name = "mutated"
	assert.Equal(t, "MajorWireframe", fillTable.Names()[0], "Variants returns a copy")

	v, ok := fillTable.Lookup(3)
	require.True(t, ok)
	assert.Equal(t, fillSolid, v.Value)
	assert.Equal(t, uint8(3), v.Code())

	for _, code := range []int64{-1, 0, 4, 255, 256, 1 << 40} {
		_, ok := fillTable.Lookup(code)
		assert.False(t, ok, "code %d", code)
	}

	assert.Equal(t, "Solid", fillTable.NameOf(fillSolid))
	assert.Equal(t, "FillMode(9)", fillTable.NameOf(fill(9)))
	assert.True(t, fillTable.Contains(fillDenseWireframe))
	assert.False(t, fillTable.Contains(fill(0)))
}

func TestResolveOrder(t *testing.T) {
	tests := []struct {
		name     string
		like     Like[fill]
		expected fill
	}{
		{"canonical value", Value(fillSolid), fillSolid},
		{"code", Code[fill](2), fillDenseWireframe},
		{"exact name", Name[fill]("MajorWireframe"), fillMajorWireframe},
		{"lower-case name", Name[fill]("solid"), fillSolid},
		{"upper-case name", Name[fill]("DENSEWIREFRAME"), fillDenseWireframe},
		{"mixed-case name", Name[fill]("mAjOrWiReFrAmE"), fillMajorWireframe},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fillTable.Resolve(tt.like)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResolveExactBeforeCaseInsensitive(t *testing.T) {
	// "ab" and "AB" differ only in case; an exact match must win over the
	// earlier case-insensitive candidate.
	type pair uint8
	table := NewTable("Pair",
		Variant[pair]{Value: 1, Name: "ab"},
		Variant[pair]{Value: 2, Name: "AB"},
	)

	got, err := table.Resolve(Name[pair]("AB"))
	require.NoError(t, err)
	assert.Equal(t, pair(2), got)

	got, err = table.Resolve(Name[pair]("Ab"))
	require.NoError(t, err)
	assert.Equal(t, pair(1), got, "first case-insensitive match in declaration order")
}

func TestResolveInvalid(t *testing.T) {
	tests := []struct {
		name string
		like Like[fill]
		raw  interface{}
	}{
		{"zero like", Like[fill]{}, nil},
		{"reserved code", Code[fill](0), int64(0)},
		{"unknown code", Code[fill](4), int64(4)},
		{"negative code", Code[fill](-1), int64(-1)},
		{"no wraparound", Code[fill](257), int64(257)},
		{"unknown name", Name[fill]("Sideways"), "Sideways"},
		{"empty name", Name[fill](""), ""},
		{"numeric name", Name[fill]("1"), "1"},
		{"padded name", Name[fill](" Solid"), " Solid"},
		{"undeclared value", Value(fill(7)), uint8(7)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fillTable.Resolve(tt.like)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidVariant))

			var e *errors.Error
			require.ErrorAs(t, err, &e)
			raw, ok := e.Detail("value")
			require.True(t, ok)
			assert.Equal(t, tt.raw, raw)
			typeName, _ := e.Detail("type")
			assert.Equal(t, "FillMode", typeName)
			assert.Contains(t, e.Message, "FillMode")
		})
	}
}

func TestResolveExhaustiveCodes(t *testing.T) {
	for code := int64(-2); code <= 300; code++ {
		got, err := fillTable.Resolve(Code[fill](code))
		if code >= 1 && code <= 3 {
			require.NoError(t, err)
			assert.Equal(t, fill(code), got)
			continue
		}
		assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidVariant), "code %d", code)
	}
}

func TestResolveDeterministic(t *testing.T) {
	for _, like := range []Like[fill]{Name[fill]("solid"), Code[fill](9)} {
		v1, err1 := fillTable.Resolve(like)
		v2, err2 := fillTable.Resolve(like)
		assert.Equal(t, v1, v2)
		assert.Equal(t, err1 == nil, err2 == nil)
		if err1 != nil {
			assert.Equal(t, err1.Error(), err2.Error())
		}
	}
}

func TestResolveConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				got, err := fillTable.Resolve(Name[fill]("densewireframe"))
				if err != nil || got != fillDenseWireframe {
					t.Errorf("unexpected result %v, %v", got, err)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestMustResolve(t *testing.T) {
	assert.Equal(t, fillSolid, fillTable.MustResolve(Name[fill]("Solid")))
	assert.Panics(t, func() { fillTable.MustResolve(Code[fill](0)) })
}
