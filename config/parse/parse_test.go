package parse_test

import (
	"net/netip"
	"reflect"
	"testing"
	"time"

	"github.com/0xalexb/hjarta-conf/config/parse"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type level string

func TestValue(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		raw      string
		typ      reflect.Type
		expected any
	}{
		{name: "string", raw: "hello", typ: reflect.TypeFor[string](), expected: "hello"},
		{name: "named string", raw: "debug", typ: reflect.TypeFor[level](), expected: level("debug")},
		{name: "bool", raw: "true", typ: reflect.TypeFor[bool](), expected: true},
		{name: "int", raw: "-42", typ: reflect.TypeFor[int](), expected: -42},
		{name: "uint16", raw: "3000", typ: reflect.TypeFor[uint16](), expected: uint16(3000)},
		{name: "float64", raw: "1.5", typ: reflect.TypeFor[float64](), expected: 1.5},
		{name: "duration", raw: "1m30s", typ: reflect.TypeFor[time.Duration](), expected: 90 * time.Second},
		{name: "text unmarshaler", raw: "10.0.0.1", typ: reflect.TypeFor[netip.Addr](), expected: netip.MustParseAddr("10.0.0.1")},
		{name: "string slice", raw: "a,b, c", typ: reflect.TypeFor[[]string](), expected: []string{"a", "b", "c"}},
		{name: "int slice", raw: "1,2", typ: reflect.TypeFor[[]int](), expected: []int{1, 2}},
		{name: "empty slice", raw: "", typ: reflect.TypeFor[[]string](), expected: []string{}},
		{name: "bytes", raw: "raw", typ: reflect.TypeFor[[]byte](), expected: []byte("raw")},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			value, err := parse.Value(testCase.raw, testCase.typ)
			require.NoError(t, err)
			assert.Equal(t, testCase.expected, value.Interface())
		})
	}
}

func TestValue_Pointer(t *testing.T) {
	t.Parallel()

	value, err := parse.Value("8080", reflect.TypeFor[*int]())
	require.NoError(t, err)

	ptr, ok := value.Interface().(*int)
	require.True(t, ok)
	assert.Equal(t, 8080, *ptr)
}

func TestValue_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		raw  string
		typ  reflect.Type
	}{
		{name: "overflow", raw: "70000", typ: reflect.TypeFor[uint16]()},
		{name: "negative uint", raw: "-1", typ: reflect.TypeFor[uint]()},
		{name: "not a bool", raw: "maybe", typ: reflect.TypeFor[bool]()},
		{name: "not a duration", raw: "soon", typ: reflect.TypeFor[time.Duration]()},
		{name: "bad list item", raw: "1,x", typ: reflect.TypeFor[[]int]()},
		{name: "bad address", raw: "nope", typ: reflect.TypeFor[netip.Addr]()},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			_, err := parse.Value(testCase.raw, testCase.typ)
			require.Error(t, err)
		})
	}
}

func TestValue_Unsupported(t *testing.T) {
	t.Parallel()

	_, err := parse.Value("x", reflect.TypeFor[map[string]string]())
	require.ErrorIs(t, err, parse.ErrUnsupportedType)
	assert.False(t, parse.Supports(reflect.TypeFor[map[string]string]()))
	assert.True(t, parse.Supports(reflect.TypeFor[[]time.Duration]()))
}

func TestCommaSeparated(t *testing.T) {
	t.Parallel()

	items, err := parse.CommaSeparated[string]("item1,item2")
	require.NoError(t, err)
	assert.Equal(t, []string{"item1", "item2"}, items)

	empty, err := parse.CommaSeparated[int]("")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestSeparated(t *testing.T) {
	t.Parallel()

	ports, err := parse.Separated[uint16](";")("80;443")
	require.NoError(t, err)
	assert.Equal(t, []uint16{80, 443}, ports)

	_, err = parse.Separated[uint16](";")("80;http")
	require.Error(t, err)
}
