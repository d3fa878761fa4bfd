package rowhook

import (
	"database/sql/driver"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeValue(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name string
		raw  driver.Value
		typ  Type
		any  any
	}{
		{name: "null", raw: nil, typ: TypeNull, any: nil},
		{name: "integer", raw: int64(42), typ: TypeInteger, any: int64(42)},
		{name: "float", raw: 3.25, typ: TypeFloat, any: 3.25},
		{name: "text", raw: "hello", typ: TypeText, any: "hello"},
		{name: "blob", raw: []byte{0xde, 0xad}, typ: TypeBlob, any: []byte{0xde, 0xad}},
	}

	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			v, err := DecodeValue(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.typ, v.Type())
			assert.Equal(t, tc.any, v.Any())
		})
	}
}

func TestDecodeValueUnsupported(t *testing.T) {
	t.Parallel()

	for _, raw := range []driver.Value{true, time.Now(), int32(1)} {
		_, err := DecodeValue(raw)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported raw value type")
	}
}

func TestValueGetters(t *testing.T) {
	t.Parallel()

	v, err := DecodeValue(int64(7))
	require.NoError(t, err)
	assert.Equal(t, int64(7), v.Int64())
	assert.False(t, v.IsNull())

	v, err = DecodeValue(1.5)
	require.NoError(t, err)
	assert.Equal(t, 1.5, v.Float64())

	v, err = DecodeValue("abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", v.Text())

	v, err = DecodeValue([]byte("xyz"))
	require.NoError(t, err)
	assert.Equal(t, []byte("xyz"), v.Blob())

	v, err = DecodeValue(nil)
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}

func TestValueString(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name string
		raw  driver.Value
		want string
	}{
		{name: "null", raw: nil, want: "NULL"},
		{name: "integer", raw: int64(42), want: "42"},
		{name: "float", raw: 2.5, want: "2.5"},
		{name: "text", raw: "abc", want: "abc"},
		{name: "blob", raw: []byte{0x01, 0xff}, want: "x'01ff'"},
	}

	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			v, err := DecodeValue(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.want, v.String())
		})
	}
}

func TestTypeString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "NULL", TypeNull.String())
	assert.Equal(t, "INTEGER", TypeInteger.String())
	assert.Equal(t, "FLOAT", TypeFloat.String())
	assert.Equal(t, "TEXT", TypeText.String())
	assert.Equal(t, "BLOB", TypeBlob.String())
}
