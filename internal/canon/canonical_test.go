package canon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    Value
		expected string
	}{
		{"string", String("hello"), `"hello"`},
		{"empty string", String(""), `""`},
		{"int", Int(42), "42"},
		{"negative int", Int(-100), "-100"},
		{"max int64", Int(9223372036854775807), "9223372036854775807"},
		{"min int64", Int(-9223372036854775808), "-9223372036854775808"},
		{"bool true", Bool(true), "true"},
		{"bool false", Bool(false), "false"},
		{"empty array", Array{}, "[]"},
		{"empty object", Object{}, "{}"},
		{"array of ints", Array{Int(1), Int(2), Int(3)}, "[1,2,3]"},
		{"simple object", Object{"a": Int(1)}, `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Marshal(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalSortedKeys(t *testing.T) {
	obj := NewObject(
		O("ScarecrowTime", Int(1)),
		O("KnownSongs", Array{NewObject(O("song", String("eponas_song")))}),
		O("NextSongHealTime", Int(0)),
	)

	result, err := Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"KnownSongs":[{"song":"eponas_song"}],"NextSongHealTime":0,"ScarecrowTime":1}`, string(result))
}

func TestMarshalUTF16Ordering(t *testing.T) {
	// U+10000 encodes as a surrogate pair starting 0xD800, which sorts
	// before U+E000 in UTF-16 but after it in UTF-8.
	obj := Object{
		"\uE000":     Int(1),
		"\U00010000": Int(2),
	}

	result, err := Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"`+"\U00010000"+`":2,"`+"\uE000"+`":1}`, string(result))
}

func TestMarshalNoHTMLEscape(t *testing.T) {
	result, err := Marshal(String("<a & b>"))
	require.NoError(t, err)
	assert.Equal(t, `"<a & b>"`, string(result))
}

func TestMarshalNFC(t *testing.T) {
	result, err := Marshal(String("cafe\u0301"))
	require.NoError(t, err)
	assert.Equal(t, "\"caf\u00e9\"", string(result))
}

func TestMarshalLineSeparators(t *testing.T) {
	result, err := Marshal(String("a\u2028b\u2029c"))
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\u2029c\"", string(result))

	// A literal backslash followed by "u2028" stays escaped.
	result, err = Marshal(String(`x\u2028`))
	require.NoError(t, err)
	assert.Equal(t, `"x\\u2028"`, string(result))
}

func TestMarshalRejectsNil(t *testing.T) {
	_, err := Marshal(nil)
	require.Error(t, err)

	_, err = Marshal(Array{Int(1), nil})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "array[1]")
}

func TestDecode(t *testing.T) {
	v, err := Decode([]byte(`{"b":[1,true,"x"],"a":-3}`))
	require.NoError(t, err)

	obj, ok := v.(Object)
	require.True(t, ok)
	assert.Equal(t, Int(-3), obj.Get("a"))
	assert.Equal(t, Array{Int(1), Bool(true), String("x")}, obj.Get("b"))

	again, err := Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, `{"a":-3,"b":[1,true,"x"]}`, string(again))
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"float", `{"a":1.5}`},
		{"exponent", `[1e3]`},
		{"null", `{"a":null}`},
		{"trailing", `{} {}`},
		{"malformed", `{"a":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestDigest(t *testing.T) {
	a := Digest(DomainRecord, []byte(`{}`))
	b := Digest(DomainRecord, []byte(`{}`))
	assert.Equal(t, a, b)
	assert.Len(t, a, 64, "SHA-256 hex is 64 characters")

	assert.NotEqual(t, a, Digest("other/v1", []byte(`{}`)), "domain separates digests")
}

func TestDigestValue(t *testing.T) {
	d1, err := DigestValue(DomainRecord, Object{"x": Int(1), "y": Int(2)})
	require.NoError(t, err)
	d2, err := DigestValue(DomainRecord, NewObject(O("y", Int(2)), O("x", Int(1))))
	require.NoError(t, err)
	assert.Equal(t, d1, d2, "key order does not affect the digest")

	_, err = DigestValue(DomainRecord, Array{nil})
	assert.Error(t, err)
}
