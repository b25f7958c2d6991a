package message

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPayloadSetGetRoundTrip(t *testing.T) {
	p := NewPayload()
	p.SetBool("b", true)
	p.SetInt("i", 42)
	p.SetString("s", "hello")
	p.SetArray("a", []interface{}{"x", "y"})

	nested := NewPayload()
	nested.SetString("inner", "value")
	p.SetObject("o", nested)

	data, err := p.ToJSON()
	require.NoError(t, err)

	decoded, err := PayloadFromJSON(data)
	require.NoError(t, err)

	b, err := decoded.GetBool("b")
	require.NoError(t, err)
	require.True(t, b)

	i, err := decoded.GetInt("i")
	require.NoError(t, err)
	require.Equal(t, int64(42), i)

	s, err := decoded.GetString("s")
	require.NoError(t, err)
	require.Equal(t, "hello", s)

	a, err := decoded.GetArray("a")
	require.NoError(t, err)
	require.Len(t, a, 2)

	o, err := decoded.GetObject("o")
	require.NoError(t, err)
	inner, err := o.GetString("inner")
	require.NoError(t, err)
	require.Equal(t, "value", inner)
}

func TestPayloadEmptyIsEmptyObject(t *testing.T) {
	p := NewPayload()
	require.True(t, p.IsEmpty())
	data, err := p.ToJSON()
	require.NoError(t, err)
	require.Equal(t, "{}", string(data))

	decoded, err := PayloadFromJSON(nil)
	require.NoError(t, err)
	require.True(t, decoded.IsEmpty())
}

func TestPayloadKeyNotFound(t *testing.T) {
	p := NewPayload()
	_, err := p.GetString("missing")
	require.ErrorIs(t, err, ErrKeyNotFound)
	var notFound *KeyNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "missing", notFound.Key)
}

func TestPayloadWrongType(t *testing.T) {
	p := NewPayload()
	p.SetString("s", "value")
	_, err := p.GetInt("s")
	require.ErrorIs(t, err, ErrWrongType)
	var typeErr *TypeError
	require.ErrorAs(t, err, &typeErr)
	require.Equal(t, "int", typeErr.Expected)
}

func TestPayloadFromJSONRejectsArrayTopLevel(t *testing.T) {
	_, err := PayloadFromJSON([]byte(`[1,2,3]`))
	require.ErrorIs(t, err, ErrParseFailed)
}

func TestPayloadFromJSONRejectsScalarTopLevel(t *testing.T) {
	_, err := PayloadFromJSON([]byte(`42`))
	require.ErrorIs(t, err, ErrParseFailed)
}

func TestPayloadSetOverwrites(t *testing.T) {
	p := NewPayload()
	p.SetInt("x", 1)
	p.SetInt("x", 2)
	v, err := p.GetInt("x")
	require.NoError(t, err)
	require.Equal(t, int64(2), v)
	require.Len(t, p.Keys(), 1)
}

func TestPayloadPreservesKeyOrder(t *testing.T) {
	p := NewPayload()
	p.SetInt("z", 1)
	p.SetInt("a", 2)
	p.SetInt("m", 3)
	require.Equal(t, []string{"z", "a", "m"}, p.Keys())
}
