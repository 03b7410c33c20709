package op

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpcodeValues(t *testing.T) {
	tests := []struct {
		code Code
		want byte
	}{
		{StackRef, 0},
		{Varref, 8},
		{Varset, 16},
		{Varbind, 24},
		{Call, 32},
		{Unbind, 40},
		{Pophandler, 48},
		{Pushconditioncase, 49},
		{Pushcatch, 50},
		{Nth, 56},
		{Car, 64},
		{Point, 96},
		{Constant2, 129},
		{Goto, 130},
		{Return, 135},
		{Discard, 136},
		{Dup, 137},
		{UnwindProtect, 142},
		{Integerp, 168},
		{RGoto, 170},
		{ListN, 175},
		{StackSet, 178},
		{StackSet2, 179},
		{DiscardN, 182},
		{Switch, 183},
		{Constant, 192},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, byte(tt.code), GetInfo(tt.code).Name)
	}
}

func TestGetInfo(t *testing.T) {
	info := GetInfo(Varref + 3)
	require.Equal(t, "varref", info.Name)
	require.Equal(t, OperandFamily, info.Operand)
	require.Equal(t, Varref+3, info.Code)

	info = GetInfo(Diff)
	require.Equal(t, "-", info.Primitive)
	require.Equal(t, 2, info.Args)

	info = GetInfo(Negate)
	require.Equal(t, "-", info.Primitive)
	require.Equal(t, 1, info.Args)

	info = GetInfo(Constant + 63)
	require.Equal(t, "constant", info.Name)

	require.True(t, GetInfo(ConditionCase).Obsolete)
	require.False(t, GetInfo(0o153).Valid())
	require.False(t, GetInfo(0o163).Valid())
	require.False(t, GetInfo(0o264).Valid())
}

func TestDecodeFamily(t *testing.T) {
	tests := []struct {
		name string
		code []byte
		op   Code
		arg  int
		size int
	}{
		{"inline", []byte{byte(Varref) + 2}, Varref, 2, 1},
		{"inline five", []byte{byte(Call) + 5}, Call, 5, 1},
		{"byte", []byte{byte(Call) + 6, 9}, Call, 9, 2},
		{"word", []byte{byte(Varbind) + 7, 0x34, 0x12}, Varbind, 0x1234, 3},
		{"stack-ref", []byte{byte(StackRef) + 1}, StackRef, 1, 1},
		{"constant", []byte{byte(Constant) + 7}, Constant, 7, 1},
		{"constant2", []byte{byte(Constant2), 0x00, 0x01}, Constant2, 256, 3},
		{"goto", []byte{byte(Goto), 5, 0}, Goto, 5, 3},
		{"relative back", []byte{byte(RGoto), 126}, RGoto, -2, 2},
		{"relative forward", []byte{byte(RGotoifnil), 131}, RGotoifnil, 3, 2},
		{"discardN", []byte{byte(DiscardN), 0x82}, DiscardN, 0x82, 2},
		{"plain", []byte{byte(Return)}, Return, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			instr, err := Decode(tt.code, 0)
			require.NoError(t, err)
			require.Equal(t, tt.op, instr.Op)
			require.Equal(t, tt.arg, instr.Arg)
			require.Equal(t, tt.size, instr.Size)
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode([]byte{0o153}, 0)
	require.True(t, errors.Is(err, ErrInvalidOpcode))

	_, err = Decode([]byte{byte(Goto), 1}, 0)
	require.True(t, errors.Is(err, ErrTruncated))

	_, err = Decode([]byte{byte(Varref) + 6}, 0)
	require.True(t, errors.Is(err, ErrTruncated))

	_, err = Decode([]byte{byte(Return)}, 1)
	require.True(t, errors.Is(err, ErrTruncated))
}

func TestEncodeRoundTrip(t *testing.T) {
	tests := []struct {
		code Code
		arg  int
		size int
	}{
		{Varref, 3, 1},
		{Varref, 6, 2},
		{Varref, 300, 3},
		{Constant, 10, 1},
		{Constant, 64, 3},
		{Goto, 1000, 3},
		{RGoto, -5, 2},
		{ListN, 12, 2},
		{Dup, 0, 1},
	}
	for _, tt := range tests {
		buf, err := Encode(nil, tt.code, tt.arg)
		require.NoError(t, err)
		require.Len(t, buf, tt.size)
		instr, err := Decode(buf, 0)
		require.NoError(t, err)
		require.Equal(t, tt.arg, instr.Arg)
	}
}

func TestEncodeOutOfRange(t *testing.T) {
	_, err := Encode(nil, ListN, 256)
	require.Error(t, err)
	_, err = Encode(nil, RGoto, 200)
	require.Error(t, err)
	_, err = Encode(nil, Varref, 0x10000)
	require.Error(t, err)
}
