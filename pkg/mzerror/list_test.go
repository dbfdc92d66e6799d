package mzerror

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListOverflowOnCrossingInsert(t *testing.T) {
	list := NewList(3, LevelError)

	for i := 0; i < 3; i++ {
		require.NoError(t, list.Add(New(Integer, i+1, "taxid", "x")), "insert %d", i+1)
	}
	assert.Equal(t, 3, list.Len())

	err := list.Add(New(Integer, 4, "taxid", "x"))
	assert.True(t, errors.Is(err, ErrOverflow))
	assert.Equal(t, 3, list.Len(), "overflowing error must not be stored")
}

func TestListDropsBelowLevel(t *testing.T) {
	list := NewList(1, LevelError)

	// Warn-level errors never count toward the capacity
	for i := 0; i < 10; i++ {
		require.NoError(t, list.Add(New(URI, i, "uri", "::")))
	}
	assert.True(t, list.IsEmpty())

	require.NoError(t, list.Add(New(Double, 1, "mass_to_charge", "abc")))
	assert.ErrorIs(t, list.Add(New(Double, 2, "mass_to_charge", "abc")), ErrOverflow)
}

func TestListKeepsWarnAtWarnLevel(t *testing.T) {
	list := NewList(10, LevelWarn)
	require.NoError(t, list.Add(New(URI, 3, "uri", "::")))
	require.NoError(t, list.Add(New(AmbiguityMod, 4, "MOD:00412", "3|4", 2)))
	require.NoError(t, list.Add(New(Integer, 5, "charge", "two")))

	assert.Equal(t, 2, list.Len())
	assert.Equal(t, 1, list.CountByType(URI))
	assert.Equal(t, 1, list.CountByType(Integer))
}

func TestErrorString(t *testing.T) {
	e := New(QuantificationAbundance, -1)
	assert.Equal(t, "[Error-2014] "+e.Message, e.Error())

	e = New(CountMatch, 12, "PRT", 3, 4)
	assert.Equal(t, "[Error-1002] line 12: PRT line has 3 fields but its header has 4 columns", e.Error())
}

func TestFatalUnwrap(t *testing.T) {
	f := Fatal(LineOrder, 7, "PRH", "PSM")
	var target *Error
	require.True(t, errors.As(f, &target))
	assert.Same(t, LineOrder, target.Type)
	assert.Equal(t, 7, target.Line)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"info", LevelInfo, false},
		{"Warn", LevelWarn, false},
		{"WARNING", LevelWarn, false},
		{"error", LevelError, false},
		{"fatal", LevelError, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrint(t *testing.T) {
	list := NewList(5, LevelInfo)
	require.NoError(t, list.Add(New(MTDLine, 2, 2)))
	var buf bytes.Buffer
	require.NoError(t, list.Print(&buf))
	assert.Equal(t, "[Error-1007] line 2: Metadata line must have 3 tab separated fields, found 2\n", buf.String())
}
