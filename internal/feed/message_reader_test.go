package feed

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lobster/internal/domain"
)

func TestMessageReader_DecodesAllColumns(t *testing.T) {
	csv := "34200.189,1,100,50,2000000,1\n" +
		"34200.190,4,100,50,2000000,-1\n"
	r := NewMessageReader(strings.NewReader(csv))

	e1, ok, err := r.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 34200.189, e1.Timestamp)
	assert.Equal(t, domain.Submit, e1.Type)
	assert.Equal(t, int64(100), e1.OrderID)
	assert.Equal(t, int64(50), e1.Size)
	assert.Equal(t, int64(2000000), e1.Price)
	assert.Equal(t, domain.Bid, e1.Side)

	e2, ok, err := r.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.VisExec, e2.Type)
	assert.Equal(t, domain.Ask, e2.Side)

	_, ok, err = r.Next()
	require.NoError(t, err)
	assert.False(t, ok, "EOF is reported with ok=false and a nil error")
}

func TestMessageReader_ExtraColumnsIgnored(t *testing.T) {
	csv := "1.0,1,1,10,100,1,extra,columns\n"
	r := NewMessageReader(strings.NewReader(csv))

	e, ok, err := r.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(1), e.OrderID)
}

func TestMessageReader_RejectsUnknownDirectionCode(t *testing.T) {
	csv := "1.0,1,1,10,100,7\n"
	r := NewMessageReader(strings.NewReader(csv))

	_, _, err := r.Next()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedRow)
}

func TestMessageReader_RejectsTooFewColumns(t *testing.T) {
	csv := "1.0,1,1,10,100\n"
	r := NewMessageReader(strings.NewReader(csv))

	_, _, err := r.Next()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedRow)
}
