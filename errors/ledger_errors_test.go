package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := Newf(ErrCodeStaleRecentHash, "digest %s too old", "ab")
	assert.ErrorIs(t, err, ErrStaleRecentHash)
	assert.NotErrorIs(t, err, ErrDuplicateSignature)

	wrapped := fmt.Errorf("submit: %w", err)
	assert.ErrorIs(t, wrapped, ErrStaleRecentHash)
	assert.Equal(t, ErrCodeStaleRecentHash, CodeOf(wrapped))
}

func TestCodeOfForeignError(t *testing.T) {
	assert.Equal(t, ErrCodeInternal, CodeOf(stderrors.New("boom")))
	assert.Equal(t, ErrCodeInternal, CodeOf(nil))
	_, ok := As(stderrors.New("boom"))
	assert.False(t, ok)
}

func TestAtEntryCarriesPosition(t *testing.T) {
	err := AtEntry(ErrCodePoHMismatch, 3, 2, "mismatch")
	le, ok := As(fmt.Errorf("ingest: %w", err))
	require.True(t, ok)
	assert.EqualValues(t, 3, *le.Slot)
	assert.Equal(t, 2, *le.Entry)
	assert.JSONEq(t, `{"code":"poh_mismatch","message":"mismatch","slot":3,"entry_index":2}`, err.Error())
}

func TestErrorJSONOmitsPosition(t *testing.T) {
	assert.JSONEq(t, `{"code":"bad_signature","message":"Transaction signature is invalid"}`, ErrBadSignature.Error())
}
