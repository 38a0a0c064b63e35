package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClaimErrorMatchesByCode(t *testing.T) {
	wrapped := fmt.Errorf("claim failed: %w", ErrDropOutsideWindow)

	assert.ErrorIs(t, wrapped, ErrDropNotLive)
	assert.NotErrorIs(t, wrapped, ErrDropSoldOut)
	assert.False(t, errors.Is(errors.New("Drop is not live"), ErrDropNotLive))

	ce, ok := AsClaimError(wrapped)
	assert.True(t, ok)
	assert.Equal(t, CodeDropNotLive, ce.Code)
	assert.Equal(t, "Drop is outside active window", ce.Error())
}

func TestClaimErrorCodes(t *testing.T) {
	codes := ClaimErrorCodes()
	assert.Len(t, codes, 6)
	assert.Contains(t, codes, CodeDealSupplyExceeded)

	_, ok := AsClaimError(errors.New("boom"))
	assert.False(t, ok)
}
