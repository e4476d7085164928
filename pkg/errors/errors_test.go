package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorWrapsUnknownErrors(t *testing.T) {
	err := FromError(fmt.Errorf("boom"))

	assert.Equal(t, ErrInternal.Code, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
}

func TestIsMatchesByCode(t *testing.T) {
	cloned := Clone(ErrValidation, "month must be YYYY-MM")
	wrapped := fmt.Errorf("service: %w", Backend(sql.ErrConnDone, "failed to load grades"))

	assert.True(t, errors.Is(cloned, ErrValidation))
	assert.True(t, errors.Is(wrapped, ErrBackend))
	assert.True(t, errors.Is(wrapped, sql.ErrConnDone))
	assert.False(t, errors.Is(cloned, ErrAccessDenied))
}

func TestAccessDeniedMessageDoesNotLeakReason(t *testing.T) {
	assert.Equal(t, "not found or access denied", ErrAccessDenied.Message)
	assert.Equal(t, "not found or access denied", FromError(ErrAccessDenied).Error())
}
