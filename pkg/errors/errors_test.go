package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	wrapped := fmt.Errorf("load course: %w", Clone(ErrNotFound, "course not found"))
	appErr := FromError(wrapped)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.Equal(t, "course not found", appErr.Message)

	plain := FromError(context.DeadlineExceeded)
	assert.Equal(t, ErrInternal.Code, plain.Code)
	assert.Equal(t, http.StatusInternalServerError, plain.Status)
	assert.ErrorIs(t, plain, context.DeadlineExceeded)
}

func TestCloneLeavesOriginalUntouched(t *testing.T) {
	clone := Clone(ErrValidation, "startDate must not be after endDate")
	require.NotSame(t, ErrValidation, clone)
	assert.Equal(t, "validation failed", ErrValidation.Message)
	assert.Equal(t, "startDate must not be after endDate", clone.Error())
	assert.Equal(t, ErrValidation.Message, Clone(ErrValidation, "").Message)
	assert.Nil(t, Clone(nil, "x"))
}

func TestWrapFormatsCause(t *testing.T) {
	err := Wrap(errors.New("disk full"), ErrInternal.Code, ErrInternal.Status, "failed to persist lessons")
	assert.Equal(t, "failed to persist lessons: disk full", err.Error())
	assert.Equal(t, "<nil>", (*Error)(nil).Error())
}
