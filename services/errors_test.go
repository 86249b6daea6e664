package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		kind ErrorKind
		code string
	}{
		{"validation", ValidationError("bad"), KindValidation, "VALIDATION_ERROR"},
		{"field", FieldInvalid("quantity", "must be at least 1"), KindValidation, "VALIDATION_ERROR"},
		{"forbidden", Forbidden("no"), KindForbidden, "FORBIDDEN"},
		{"precondition", PreconditionFailed("LAST_ITEM", "keep one"), KindPrecondition, "LAST_ITEM"},
		{"not found", NotFound("order_item"), KindNotFound, "ORDER_ITEM_NOT_FOUND"},
		{"conflict", Conflict("DUPLICATE", "dup"), KindConflict, "DUPLICATE"},
		{"unexpected", Unexpected("boom", errors.New("db down")), KindUnexpected, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, KindOf(tt.err))
			assert.Equal(t, tt.code, tt.err.Code)
			assert.True(t, IsKind(fmt.Errorf("wrapped: %w", tt.err), tt.kind))
		})
	}

	assert.Equal(t, "order item not found", NotFound("order_item").Message)
	assert.Equal(t, []FieldError{{Field: "quantity", Message: "must be at least 1"}}, FieldInvalid("quantity", "must be at least 1").Details)
	assert.Equal(t, KindUnexpected, KindOf(errors.New("plain")))
	assert.False(t, IsKind(nil, KindUnexpected))
}

func TestError_MessageAndUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := Unexpected("failed to load order", cause)
	assert.Equal(t, "failed to load order: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "no", Forbidden("no").Error())
}

func TestLookupError(t *testing.T) {
	err := lookupError(gorm.ErrRecordNotFound, "payment")
	assert.Equal(t, KindNotFound, KindOf(err))

	err = lookupError(errors.New("timeout"), "payment")
	assert.Equal(t, KindUnexpected, KindOf(err))
	assert.Contains(t, err.Error(), "failed to load payment")
}

func TestNormalize(t *testing.T) {
	assert.NoError(t, normalize(nil))

	se := PreconditionFailed("X", "y")
	assert.Same(t, se, normalize(fmt.Errorf("tx: %w", se)))

	assert.Equal(t, KindConflict, KindOf(normalize(gorm.ErrDuplicatedKey)))
	assert.Equal(t, KindConflict, KindOf(normalize(errors.New("UNIQUE constraint failed: orders.tracking_code"))))
	assert.Equal(t, KindUnexpected, KindOf(normalize(errors.New("disk full"))))
}

func TestErrorKindString(t *testing.T) {
	assert.Equal(t, "precondition", KindPrecondition.String())
	assert.Equal(t, "unexpected", ErrorKind(42).String())
}
