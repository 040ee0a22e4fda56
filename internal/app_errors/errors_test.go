package app_errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name      string
		err       *Error
		wantKind  Kind
		wantField string
	}{
		{name: "authentication", err: Authentication("nope"), wantKind: KindAuthentication},
		{name: "authorization", err: Authorization("denied"), wantKind: KindAuthorization},
		{name: "validation", err: Validation("title", "title is required"), wantKind: KindValidation, wantField: "title"},
		{name: "conflict", err: Conflict("email", "taken"), wantKind: KindConflict, wantField: "email"},
		{name: "not found", err: NotFound("gone"), wantKind: KindNotFound},
		{name: "invalid state", err: InvalidState("status", "already published"), wantKind: KindInvalidState, wantField: "status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantKind, KindOf(tt.err))
			if tt.wantField == "" {
				assert.Nil(t, tt.err.Fields)
			} else {
				assert.Equal(t, []string{tt.err.Message}, tt.err.Fields[tt.wantField])
			}
		})
	}
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("loading course: %w", NotFound("Course not found"))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.True(t, IsKind(err, KindNotFound))
	assert.False(t, IsKind(err, KindValidation))
}

func TestKindOfForeignError(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}
