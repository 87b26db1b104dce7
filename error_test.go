package lawofone_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/lawofone"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := lawofone.Errorf(lawofone.ENOTFOUND, "snapshot %q not found", "cache.snap")

	assert.Equal(t, lawofone.ENOTFOUND, lawofone.ErrorCode(err))
	assert.Equal(t, "snapshot \"cache.snap\" not found", lawofone.ErrorMessage(err))
}

func TestErrorCode(t *testing.T) {
	t.Parallel()

	t.Run("nil error", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, lawofone.ErrorCode(nil))
	})

	t.Run("unwraps wrapped application error", func(t *testing.T) {
		t.Parallel()

		err := fmt.Errorf("load: %w", lawofone.Errorf(lawofone.ECORRUPT, "bad checksum"))

		assert.Equal(t, lawofone.ECORRUPT, lawofone.ErrorCode(err))
		assert.Equal(t, "bad checksum", lawofone.ErrorMessage(err))
	})

	t.Run("plain errors are internal", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, lawofone.EINTERNAL, lawofone.ErrorCode(errors.New("boom")))
		assert.Equal(t, "Internal error.", lawofone.ErrorMessage(errors.New("boom")))
	})
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, lawofone.ErrorMessage(nil))
}
