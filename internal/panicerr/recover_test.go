package panicerr

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecover(t *testing.T) {
	t.Run("no panic passes the return through", func(t *testing.T) {
		want := errors.New("plain failure")
		err := Recover("job", func() error { return want })
		assert.Equal(t, want, err)
		assert.False(t, IsPanic(err))
	})

	t.Run("panic becomes a named error", func(t *testing.T) {
		err := Recover("job", func() error { panic("boom") })
		require.Error(t, err)
		assert.True(t, IsPanic(err))
		assert.Equal(t, "job paniced: boom", err.Error())
		assert.True(t, strings.Contains(fmt.Sprintf("%+v", err), "Panic stack:"),
			"verbose form carries the stack")
	})

	t.Run("panicked errors stay matchable", func(t *testing.T) {
		sentinel := errors.New("trap")
		err := Recover("job", func() error { panic(sentinel) })
		assert.True(t, IsPanic(err))
		assert.True(t, errors.Is(err, sentinel))
	})
}
