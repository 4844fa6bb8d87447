package minapi_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eerhardt/minapi"
)

func TestInvocationContext_arguments(t *testing.T) {
	t.Parallel()

	ic := minapi.NewTestInvocationContext([]any{"ada", 42})

	assert.Equal(t, 2, ic.Arity())

	v, err := ic.Argument(0)
	require.NoError(t, err)
	assert.Equal(t, "ada", v)

	v, err = ic.Argument(1)
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	require.NoError(t, ic.SetArgument(0, "grace"))
	v, err = ic.Argument(0)
	require.NoError(t, err)
	assert.Equal(t, "grace", v)
}

func TestInvocationContext_outOfRange(t *testing.T) {
	t.Parallel()

	ic := minapi.NewTestInvocationContext([]any{"one"})

	_, err := ic.Argument(1)
	require.ErrorIs(t, err, minapi.ErrArgumentIndex)

	_, err = ic.Argument(-1)
	require.ErrorIs(t, err, minapi.ErrArgumentIndex)

	err = ic.SetArgument(1, "x")
	require.ErrorIs(t, err, minapi.ErrArgumentIndex)

	err = ic.SetArgument(-1, "x")
	require.ErrorIs(t, err, minapi.ErrArgumentIndex)
}

func TestInvocationContext_fixedArity(t *testing.T) {
	t.Parallel()

	ic := minapi.NewTestInvocationContext([]any{"one"})

	require.ErrorIs(t, ic.InsertArgument(0, "x"), minapi.ErrFixedArity)
	require.ErrorIs(t, ic.RemoveArgument(0), minapi.ErrFixedArity)
	require.ErrorIs(t, ic.ClearArguments(), minapi.ErrFixedArity)

	// The failed operations changed nothing.
	v, err := ic.Argument(0)
	require.NoError(t, err)
	assert.Equal(t, "one", v)
	assert.Equal(t, 1, ic.Arity())
}

func TestInvocationContext_argumentsIsACopy(t *testing.T) {
	t.Parallel()

	ic := minapi.NewTestInvocationContext([]any{"one", "two"})

	args := ic.Arguments()
	args[0] = "mutated"

	v, err := ic.Argument(0)
	require.NoError(t, err)
	assert.Equal(t, "one", v)
}

func TestInvocationContext_zeroArity(t *testing.T) {
	t.Parallel()

	ic := minapi.NewTestInvocationContext(nil)

	assert.Equal(t, 0, ic.Arity())
	_, err := ic.Argument(0)
	require.ErrorIs(t, err, minapi.ErrArgumentIndex)
	assert.Empty(t, ic.Arguments())
}
