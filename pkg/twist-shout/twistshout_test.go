package twistshout_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	twistshout "github.com/zkmem/twist-shout/pkg/twist-shout"
)

func fe(v uint64) twistshout.FieldElement {
	var e twistshout.FieldElement
	e.SetUint64(v)
	return e
}

func TestTwistEndToEnd(t *testing.T) {
	pk, vk, err := twistshout.Setup(8)
	require.NoError(t, err)

	trace, err := twistshout.NewMemoryTrace(16)
	require.NoError(t, err)
	require.NoError(t, trace.Write(3, fe(42)))
	got, err := trace.Read(3)
	require.NoError(t, err)
	want := fe(42)
	assert.True(t, got.Equal(&want))

	prover := twistshout.NewTwistProver(pk, twistshout.DefaultConfig())
	proof, err := prover.Prove(trace)
	require.NoError(t, err)

	assert.True(t, twistshout.VerifyTwist(vk, proof, twistshout.DefaultConfig()))

	tampered := *proof
	tampered.ReadValue.Value = fe(41)
	assert.False(t, twistshout.VerifyTwist(vk, &tampered, twistshout.DefaultConfig()),
		"a falsified read value must be rejected")
}

func TestShoutEndToEnd(t *testing.T) {
	pk, vk, err := twistshout.Setup(8)
	require.NoError(t, err)

	table, err := twistshout.NewLookupTable([]twistshout.FieldElement{fe(1), fe(4), fe(9)})
	require.NoError(t, err)
	got, err := table.Lookup(1)
	require.NoError(t, err)
	want := fe(4)
	assert.True(t, got.Equal(&want))

	prover := twistshout.NewShoutProver(pk, twistshout.DefaultConfig())
	proof, err := prover.Prove(table)
	require.NoError(t, err)
	assert.True(t, twistshout.VerifyShout(vk, proof, twistshout.DefaultConfig()))
}

func TestErrorCodes(t *testing.T) {
	_, _, err := twistshout.Setup(0)
	require.Error(t, err)
	assert.Equal(t, twistshout.ErrUnsupportedSize, twistshout.CodeOf(err))

	var e *twistshout.Error
	assert.True(t, errors.As(err, &e))

	_, err = twistshout.NewMemoryTrace(3)
	assert.Equal(t, twistshout.ErrTraceOutOfBounds, twistshout.CodeOf(err))

	table, err := twistshout.NewLookupTable([]twistshout.FieldElement{fe(1), fe(2)})
	require.NoError(t, err)
	_, err = table.Lookup(2)
	assert.Equal(t, twistshout.ErrIndexOutOfBounds, twistshout.CodeOf(err))
}

func TestNilArguments(t *testing.T) {
	pk, vk, err := twistshout.Setup(4)
	require.NoError(t, err)

	_, err = twistshout.NewTwistProver(pk, nil).Prove(nil)
	assert.Error(t, err)
	_, err = twistshout.NewShoutProver(pk, nil).Prove(nil)
	assert.Error(t, err)
	assert.False(t, twistshout.VerifyTwist(vk, nil, nil))
	assert.False(t, twistshout.VerifyShout(nil, &twistshout.ShoutProof{}, nil))
}

func TestDefaultConfig(t *testing.T) {
	cfg := twistshout.DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Positive(t, cfg.NbTasks)
	assert.Equal(t, "sha3", cfg.HashFunction)
}
