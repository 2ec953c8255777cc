package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/flowgrid/internal/execution"
	"github.com/vk/flowgrid/internal/executor"
)

type noopExecutor struct{}

func (noopExecutor) Type() string                           { return "noop" }
func (noopExecutor) ValidateConfig(map[string]any) error    { return nil }
func (noopExecutor) Execute(context.Context, map[string]any, *execution.Context) (any, error) {
	return nil, nil
}

func TestRegisterAndResolve(t *testing.T) {
	r := New()
	r.Register("noop", func() executor.NodeExecutor { return noopExecutor{} })

	f, err := r.Resolve("noop")
	require.NoError(t, err)
	assert.Equal(t, "noop", f().Type())
}

func TestResolve_Unknown(t *testing.T) {
	r := New()
	_, err := r.Resolve("ghost")
	require.ErrorIs(t, err, ErrUnknownNodeType)
	assert.Contains(t, err.Error(), "ghost")
}

func TestRegister_DuplicatePanics(t *testing.T) {
	r := New()
	r.Register("noop", func() executor.NodeExecutor { return noopExecutor{} })
	assert.Panics(t, func() {
		r.Register("noop", func() executor.NodeExecutor { return noopExecutor{} })
	})
}

func TestTypes_Sorted(t *testing.T) {
	r := New()
	r.Register("transform", func() executor.NodeExecutor { return noopExecutor{} })
	r.Register("input", func() executor.NodeExecutor { return noopExecutor{} })
	r.Register("output", func() executor.NodeExecutor { return noopExecutor{} })

	assert.Equal(t, []string{"input", "output", "transform"}, r.Types())
}
