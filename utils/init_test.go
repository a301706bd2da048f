package utils

import (
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestCanColorize(t *testing.T) {
	saved := *opts
	defer func() { *opts = saved }()

	red := color.New(color.FgRed).SprintFunc()

	opts.noColorize = true
	assert.Equal(t, "ab", CanColorize(red)("a", "b"))

	opts.noColorize = false
	col := CanColorize(red)
	assert.Equal(t, red("a"), col("a"))
}

func TestTaskSelection(t *testing.T) {
	saved := *opts
	defer func() { *opts = saved }()

	opts.task = "classify"
	assert.True(t, Opts().Task().IsClassify())
	assert.False(t, Opts().Task().IsDepsToDot())

	opts.task = "check-cycles"
	assert.False(t, Opts().Task().IsClassify())
	assert.True(t, Opts().Task().IsCycleCheck())
}
