package cliargs

import (
	"testing"

	"github.com/pymake-build/pymake/internal/project"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	d := Defaults()
	assert.Equal(t, "pyMake.xml", d.ProjectFile)
	assert.Equal(t, "Release", d.Configuration)
}

func TestResolvedSubsRepeatableForm(t *testing.T) {
	a := Args{Subs: []string{"target:w32", "debug:1"}}
	m, err := a.ResolvedSubs()
	require.NoError(t, err)
	assert.Equal(t, "w32", m["target"])
	assert.Equal(t, "1", m["debug"])
}

func TestResolvedSubsSemicolonForm(t *testing.T) {
	a := Args{Subs: []string{"target:w32;debug:1"}}
	m, err := a.ResolvedSubs()
	require.NoError(t, err)
	assert.Equal(t, "w32", m["target"])
	assert.Equal(t, "1", m["debug"])
}

func TestValidateRejectsEmptyProjectFile(t *testing.T) {
	a := Defaults()
	a.ProjectFile = ""
	require.Error(t, a.Validate())
}

// TestMergeConfigurationOverride reproduces spec.md §8 scenario 6: a
// prebuild's <configuration> override always wins, regardless of the
// parent's -g.
func TestMergeConfigurationOverride(t *testing.T) {
	parent := Defaults()
	parent.Configuration = "Release"

	child := parent.Merge(project.PrebuildRef{
		Path:          "../Lib2",
		Configuration: "Release-test",
		HasConfig:     true,
	})

	assert.Equal(t, "Release-test", child.Configuration)
}

func TestMergeSubShadowsParentForChildOnly(t *testing.T) {
	parent := Defaults()
	parent.Subs = []string{"target:linux"}

	child := parent.Merge(project.PrebuildRef{
		Path: "../Lib2",
		Subs: map[string]string{"target": "w32"},
	})
	childSubs, err := child.ResolvedSubs()
	require.NoError(t, err)
	assert.Equal(t, "w32", childSubs["target"])

	parentSubs, err := parent.ResolvedSubs()
	require.NoError(t, err)
	assert.Equal(t, "linux", parentSubs["target"])
}
