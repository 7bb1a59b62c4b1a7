package xmldoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrderAndAttrs(t *testing.T) {
	data := []byte(`<project artifact="hello" type="executable">
  <ccflag>-Wall</ccflag>
  <ccflag>-O2</ccflag>
  <sources>
    <file path="src/hello.cpp"/>
  </sources>
</project>`)

	doc, err := Parse(data, "project.xml")
	require.NoError(t, err)

	assert.Equal(t, "project", doc.Root.Tag)
	artifact, ok := doc.Root.Attr("artifact")
	require.True(t, ok)
	assert.Equal(t, "hello", artifact)

	flags := doc.Root.ChildrenByTag("ccflag")
	require.Len(t, flags, 2)
	assert.Equal(t, "-Wall", flags[0].Text)
	assert.Equal(t, "-O2", flags[1].Text)

	sources, ok := doc.Root.FirstChildByTag("sources")
	require.True(t, ok)
	files := sources.ChildrenByTag("file")
	require.Len(t, files, 1)
	path, _ := files[0].Attr("path")
	assert.Equal(t, "src/hello.cpp", path)
}

func TestParseTracksLineNumbers(t *testing.T) {
	data := []byte("<project>\n  <ccflag>-Wall</ccflag>\n</project>")
	doc, err := Parse(data, "p.xml")
	require.NoError(t, err)

	flag, ok := doc.Root.FirstChildByTag("ccflag")
	require.True(t, ok)
	assert.Equal(t, 2, flag.Line)
}

func TestParseMalformedXML(t *testing.T) {
	_, err := Parse([]byte("<project><unclosed></project>"), "bad.xml")
	require.Error(t, err)
}
