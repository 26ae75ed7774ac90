package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckReportsBindingProblems(t *testing.T) {
	diags, err := Check(Options{Dir: "testdata/badbind"}, ".")
	require.NoError(t, err)

	byType := map[string][]Diagnostic{}
	for _, d := range diags {
		byType[d.Type] = append(byType[d.Type], d)
	}

	assert.Empty(t, byType["Note"], "well formed type flagged")
	assert.Empty(t, byType["Lang"], "well formed type flagged")
	assert.Empty(t, byType["Plain"], "unannotated type flagged")

	require.Len(t, byType["Conflicted"], 1)
	assert.Contains(t, byType["Conflicted"][0].Message, "multiple binding markers")

	require.Len(t, byType["BadTag"], 1)
	assert.Equal(t, "X", byType["BadTag"][0].Field)
	assert.Contains(t, byType["BadTag"][0].Message, "unknown option")

	require.Len(t, byType["WideAttr"], 1)
	assert.Contains(t, byType["WideAttr"][0].Message, "exactly one value field")

	require.Len(t, byType["Hidden"], 1)
	assert.Equal(t, "secret", byType["Hidden"][0].Field)
	assert.Contains(t, byType["Hidden"][0].Message, "unexported")

	for _, d := range diags {
		assert.NotEmpty(t, d.Pos.Filename, "diagnostic without a position: %s", d)
		assert.Positive(t, d.Pos.Line)
	}
}

func TestDiagnosticString(t *testing.T) {
	diags, err := Check(Options{Dir: "testdata/badbind"}, ".")
	require.NoError(t, err)
	require.NotEmpty(t, diags)

	s := diags[0].String()
	assert.Contains(t, s, "badbind.go:")
	assert.Contains(t, s, ": ")
}

func TestCheckBadPattern(t *testing.T) {
	_, err := Check(Options{Dir: "testdata/badbind"}, "./does-not-exist")
	assert.Error(t, err)
}
