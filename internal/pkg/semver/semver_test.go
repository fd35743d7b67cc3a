package semver

import "testing"

import "github.com/stretchr/testify/require"
import "github.com/stretchr/testify/assert"

func TestCaretConstraint(t *testing.T) {
	req, err := ParseRequirement("^1.2.3")
	require.NoError(t, err)

	assert.True(t, req.SatisfiesString("1.2.3"))
	assert.True(t, req.SatisfiesString("1.9.9"))
	assert.False(t, req.SatisfiesString("2.0.0"))
}

func TestCaretZeroMajor(t *testing.T) {
	req, err := ParseRequirement("^0.2.3")
	require.NoError(t, err)

	assert.True(t, req.SatisfiesString("0.2.3"))
	assert.True(t, req.SatisfiesString("0.2.9"))
	assert.False(t, req.SatisfiesString("0.3.0"))
}

func TestTildeConstraint(t *testing.T) {
	req, err := ParseRequirement("~1.2.3")
	require.NoError(t, err)

	assert.True(t, req.SatisfiesString("1.2.9"))
	assert.False(t, req.SatisfiesString("1.3.0"))
}

func TestPrereleaseSortsBelowRelease(t *testing.T) {
	pre, err := Parse("1.0.0-beta")
	require.NoError(t, err)
	release, err := Parse("1.0.0")
	require.NoError(t, err)

	assert.True(t, pre.Less(release))
}

func TestConstraintAtomsRoundTrip(t *testing.T) {
	cases := []string{"=1.0.0", "!=1.0.0", "<1.0.0", "<=1.0.0", ">1.0.0", ">=1.0.0", "^1.0.0", "~1.0.0", "1.0.0"}
	for _, c := range cases {
		_, err := ParseRequirement(c)
		assert.NoError(t, err, "constraint %q should parse", c)
	}
}

func TestFindBest(t *testing.T) {
	req, err := ParseRequirement("^10")
	require.NoError(t, err)

	best, ok := FindBest([]string{"10.0.0", "10.2.1", "11.0.0"}, req)
	require.True(t, ok)
	assert.Equal(t, "10.2.1", best)
}

func TestAnyRequirement(t *testing.T) {
	req, err := ParseRequirement("*")
	require.NoError(t, err)
	assert.True(t, req.AcceptsAny())
	assert.True(t, req.SatisfiesString("0.0.1"))
}
