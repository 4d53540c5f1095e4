package harness

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/codegrade/internal/testutil"
)

func leafNames(leaves []Leaf) []string {
	names := make([]string, len(leaves))
	for i, l := range leaves {
		names[i] = l.String()
	}
	return names
}

func TestDiscover_AllChallengesSorted(t *testing.T) {
	tr := testutil.NewTree(t)
	tr.AddLeaf(t, "todo_list", "5-role-zero_shot", "iteration_10")
	tr.AddLeaf(t, "todo_list", "5-role-zero_shot", "iteration_2")
	tr.AddLeaf(t, "calculator", "2-few_shot", "iteration_1")
	tr.AddLeaf(t, "calculator", "1-zero_shot", "iteration_1")
	tr.AddLeaf(t, "ascii_art", "1-zero_shot", "iteration_3")

	leaves, err := Discover(tr.CodeDir(), "")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"ascii_art/1-zero_shot/iteration_3",
		"calculator/1-zero_shot/iteration_1",
		"calculator/2-few_shot/iteration_1",
		"todo_list/5-role-zero_shot/iteration_2",
		"todo_list/5-role-zero_shot/iteration_10",
	}, leafNames(leaves))

	first := leaves[0]
	assert.Equal(t, "ascii_art", first.Challenge)
	assert.Equal(t, "1-zero_shot", first.Variant)
	assert.Equal(t, "iteration_3", first.Iteration)
	assert.Equal(t, filepath.Join(tr.CodeDir(), "ascii_art", "1-zero_shot", "iteration_3"), first.Path)
}

func TestDiscover_Filter(t *testing.T) {
	tr := testutil.NewTree(t)
	tr.AddLeaf(t, "calculator", "1-zero_shot", "iteration_1")
	tr.AddLeaf(t, "todo_list", "1-zero_shot", "iteration_1")

	leaves, err := Discover(tr.CodeDir(), "todo_list")
	require.NoError(t, err)
	assert.Equal(t, []string{"todo_list/1-zero_shot/iteration_1"}, leafNames(leaves))
}

func TestDiscover_SkipsFilesAtEveryLevel(t *testing.T) {
	tr := testutil.NewTree(t)
	tr.AddLeaf(t, "calculator", "1-zero_shot", "iteration_1", "chatgpt")
	write := func(rel string) {
		require.NoError(t, os.WriteFile(filepath.Join(tr.CodeDir(), rel), []byte("x"), 0o644))
	}
	write("README.md")
	write(filepath.Join("calculator", "notes.txt"))
	write(filepath.Join("calculator", "1-zero_shot", "summary.json"))

	leaves, err := Discover(tr.CodeDir(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"calculator/1-zero_shot/iteration_1"}, leafNames(leaves))
}

func TestDiscover_FollowsSymlinkedDirs(t *testing.T) {
	tr := testutil.NewTree(t)
	target := tr.AddLeaf(t, "calculator", "1-zero_shot", "iteration_1")
	link := filepath.Join(tr.CodeDir(), "calculator", "1-zero_shot", "iteration_2")
	require.NoError(t, os.Symlink(target, link))

	leaves, err := Discover(tr.CodeDir(), "")
	require.NoError(t, err)
	assert.Len(t, leaves, 2)
}

func TestDiscover_UnknownChallengeIsNoLeaves(t *testing.T) {
	tr := testutil.NewTree(t)
	tr.AddLeaf(t, "calculator", "1-zero_shot", "iteration_1")

	leaves, err := Discover(tr.CodeDir(), "sudoku")
	require.Error(t, err)
	assert.Nil(t, leaves)
	assert.True(t, errors.Is(err, ErrNoLeaves))
	assert.Contains(t, err.Error(), `challenge "sudoku"`)
}

func TestDiscover_FilterWithSeparatorNeverMatches(t *testing.T) {
	tr := testutil.NewTree(t)
	tr.AddLeaf(t, "calculator", "1-zero_shot", "iteration_1")

	_, err := Discover(tr.CodeDir(), filepath.Join("calculator", "1-zero_shot"))
	assert.ErrorIs(t, err, ErrNoLeaves)
}

func TestDiscover_EmptyChallengeIsNoLeaves(t *testing.T) {
	tr := testutil.NewTree(t)
	require.NoError(t, os.MkdirAll(filepath.Join(tr.CodeDir(), "calculator", "1-zero_shot"), 0o755))

	_, err := Discover(tr.CodeDir(), "")
	assert.ErrorIs(t, err, ErrNoLeaves)
	assert.Contains(t, err.Error(), "for any challenge")
}

func TestDiscover_MissingRootIsNoLeaves(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "absent"), "")
	assert.ErrorIs(t, err, ErrNoLeaves)
}

func TestDiscover_NormalizesNames(t *testing.T) {
	tr := testutil.NewTree(t)
	decomposed := "cafe\u0301"
	composed := "caf\u00e9"
	tr.AddLeaf(t, decomposed, "1-zero_shot", "iteration_1")

	leaves, err := Discover(tr.CodeDir(), composed)
	require.NoError(t, err)
	require.Len(t, leaves, 1)
	assert.Equal(t, composed, leaves[0].Challenge)
	assert.Equal(t, filepath.Join(tr.CodeDir(), decomposed, "1-zero_shot", "iteration_1"), leaves[0].Path)
}

func TestDiscover_KeepsOnDiskIterationName(t *testing.T) {
	tr := testutil.NewTree(t)
	decomposed := "ite\u0301ration_1"
	tr.AddLeaf(t, "calculator", "1-zero_shot", decomposed)

	leaves, err := Discover(tr.CodeDir(), "")
	require.NoError(t, err)
	require.Len(t, leaves, 1)
	assert.Equal(t, "it\u00e9ration_1", leaves[0].Iteration)
	assert.Equal(t, decomposed, leaves[0].Dir)
	assert.Equal(t, decomposed, leaves[0].Base())
}

func TestDiscover_NormalizationTwinsOrderedByPath(t *testing.T) {
	tr := testutil.NewTree(t)
	composed := "it\u00e9ration_1"
	decomposed := "ite\u0301ration_1"
	tr.AddLeaf(t, "calculator", "1-zero_shot", decomposed)
	tr.AddLeaf(t, "calculator", "1-zero_shot", composed)
	if len(testutil.ListDir(t, filepath.Join(tr.CodeDir(), "calculator", "1-zero_shot"))) != 2 {
		t.Skip("filesystem does not keep normalization variants apart")
	}

	for i := 0; i < 3; i++ {
		leaves, err := Discover(tr.CodeDir(), "")
		require.NoError(t, err)
		require.Len(t, leaves, 2)
		assert.Equal(t, leaves[0].Iteration, leaves[1].Iteration)
		// "e\u0301" < "\u00e9" in bytes.
		assert.Equal(t, decomposed, leaves[0].Dir)
		assert.Equal(t, composed, leaves[1].Dir)
	}
}

func TestNameOrder_Compare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"iteration_2", "iteration_10", -1},
		{"iteration_10", "iteration_2", 1},
		{"iteration_1", "iteration_1", 0},
		{"v10", "v9", 1},
		{"a", "b", -1},
		{"a", "ab", -1},
		{"temp_0.2", "temp_0.6", -1},
		{"v9", "v10a", -1},
		{"1-zero_shot", "2-few_shot", -1},
	}
	o := newNameOrder()
	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, o.compare(tt.a, tt.b))
		})
	}
}

func TestNameOrder_LeadingZerosStillTotal(t *testing.T) {
	o := newNameOrder()
	ab := o.compare("iteration_02", "iteration_2")
	ba := o.compare("iteration_2", "iteration_02")
	assert.NotZero(t, ab)
	assert.Equal(t, -ab, ba)
}
