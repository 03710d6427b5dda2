package textnorm_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"ytt/backend/internal/service/textnorm"
)

func TestMergeIntoParagraphs_FlushesOnPunctuation(t *testing.T) {
	in := "hello there\nthis is a line.\nnext sentence\ncontinues here!"
	require.Equal(t, "hello there this is a line.\n\nnext sentence continues here!", textnorm.MergeIntoParagraphs(in))
}

func TestMergeIntoParagraphs_ForcedFlushAfterFourLines(t *testing.T) {
	in := "one\ntwo\nthree\nfour\nfive\nsix"
	require.Equal(t, "one two three four\n\nfive six", textnorm.MergeIntoParagraphs(in))
}

func TestMergeIntoParagraphs_BlankLinesFlush(t *testing.T) {
	in := "first block\n\n\nsecond block\n  \nthird"
	require.Equal(t, "first block\n\nsecond block\n\nthird", textnorm.MergeIntoParagraphs(in))
}

func TestMergeIntoParagraphs_Empty(t *testing.T) {
	require.Equal(t, "", textnorm.MergeIntoParagraphs(""))
	require.Equal(t, "", textnorm.MergeIntoParagraphs("\n \n"))
}

func TestMergeIntoParagraphs_Idempotent(t *testing.T) {
	inputs := []string{
		"hello there\nthis is a line.\nnext sentence\ncontinues here!",
		"one\ntwo\nthree\nfour\nfive\nsix\nseven.\n\neight",
		"already a paragraph.\n\nanother one",
		"  padded line  \r\nwindows line;\n",
		strings.Repeat("caption line without stop\n", 13),
	}
	for _, in := range inputs {
		once := textnorm.MergeIntoParagraphs(in)
		require.Equal(t, once, textnorm.MergeIntoParagraphs(once), "input %q", in)
	}
}

func TestNormalizeForComparison(t *testing.T) {
	require.Equal(t, "a b  c", textnorm.NormalizeForComparison("\r\na\nb\r\n\nc\n"))
}

func TestMatches_NormalizedEquality(t *testing.T) {
	require.True(t, textnorm.Matches("Bonjour\nle monde", "Bonjour le monde"))
}

func TestMatches_ExactlyEightyPercentIsNotEnough(t *testing.T) {
	// 4 of 5 words shared: 4 > 0.8*5 is false.
	require.False(t, textnorm.Matches("a b c d x", "a b c d e"))
}

func TestMatches_AboveThreshold(t *testing.T) {
	// 9 of 10 words shared.
	require.True(t, textnorm.Matches("a b c d e f g h i z", "a b c d e f g h i j"))
}

func TestMatches_DenominatorIsNewTextWordCount(t *testing.T) {
	// Candidate is much longer; only the new text's length matters.
	candidate := "a b c d e " + strings.Repeat("filler ", 50)
	require.True(t, textnorm.Matches(candidate, "a b c d e"))
	// Reversed roles fall far below the threshold.
	require.False(t, textnorm.Matches("a b c d e", candidate))
}

func TestMatches_DuplicateWordsCountInDenominator(t *testing.T) {
	// Distinct overlap is 1 ("a"), count is 5.
	require.False(t, textnorm.Matches("a", "a a a a a"))
}

func TestMatches_EmptyNewText(t *testing.T) {
	require.False(t, textnorm.Matches("something", ""))
}
