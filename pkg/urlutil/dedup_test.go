package urlutil_test

import (
	"testing"

	"github.com/rohmanhakim/webqa/pkg/urlutil"
	"github.com/stretchr/testify/assert"
)

func TestRemoveDuplicates(t *testing.T) {
	input := []string{
		"https://a.com/x",
		"https://a.com/y",
		"https://a.com/x/",
		"https://a.com/x#frag",
		"https://a.com/z?ref=1",
		"https://a.com/y",
		"https://a.com/z",
	}

	got := urlutil.RemoveDuplicates(input)

	assert.Equal(t, []string{
		"https://a.com/x",
		"https://a.com/y",
		"https://a.com/z?ref=1",
	}, got)
}

func TestRemoveDuplicates_Properties(t *testing.T) {
	lists := [][]string{
		nil,
		{},
		{"https://a.com"},
		{"https://a.com/", "https://a.com", "HTTPS://A.COM"},
		{"b", "a", "B/", "c", "a"},
		{"http://a.com/x", "https://a.com/x"},
	}

	for _, list := range lists {
		once := urlutil.RemoveDuplicates(list)
		twice := urlutil.RemoveDuplicates(once)

		assert.LessOrEqual(t, len(once), len(list))
		assert.Equal(t, once, twice, "removeDuplicates must be idempotent for %v", list)

		// first occurrences keep their relative order
		pos := -1
		for _, u := range once {
			idx := indexOf(list, u)
			assert.Greater(t, idx, pos)
			pos = idx
		}
	}
}

func TestIndex_Admit(t *testing.T) {
	index := urlutil.NewIndex(2)

	assert.True(t, index.Admit("https://a.com/1"))
	assert.False(t, index.Admit("https://a.com/1/"))
	assert.True(t, index.Contains("HTTPS://A.COM/1#x"))
	assert.False(t, index.Full())

	assert.True(t, index.Admit("https://a.com/2"))
	assert.True(t, index.Full())
	assert.False(t, index.Admit("https://a.com/3"))
	assert.False(t, index.Contains("https://a.com/3"))

	assert.Equal(t, 2, index.Size())
	assert.Equal(t, []string{"https://a.com/1", "https://a.com/2"}, index.URLs())
}

func TestIndex_Unbounded(t *testing.T) {
	index := urlutil.NewIndex(0)
	for i := 0; i < 100; i++ {
		index.Admit("https://a.com/" + string(rune('a'+i%26)) + string(rune('a'+i/26)))
	}
	assert.Equal(t, 100, index.Size())
	assert.False(t, index.Full())
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
