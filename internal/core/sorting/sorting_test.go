package sorting

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agenthands/basket/internal/core/model"
)

type pair struct {
	name  string
	value int
}

func byValue(p pair) int { return p.value }

func TestMergeSort_ByKey(t *testing.T) {
	input := []pair{{"a", 3}, {"b", 1}, {"c", 2}}

	asc := MergeSort(input, byValue)
	assert.Equal(t, []pair{{"b", 1}, {"c", 2}, {"a", 3}}, asc)

	desc := MergeSort(input, byValue, Reverse(true))
	assert.Equal(t, []pair{{"a", 3}, {"c", 2}, {"b", 1}}, desc)

	// Input is untouched.
	assert.Equal(t, []pair{{"a", 3}, {"b", 1}, {"c", 2}}, input)
}

func TestMergeSort_EmptyAndSingle(t *testing.T) {
	empty := MergeSort([]pair{}, byValue)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	assert.Empty(t, MergeSort[pair, int](nil, byValue))

	single := []pair{{"a", 1}}
	out := MergeSort(single, byValue)
	assert.Equal(t, single, out)

	out[0].value = 42
	assert.Equal(t, 1, single[0].value, "single element result must be a copy")
}

func TestMergeSort_Stable(t *testing.T) {
	input := []pair{{"a", 2}, {"b", 1}, {"c", 2}, {"d", 1}, {"e", 2}}

	asc := MergeSort(input, byValue)
	assert.Equal(t, []pair{{"b", 1}, {"d", 1}, {"a", 2}, {"c", 2}, {"e", 2}}, asc)

	desc := MergeSort(input, byValue, Reverse(true))
	assert.Equal(t, []pair{{"a", 2}, {"c", 2}, {"e", 2}, {"b", 1}, {"d", 1}}, desc)
}

func TestMergeSort_MatchesStdlibStableSort(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	input := make([]pair, 500)
	for i := range input {
		input[i] = pair{name: string(rune('a' + i%26)), value: rng.Intn(20)}
	}

	for _, reverse := range []bool{false, true} {
		expected := make([]pair, len(input))
		copy(expected, input)
		sort.SliceStable(expected, func(i, j int) bool {
			if reverse {
				return expected[i].value > expected[j].value
			}
			return expected[i].value < expected[j].value
		})

		assert.Equal(t, expected, MergeSort(input, byValue, Reverse(reverse)))
	}
}

func TestMergeSortOrdered(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3, 5, 8}, MergeSortOrdered([]int{5, 3, 8, 1, 2}))
	assert.Equal(t, []string{"milk", "eggs", "bread"}, MergeSortOrdered([]string{"eggs", "bread", "milk"}, Reverse(true)))
}

func TestSortPairsByFrequency(t *testing.T) {
	pairs := []model.Bundle{
		{First: "bread", Second: "milk", Frequency: 2},
		{First: "milk", Second: "eggs", Frequency: 5},
		{First: "bread", Second: "butter", Frequency: 2},
	}

	desc := SortPairsByFrequency(pairs)
	assert.Equal(t, []model.Bundle{
		{First: "milk", Second: "eggs", Frequency: 5},
		{First: "bread", Second: "milk", Frequency: 2},
		{First: "bread", Second: "butter", Frequency: 2},
	}, desc)

	asc := SortPairsByFrequency(pairs, Reverse(false))
	assert.Equal(t, 2, asc[0].Frequency)
	assert.Equal(t, "milk", asc[0].Second)
	assert.Equal(t, 5, asc[2].Frequency)
}

func TestSortAssociationsByWeight(t *testing.T) {
	assocs := []model.Association{
		{Item: "butter", Weight: 1},
		{Item: "bread", Weight: 2},
		{Item: "cheese", Weight: 1},
		{Item: "eggs", Weight: 2},
	}

	assert.Equal(t, []model.Association{
		{Item: "bread", Weight: 2},
		{Item: "eggs", Weight: 2},
		{Item: "butter", Weight: 1},
		{Item: "cheese", Weight: 1},
	}, SortAssociationsByWeight(assocs))

	assert.Equal(t, "butter", SortAssociationsByWeight(assocs, Reverse(false))[0].Item)
}
