package store

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseSearchOptions_Defaults(t *testing.T) {
	t.Parallel()

	opts, err := ParseSearchOptions(url.Values{})
	require.NoError(t, err)

	assert.Equal(t, 1, opts.Page)
	assert.Equal(t, 20, opts.Limit)
	assert.Empty(t, opts.Name)
	assert.Empty(t, opts.Tags)
}

func TestParseSearchOptions_Pagination(t *testing.T) {
	t.Parallel()

	opts, err := ParseSearchOptions(url.Values{"page": {"3"}, "limit": {"50"}})
	require.NoError(t, err)
	assert.Equal(t, 3, opts.Page)
	assert.Equal(t, 50, opts.Limit)

	_, err = ParseSearchOptions(url.Values{"page": {"0"}})
	assert.Error(t, err)

	_, err = ParseSearchOptions(url.Values{"limit": {"nope"}})
	assert.Error(t, err)
}

func TestParseSearchOptions_LimitCap(t *testing.T) {
	t.Parallel()

	opts, err := ParseSearchOptions(url.Values{"limit": {"5000"}})
	require.NoError(t, err)
	assert.Equal(t, maxLimit, opts.Limit)
}

func TestParseSearchOptions_Tags(t *testing.T) {
	t.Parallel()

	opts, err := ParseSearchOptions(url.Values{"tags": {"vegan, quick,,dinner "}})
	require.NoError(t, err)
	assert.Equal(t, []string{"vegan", "quick", "dinner"}, opts.Tags)
}

func TestParseSearchOptions_InvalidAuthor(t *testing.T) {
	t.Parallel()

	_, err := ParseSearchOptions(url.Values{"author": {"not-an-object-id"}})
	assert.Error(t, err)
}

func TestSearchOptionsFilter(t *testing.T) {
	t.Parallel()

	author := primitive.NewObjectID()
	opts := SearchOptions{Name: "pie (sweet)", Tags: []string{"dessert"}, Author: author.Hex()}

	filter := opts.Filter()

	nameFilter, ok := filter["name"].(bson.M)
	require.True(t, ok, "name filter missing")
	// Regex metacharacters in user input must be escaped.
	assert.Equal(t, `pie \(sweet\)`, nameFilter["$regex"])
	assert.Equal(t, "i", nameFilter["$options"])

	assert.Equal(t, bson.M{"$all": []string{"dessert"}}, filter["tags"])
	assert.Equal(t, author, filter["author"])
}

func TestSearchOptionsFindOptions_DefaultSort(t *testing.T) {
	t.Parallel()

	opts := SearchOptions{Page: 2, Limit: 10}
	find := opts.FindOptions()

	require.NotNil(t, find.Skip)
	assert.Equal(t, int64(10), *find.Skip)
	require.NotNil(t, find.Limit)
	assert.Equal(t, int64(10), *find.Limit)

	sort, ok := find.Sort.(bson.D)
	require.True(t, ok)
	require.Len(t, sort, 1)
	assert.Equal(t, "dateCreated", sort[0].Key)
	assert.Equal(t, -1, sort[0].Value)
}
