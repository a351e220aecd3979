package store

import (
	"errors"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

// SearchOptions describes a filtered, sorted, paginated collection query
// built from request query parameters.
type SearchOptions struct {
	// Name filters on a case-insensitive substring of the name field.
	Name string

	// Tags filters on documents carrying every listed tag.
	Tags []string

	// Author filters on the authoring user's id (hex).
	Author string

	// SortBy names the field to sort on; empty means newest first.
	SortBy   string
	SortDesc bool

	Page  int
	Limit int
}

// ParseSearchOptions builds SearchOptions from URL query parameters.
// Unknown parameters are ignored; malformed pagination is an error.
func ParseSearchOptions(query url.Values) (SearchOptions, error) {
	opts := SearchOptions{
		Name:   strings.TrimSpace(query.Get("name")),
		Author: strings.TrimSpace(query.Get("author")),
		SortBy: strings.TrimSpace(query.Get("sortBy")),
		Page:   defaultPage,
		Limit:  defaultLimit,
	}

	if raw := strings.TrimSpace(query.Get("tags")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if tag := strings.TrimSpace(part); tag != "" {
				opts.Tags = append(opts.Tags, tag)
			}
		}
	}

	if raw := strings.TrimSpace(query.Get("page")); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return SearchOptions{}, errors.New("invalid page")
		}
		opts.Page = page
	}

	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return SearchOptions{}, errors.New("invalid limit")
		}
		opts.Limit = limit
	}
	if opts.Limit > maxLimit {
		opts.Limit = maxLimit
	}

	switch strings.TrimSpace(query.Get("sortOrder")) {
	case "", "asc":
	case "desc":
		opts.SortDesc = true
	default:
		return SearchOptions{}, errors.New("invalid sort order")
	}

	if opts.Author != "" {
		if _, err := primitive.ObjectIDFromHex(opts.Author); err != nil {
			return SearchOptions{}, errors.New("invalid author id")
		}
	}

	return opts, nil
}

// Filter translates the options into a Mongo filter document.
func (o SearchOptions) Filter() bson.M {
	return o.FilterOn("name")
}

// FilterOn builds the filter with the name substring applied to the given
// field (users filter on "display").
func (o SearchOptions) FilterOn(nameField string) bson.M {
	filter := bson.M{}
	if o.Name != "" {
		filter[nameField] = bson.M{"$regex": regexp.QuoteMeta(o.Name), "$options": "i"}
	}
	if len(o.Tags) > 0 {
		filter["tags"] = bson.M{"$all": o.Tags}
	}
	if o.Author != "" {
		// Validated during parsing.
		id, _ := primitive.ObjectIDFromHex(o.Author)
		filter["author"] = id
	}
	return filter
}

// FindOptions translates the options into Mongo find options.
func (o SearchOptions) FindOptions() *options.FindOptions {
	sortField := o.SortBy
	direction := 1
	if sortField == "" {
		sortField = "dateCreated"
		direction = -1
	} else if o.SortDesc {
		direction = -1
	}

	page := o.Page
	if page < 1 {
		page = defaultPage
	}
	limit := o.Limit
	if limit < 1 {
		limit = defaultLimit
	}

	return options.Find().
		SetSort(bson.D{{Key: sortField, Value: direction}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
}
