package validate

import (
	"testing"
	"time"

	"github.com/erazemk/shramba/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinks(t *testing.T) {
	tests := []struct {
		name         string
		urls         []string
		labels       []string
		wantLinks    []model.Link
		wantProblems int
	}{
		{
			name:      "valid link with label",
			urls:      []string{"https://a.test/recipe"},
			labels:    []string{"Recipe"},
			wantLinks: []model.Link{{URL: "https://a.test/recipe", Label: "Recipe"}},
		},
		{
			name:      "whitespace trimmed",
			urls:      []string{" https://a.test/b "},
			labels:    []string{"Y"},
			wantLinks: []model.Link{{URL: "https://a.test/b", Label: "Y"}},
		},
		{
			name:   "empty url skipped silently",
			urls:   []string{"", "   "},
			labels: []string{"ignored", "ignored"},
		},
		{
			name:      "blank label stored as absent",
			urls:      []string{"http://a.test/x"},
			labels:    []string{"   "},
			wantLinks: []model.Link{{URL: "http://a.test/x"}},
		},
		{
			name:         "invalid scheme rejected",
			urls:         []string{"ftp://a.test/x"},
			labels:       []string{""},
			wantProblems: 1,
		},
		{
			name:         "not a url rejected",
			urls:         []string{"not-a-url"},
			labels:       []string{"x"},
			wantProblems: 1,
		},
		{
			name:         "whitespace inside url rejected",
			urls:         []string{"https://a.test/with space"},
			labels:       []string{""},
			wantProblems: 1,
		},
		{
			name:      "scheme is case insensitive",
			urls:      []string{"HTTPS://a.test/x"},
			labels:    []string{""},
			wantLinks: []model.Link{{URL: "HTTPS://a.test/x"}},
		},
		{
			name:         "mixed batch keeps the valid entries",
			urls:         []string{"not-a-url", " https://a.test/b "},
			labels:       []string{"x", "Y"},
			wantLinks:    []model.Link{{URL: "https://a.test/b", Label: "Y"}},
			wantProblems: 1,
		},
		{
			name:      "missing label entries tolerated",
			urls:      []string{"https://a.test/x", "https://a.test/y"},
			labels:    []string{"only one"},
			wantLinks: []model.Link{{URL: "https://a.test/x", Label: "only one"}, {URL: "https://a.test/y"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			links, problems := Links(tt.urls, tt.labels)
			assert.Equal(t, tt.wantLinks, links)
			assert.Len(t, problems, tt.wantProblems)
		})
	}
}

func TestItemAttrsName(t *testing.T) {
	attrs := model.RevisionAttrs{
		Name:         "  Lentil soup  ",
		DatePrepared: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	problems := ItemAttrs(&attrs)

	require.Empty(t, problems)
	assert.Equal(t, "Lentil soup", attrs.Name)

	attrs.Name = "   "
	problems = ItemAttrs(&attrs)
	assert.Contains(t, problems, "Name is required.")
}

func TestItemAttrsExpirationDefault(t *testing.T) {
	prepared := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	attrs := model.RevisionAttrs{Name: "Soup", DatePrepared: prepared}

	problems := ItemAttrs(&attrs)

	require.Empty(t, problems)
	require.NotNil(t, attrs.ExpirationDate)
	assert.Equal(t, prepared.AddDate(0, 0, ExpirationDefaultDays), *attrs.ExpirationDate)
}

func TestItemAttrsExpirationOrdering(t *testing.T) {
	prepared := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	// Same day is allowed.
	sameDay := prepared
	attrs := model.RevisionAttrs{Name: "Soup", DatePrepared: prepared, ExpirationDate: &sameDay}
	assert.Empty(t, ItemAttrs(&attrs))

	// Earlier is not.
	early := prepared.AddDate(0, 0, -1)
	attrs = model.RevisionAttrs{Name: "Soup", DatePrepared: prepared, ExpirationDate: &early}
	problems := ItemAttrs(&attrs)
	assert.Contains(t, problems, "Expiration date must be on or after date prepared.")
}

func TestItemAttrsAccumulatesProblems(t *testing.T) {
	early := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	attrs := model.RevisionAttrs{
		Name:           " ",
		DatePrepared:   time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		ExpirationDate: &early,
	}
	problems := ItemAttrs(&attrs)
	assert.Len(t, problems, 2)
}
