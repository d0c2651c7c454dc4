// Package validate checks user-supplied item attributes and links.
// Problems are accumulated, never fail-fast, so one submission surfaces
// every error at once.
package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/erazemk/shramba/internal/model"
)

// urlRe accepts http/https URLs with a non-empty authority and no
// whitespace anywhere after the scheme.
var urlRe = regexp.MustCompile(`(?i)^https?://[^\s/$.?#].[^\s]*$`)

// ExpirationDefaultDays is how far past date_prepared the expiration date
// defaults when the user leaves it blank.
const ExpirationDefaultDays = 7

// Links validates and normalizes parallel url/label form values.
// Whitespace is trimmed; pairs with an empty URL are skipped silently;
// blank labels are stored as absent. Returns the clean links and one
// problem per invalid URL.
func Links(urls, labels []string) ([]model.Link, []string) {
	var clean []model.Link
	var problems []string

	for i, url := range urls {
		url = strings.TrimSpace(url)
		if url == "" {
			continue
		}

		var label string
		if i < len(labels) {
			label = strings.TrimSpace(labels[i])
		}

		if !urlRe.MatchString(url) {
			problems = append(problems, fmt.Sprintf("Invalid URL: %s", url))
			continue
		}
		clean = append(clean, model.Link{URL: url, Label: label})
	}

	return clean, problems
}

// ItemAttrs validates revision attributes in place: the name is trimmed and
// must be non-blank, and a missing expiration date defaults to
// date_prepared + 7 days. A present expiration date must not precede the
// date prepared.
func ItemAttrs(attrs *model.RevisionAttrs) []string {
	var problems []string

	attrs.Name = strings.TrimSpace(attrs.Name)
	if attrs.Name == "" {
		problems = append(problems, "Name is required.")
	}

	if attrs.ExpirationDate == nil {
		exp := attrs.DatePrepared.AddDate(0, 0, ExpirationDefaultDays)
		attrs.ExpirationDate = &exp
	} else if attrs.ExpirationDate.Before(attrs.DatePrepared) {
		problems = append(problems, "Expiration date must be on or after date prepared.")
	}

	return problems
}
