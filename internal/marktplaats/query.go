// Package marktplaats translates job filters into Marktplaats search
// queries and fetches listings from the public search endpoint.
package marktplaats

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/mirzet-943/MarketPlatz-Notification-Helper/internal/model"
)

// Keys containing one of these tokens carry euro amounts; the upstream
// expects cents under the PriceCents attribute.
var currencyTokens = []string{"Prijs", "PriceCents"}

const offeredSinceToday = "offeredSince:Vandaag"

// BuildQuery converts a job's ordered filter list into the upstream query
// string. Parameter order follows filter insertion order, after a fixed
// baseline (page size, offset, sort, view mode). Every search is implicitly
// scoped to same-day listings: when no filter sets offeredSince, a default
// "offeredSince:Vandaag" attribute is appended, and a user-supplied
// offeredSince sub-value is overridden to Vandaag either way.
func BuildQuery(filters []model.JobFilter) string {
	params := []string{
		"limit=30",
		"offset=0",
		"sortBy=SORT_INDEX",
		"sortOrder=DECREASING",
		"viewOptions=list-view",
	}

	hasOfferedSince := false

	for _, f := range filters {
		switch model.ParseFilterType(f.FilterType) {
		case model.FilterAttributeRange:
			if p, ok := translateRange(f.Value); ok {
				params = append(params, "attributeRanges[]="+url.QueryEscape(p))
			}
		case model.FilterAttributeByID:
			params = append(params, "attributesById[]="+url.QueryEscape(f.Value))
		case model.FilterAttributeByKey:
			if strings.HasPrefix(strings.ToLower(f.Value), "offeredsince:") {
				params = append(params, "attributesByKey[]="+url.QueryEscape(offeredSinceToday))
				hasOfferedSince = true
			} else {
				params = append(params, "attributesByKey[]="+url.QueryEscape(f.Value))
			}
		case model.FilterL1Category:
			params = append(params, "l1CategoryId="+url.QueryEscape(f.Value))
		case model.FilterL2Category:
			params = append(params, "l2CategoryId="+url.QueryEscape(f.Value))
		case model.FilterPostcode:
			params = append(params, "postcode="+url.QueryEscape(f.Value))
		case model.FilterQuery:
			params = append(params, "query="+url.QueryEscape(f.Value))
			params = append(params, "searchInTitleAndDescription=true")
		default:
			params = append(params, url.QueryEscape(f.Key)+"="+url.QueryEscape(f.Value))
		}
	}

	if !hasOfferedSince {
		params = append(params, "attributesByKey[]="+url.QueryEscape(offeredSinceToday))
	}

	return strings.Join(params, "&")
}

// translateRange rewrites a "key:min|max" range value to the upstream
// "key:min:max" form. Euro keys are renamed to PriceCents with both bounds
// converted to cents; Bouwjaar maps to the upstream year attribute.
// Malformed values report ok=false and are dropped silently.
func translateRange(value string) (string, bool) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return "", false
	}
	key := parts[0]

	bounds := strings.Split(parts[1], "|")
	if len(bounds) != 2 {
		return "", false
	}
	min, max := bounds[0], bounds[1]

	switch {
	case isCurrencyKey(key):
		key = "PriceCents"
		min = eurosToCents(min)
		max = eurosToCents(max)
	case key == "Bouwjaar":
		key = "constructionYear"
	}

	return key + ":" + min + ":" + max, true
}

func isCurrencyKey(key string) bool {
	for _, token := range currencyTokens {
		if strings.Contains(key, token) {
			return true
		}
	}
	return false
}

// eurosToCents multiplies an integral euro amount by 100. Non-numeric
// bounds pass through unconverted.
func eurosToCents(s string) string {
	n, err := strconv.Atoi(s)
	if err != nil {
		return s
	}
	return strconv.Itoa(n * 100)
}
