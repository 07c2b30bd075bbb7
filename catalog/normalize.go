package catalog

// Normalize converts a raw result into a Record. fallbackTitle is used when
// the result carries no track name.
func Normalize(r Result, fallbackTitle string) Record {
	rec := Record{
		ScreenshotURLs: firstNonEmptyList(r.ScreenshotURLs, r.IPadScreenshotURLs),
		DisplayName:    firstNonEmpty(r.TrackName, fallbackTitle),
		PriceLabel:     priceLabel(r),
		Genre:          r.PrimaryGenreName,
		ContentRating:  firstNonEmpty(r.TrackContentRating, r.ContentAdvisoryRating),
		Description:    r.Description,
		BundleID:       r.BundleID,
		TrackViewURL:   r.TrackViewURL,
	}
	if icon := firstNonEmpty(r.ArtworkURL512, r.ArtworkURL100, r.ArtworkURL60); icon != "" {
		rec.IconURL = &icon
	}
	if r.AverageUserRating != nil {
		rec.AverageRating = *r.AverageUserRating
	}
	if r.UserRatingCount != nil {
		rec.RatingCount = *r.UserRatingCount
	}
	return rec
}

// Placeholder is the record rendered when no catalog data is available.
func Placeholder(title string) Record {
	return Record{ScreenshotURLs: []string{}, DisplayName: title}
}

func priceLabel(r Result) string {
	if r.FormattedPrice != "" {
		return r.FormattedPrice
	}
	if r.Price == nil || *r.Price == 0 {
		return "Free"
	}
	return "Paid"
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNonEmptyList(lists ...[]string) []string {
	for _, l := range lists {
		if len(l) > 0 {
			out := make([]string, len(l))
			copy(out, l)
			return out
		}
	}
	return []string{}
}
