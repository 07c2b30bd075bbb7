package catalog

import (
	"bytes"
	"fmt"

	"github.com/tidwall/gjson"
)

// Decode accepts the three body shapes the transports produce:
//
//	{"resultCount": n, "results": [...]}          canonical lookup
//	{"contents": "<lookup json as text>", ...}    relay envelope
//	{"success": true, "iconUrl": ..., ...}        first-party endpoint
//
// The body is parsed as JSON first; only when it turns out to be a relay
// envelope is the contents field parsed as the real payload.
func Decode(body []byte) (Response, error) {
	root, err := parseObject(body)
	if err != nil {
		return Response{}, err
	}

	if contents := root.Get("contents"); contents.Exists() && !root.Get("results").Exists() {
		switch {
		case contents.Type == gjson.String:
			root, err = parseObject([]byte(contents.Str))
			if err != nil {
				return Response{}, fmt.Errorf("relay contents: %w", err)
			}
		case contents.IsObject():
			root = contents
		default:
			return Response{}, fmt.Errorf("%w: relay contents is %s", ErrParse, contents.Type)
		}
	}

	switch {
	case root.Get("results").Exists():
		return decodeLookup(root)
	case root.Get("success").Exists():
		return decodeFirstParty(root)
	}
	return Response{}, fmt.Errorf("%w: no results or success field", ErrParse)
}

func parseObject(body []byte) (gjson.Result, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("%w: body is not valid JSON", ErrParse)
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return gjson.Result{}, fmt.Errorf("%w: body is not a JSON object", ErrParse)
	}
	return root, nil
}

func decodeLookup(root gjson.Result) (Response, error) {
	results := root.Get("results")
	if !results.IsArray() {
		return Response{}, fmt.Errorf("%w: results is not an array", ErrParse)
	}
	var resp Response
	results.ForEach(func(_, item gjson.Result) bool {
		if item.IsObject() {
			resp.Results = append(resp.Results, resultFrom(item))
		}
		return true
	})
	if rc := root.Get("resultCount"); rc.Exists() {
		resp.ResultCount = int(rc.Int())
	} else {
		resp.ResultCount = len(resp.Results)
	}
	return resp, nil
}

// decodeFirstParty maps our own endpoint's reply onto a one-result lookup.
// Older deployments sent artworkUrl512/trackName instead of iconUrl/displayName.
func decodeFirstParty(root gjson.Result) (Response, error) {
	if !root.Get("success").Bool() {
		return Response{}, fmt.Errorf("%w: first-party reported failure", ErrParse)
	}
	r := Result{
		ArtworkURL512:      firstString(root, "iconUrl", "artworkUrl512"),
		TrackName:          firstString(root, "displayName", "trackName"),
		Description:        root.Get("description").String(),
		ScreenshotURLs:     stringsAt(root, "screenshotUrls"),
		IPadScreenshotURLs: stringsAt(root, "ipadScreenshotUrls"),
	}
	return Response{ResultCount: 1, Results: []Result{r}}, nil
}

func resultFrom(item gjson.Result) Result {
	r := Result{
		TrackID:               item.Get("trackId").Int(),
		TrackName:             item.Get("trackName").String(),
		BundleID:              item.Get("bundleId").String(),
		Description:           item.Get("description").String(),
		TrackViewURL:          item.Get("trackViewUrl").String(),
		ArtworkURL512:         item.Get("artworkUrl512").String(),
		ArtworkURL100:         item.Get("artworkUrl100").String(),
		ArtworkURL60:          item.Get("artworkUrl60").String(),
		ScreenshotURLs:        stringsAt(item, "screenshotUrls"),
		IPadScreenshotURLs:    stringsAt(item, "ipadScreenshotUrls"),
		FormattedPrice:        item.Get("formattedPrice").String(),
		PrimaryGenreName:      item.Get("primaryGenreName").String(),
		TrackContentRating:    item.Get("trackContentRating").String(),
		ContentAdvisoryRating: item.Get("contentAdvisoryRating").String(),
	}
	if p := item.Get("price"); p.Type == gjson.Number {
		v := p.Float()
		r.Price = &v
	}
	if v := item.Get("averageUserRating"); v.Type == gjson.Number {
		f := v.Float()
		r.AverageUserRating = &f
	}
	if v := item.Get("userRatingCount"); v.Type == gjson.Number {
		n := v.Int()
		r.UserRatingCount = &n
	}
	return r
}

func firstString(root gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := root.Get(p); v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	return ""
}

func stringsAt(root gjson.Result, path string) []string {
	v := root.Get(path)
	if !v.IsArray() {
		return nil
	}
	var out []string
	for _, s := range v.Array() {
		if s.Type == gjson.String && s.Str != "" {
			out = append(out, s.Str)
		}
	}
	return out
}
