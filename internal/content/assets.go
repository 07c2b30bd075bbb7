package content

import (
	"errors"
	"io/fs"
)

// Required assets fail a deploy when missing; optional ones only warn.
var (
	RequiredAssets = []string{
		"index.html",
		"js/main.js",
		"js/content-manager.js",
		"css/style.css",
		"data/content.json",
		"favicon.svg",
		"favicon.ico",
		"favicon-16x16.png",
		"favicon-32x32.png",
		"apple-touch-icon.png",
		"android-chrome-192x192.png",
		"android-chrome-512x512.png",
		"site.webmanifest",
		"robots.txt",
		"sitemap.xml",
	}
	OptionalAssets = []string{
		"img/screenshot-desktop.png",
		"img/screenshot-mobile.png",
		".htaccess",
	}
	LibraryAssets = []string{
		"lib/jquery/jquery.min.js",
		"lib/bootstrap/js/bootstrap.min.js",
		"lib/typed/typed.min.js",
		"lib/font-awesome/css/font-awesome.min.css",
		"lib/ionicons/css/ionicons.min.css",
	}
)

type AssetStatus struct {
	Path     string
	Required bool
	Present  bool
	Size     int64
}

type AssetReport struct {
	Assets []AssetStatus
}

// OK is false when any required asset is missing.
func (r AssetReport) OK() bool {
	return len(r.MissingRequired()) == 0
}

func (r AssetReport) MissingRequired() []string {
	var out []string
	for _, a := range r.Assets {
		if a.Required && !a.Present {
			out = append(out, a.Path)
		}
	}
	return out
}

// CheckAssets stats every known asset under fsys. Library files count as required.
func CheckAssets(fsys fs.FS) (AssetReport, error) {
	var rep AssetReport
	groups := []struct {
		paths    []string
		required bool
	}{
		{RequiredAssets, true},
		{OptionalAssets, false},
		{LibraryAssets, true},
	}
	for _, g := range groups {
		for _, p := range g.paths {
			st := AssetStatus{Path: p, Required: g.required}
			info, err := fs.Stat(fsys, p)
			switch {
			case err == nil:
				st.Present = true
				st.Size = info.Size()
			case errors.Is(err, fs.ErrNotExist):
			default:
				return AssetReport{}, err
			}
			rep.Assets = append(rep.Assets, st)
		}
	}
	return rep, nil
}
