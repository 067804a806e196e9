package extractor

// linkSources lists the elements whose attribute may reference another page
// or resource. Order is the order links are collected in.
//
//nolint:gochecknoglobals // static lookup table
var linkSources = []struct {
	selector string
	attr     string
}{
	{"a[href]", "href"},
	{"link[href]", "href"},
	{"script[src]", "src"},
	{"img[src]", "src"},
	{"form[action]", "action"},
}

// contentExtensions mark a path as a page worth checking even off-site.
//
//nolint:gochecknoglobals // static lookup table
var contentExtensions = []string{".php", ".asp", ".aspx", ".jsp", ".html", ".htm"}
