package session

import (
	"io"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/net/html"
)

const (
	DefaultEndpointAttr = "data-endpoint"
	DefaultEndpointPath = "/bierguru/chat/"
)

// EndpointSource tells where the resolved endpoint came from.
type EndpointSource string

const (
	SourceFlag    EndpointSource = "flag"
	SourcePage    EndpointSource = "page"
	SourceDefault EndpointSource = "default"
)

// ResolveEndpoint finds the first element of the page carrying attr and resolves
// its value against pageURL. Without such an element the default chat path is
// used.
func ResolveEndpoint(pageURL *url.URL, r io.Reader, attr string) (string, EndpointSource, error) {
	if attr == "" {
		attr = DefaultEndpointAttr
	}
	doc, err := html.Parse(r)
	if err != nil {
		return resolveRef(pageURL, DefaultEndpointPath), SourceDefault, errors.Wrap(err, "could not parse page")
	}

	if v, ok := findAttr(doc, attr); ok {
		return resolveRef(pageURL, v), SourcePage, nil
	}
	return resolveRef(pageURL, DefaultEndpointPath), SourceDefault, nil
}

func findAttr(n *html.Node, attr string) (string, bool) {
	if n.Type == html.ElementNode {
		for _, a := range n.Attr {
			if a.Key == attr && strings.TrimSpace(a.Val) != "" {
				return strings.TrimSpace(a.Val), true
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if v, ok := findAttr(c, attr); ok {
			return v, true
		}
	}
	return "", false
}

func resolveRef(base *url.URL, ref string) string {
	u, err := url.Parse(ref)
	if err != nil || base == nil {
		return ref
	}
	return base.ResolveReference(u).String()
}
