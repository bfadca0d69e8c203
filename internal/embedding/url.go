package embedding

import "net/url"

func mustParseURL(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		return &url.URL{Scheme: "http", Host: "localhost:11434"}
	}
	return u
}
