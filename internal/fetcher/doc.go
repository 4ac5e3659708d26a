/*
Package fetcher downloads web pages for indexing.

A Fetcher validates the target URL, follows a bounded number of redirects,
caps the response size and rejects non-textual content. Unless
Options.AllowPrivate is set, loopback and private network targets are
refused both by literal address and after DNS resolution.

Every failure is returned as a *FetchError that wraps one of the package
sentinel errors or the transport error:

	res, err := fetcher.New(fetcher.Options{}).Fetch(ctx, "https://example.com")
	if errors.Is(err, fetcher.ErrBadStatus) {
		// ...
	}
*/
package fetcher
