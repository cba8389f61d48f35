// Package github provides an HTTP client for the GitHub REST API.
//
// # Overview
//
// This package lists an organization's repositories and reads the two
// per-repository resources used for language detection: the declared
// languages and the root contents listing.
//
// # Usage
//
//	client := github.NewClient(github.Config{Token: token})
//
//	repos, err := client.ListOrgRepos(ctx, "MarkM-Portfolio")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	langs, _ := client.Languages(ctx, repos[0].FullName)
//	names, found, _ := client.Contents(ctx, repos[0].FullName)
//
// # Authentication
//
// A token is optional. Without one, the API allows 60 requests/hour;
// with one, 5000 requests/hour. Rate-limit responses are waited out by the
// shared retry policy.
//
// # Pagination
//
// [Client.ListOrgRepos] requests pages of 100 until a page is empty or
// short. A page that cannot be fetched ends the listing as well; the
// truncation is logged rather than returned as an error.
package github
