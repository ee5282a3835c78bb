// Package scraper runs the two steps of a collection: resolving an account's
// display name and pulling the first post of its timeline.
package scraper

import (
	"context"
	"fmt"
	"io"

	"github.com/qepting91/weibo-scraper/internal/domain"
)

const (
	// Pages requested from the post provider.
	Pages = 1

	// Iteration stops once this many posts have been pulled.
	firstPostLimit = 1
)

// GetUsername looks up the profile for uid, prints its follower count to out and
// returns the screen name. Provider errors are returned as is.
func GetUsername(ctx context.Context, provider domain.ProfileProvider, uid string, out io.Writer) (string, error) {
	if uid == "" {
		return "", domain.ErrEmptyIdentifier
	}

	profile, err := provider.GetProfile(ctx, uid)
	if err != nil {
		return "", err
	}
	if profile == nil {
		return "", domain.ErrProfileNotFound
	}

	fmt.Fprintln(out, profile.FollowersCount)
	return profile.ScreenName, nil
}

// Scrape pulls the first post of name's timeline, prints it to out and stops.
// The corpus is handed back untouched.
func Scrape(ctx context.Context, provider domain.PostProvider, corpus domain.Corpus, name string, out io.Writer) (domain.Corpus, error) {
	i := 0
	for post, err := range provider.PostsByName(ctx, name, Pages) {
		if err != nil {
			return corpus, err
		}
		// corpus[post.ItemID] = post
		i++
		if i >= firstPostLimit {
			fmt.Fprintln(out, post)
			break
		}
	}
	return corpus, nil
}
