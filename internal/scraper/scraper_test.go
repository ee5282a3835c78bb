package scraper

import (
	"bytes"
	"context"
	"errors"
	"io"
	"iter"
	"reflect"
	"strings"
	"testing"

	"github.com/qepting91/weibo-scraper/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProfiles implements domain.ProfileProvider for testing
type fakeProfiles struct {
	profile *domain.Profile
	err     error
	out     *bytes.Buffer
	gotUID  string
	// output already written when GetProfile was called
	printedBefore string
}

func (f *fakeProfiles) GetProfile(ctx context.Context, uid string) (*domain.Profile, error) {
	f.gotUID = uid
	if f.out != nil {
		f.printedBefore = f.out.String()
	}
	return f.profile, f.err
}

// fakePosts implements domain.PostProvider and records how far it was pulled
type fakePosts struct {
	posts   []domain.Post
	err     error
	errAt   int
	pulled  int
	gotName string
	gotPage int
}

func (f *fakePosts) PostsByName(ctx context.Context, name string, pages int) iter.Seq2[domain.Post, error] {
	f.gotName = name
	f.gotPage = pages
	return func(yield func(domain.Post, error) bool) {
		for i, p := range f.posts {
			if f.err != nil && i == f.errAt {
				yield(domain.Post{}, f.err)
				return
			}
			f.pulled++
			if !yield(p, nil) {
				return
			}
		}
		if f.err != nil && f.errAt >= len(f.posts) {
			yield(domain.Post{}, f.err)
		}
	}
}

func samplePosts(n int) []domain.Post {
	posts := make([]domain.Post, n)
	for i := range posts {
		id := string(rune('a' + i))
		posts[i] = domain.Post{ItemID: "item-" + id, Raw: []byte(`{"itemid":"item-` + id + `"}`)}
	}
	return posts
}

func TestGetUsernameReturnsScreenName(t *testing.T) {
	var out bytes.Buffer
	provider := &fakeProfiles{profile: &domain.Profile{ScreenName: "某用户", FollowersCount: 5321}}

	name, err := GetUsername(context.Background(), provider, "6651523309", &out)

	require.NoError(t, err)
	assert.Equal(t, "某用户", name)
	assert.Equal(t, "6651523309", provider.gotUID)
}

func TestGetUsernamePrintsFollowersFirst(t *testing.T) {
	var out bytes.Buffer
	provider := &fakeProfiles{
		profile: &domain.Profile{ScreenName: "someone", FollowersCount: 77},
		out:     &out,
	}

	_, err := GetUsername(context.Background(), provider, "1", &out)

	require.NoError(t, err)
	assert.Empty(t, provider.printedBefore)
	assert.Equal(t, "77\n", out.String())
}

func TestGetUsernameEmptyIdentifier(t *testing.T) {
	provider := &fakeProfiles{}

	_, err := GetUsername(context.Background(), provider, "", io.Discard)

	assert.ErrorIs(t, err, domain.ErrEmptyIdentifier)
	assert.Empty(t, provider.gotUID)
}

func TestGetUsernamePropagatesProviderError(t *testing.T) {
	var out bytes.Buffer
	want := errors.New("boom")
	provider := &fakeProfiles{err: want}

	_, err := GetUsername(context.Background(), provider, "1", &out)

	assert.Same(t, want, err)
	assert.Empty(t, out.String())
}

func TestGetUsernameNilProfile(t *testing.T) {
	_, err := GetUsername(context.Background(), &fakeProfiles{}, "1", io.Discard)
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestScrapeEmptySequence(t *testing.T) {
	var out bytes.Buffer
	corpus := domain.Corpus{}
	provider := &fakePosts{}

	got, err := Scrape(context.Background(), provider, corpus, "someone", &out)

	require.NoError(t, err)
	assert.Empty(t, out.String())
	assert.Empty(t, got)
	assert.Equal(t, "someone", provider.gotName)
	assert.Equal(t, 1, provider.gotPage)
}

func TestScrapeStopsAfterFirstPost(t *testing.T) {
	for _, n := range []int{1, 2, 10} {
		var out bytes.Buffer
		provider := &fakePosts{posts: samplePosts(n)}

		_, err := Scrape(context.Background(), provider, domain.Corpus{}, "someone", &out)

		require.NoError(t, err)
		assert.Equal(t, 1, provider.pulled, "n=%d", n)
		assert.Equal(t, `{"itemid":"item-a"}`+"\n", out.String(), "n=%d", n)
		assert.Equal(t, 1, strings.Count(out.String(), "\n"))
	}
}

func TestScrapeReturnsSameCorpus(t *testing.T) {
	corpus := domain.Corpus{}
	provider := &fakePosts{posts: samplePosts(3)}

	got, err := Scrape(context.Background(), provider, corpus, "someone", io.Discard)

	require.NoError(t, err)
	assert.Equal(t, reflect.ValueOf(corpus).Pointer(), reflect.ValueOf(got).Pointer())
	assert.Empty(t, corpus)
}

func TestScrapeLeavesExistingEntries(t *testing.T) {
	corpus := domain.Corpus{"old": {ItemID: "old"}}
	provider := &fakePosts{posts: samplePosts(2)}

	got, err := Scrape(context.Background(), provider, corpus, "someone", io.Discard)

	require.NoError(t, err)
	assert.Equal(t, domain.Corpus{"old": {ItemID: "old"}}, got)
}

func TestScrapePropagatesSequenceError(t *testing.T) {
	var out bytes.Buffer
	want := errors.New("network down")
	corpus := domain.Corpus{}
	provider := &fakePosts{err: want}

	got, err := Scrape(context.Background(), provider, corpus, "someone", &out)

	assert.Same(t, want, err)
	assert.Empty(t, out.String())
	assert.Equal(t, reflect.ValueOf(corpus).Pointer(), reflect.ValueOf(got).Pointer())
}

func TestScrapeIgnoresErrorPastFirstPost(t *testing.T) {
	provider := &fakePosts{posts: samplePosts(2), err: errors.New("late"), errAt: 1}

	_, err := Scrape(context.Background(), provider, domain.Corpus{}, "someone", io.Discard)

	assert.NoError(t, err)
	assert.Equal(t, 1, provider.pulled)
}
