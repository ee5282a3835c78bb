package collector

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/qepting91/weibo-scraper/internal/domain"
)

// MockClient implements domain.Collector but returns fake data
type MockClient struct {
	postsPerPage int
}

func NewMockClient(postsPerPage int) *MockClient {
	return &MockClient{postsPerPage: postsPerPage}
}

func (mc *MockClient) GetProfile(ctx context.Context, uid string) (*domain.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if uid == "" {
		return nil, domain.ErrProfileNotFound
	}
	return &domain.Profile{
		ID:             uid,
		ScreenName:     "mock_" + uid,
		FollowersCount: 1024,
		FollowCount:    128,
		StatusesCount:  mc.postsPerPage,
		ContainerID:    postsContainerPrefix + uid,
	}, nil
}

func (mc *MockClient) PostsByName(ctx context.Context, name string, pages int) iter.Seq2[domain.Post, error] {
	return func(yield func(domain.Post, error) bool) {
		if name == "" {
			yield(domain.Post{}, domain.ErrAccountNotFound)
			return
		}
		uid := strings.TrimPrefix(name, "mock_")

		for page := 1; page <= pages; page++ {
			for i := 0; i < mc.postsPerPage; i++ {
				if err := ctx.Err(); err != nil {
					yield(domain.Post{}, err)
					return
				}
				id := fmt.Sprintf("%d%03d", page, i)
				p := domain.Post{
					ItemID:   fmt.Sprintf("%s%s_-_%s", postsContainerPrefix, uid, id),
					Scheme:   "https://m.weibo.cn/status/" + id,
					CardType: cardTypePost,
					ID:       id,
					Text:     fmt.Sprintf("[%s] simulated post #%d on page %d", name, i, page),
				}
				if !yield(p, nil) {
					return
				}
			}
		}
	}
}
