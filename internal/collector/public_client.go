package collector

import (
	"context"
	"fmt"
	"io"
	"iter"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/qepting91/weibo-scraper/internal/domain"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const (
	indexPath = "/api/container/getIndex"

	searchContainerPrefix = "100103type=3&q="
	postsContainerPrefix  = "107603"

	cardTypePost = 9
)

// PublicClient reads the public m.weibo.cn container API
type PublicClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	baseURL    string
	log        zerolog.Logger
}

func NewPublicClient(baseURL, userAgent string, timeout, interval time.Duration, log zerolog.Logger) (*PublicClient, error) {
	if userAgent == "" {
		return nil, fmt.Errorf("user agent is required for public mode")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	return &PublicClient{
		httpClient: &http.Client{Timeout: timeout},
		// One request per interval, no bursts
		limiter:   rate.NewLimiter(rate.Every(interval), 1),
		userAgent: userAgent,
		baseURL:   strings.TrimRight(baseURL, "/"),
		log:       log,
	}, nil
}

func (pc *PublicClient) GetProfile(ctx context.Context, uid string) (*domain.Profile, error) {
	body, err := pc.getIndex(ctx, url.Values{"type": {"uid"}, "value": {uid}})
	if err != nil {
		return nil, err
	}

	if gjson.GetBytes(body, "ok").Int() != 1 {
		return nil, fmt.Errorf("uid %s: %w", uid, domain.ErrProfileNotFound)
	}
	info := gjson.GetBytes(body, "data.userInfo")
	if !info.Exists() {
		return nil, fmt.Errorf("uid %s: %w", uid, domain.ErrProfileNotFound)
	}

	cid := gjson.GetBytes(body, `data.tabsInfo.tabs.#(tab_type=="weibo").containerid`).String()
	if cid == "" {
		cid = postsContainerPrefix + uid
	}

	return &domain.Profile{
		ID:             info.Get("id").String(),
		ScreenName:     info.Get("screen_name").String(),
		FollowersCount: parseCount(info.Get("followers_count")),
		FollowCount:    parseCount(info.Get("follow_count")),
		StatusesCount:  parseCount(info.Get("statuses_count")),
		Description:    info.Get("description").String(),
		Gender:         info.Get("gender").String(),
		Verified:       info.Get("verified").Bool(),
		ContainerID:    cid,
	}, nil
}

// PostsByName resolves name to an account and yields the post cards of up to
// pages timeline pages. Nothing is requested until the sequence is ranged over.
func (pc *PublicClient) PostsByName(ctx context.Context, name string, pages int) iter.Seq2[domain.Post, error] {
	return func(yield func(domain.Post, error) bool) {
		uid, err := pc.lookupUID(ctx, name)
		if err != nil {
			yield(domain.Post{}, err)
			return
		}
		profile, err := pc.GetProfile(ctx, uid)
		if err != nil {
			yield(domain.Post{}, err)
			return
		}

		for page := 1; page <= pages; page++ {
			posts, err := pc.fetchPage(ctx, profile.ContainerID, page)
			if err != nil {
				yield(domain.Post{}, err)
				return
			}
			if len(posts) == 0 {
				return
			}
			for _, p := range posts {
				if !yield(p, nil) {
					return
				}
			}
		}
	}
}

func (pc *PublicClient) lookupUID(ctx context.Context, name string) (string, error) {
	body, err := pc.getIndex(ctx, url.Values{
		"containerid": {searchContainerPrefix + name},
		"page_type":   {"searchall"},
	})
	if err != nil {
		return "", err
	}

	var uid string
	gjson.GetBytes(body, "data.cards").ForEach(func(_, card gjson.Result) bool {
		card.Get("card_group").ForEach(func(_, item gjson.Result) bool {
			if item.Get("user.screen_name").String() == name {
				uid = item.Get("user.id").String()
				return false
			}
			return true
		})
		return uid == ""
	})

	if uid == "" {
		return "", fmt.Errorf("screen name %q: %w", name, domain.ErrAccountNotFound)
	}
	return uid, nil
}

func (pc *PublicClient) fetchPage(ctx context.Context, containerID string, page int) ([]domain.Post, error) {
	body, err := pc.getIndex(ctx, url.Values{
		"containerid": {containerID},
		"page":        {strconv.Itoa(page)},
	})
	if err != nil {
		return nil, err
	}
	// ok=0 marks a page past the end of the timeline
	if gjson.GetBytes(body, "ok").Int() != 1 {
		return nil, nil
	}

	var posts []domain.Post
	gjson.GetBytes(body, "data.cards").ForEach(func(_, card gjson.Result) bool {
		if card.Get("card_type").Int() == cardTypePost {
			posts = append(posts, postFromCard(card))
		}
		return true
	})

	pc.log.Debug().
		Str("container", containerID).
		Int("page", page).
		Int("posts", len(posts)).
		Msg("fetched timeline page")
	return posts, nil
}

func (pc *PublicClient) getIndex(ctx context.Context, params url.Values) ([]byte, error) {
	if err := pc.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := pc.baseURL + indexPath + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", pc.userAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("MWeibo-Pwa", "1")

	start := time.Now()
	pc.log.Debug().Str("url", endpoint).Msg("sending request")

	resp, err := pc.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weibo request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		pc.log.Warn().
			Str("url", endpoint).
			Int("status", resp.StatusCode).
			Dur("duration", time.Since(start)).
			Msg("weibo request failed")
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read weibo response: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("weibo response is not valid json (status %d)", resp.StatusCode)
	}
	return body, nil
}

func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return domain.ErrAccountNotFound
	case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode == http.StatusTeapot:
		// weibo answers 418 when it throttles a client
		return domain.ErrRateLimited
	default:
		return fmt.Errorf("weibo public access status: %d", resp.StatusCode)
	}
}

func postFromCard(card gjson.Result) domain.Post {
	mblog := card.Get("mblog")
	return domain.Post{
		ItemID:         card.Get("itemid").String(),
		Scheme:         card.Get("scheme").String(),
		CardType:       int(card.Get("card_type").Int()),
		ID:             mblog.Get("id").String(),
		Text:           mblog.Get("text").String(),
		CreatedAt:      mblog.Get("created_at").String(),
		RepostsCount:   parseCount(mblog.Get("reposts_count")),
		CommentsCount:  parseCount(mblog.Get("comments_count")),
		AttitudesCount: parseCount(mblog.Get("attitudes_count")),
		Raw:            []byte(card.Raw),
	}
}

// parseCount reads a counter that weibo sends either as a number or as an
// abbreviated string such as "1.2万" or "100万+".
func parseCount(r gjson.Result) int {
	if r.Type == gjson.Number {
		return int(r.Int())
	}

	s := strings.TrimSuffix(strings.TrimSpace(r.String()), "+")
	mult := 1.0
	switch {
	case strings.HasSuffix(s, "万"):
		mult, s = 1e4, strings.TrimSuffix(s, "万")
	case strings.HasSuffix(s, "亿"):
		mult, s = 1e8, strings.TrimSuffix(s, "亿")
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int(math.Round(f * mult))
}
