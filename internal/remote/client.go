// Package remote implements the authenticated Reddit capability used by the
// removal engine. Every call goes through a shared token-bucket limiter so
// worker goroutines cannot burst past the API's allowance.
package remote

import (
	"context"
	"fmt"
	"time"

	"github.com/loganintech/go-reddit/v2/reddit"
	"golang.org/x/time/rate"

	"github.com/qepting91/reddit-scrubber/internal/domain"
)

// Client wraps an authenticated go-reddit client as a domain.Capability.
type Client struct {
	client   *reddit.Client
	limiter  *rate.Limiter
	username string
}

// pageSize is the listing page size; Reddit caps pages at 100.
const pageSize = 100

// NewClient authenticates against Reddit with script-app credentials.
func NewClient(id, secret, username, password, userAgent string) (*Client, error) {
	creds := reddit.Credentials{ID: id, Secret: secret, Username: username, Password: password}

	client, err := reddit.NewClient(creds, reddit.WithUserAgent(userAgent))
	if err != nil {
		return nil, fmt.Errorf("reddit client: %w", err)
	}

	// ~60 requests/min with headroom for the OAuth token refresh.
	limiter := rate.NewLimiter(rate.Every(1*time.Second), 1)

	return &Client{client: client, limiter: limiter, username: username}, nil
}

// Username returns the authenticated account name.
func (c *Client) Username() string {
	return c.username
}

func (c *Client) wait(ctx context.Context) error {
	return c.limiter.Wait(ctx)
}

func (c *Client) listOptions(sort domain.Sort, after string) *reddit.ListUserOverviewOptions {
	opts := &reddit.ListUserOverviewOptions{
		ListOptions: reddit.ListOptions{Limit: pageSize, After: after},
		Sort:        string(sort),
	}
	if sort.NeedsTimeFilter() {
		opts.Time = "all"
	}
	return opts
}

// ListComments pages through the account's comments in the given sort order.
func (c *Client) ListComments(ctx context.Context, sort domain.Sort) ([]domain.Item, error) {
	var items []domain.Item
	after := ""
	for {
		if err := c.wait(ctx); err != nil {
			return items, err
		}
		comments, resp, err := c.client.User.Comments(ctx, c.listOptions(sort, after))
		if err != nil {
			return items, mapErr(err)
		}
		for _, cm := range comments {
			items = append(items, commentItem(cm))
		}
		if resp == nil || resp.After == "" || len(comments) == 0 {
			return items, nil
		}
		after = resp.After
	}
}

// ListPosts pages through the account's posts in the given sort order.
func (c *Client) ListPosts(ctx context.Context, sort domain.Sort) ([]domain.Item, error) {
	var items []domain.Item
	after := ""
	for {
		if err := c.wait(ctx); err != nil {
			return items, err
		}
		posts, resp, err := c.client.User.Posts(ctx, c.listOptions(sort, after))
		if err != nil {
			return items, mapErr(err)
		}
		for _, p := range posts {
			items = append(items, postItem(p))
		}
		if resp == nil || resp.After == "" || len(posts) == 0 {
			return items, nil
		}
		after = resp.After
	}
}

// ListSaved returns the account's saved posts and comments in one listing.
func (c *Client) ListSaved(ctx context.Context) ([]domain.Item, error) {
	var items []domain.Item
	after := ""
	for {
		if err := c.wait(ctx); err != nil {
			return items, err
		}
		opts := &reddit.ListUserOverviewOptions{
			ListOptions: reddit.ListOptions{Limit: pageSize, After: after},
		}
		posts, comments, resp, err := c.client.User.Saved(ctx, opts)
		if err != nil {
			return items, mapErr(err)
		}
		for _, p := range posts {
			items = append(items, postItem(p))
		}
		for _, cm := range comments {
			items = append(items, commentItem(cm))
		}
		if resp == nil || resp.After == "" || len(posts)+len(comments) == 0 {
			return items, nil
		}
		after = resp.After
	}
}

func (c *Client) listPostsOnly(ctx context.Context,
	list func(context.Context, *reddit.ListUserOverviewOptions) ([]*reddit.Post, *reddit.Response, error),
) ([]domain.Item, error) {
	var items []domain.Item
	after := ""
	for {
		if err := c.wait(ctx); err != nil {
			return items, err
		}
		opts := &reddit.ListUserOverviewOptions{
			ListOptions: reddit.ListOptions{Limit: pageSize, After: after},
		}
		posts, resp, err := list(ctx, opts)
		if err != nil {
			return items, mapErr(err)
		}
		for _, p := range posts {
			items = append(items, postItem(p))
		}
		if resp == nil || resp.After == "" || len(posts) == 0 {
			return items, nil
		}
		after = resp.After
	}
}

// ListUpvoted returns everything the account has upvoted.
func (c *Client) ListUpvoted(ctx context.Context) ([]domain.Item, error) {
	return c.listPostsOnly(ctx, c.client.User.Upvoted)
}

// ListDownvoted returns everything the account has downvoted.
func (c *Client) ListDownvoted(ctx context.Context) ([]domain.Item, error) {
	return c.listPostsOnly(ctx, c.client.User.Downvoted)
}

// ListHidden returns the account's hidden posts.
func (c *Client) ListHidden(ctx context.Context) ([]domain.Item, error) {
	return c.listPostsOnly(ctx, c.client.User.Hidden)
}

// Edit overwrites the item's text.
func (c *Client) Edit(ctx context.Context, item domain.Item, text string) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	var err error
	if item.Kind == domain.KindPost {
		_, _, err = c.client.Post.Edit(ctx, item.FullID, text)
	} else {
		_, _, err = c.client.Comment.Edit(ctx, item.FullID, text)
	}
	return mapErr(err)
}

// Delete removes the item.
func (c *Client) Delete(ctx context.Context, item domain.Item) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	var err error
	if item.Kind == domain.KindPost {
		_, err = c.client.Post.Delete(ctx, item.FullID)
	} else {
		_, err = c.client.Comment.Delete(ctx, item.FullID)
	}
	return mapErr(err)
}

// Unsave drops the item from the account's saved listing.
func (c *Client) Unsave(ctx context.Context, item domain.Item) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	var err error
	if item.Kind == domain.KindPost {
		_, err = c.client.Post.Unsave(ctx, item.FullID)
	} else {
		_, err = c.client.Comment.Unsave(ctx, item.FullID)
	}
	return mapErr(err)
}

// ClearVote removes the account's vote from the item.
func (c *Client) ClearVote(ctx context.Context, item domain.Item) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	var err error
	if item.Kind == domain.KindPost {
		_, err = c.client.Post.RemoveVote(ctx, item.FullID)
	} else {
		_, err = c.client.Comment.RemoveVote(ctx, item.FullID)
	}
	return mapErr(err)
}

// Unhide makes a hidden post visible again.
func (c *Client) Unhide(ctx context.Context, item domain.Item) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	_, err := c.client.Post.Unhide(ctx, item.FullID)
	return mapErr(err)
}

func commentItem(cm *reddit.Comment) domain.Item {
	it := domain.Item{
		ID:        cm.ID,
		FullID:    cm.FullID,
		Kind:      domain.KindComment,
		Body:      cm.Body,
		Score:     cm.Score,
		Subreddit: cm.SubredditName,
		Editable:  true,
	}
	if cm.Created != nil {
		it.Created = cm.Created.Time
	}
	return it
}

func postItem(p *reddit.Post) domain.Item {
	it := domain.Item{
		ID:        p.ID,
		FullID:    p.FullID,
		Kind:      domain.KindPost,
		Title:     p.Title,
		Body:      p.Body,
		Score:     p.Score,
		Subreddit: p.SubredditName,
		Editable:  p.IsSelfPost,
	}
	if p.Created != nil {
		it.Created = p.Created.Time
	}
	return it
}
