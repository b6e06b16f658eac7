package remote

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/qepting91/reddit-scrubber/internal/domain"
)

// infoListing mirrors the relevant slice of Reddit's raw listing JSON. The
// typed go-reddit models omit gilding, distinguished status, and removal
// markers, so item resolution decodes the wire format directly.
type infoListing struct {
	Data struct {
		Children []struct {
			Kind string `json:"kind"`
			Data struct {
				ID                string  `json:"id"`
				Name              string  `json:"name"`
				Title             string  `json:"title"`
				SelfText          string  `json:"selftext"`
				Body              string  `json:"body"`
				Score             int     `json:"score"`
				Subreddit         string  `json:"subreddit"`
				Author            string  `json:"author"`
				CreatedUTC        float64 `json:"created_utc"`
				Gilded            int     `json:"gilded"`
				Distinguished     *string `json:"distinguished"`
				IsSelf            bool    `json:"is_self"`
				RemovedByCategory *string `json:"removed_by_category"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Info resolves fresh details for one item by fullname via api/info.
func (c *Client) Info(ctx context.Context, fullID string) (domain.Item, error) {
	if err := c.wait(ctx); err != nil {
		return domain.Item{}, err
	}

	path := "api/info?id=" + url.QueryEscape(fullID)
	req, err := c.client.NewRequest(http.MethodGet, path, nil)
	if err != nil {
		return domain.Item{}, err
	}

	var listing infoListing
	if _, err := c.client.Do(ctx, req, &listing); err != nil {
		return domain.Item{}, mapErr(err)
	}

	if len(listing.Data.Children) == 0 {
		return domain.Item{}, domain.ErrNotFound
	}

	child := listing.Data.Children[0]
	d := child.Data

	it := domain.Item{
		ID:            d.ID,
		FullID:        d.Name,
		Title:         d.Title,
		Score:         d.Score,
		Subreddit:     d.Subreddit,
		Created:       time.Unix(int64(d.CreatedUTC), 0).UTC(),
		Gilded:        d.Gilded > 0,
		Distinguished: d.Distinguished != nil && *d.Distinguished != "",
	}

	if child.Kind == "t3" {
		it.Kind = domain.KindPost
		it.Body = d.SelfText
		it.Editable = d.IsSelf
	} else {
		it.Kind = domain.KindComment
		it.Body = d.Body
		it.Editable = true
	}

	// Moderator removals and author deletions don't always leave the
	// sentinel in the body; normalize so Item.Removed catches them.
	if d.RemovedByCategory != nil && *d.RemovedByCategory != "" {
		it.Body = "[removed]"
	} else if d.Author == "[deleted]" {
		it.Body = "[deleted]"
	}

	return it, nil
}
