package medium

import "context"

// postPageQuery mirrors the query the Medium post page itself runs.
const postPageQuery = "query PostPageQuery($postId: ID!) {postResult(id: $postId) {__typename\n ... on Post {id\n creator {id\n name\n username\n __typename}\n mediumUrl\n latestPublishedVersion\n latestPublishedAt\n clapCount\n title\n previewImage{id\n __typename}\n tags{\n id\n __typename}\n wordCount\n __typename}}}"

const clapCountQuery = "query ClapCountQuery($postId: ID!, $includeFirstBoostedAt: Boolean!) {\n  postResult(id: $postId) {\n    __typename\n    ... on Post {\n      id\n      clapCount\n      firstBoostedAt @include(if: $includeFirstBoostedAt)\n      __typename\n    }\n  }\n}\n"

// StoryDetails is the rich metadata for one post.
type StoryDetails struct {
	ID               string
	AuthorName       string
	AuthorUsername   string
	PublishedVersion string
	PublishedAt      int64 // Medium epoch millis
	ClapCount        int
	Title            string
	PreviewImageID   string
	WordCount        int
}

type postPageResponse struct {
	ID      string `json:"id"`
	Creator struct {
		Name     string `json:"name"`
		Username string `json:"username"`
	} `json:"creator"`
	LatestPublishedVersion string `json:"latestPublishedVersion"`
	LatestPublishedAt      int64  `json:"latestPublishedAt"`
	ClapCount              int    `json:"clapCount"`
	Title                  string `json:"title"`
	PreviewImage           struct {
		ID string `json:"id"`
	} `json:"previewImage"`
	WordCount int `json:"wordCount"`
}

type clapCountResponse struct {
	ClapCount int `json:"clapCount"`
}

// StoryDetails fetches the full metadata for one post.
func (c *Client) StoryDetails(ctx context.Context, postID string) (*StoryDetails, error) {
	var resp postPageResponse
	err := c.query(ctx, "PostPageQuery", postPageQuery,
		map[string]any{"postId": postID}, &resp)
	if err != nil {
		return nil, err
	}
	return &StoryDetails{
		ID:               resp.ID,
		AuthorName:       resp.Creator.Name,
		AuthorUsername:   resp.Creator.Username,
		PublishedVersion: resp.LatestPublishedVersion,
		PublishedAt:      resp.LatestPublishedAt,
		ClapCount:        resp.ClapCount,
		Title:            resp.Title,
		PreviewImageID:   resp.PreviewImage.ID,
		WordCount:        resp.WordCount,
	}, nil
}

// ClapCount fetches the current clap count for one post.
func (c *Client) ClapCount(ctx context.Context, postID string) (int, error) {
	var resp clapCountResponse
	err := c.query(ctx, "ClapCountQuery", clapCountQuery, map[string]any{
		"postId":                postID,
		"includeFirstBoostedAt": false,
	}, &resp)
	if err != nil {
		return 0, err
	}
	return resp.ClapCount, nil
}
