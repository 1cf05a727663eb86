// Package youtube is a thin client for the subset of the YouTube Data API v3
// consumed by discovery and snapshotting: channel resolution, upload
// listings, search, and batched video/channel detail lookups.
package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jackdevtech455/youtube-analytics/internal/metrics"
)

const defaultBaseURL = "https://www.googleapis.com/youtube/v3"

// pageSize is the maximum item count the Data API returns per page, and the
// maximum batch size for id-list lookups.
const pageSize = 50

var ErrMissingAPIKey = errors.New("youtube: API key must be set")

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Data API client. The API key is required; a missing
// key is a startup configuration error, not something to discover on the
// first call.
func NewClient(apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/"+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	metrics.Collectors.YouTubeRequests.WithLabelValues(endpoint).Inc()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("youtube: %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("youtube: %s: status %d: %s", endpoint, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

type idListResponse struct {
	Items []struct {
		ID string `json:"id"`
	} `json:"items"`
}

// ResolveChannelID resolves a free-form channel reference to a canonical
// UC... channel ID.
//
// Accepts a canonical UC... id, an @handle, a bare handle, or a channel URL
// (/channel/UC..., /@handle, /c/name). Returns "" when the reference does
// not resolve; that is an empty outcome, not an error.
func (c *Client) ResolveChannelID(ctx context.Context, reference string) (string, error) {
	id, handle := normalizeChannelRef(reference)
	if id != "" {
		return id, nil
	}
	if handle == "" {
		return "", nil
	}

	params := url.Values{}
	params.Set("part", "id")
	params.Set("forHandle", handle)
	params.Set("maxResults", "1")

	var payload idListResponse
	if err := c.get(ctx, "channels", params, &payload); err != nil {
		return "", err
	}
	if len(payload.Items) == 0 {
		return "", nil
	}
	return payload.Items[0].ID, nil
}

// normalizeChannelRef splits a raw channel reference into either a canonical
// id (returned directly) or an @handle that still needs an API lookup.
func normalizeChannelRef(reference string) (id, handle string) {
	raw := strings.TrimSpace(reference)
	if raw == "" {
		return "", ""
	}

	if strings.HasPrefix(raw, "UC") && len(raw) >= 10 {
		return raw, ""
	}

	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		parsed, err := url.Parse(raw)
		if err != nil {
			return "", ""
		}
		path := strings.Trim(parsed.Path, "/")

		if rest, ok := strings.CutPrefix(path, "channel/"); ok {
			possible := strings.SplitN(rest, "/", 2)[0]
			if strings.HasPrefix(possible, "UC") {
				return possible, ""
			}
			// Not a canonical id; fall through and try the last path
			// segment as a handle.
		}

		if strings.HasPrefix(path, "@") {
			raw = strings.SplitN(path, "/", 2)[0]
		} else if path != "" {
			segments := strings.Split(path, "/")
			raw = segments[len(segments)-1]
		} else {
			return "", ""
		}
	}

	if !strings.HasPrefix(raw, "@") {
		raw = "@" + raw
	}
	return "", raw
}

type uploadsPlaylistResponse struct {
	Items []struct {
		ContentDetails struct {
			RelatedPlaylists struct {
				Uploads string `json:"uploads"`
			} `json:"relatedPlaylists"`
		} `json:"contentDetails"`
	} `json:"items"`
}

// UploadsPlaylistID returns the channel's default upload collection ID, or
// "" when the channel does not exist.
func (c *Client) UploadsPlaylistID(ctx context.Context, channelID string) (string, error) {
	params := url.Values{}
	params.Set("part", "contentDetails")
	params.Set("id", channelID)
	params.Set("maxResults", "1")

	var payload uploadsPlaylistResponse
	if err := c.get(ctx, "channels", params, &payload); err != nil {
		return "", err
	}
	if len(payload.Items) == 0 {
		return "", nil
	}
	return payload.Items[0].ContentDetails.RelatedPlaylists.Uploads, nil
}

type playlistItemsResponse struct {
	Items []struct {
		ContentDetails struct {
			VideoID string `json:"videoId"`
		} `json:"contentDetails"`
	} `json:"items"`
	NextPageToken string `json:"nextPageToken"`
}

// ListPlaylistVideoIDs lists video IDs from a playlist, most recent first,
// paging until limit IDs are collected or the playlist is exhausted.
func (c *Client) ListPlaylistVideoIDs(ctx context.Context, playlistID string, limit int) ([]string, error) {
	var collected []string
	pageToken := ""

	for len(collected) < limit {
		params := url.Values{}
		params.Set("part", "contentDetails")
		params.Set("playlistId", playlistID)
		params.Set("maxResults", fmt.Sprint(pageSize))
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		var payload playlistItemsResponse
		if err := c.get(ctx, "playlistItems", params, &payload); err != nil {
			return nil, err
		}

		for _, item := range payload.Items {
			if item.ContentDetails.VideoID == "" {
				continue
			}
			collected = append(collected, item.ContentDetails.VideoID)
			if len(collected) >= limit {
				break
			}
		}

		pageToken = payload.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return collected, nil
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
	} `json:"items"`
	NextPageToken string `json:"nextPageToken"`
}

// SearchVideoIDs searches videos by query, ordered by view count, paging
// until limit IDs are collected or results are exhausted.
func (c *Client) SearchVideoIDs(ctx context.Context, query string, limit int) ([]string, error) {
	var collected []string
	pageToken := ""

	for len(collected) < limit {
		params := url.Values{}
		params.Set("part", "id")
		params.Set("q", query)
		params.Set("type", "video")
		params.Set("order", "viewCount")
		params.Set("maxResults", fmt.Sprint(pageSize))
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		var payload searchResponse
		if err := c.get(ctx, "search", params, &payload); err != nil {
			return nil, err
		}

		for _, item := range payload.Items {
			if item.ID.VideoID == "" {
				continue
			}
			collected = append(collected, item.ID.VideoID)
			if len(collected) >= limit {
				break
			}
		}

		pageToken = payload.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return collected, nil
}

// VideoItem is one entry of a videos.list response. Statistics counts are
// decimal strings in the wire format and may be absent.
type VideoItem struct {
	ID      string `json:"id"`
	Snippet struct {
		Title       string `json:"title"`
		ChannelID   string `json:"channelId"`
		PublishedAt string `json:"publishedAt"`
	} `json:"snippet"`
	ContentDetails struct {
		Duration string `json:"duration"`
	} `json:"contentDetails"`
	Statistics struct {
		ViewCount    string `json:"viewCount"`
		LikeCount    string `json:"likeCount"`
		CommentCount string `json:"commentCount"`
	} `json:"statistics"`
}

type videoListResponse struct {
	Items []VideoItem `json:"items"`
}

// VideoDetails fetches snippet/contentDetails/statistics for up to 50 video
// IDs in one call. Unknown IDs are simply absent from the result.
func (c *Client) VideoDetails(ctx context.Context, videoIDs []string) ([]VideoItem, error) {
	if len(videoIDs) == 0 {
		return nil, nil
	}
	if len(videoIDs) > pageSize {
		videoIDs = videoIDs[:pageSize]
	}

	params := url.Values{}
	params.Set("part", "snippet,contentDetails,statistics")
	params.Set("id", strings.Join(videoIDs, ","))
	params.Set("maxResults", fmt.Sprint(pageSize))

	var payload videoListResponse
	if err := c.get(ctx, "videos", params, &payload); err != nil {
		return nil, err
	}
	return payload.Items, nil
}

// ChannelItem is one entry of a channels.list snippet response.
type ChannelItem struct {
	ID      string `json:"id"`
	Snippet struct {
		Title      string `json:"title"`
		CustomURL  string `json:"customUrl"`
		Thumbnails struct {
			Default struct {
				URL string `json:"url"`
			} `json:"default"`
		} `json:"thumbnails"`
	} `json:"snippet"`
}

type channelListResponse struct {
	Items []ChannelItem `json:"items"`
}

// ChannelsMetadata fetches display metadata for up to 50 channel IDs in one
// call. Unknown IDs are absent from the result.
func (c *Client) ChannelsMetadata(ctx context.Context, channelIDs []string) ([]ChannelItem, error) {
	ids := make([]string, 0, len(channelIDs))
	for _, id := range channelIDs {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > pageSize {
		ids = ids[:pageSize]
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("id", strings.Join(ids, ","))
	params.Set("maxResults", fmt.Sprint(pageSize))

	var payload channelListResponse
	if err := c.get(ctx, "channels", params, &payload); err != nil {
		return nil, err
	}
	return payload.Items, nil
}
