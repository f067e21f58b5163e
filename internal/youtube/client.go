package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nbx0021/youtube-analytics-pipeline/internal/models"
)

const DefaultBaseURL = "https://www.googleapis.com/youtube/v3"

// Client is a read-only YouTube Data API v3 client authenticated with a
// pre-issued API key. Constructed once per run and shared by reference.
type Client struct {
	APIKey  string
	BaseURL string
	HTTP    *http.Client
	Logger  *log.Logger
}

func NewClient(apiKey string, logger *log.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("youtube: missing API key")
	}
	return &Client{
		APIKey:  apiKey,
		BaseURL: DefaultBaseURL,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
		Logger:  logger,
	}, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	params.Set("key", c.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/"+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", endpoint, err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %d", endpoint, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

// UploadsPlaylistID resolves the channel's uploads playlist. A missing
// channel or an absent playlist field is an error the caller treats as "no
// identifier found", not as a fatal condition.
func (c *Client) UploadsPlaylistID(ctx context.Context, channelID string) (string, error) {
	params := url.Values{}
	params.Set("id", channelID)
	params.Set("part", "contentDetails")

	var res channelsResponse
	if err := c.get(ctx, "channels", params, &res); err != nil {
		return "", err
	}

	if len(res.Items) == 0 {
		return "", fmt.Errorf("channel %s not found", channelID)
	}
	uploads := res.Items[0].ContentDetails.RelatedPlaylists.Uploads
	if uploads == "" {
		return "", fmt.Errorf("channel %s has no uploads playlist", channelID)
	}
	return uploads, nil
}

// PlaylistVideos fetches up to limit most recent items from a playlist.
func (c *Client) PlaylistVideos(ctx context.Context, playlistID string, limit int) ([]models.VideoRecord, error) {
	params := url.Values{}
	params.Set("playlistId", playlistID)
	params.Set("part", "snippet")
	params.Set("maxResults", strconv.Itoa(limit))

	var res playlistItemsResponse
	if err := c.get(ctx, "playlistItems", params, &res); err != nil {
		return nil, err
	}

	videos := make([]models.VideoRecord, 0, len(res.Items))
	for _, item := range res.Items {
		videos = append(videos, models.VideoRecord{
			VideoID:      item.Snippet.ResourceID.VideoID,
			Title:        item.Snippet.Title,
			PublishedAt:  parseTimestamp(item.Snippet.PublishedAt),
			ChannelTitle: item.Snippet.ChannelTitle,
			ThumbnailURL: pickThumbnail(item.Snippet.Thumbnails),
		})
	}
	return videos, nil
}

// ActivityVideos fetches the channel's recent activity feed and keeps only
// upload-type entries, capped at limit. The feed mixes uploads with likes and
// other events, so it over-fetches to have enough qualifying entries.
func (c *Client) ActivityVideos(ctx context.Context, channelID string, limit int) ([]models.VideoRecord, error) {
	params := url.Values{}
	params.Set("channelId", channelID)
	params.Set("part", "snippet,contentDetails")
	params.Set("maxResults", strconv.Itoa(limit+5))

	var res activitiesResponse
	if err := c.get(ctx, "activities", params, &res); err != nil {
		return nil, err
	}

	var videos []models.VideoRecord
	for _, item := range res.Items {
		if item.ContentDetails.Upload == nil {
			continue
		}
		videos = append(videos, models.VideoRecord{
			VideoID:      item.ContentDetails.Upload.VideoID,
			Title:        item.Snippet.Title,
			PublishedAt:  parseTimestamp(item.Snippet.PublishedAt),
			ChannelTitle: item.Snippet.ChannelTitle,
			ThumbnailURL: pickThumbnail(item.Snippet.Thumbnails),
		})
		if len(videos) >= limit {
			break
		}
	}
	return videos, nil
}

// RecentVideos resolves a channel's latest videos with a two-tier strategy:
// uploads playlist first, activities feed as fallback. It errors only when
// both methods yield nothing; the caller logs and skips the channel.
func (c *Client) RecentVideos(ctx context.Context, channelID string, limit int) ([]models.VideoRecord, error) {
	uploadsID, err := c.UploadsPlaylistID(ctx, channelID)
	if err != nil {
		c.Logger.Printf("Channel %s: uploads playlist lookup failed: %v", channelID, err)
	} else {
		videos, err := c.PlaylistVideos(ctx, uploadsID, limit)
		if err != nil {
			c.Logger.Printf("Channel %s: playlist fetch failed: %v", channelID, err)
		} else if len(videos) > 0 {
			return videos, nil
		}
	}

	c.Logger.Printf("Channel %s: switching to activities fallback", channelID)
	videos, err := c.ActivityVideos(ctx, channelID, limit)
	if err != nil {
		return nil, fmt.Errorf("activities fallback for %s: %w", channelID, err)
	}
	if len(videos) == 0 {
		return nil, fmt.Errorf("no videos found for %s via playlist or activities", channelID)
	}
	return videos, nil
}

// VideoStats batch-fetches view/like/comment counts for the given IDs in a
// single call. It never fails: any fetch or decode error yields an empty map
// and the affected videos are dropped downstream as "stats unavailable".
func (c *Client) VideoStats(ctx context.Context, videoIDs []string) map[string]models.StatSnapshot {
	stats := make(map[string]models.StatSnapshot)
	if len(videoIDs) == 0 {
		return stats
	}

	params := url.Values{}
	params.Set("id", strings.Join(videoIDs, ","))
	params.Set("part", "statistics")

	var res videosResponse
	if err := c.get(ctx, "videos", params, &res); err != nil {
		c.Logger.Printf("Stats fetch failed for %d videos: %v", len(videoIDs), err)
		return stats
	}

	for _, item := range res.Items {
		stats[item.ID] = models.StatSnapshot{
			VideoID:  item.ID,
			Views:    parseCount(item.Statistics.ViewCount),
			Likes:    parseCount(item.Statistics.LikeCount),
			Comments: parseCount(item.Statistics.CommentCount),
		}
	}
	return stats
}

// parseCount tolerates missing or malformed counters by defaulting to zero.
func parseCount(s string) uint64 {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// parseTimestamp parses the API's RFC3339 stamps; a malformed stamp yields
// the zero time rather than failing the whole item.
func parseTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
