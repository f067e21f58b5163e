package youtube

// Wire shapes for the subset of the YouTube Data API v3 the pipeline calls:
// channels.list, playlistItems.list, activities.list and videos.list.

type thumbnail struct {
	URL string `json:"url"`
}

// thumbnails as returned under snippet; resolution keys are fixed by the API.
type thumbnails struct {
	High     *thumbnail `json:"high"`
	Standard *thumbnail `json:"standard"`
	Default  *thumbnail `json:"default"`
}

type channelsResponse struct {
	Items []struct {
		ContentDetails struct {
			RelatedPlaylists struct {
				Uploads string `json:"uploads"`
			} `json:"relatedPlaylists"`
		} `json:"contentDetails"`
	} `json:"items"`
}

type playlistItemsResponse struct {
	Items []struct {
		Snippet struct {
			Title        string     `json:"title"`
			PublishedAt  string     `json:"publishedAt"`
			ChannelTitle string     `json:"channelTitle"`
			Thumbnails   thumbnails `json:"thumbnails"`
			ResourceID   struct {
				VideoID string `json:"videoId"`
			} `json:"resourceId"`
		} `json:"snippet"`
	} `json:"items"`
}

type activitiesResponse struct {
	Items []struct {
		Snippet struct {
			Title        string     `json:"title"`
			PublishedAt  string     `json:"publishedAt"`
			ChannelTitle string     `json:"channelTitle"`
			Thumbnails   thumbnails `json:"thumbnails"`
		} `json:"snippet"`
		ContentDetails struct {
			// Present only for upload-type activities.
			Upload *struct {
				VideoID string `json:"videoId"`
			} `json:"upload"`
		} `json:"contentDetails"`
	} `json:"items"`
}

type videosResponse struct {
	Items []struct {
		ID         string `json:"id"`
		Statistics struct {
			ViewCount    string `json:"viewCount"`
			LikeCount    string `json:"likeCount"`
			CommentCount string `json:"commentCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// pickThumbnail prefers high over standard over default resolution and
// returns "" when the snippet carries no usable thumbnail at all.
func pickThumbnail(t thumbnails) string {
	for _, cand := range []*thumbnail{t.High, t.Standard, t.Default} {
		if cand != nil && cand.URL != "" {
			return cand.URL
		}
	}
	return ""
}
