package media

import "io"

// Video is a catalog entry as published by the remote catalog endpoint.
type Video struct {
	// ID is the stable identifier of the video.
	ID string `json:"id"`
	// Title is the display title.
	Title string `json:"title"`
	// ThumbnailURL is the poster image URL.
	ThumbnailURL string `json:"thumbnailUrl"`
	// Duration is a display string such as "8:18".
	Duration string `json:"duration"`
	// UploadTime is a display string such as "May 9, 2011".
	UploadTime string `json:"uploadTime"`
	// Views is a display string with the view count.
	Views string `json:"views"`
	// Author is the channel name.
	Author string `json:"author"`
	// Subscriber is a display string with the subscriber count.
	Subscriber string `json:"subscriber"`
	// VideoURL is the remote location of the video file.
	VideoURL string `json:"videoUrl"`
	// Description is free-form text.
	Description string `json:"description"`
	// IsLive marks live streams.
	IsLive bool `json:"isLive"`
}

// FetchVideoResult is an open response body for a video file.
type FetchVideoResult struct {
	// Body is the response body. The caller must close it.
	Body io.ReadCloser
	// TotalBytes is the announced content length, or -1 when unknown.
	TotalBytes int64
}
