package model

import "time"

// Video mirrors the `videos` table. A video is premium when its
// price is greater than zero; the flag is computed once at creation
// and never re-derived, so later price edits do not change it.
//
// Fields:
//  ID           – primary key identifier.
//  Title        – display title.
//  Description  – long-form description.
//  Price        – unlock price in integer units (0 = free).
//  IsPremium    – price > 0, fixed at creation time.
//  Creator      – display name of the uploader.
//  CreatorID    – identifier of the uploader (user id or email).
//  ThumbnailURL – public CDN URL of the thumbnail image.
//  VideoURL     – public CDN URL of the media file.
//  Views        – playback counter. Stored as an integer and
//                 incremented atomically; rendered as a string in
//                 JSON for compatibility with existing clients.
//  Duration     – playback length in MM:SS, "00:00" when unknown.
//  UploadDate   – human-readable upload date label from the client.
//  CreatedAt    – creation timestamp, drives newest-first ordering.
type Video struct {
	ID           uint64    `json:"id"`                  // videos.id
	Title        string    `json:"title"`               // videos.title
	Description  string    `json:"description"`         // videos.description
	Price        int64     `json:"price"`               // videos.price
	IsPremium    bool      `json:"isPremium"`           // videos.is_premium
	Creator      string    `json:"creator"`             // videos.creator
	CreatorID    string    `json:"creatorId"`           // videos.creator_id
	ThumbnailURL string    `json:"thumbnailUrl"`        // videos.thumbnail_url
	VideoURL     string    `json:"videoUrl"`            // videos.video_url
	Views        uint64    `json:"views,string"`        // videos.views
	Duration     string    `json:"duration"`            // videos.duration (MM:SS)
	UploadDate   string    `json:"uploadDate"`          // videos.upload_date
	CreatedAt    time.Time `json:"createdAt"`           // videos.created_at
}
