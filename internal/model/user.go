package model

import "time"

// User represents an application user record as stored in the
// `users` table. Accounts are created on first successful login:
// either through the Google identity provider (which supplies a
// verified email, display name and avatar) or through the admin
// credential login, which provisions the single reserved
// administrator account. Users carry no password; authentication
// is delegated entirely to the identity provider or to the
// configured admin secret.
//
// Fields:
//  ID             – primary key identifier of the user.
//  Name           – display name from the identity provider.
//  Email          – unique email address.
//  Avatar         – profile picture URL (nullable).
//  UnlockedVideos – identifiers of premium videos the user may watch,
//                   stored in the `unlocked_videos` join table and
//                   loaded alongside the user row.
//  CreatedAt      – timestamp of creation.
type User struct {
	ID             uint64    `json:"id"`               // users.id
	Name           string    `json:"name"`             // users.name
	Email          string    `json:"email"`            // users.email
	Avatar         *string   `json:"avatar,omitempty"` // users.avatar (nullable)
	UnlockedVideos []uint64  `json:"unlockedVideos"`   // unlocked_videos.video_id rows
	CreatedAt      time.Time `json:"createdAt"`        // users.created_at
}

// HasUnlocked reports whether the given video id is a member of the
// user's unlocked set.
func (u *User) HasUnlocked(videoID uint64) bool {
	for _, id := range u.UnlockedVideos {
		if id == videoID {
			return true
		}
	}
	return false
}
