package model

// SceneList is the catalog projection served to the playback client.
type SceneList struct {
	Scenes []Scene `json:"scenes"`
}

// Scene groups the videos of one library.
type Scene struct {
	Name string      `json:"name"`
	List []SceneItem `json:"list"`
}

// SceneItem is one playable video. VideoURL is a deep link to the per-video
// manifest, never a raw storage path.
type SceneItem struct {
	Title        string `json:"title"`
	VideoLength  int64  `json:"videoLength"` // seconds
	ThumbnailURL string `json:"thumbnailUrl"`
	VideoURL     string `json:"video_url"`
}
