package model

// Stereo modes understood by the playback client.
const (
	StereoOff = "off"
	StereoSBS = "sbs" // side by side
	StereoTB  = "tb"  // top and bottom
)

// Screen projections understood by the playback client.
const (
	ScreenFlat    = "flat"
	ScreenDome    = "dome"   // 180 degrees
	ScreenSphere  = "sphere" // 360 degrees
	ScreenFisheye = "fisheye"
)

// Manifest is the per-video deep-link descriptor.
type Manifest struct {
	ID                 string      `json:"id"`
	Title              string      `json:"title"`
	VideoLength        int64       `json:"videoLength"` // seconds
	Is3D               bool        `json:"is3d"`
	StereoMode         string      `json:"stereoMode"`
	ScreenType         string      `json:"screenType"`
	ThumbnailURL       string      `json:"thumbnailUrl"`
	TimelinePreviewURL string      `json:"timelinePreview,omitempty"`
	TimeStamps         []TimeStamp `json:"timeStamps"`
	Encodings          []Encoding  `json:"encodings"`
}

// TimeStamp is one chapter marker.
type TimeStamp struct {
	TS   int64  `json:"ts"` // seconds from the start
	Name string `json:"name"`
}

// Encoding groups the playable renditions of one codec.
type Encoding struct {
	Name         string        `json:"name"`
	VideoSources []VideoSource `json:"videoSources"`
}

// VideoSource is one signed streaming URL for a concrete rendition.
type VideoSource struct {
	Resolution int    `json:"resolution"`
	URL        string `json:"url"`
}
