package api

// Cache-Control header values.
const (
	CacheOneWeek = "public, max-age=604800"
	CacheOneDay  = "public, max-age=86400"
	CacheNoStore = "no-cache"
)

// Form field names posted by the tag popper.
const (
	formTag     = "tag"
	formTagName = "tag-name"
)

// maxFormSize bounds popper submissions.
const maxFormSize = 64 << 10
