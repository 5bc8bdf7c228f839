package domain

// AllowedContentTypes maps sniffed invoice content types to the archive file extension.
var AllowedContentTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}
