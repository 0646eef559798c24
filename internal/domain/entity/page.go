package entity

type Screenshot struct {
	Data   []byte
	Format string
	Width  int
	Height int
}

// MimeType returns the IANA media type of the encoded image.
func (s *Screenshot) MimeType() string {
	if s == nil || s.Format == "" {
		return "image/png"
	}
	return "image/" + s.Format
}
