package feedback

// Bucket is the tone bucket selected from a rating.
type Bucket string

const (
	Positive Bucket = "positive" // rating >= 4
	Neutral  Bucket = "neutral"  // rating == 3
	Negative Bucket = "negative" // rating <= 2
)

// BucketFor maps a rating onto its tone bucket.
// Out-of-range ratings fall into the nearest bucket.
func BucketFor(rating int) Bucket {
	switch {
	case rating >= 4:
		return Positive
	case rating == 3:
		return Neutral
	default:
		return Negative
	}
}
