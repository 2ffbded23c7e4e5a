package service

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var feedbackPolicy = bluemonday.StrictPolicy()

// sanitizeFeedback strips any HTML from text submitted through public
// review surfaces before it is stored.
func sanitizeFeedback(text string) string {
	return strings.TrimSpace(feedbackPolicy.Sanitize(text))
}
