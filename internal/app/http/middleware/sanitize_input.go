package middleware

import (
	"bytes"
	"encoding/json"
	"html"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
)

// SanitizeAndCleanInputMiddleware strips markup from every string in a JSON
// body, at any depth. Keys listed in keep (case-insensitive), such as URLs,
// are passed through untouched.
func SanitizeAndCleanInputMiddleware(keep ...string) gin.HandlerFunc {
	skip := make(map[string]bool, len(keep))
	for _, k := range keep {
		skip[strings.ToLower(k)] = true
	}
	policy := bluemonday.StrictPolicy()

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost &&
			c.Request.Method != http.MethodPut &&
			c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}

		buf, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid body"})
			return
		}
		var body interface{}
		if err := json.Unmarshal(buf, &body); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Malformed JSON"})
			return
		}

		newBody, _ := json.Marshal(sanitizeValue(policy, skip, body))
		c.Request.Body = io.NopCloser(bytes.NewBuffer(newBody))
		c.Request.ContentLength = int64(len(newBody))

		c.Next()
	}
}

func sanitizeValue(p *bluemonday.Policy, skip map[string]bool, v interface{}) interface{} {
	switch t := v.(type) {
	case string:
		return html.UnescapeString(p.Sanitize(t))
	case []interface{}:
		for i := range t {
			t[i] = sanitizeValue(p, skip, t[i])
		}
		return t
	case map[string]interface{}:
		for k, inner := range t {
			if skip[strings.ToLower(k)] {
				continue
			}
			t[k] = sanitizeValue(p, skip, inner)
		}
		return t
	default:
		return v
	}
}
