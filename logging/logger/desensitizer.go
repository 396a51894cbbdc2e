package logger

import (
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

const maskValue = "******"

// jwtPattern matches compact JWS tokens embedded in free text.
var jwtPattern = regexp.MustCompile(`\beyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\b`)

// Desensitizer masks sensitive log fields before an entry is written.
type Desensitizer struct {
	fields []string
}

// NewDesensitizer creates a desensitizer matching field names that contain
// any of the given keywords, case-insensitively.
func NewDesensitizer(fields []string) *Desensitizer {
	d := &Desensitizer{fields: make([]string, 0, len(fields))}
	for _, f := range fields {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			d.fields = append(d.fields, f)
		}
	}
	return d
}

// Levels implements logrus.Hook.
func (d *Desensitizer) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire implements logrus.Hook.
func (d *Desensitizer) Fire(entry *logrus.Entry) error {
	entry.Data = d.DesensitizeFields(entry.Data)
	entry.Message = jwtPattern.ReplaceAllString(entry.Message, maskValue)
	return nil
}

// DesensitizeFields returns a copy of fields with sensitive values masked.
func (d *Desensitizer) DesensitizeFields(fields logrus.Fields) logrus.Fields {
	result := make(logrus.Fields, len(fields))
	for key, value := range fields {
		result[key] = d.desensitizeValue(key, value, 0)
	}
	return result
}

func (d *Desensitizer) desensitizeValue(key string, value any, depth int) any {
	if value == nil || depth > 8 {
		return value
	}
	if d.isSensitiveField(key) {
		return maskValue
	}

	switch val := value.(type) {
	case string:
		return jwtPattern.ReplaceAllString(val, maskValue)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, v := range val {
			out[k] = d.desensitizeValue(k, v, depth+1)
		}
		return out
	case map[string]string:
		out := make(map[string]string, len(val))
		for k, v := range val {
			if d.isSensitiveField(k) {
				out[k] = maskValue
				continue
			}
			out[k] = jwtPattern.ReplaceAllString(v, maskValue)
		}
		return out
	default:
		return value
	}
}

// isSensitiveField checks if field name contains sensitive keywords
func (d *Desensitizer) isSensitiveField(fieldName string) bool {
	if fieldName == "" {
		return false
	}
	lowerName := strings.ToLower(fieldName)
	for _, f := range d.fields {
		if strings.Contains(lowerName, f) {
			return true
		}
	}
	return false
}
