package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateID 접두사가 붙은 16자리 ID 생성 (prefix-xxxxxxxxxxxxxxxx)
func GenerateID(prefix string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	if prefix != "" {
		return prefix + "-" + id
	}
	return id
}
