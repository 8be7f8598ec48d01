package identity

import (
	"strconv"
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Keys must be prefixed by domain so different record kinds never collide.
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// StalenessUUID identifies the staleness record of one translated field.
func StalenessUUID(sourceType string, itemID int64, field, targetLang string) uuid.UUID {
	return UUID("autotranslate:staleness:" + strings.TrimSpace(sourceType) + ":" +
		strconv.FormatInt(itemID, 10) + ":" + strings.TrimSpace(field) + ":" +
		strings.ToLower(strings.TrimSpace(targetLang)))
}

// SettingsUUID identifies a persisted settings row.
func SettingsUUID(scope string) uuid.UUID {
	return UUID("autotranslate:settings:" + strings.ToLower(strings.TrimSpace(scope)))
}
