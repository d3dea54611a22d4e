package crypto

import (
	"crypto/md5"  //nolint:gosec // gravatar protocol requires md5
	"crypto/sha1" //nolint:gosec // token digest format is a 40-char sha1 hex string
	"encoding/hex"
	"strings"
)

// SHA1Hex возвращает hex-encoded SHA1 digest строки.
// Используется для генерации значений API токенов (40 символов).
func SHA1Hex(s string) string {
	sum := sha1.Sum([]byte(s)) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

// EmailHash возвращает md5 hex от нормализованного email (trim + lower case),
// как того требует gravatar
func EmailHash(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	sum := md5.Sum([]byte(normalized)) //nolint:gosec
	return hex.EncodeToString(sum[:])
}
