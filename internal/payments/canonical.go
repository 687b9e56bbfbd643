package payments

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"sort"
	"strings"
)

const upperhex = "0123456789ABCDEF"

// encodeComponent escapes a string the way JavaScript's encodeURIComponent
// does: A-Z a-z 0-9 and - _ . ! ~ * ' ( ) pass through, everything else is
// percent-encoded per UTF-8 byte. The gateway verifies signatures over this
// exact encoding, so stdlib url.QueryEscape (which differs on several
// characters and uses + for space) cannot be used here.
func encodeComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if encodeComponentUnescaped(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&0x0f])
	}
	return b.String()
}

func encodeComponentUnescaped(c byte) bool {
	switch {
	case 'A' <= c && c <= 'Z', 'a' <= c && c <= 'z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}

// canonicalize produces the gateway's canonical query string:
// encode every key, sort the encoded keys ascending, encode every value with
// form-style spaces (%20 becomes +), then join key=value pairs with & without
// re-encoding. The same string is used both for signing and as the final
// query string.
func canonicalize(params map[string]string) string {
	keys := make([]string, 0, len(params))
	values := make(map[string]string, len(params))
	for key, value := range params {
		encoded := encodeComponent(key)
		keys = append(keys, encoded)
		values[encoded] = value
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		value := strings.ReplaceAll(encodeComponent(values[key]), "%20", "+")
		pairs = append(pairs, key+"="+value)
	}
	return strings.Join(pairs, "&")
}

// sign computes hex(HMAC-SHA512(secret, canonical)).
func sign(secret, canonical string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(canonical))
	return hex.EncodeToString(mac.Sum(nil))
}

// signaturesEqual compares two hex signatures in constant time.
func signaturesEqual(a, b string) bool {
	return hmac.Equal([]byte(a), []byte(b))
}
