// Package source reads raw sponsor contributions from the afdian open API or a transaction CSV export.
package source

import (
	"crypto/md5" //nolint:gosec // afdian mandates md5 request signatures
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
)

// Sign computes the afdian open API signature for one request.
// The digest covers token + "params{params}ts{ts}user_id{userID}".
func Sign(token, userID, params string, ts int64) string {
	kv := "params" + params + "ts" + strconv.FormatInt(ts, 10) + "user_id" + userID
	sum := md5.Sum([]byte(token + kv)) //nolint:gosec

	return hex.EncodeToString(sum[:])
}

// pageParams serializes the query parameters exactly as they are signed.
func pageParams(page int) (string, error) {
	data, err := json.Marshal(struct {
		Page int `json:"page"`
	}{Page: page})
	if err != nil {
		return "", fmt.Errorf("failed to marshal params: %w", err)
	}

	return string(data), nil
}
