package store

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"
)

// alertIDPrefix marks every alert id so ids stay readable in event metadata
// and `alert rm` arguments.
const alertIDPrefix = "alert"

// newAlertID returns alert_<unix_nano>_<12 hex>. The random suffix keeps ids
// from two alerts created in the same nanosecond (watcher plus CLI sharing a
// database) apart; without entropy the timestamp alone is used.
func newAlertID() string {
	id := alertIDPrefix + "_" + strconv.FormatInt(time.Now().UnixNano(), 10)

	var suffix [6]byte
	if _, err := rand.Read(suffix[:]); err != nil {
		return id
	}
	return id + "_" + hex.EncodeToString(suffix[:])
}
