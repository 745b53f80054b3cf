package util

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

// NewULID returns a monotonic ULID string.
func NewULID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// ArtifactName builds a collision free, time sortable file stem such as
// quiz_20240301T100000_01HQ...
func ArtifactName(prefix string, at time.Time) string {
	return prefix + "_" + at.UTC().Format("20060102T150405") + "_" + strings.ToLower(NewULID())
}
