// Package update checks the release feed for a newer version. It only
// reports; installing the update is left to the user.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const defaultReleasesURL = "https://api.github.com/repos/git-cai/git-cai/releases/latest"

type Checker struct {
	URL    string
	Client *http.Client
	Logger zerolog.Logger
}

func NewChecker(logger zerolog.Logger) *Checker {
	return &Checker{
		URL:    defaultReleasesURL,
		Client: &http.Client{Timeout: 10 * time.Second},
		Logger: logger,
	}
}

type release struct {
	TagName string `json:"tag_name"`
}

// Check returns the latest published version and whether it is newer than
// current.
func (c *Checker) Check(ctx context.Context, current string) (latest string, newer bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return "", false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("update check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("update check failed with status %d", resp.StatusCode)
	}

	var rel release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return "", false, fmt.Errorf("failed to decode release info: %w", err)
	}
	if rel.TagName == "" {
		return "", false, fmt.Errorf("release feed returned no version tag")
	}

	latest = NumericVersion(rel.TagName)
	newer = CompareVersions(latest, NumericVersion(current)) > 0
	c.Logger.Debug().Str("latest", latest).Str("current", current).Bool("newer", newer).Msg("update check complete")
	return latest, newer, nil
}

// NumericVersion strips a leading v and any pre-release suffix, leaving the
// dotted numeric part ("v1.4.0-rc1" -> "1.4.0").
func NumericVersion(v string) string {
	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	for i, r := range v {
		if (r < '0' || r > '9') && r != '.' {
			return v[:i]
		}
	}
	return v
}

// CompareVersions compares dotted numeric versions: -1, 0, or 1.
func CompareVersions(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) || i < len(bs); i++ {
		var an, bn int
		if i < len(as) {
			an, _ = strconv.Atoi(as[i])
		}
		if i < len(bs) {
			bn, _ = strconv.Atoi(bs[i])
		}
		if an != bn {
			if an < bn {
				return -1
			}
			return 1
		}
	}
	return 0
}
