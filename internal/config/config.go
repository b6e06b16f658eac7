// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/qepting91/reddit-scrubber/internal/domain"
)

const dateLayout = "2006-01-02"

// Config holds the application configuration.
type Config struct {
	Mode         string // "api" or "mock"
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	UserAgent    string
	DataDir      string
	Prefs        domain.Preferences
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Mode:         getenvDefault("SCRUBBER_MODE", "api"),
		ClientID:     os.Getenv("REDDIT_CLIENT_ID"),
		ClientSecret: os.Getenv("REDDIT_CLIENT_SECRET"),
		Username:     os.Getenv("REDDIT_USERNAME"),
		Password:     os.Getenv("REDDIT_PASSWORD"),
		UserAgent:    os.Getenv("REDDIT_USER_AGENT"),
		DataDir:      getenvDefault("DATA_DIR", "./data"),
	}

	switch cfg.Mode {
	case "api":
		for _, v := range []struct{ name, val string }{
			{"REDDIT_CLIENT_ID", cfg.ClientID},
			{"REDDIT_CLIENT_SECRET", cfg.ClientSecret},
			{"REDDIT_USERNAME", cfg.Username},
			{"REDDIT_PASSWORD", cfg.Password},
		} {
			if v.val == "" {
				return nil, fmt.Errorf("%s is required in api mode", v.name)
			}
		}
	case "mock":
		if cfg.Username == "" {
			cfg.Username = "mockuser"
		}
	default:
		return nil, fmt.Errorf("unknown SCRUBBER_MODE %q (want api or mock)", cfg.Mode)
	}

	if cfg.UserAgent == "" {
		cfg.UserAgent = fmt.Sprintf("reddit-scrubber/1.0 (by /u/%s)", cfg.Username)
	}

	prefs, err := loadPreferences()
	if err != nil {
		return nil, err
	}
	cfg.Prefs = prefs

	if !cfg.Prefs.AnySelected() {
		return nil, fmt.Errorf("no content categories selected; set at least one SCRUB_* flag")
	}
	if err := cfg.Prefs.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadPreferences() (domain.Preferences, error) {
	var p domain.Preferences
	var err error

	if p.DeleteComments, err = envBool("SCRUB_COMMENTS"); err != nil {
		return p, err
	}
	if p.DeletePosts, err = envBool("SCRUB_POSTS"); err != nil {
		return p, err
	}
	if p.DeleteSaved, err = envBool("SCRUB_SAVED"); err != nil {
		return p, err
	}
	if p.DeleteUpvotes, err = envBool("SCRUB_UPVOTES"); err != nil {
		return p, err
	}
	if p.DeleteDownvotes, err = envBool("SCRUB_DOWNVOTES"); err != nil {
		return p, err
	}
	if p.DeleteHidden, err = envBool("SCRUB_HIDDEN"); err != nil {
		return p, err
	}

	if p.CommentMode, err = envMode("SCRUB_COMMENT_MODE"); err != nil {
		return p, err
	}
	if p.PostMode, err = envMode("SCRUB_POST_MODE"); err != nil {
		return p, err
	}

	if p.CommentKarmaThreshold, err = envIntPtr("SCRUB_COMMENT_KARMA_THRESHOLD"); err != nil {
		return p, err
	}
	if p.PostKarmaThreshold, err = envIntPtr("SCRUB_POST_KARMA_THRESHOLD"); err != nil {
		return p, err
	}

	if p.PreserveGilded, err = envBool("SCRUB_PRESERVE_GILDED"); err != nil {
		return p, err
	}
	if p.PreserveDistinguished, err = envBool("SCRUB_PRESERVE_DISTINGUISHED"); err != nil {
		return p, err
	}

	p.WhitelistSubreddits = envList("SCRUB_WHITELIST")
	p.BlacklistSubreddits = envList("SCRUB_BLACKLIST")

	if p.StartDate, err = envDate("SCRUB_START_DATE"); err != nil {
		return p, err
	}
	if p.EndDate, err = envDate("SCRUB_END_DATE"); err != nil {
		return p, err
	}
	if p.EndDate != nil {
		// The bound is a calendar day; include the whole of it.
		end := p.EndDate.Add(24*time.Hour - time.Nanosecond)
		p.EndDate = &end
	}

	if p.DryRun, err = envBool("SCRUB_DRY_RUN"); err != nil {
		return p, err
	}
	p.CustomText = os.Getenv("SCRUB_CUSTOM_TEXT")

	if p.Advertise, err = envBool("SCRUB_ADVERTISE"); err != nil {
		return p, err
	}
	if raw := os.Getenv("SCRUB_AD_CHANCE"); raw != "" {
		chance, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return p, fmt.Errorf("invalid SCRUB_AD_CHANCE %q: %w", raw, err)
		}
		p.AdChance = chance
	}

	p.ExportDir = os.Getenv("SCRUB_EXPORT_DIR")
	return p, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func envIntPtr(key string) (*int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return &v, nil
}

func envList(key string) []string {
	var out []string
	for _, s := range strings.Split(os.Getenv(key), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func envDate(key string) (*time.Time, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q (want YYYY-MM-DD): %w", key, raw, err)
	}
	return &t, nil
}

func envMode(key string) (domain.EditMode, error) {
	switch raw := os.Getenv(key); raw {
	case "", "edit-then-delete":
		return domain.EditThenDelete, nil
	case "only-edit":
		return domain.EditOnly, nil
	case "delete-without-edit":
		return domain.DeleteOnly, nil
	default:
		return 0, fmt.Errorf("invalid %s %q (want edit-then-delete, only-edit, or delete-without-edit)", key, raw)
	}
}
