package config

import (
	"os"
	"strconv"
	"time"
)

// Defaults tuned against the production resume preview pages. The 0.9 scale
// and 5mm margins are empirical; treat them as defaults, not invariants.
const (
	DefaultPort              = "3000"
	DefaultRestartInterval   = 5 * time.Minute
	DefaultLaunchTimeout     = 30 * time.Second
	DefaultLaunchBackoff     = 1 * time.Second
	DefaultNavigationTimeout = 30 * time.Second
	DefaultProtocolTimeout   = 30 * time.Second
	DefaultSettleDelay       = 1 * time.Second
	DefaultPDFScale          = 0.9
	DefaultCookieName        = "isLoggedIn"
	DefaultUserAgent         = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

type Config struct {
	Port string

	// Browser lifecycle.
	ChromePath        string
	RestartInterval   time.Duration
	LaunchTimeout     time.Duration
	LaunchBackoff     time.Duration
	NavigationTimeout time.Duration
	ProtocolTimeout   time.Duration
	SettleDelay       time.Duration

	// PDF output.
	PDFScale float64

	// Credential handoff with the frontend's session check.
	CookieName string
	UserAgent  string

	// Optional JSON file overriding the print selector lists.
	PageStylePath string

	// Optional Postgres DSN for render history; empty disables persistence.
	RendersDatabaseURL string
}

// Load reads configuration from the environment, falling back to the
// documented defaults for anything unset.
func Load() Config {
	return Config{
		Port:               envString("PORT", DefaultPort),
		ChromePath:         os.Getenv("CHROME_PATH"),
		RestartInterval:    envDuration("BROWSER_RESTART_INTERVAL", DefaultRestartInterval),
		LaunchTimeout:      envDuration("BROWSER_LAUNCH_TIMEOUT", DefaultLaunchTimeout),
		LaunchBackoff:      envDuration("BROWSER_LAUNCH_BACKOFF", DefaultLaunchBackoff),
		NavigationTimeout:  envDuration("NAVIGATION_TIMEOUT", DefaultNavigationTimeout),
		ProtocolTimeout:    envDuration("PROTOCOL_TIMEOUT", DefaultProtocolTimeout),
		SettleDelay:        envDuration("SETTLE_DELAY", DefaultSettleDelay),
		PDFScale:           envFloat("PDF_SCALE", DefaultPDFScale),
		CookieName:         envString("SESSION_COOKIE_NAME", DefaultCookieName),
		UserAgent:          envString("BROWSER_USER_AGENT", DefaultUserAgent),
		PageStylePath:      os.Getenv("PAGESTYLE_CONFIG"),
		RendersDatabaseURL: os.Getenv("RENDERS_DATABASE_URL"),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return fallback
	}
	return f
}
