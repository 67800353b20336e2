package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/conflictmap/tracker/internal/classify"
)

type Config struct {
	// Paths
	DataDir       string
	EventsFile    string
	BackupDir     string
	ConfigFile    string
	FeedsFile     string
	LocationsFile string

	// Search tool
	BirdBin      string
	FetchTimeout time.Duration

	// Fetch caps, low on purpose to stay under the search tool's rate limits
	MaxKeywordSearches int
	TweetsPerSearch    int
	MaxAccounts        int
	TweetsPerAccount   int
	NewsCount          int
	NewsMaxAge         time.Duration

	// Store caps
	MaxEvents int
	MaxNews   int

	// Languages
	Languages   []string
	DefaultLang string

	// Translation
	GeminiAPIKey    string
	TranslateDelay  time.Duration
	MaxTranslations int // 0 = unlimited
	Backfill        bool

	// App
	Debug bool

	// Query configuration, overridable via the JSON config file
	Keywords     []string
	Accounts     []string
	CountryRules []classify.CountryRule
}

// defaultKeywords are the built-in search queries.
var defaultKeywords = []string{
	"israel iran war", "iran israel attack", "us iran strike",
	"以色列 伊朗 战争", "美国 伊朗 打击", "美以 联合 空袭",
	"tel aviv missile", "tehran strike", "persian gulf carrier",

	"saudi attack", "uae strike", "qatar missile", "bahrain base",
	"kuwait threat", "oman airspace",
	"沙特 袭击", "阿联酋 被攻击", "卡塔尔 导弹", "巴林 基地",
	"科威特 威胁", "阿曼 领空",
	"gulf countries statement", "gcc stance",

	"airspace closed", "no-fly zone", "flight ban", "airspace restriction",
	"禁飞", "领空 关闭", "关闭 领空", "空域 封锁",
	"空域 关闭 伊朗", "以色列 禁飞",

	"hormuz blockade", "red sea interception", "persian gulf naval",
	"霍尔木兹 封锁", "红海 拦截", "波斯湾 航母",

	"vessel not allowed", "shipping warning", "maritime alert", "naval warning",
	"strait closed", "waterway closed", "transit banned", "shipping lane closed",
	"船只 禁止", "船舶 警告", "海峡 关闭", "航道 封锁",

	"gulf country attacked", "gcc base strike", "middle east escalation",
	"海湾国家 被袭", "海湾 基地 打击",

	"#IsraelIran", "#USIran", "#GulfWar", "IsraelIranWar",
}

// defaultAccounts are the monitored handles, most authoritative first.
var defaultAccounts = []string{
	"IDF", "IsraelWarRoom", "IsraeliPM",
	"TimesofIsrael", "TOIAlerts", "BarakRavid", "AJENews",
	"TheStudyofWar", "criticalthreats", "UANI",
	"Osinttechnical", "sentdefender", "Osint613", "IntelCrab",
	"UKMTO_Dubai", "IMB_Piracy", "NavalNews", "US5thFleet", "USNavalForcesCEN",
}

// Load builds defaults, applies environment overrides, then merges the
// optional JSON config file.
func Load() (*Config, error) {
	cfg := &Config{
		DataDir:            getEnvOrDefault("DATA_DIR", "data"),
		ConfigFile:         getEnvOrDefault("CONFIG_FILE", "configs/config.json"),
		FeedsFile:          getEnvOrDefault("FEEDS_FILE", "configs/feeds.yaml"),
		LocationsFile:      getEnvOrDefault("LOCATIONS_FILE", "configs/locations.yaml"),
		BirdBin:            getEnvOrDefault("BIRD_BIN", "bird"),
		FetchTimeout:       60 * time.Second,
		MaxKeywordSearches: 5,
		TweetsPerSearch:    5,
		MaxAccounts:        3,
		TweetsPerAccount:   3,
		NewsCount:          20,
		NewsMaxAge:         24 * time.Hour,
		MaxEvents:          getEnvIntOrDefault("MAX_EVENTS", 100),
		MaxNews:            getEnvIntOrDefault("MAX_NEWS", 100),
		Languages:          []string{"zh", "en", "ar"},
		DefaultLang:        "zh",
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		TranslateDelay:     time.Duration(getEnvIntOrDefault("TRANSLATE_DELAY_MS", 1000)) * time.Millisecond,
		MaxTranslations:    getEnvIntOrDefault("MAX_TRANSLATIONS", 0),
		Keywords:           defaultKeywords,
		Accounts:           defaultAccounts,
		CountryRules:       classify.DefaultCountryRules(),
	}

	cfg.EventsFile = getEnvOrDefault("EVENTS_FILE", filepath.Join(cfg.DataDir, "events.json"))
	cfg.BackupDir = getEnvOrDefault("BACKUP_DIR", filepath.Join(cfg.DataDir, "backups"))

	if v := os.Getenv("FETCH_TIMEOUT_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.FetchTimeout = time.Duration(val) * time.Second
		}
	}
	if os.Getenv("TRANSLATE_BACKFILL") == "true" {
		cfg.Backfill = true
	}
	if os.Getenv("DEBUG") == "true" {
		cfg.Debug = true
	}

	if err := cfg.applyFile(cfg.ConfigFile); err != nil {
		return nil, err
	}

	return cfg, cfg.Validate()
}

// fileConfig is the JSON override file shape.
type fileConfig struct {
	Keywords       []string       `json:"keywords"`
	Accounts       []string       `json:"accounts"`
	CountryMapping countryMapping `json:"countryMapping"`
}

// applyFile merges the override file at path. A missing file means built-in
// defaults; a malformed one is an error, not a silent fallback.
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if len(fc.Keywords) > 0 {
		c.Keywords = fc.Keywords
	}
	if len(fc.Accounts) > 0 {
		c.Accounts = fc.Accounts
	}
	if len(fc.CountryMapping) > 0 {
		c.CountryRules = fc.CountryMapping
	}
	return nil
}

// countryMapping decodes a JSON object while preserving key order. Rule
// order decides which country wins when several keywords match, so the
// incidental ordering of a decoded map would not do.
type countryMapping []classify.CountryRule

func (m *countryMapping) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("countryMapping must be a JSON object")
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		keyword, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("countryMapping: unexpected key %v", keyTok)
		}
		var country string
		if err := dec.Decode(&country); err != nil {
			return fmt.Errorf("countryMapping[%q]: %w", keyword, err)
		}
		*m = append(*m, classify.CountryRule{Keyword: keyword, Country: country})
	}

	_, err = dec.Token() // closing brace
	return err
}

func (c *Config) Validate() error {
	if c.MaxEvents <= 0 {
		return fmt.Errorf("MAX_EVENTS must be positive")
	}
	if c.MaxNews <= 0 {
		return fmt.Errorf("MAX_NEWS must be positive")
	}
	if len(c.Languages) == 0 {
		return fmt.Errorf("at least one language is required")
	}
	if c.DefaultLang == "" {
		return fmt.Errorf("default language is required")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
