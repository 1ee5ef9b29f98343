package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv         = "STORYFORGE_CONFIG"
	redditClientIDEnv     = "REDDIT_CLIENT_ID"
	redditClientSecretEnv = "REDDIT_CLIENT_SECRET"
	redditUserAgentEnv    = "REDDIT_USER_AGENT"
	groqAPIKeyEnv         = "GROQ_API_KEY"
	groqBaseURLEnv        = "GROQ_BASE_URL"
	groqModelEnv          = "GROQ_MODEL"
)

// ErrInvalid marks configuration that cannot drive a run.
var ErrInvalid = errors.New("invalid configuration")

// Config holds high-level settings required across the application.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Reddit   RedditConfig   `yaml:"reddit"`
	Groq     GroqConfig     `yaml:"groq"`
	TTS      TTSConfig      `yaml:"tts"`
	Sampler  SamplerConfig  `yaml:"sampler"`
	Assembly AssemblyConfig `yaml:"assembly"`
	Paths    PathsConfig    `yaml:"paths"`
	Storage  StorageConfig  `yaml:"storage"`
}

// LoggingConfig controls console log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// RedditConfig wires the ranked-listing source credentials.
type RedditConfig struct {
	ClientID     string `yaml:"clientId"`
	ClientSecret string `yaml:"clientSecret"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	UserAgent    string `yaml:"userAgent"`
	Strategy     string `yaml:"strategy"`
}

// GroqConfig defines how to contact the OpenAI-compatible completion API.
type GroqConfig struct {
	BaseURL string `yaml:"baseUrl"`
	Model   string `yaml:"model"`
	APIKey  string `yaml:"apiKey"`
}

// TTSConfig describes the speech-synthesis service integration.
type TTSConfig struct {
	ServiceURL     string `yaml:"serviceUrl"`
	LangCode       string `yaml:"langCode"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

// SamplerConfig bounds the story-collection loop.
type SamplerConfig struct {
	TargetCount   int      `yaml:"targetCount"`
	PostsPerQuery int      `yaml:"postsPerQuery"`
	MaxQueries    int      `yaml:"maxQueries"`
	Subreddits    []string `yaml:"subreddits"`
	TimeFilters   []string `yaml:"timeFilters"`
}

// AssemblyConfig fixes the audio parameters of the voiceover stage.
type AssemblyConfig struct {
	SampleRate  int      `yaml:"sampleRate"`
	SpeedFactor float64  `yaml:"speedFactor"`
	Voices      []string `yaml:"voices"`
}

// PathsConfig names the stage checkpoints and artifact directories.
type PathsConfig struct {
	StoryList     string `yaml:"storyList"`
	HookedStories string `yaml:"hookedStories"`
	ExportsDir    string `yaml:"exportsDir"`
	AudioDir      string `yaml:"audioDir"`
}

// StorageConfig enables the optional cross-run seen-story repository.
type StorageConfig struct {
	SQLitePath string `yaml:"sqlitePath"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
// A file named via the environment that cannot be read or parsed is fatal;
// defaults are a fallback for an unset path only, never for a broken file.
func Load() (Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("%w: read %s: %v", ErrInvalid, path, err)
		}

		var fileCfg Config
		if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
			return cfg, fmt.Errorf("%w: parse %s: %v", ErrInvalid, path, err)
		}
		cfg = mergeConfig(cfg, fileCfg)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Validate rejects configurations that cannot produce any artifact.
func (c Config) Validate() error {
	if c.Groq.APIKey == "" {
		return fmt.Errorf("%w: groq api key is required", ErrInvalid)
	}
	if c.Sampler.TargetCount <= 0 {
		return fmt.Errorf("%w: sampler target count must be positive", ErrInvalid)
	}
	if c.Sampler.PostsPerQuery <= 0 {
		return fmt.Errorf("%w: sampler posts per query must be positive", ErrInvalid)
	}
	if c.Sampler.MaxQueries <= 0 {
		return fmt.Errorf("%w: sampler max queries must be positive", ErrInvalid)
	}
	if len(c.Sampler.Subreddits) == 0 || len(c.Sampler.TimeFilters) == 0 {
		return fmt.Errorf("%w: sampler needs at least one subreddit and time filter", ErrInvalid)
	}
	if c.Assembly.SampleRate <= 0 || c.Assembly.SpeedFactor <= 0 {
		return fmt.Errorf("%w: assembly sample rate and speed factor must be positive", ErrInvalid)
	}
	if len(c.Assembly.Voices) == 0 {
		return fmt.Errorf("%w: assembly voice catalog is empty", ErrInvalid)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(redditClientIDEnv); v != "" {
		c.Reddit.ClientID = v
	}

	if v := os.Getenv(redditClientSecretEnv); v != "" {
		c.Reddit.ClientSecret = v
	}

	if v := os.Getenv(redditUserAgentEnv); v != "" {
		c.Reddit.UserAgent = v
	}

	if v := os.Getenv(groqAPIKeyEnv); v != "" {
		c.Groq.APIKey = v
	}

	if v := os.Getenv(groqBaseURLEnv); v != "" {
		c.Groq.BaseURL = v
	}

	if v := os.Getenv(groqModelEnv); v != "" {
		c.Groq.Model = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Reddit.ClientID != "" {
		base.Reddit.ClientID = override.Reddit.ClientID
	}
	if override.Reddit.ClientSecret != "" {
		base.Reddit.ClientSecret = override.Reddit.ClientSecret
	}
	if override.Reddit.Username != "" {
		base.Reddit.Username = override.Reddit.Username
	}
	if override.Reddit.Password != "" {
		base.Reddit.Password = override.Reddit.Password
	}
	if override.Reddit.UserAgent != "" {
		base.Reddit.UserAgent = override.Reddit.UserAgent
	}
	if override.Reddit.Strategy != "" {
		base.Reddit.Strategy = override.Reddit.Strategy
	}

	if override.Groq.BaseURL != "" {
		base.Groq.BaseURL = override.Groq.BaseURL
	}
	if override.Groq.Model != "" {
		base.Groq.Model = override.Groq.Model
	}
	if override.Groq.APIKey != "" {
		base.Groq.APIKey = override.Groq.APIKey
	}

	if override.TTS.ServiceURL != "" {
		base.TTS.ServiceURL = override.TTS.ServiceURL
	}
	if override.TTS.LangCode != "" {
		base.TTS.LangCode = override.TTS.LangCode
	}
	if override.TTS.TimeoutSeconds > 0 {
		base.TTS.TimeoutSeconds = override.TTS.TimeoutSeconds
	}

	if override.Sampler.TargetCount > 0 {
		base.Sampler.TargetCount = override.Sampler.TargetCount
	}
	if override.Sampler.PostsPerQuery > 0 {
		base.Sampler.PostsPerQuery = override.Sampler.PostsPerQuery
	}
	if override.Sampler.MaxQueries > 0 {
		base.Sampler.MaxQueries = override.Sampler.MaxQueries
	}
	if len(override.Sampler.Subreddits) > 0 {
		base.Sampler.Subreddits = override.Sampler.Subreddits
	}
	if len(override.Sampler.TimeFilters) > 0 {
		base.Sampler.TimeFilters = override.Sampler.TimeFilters
	}

	if override.Assembly.SampleRate > 0 {
		base.Assembly.SampleRate = override.Assembly.SampleRate
	}
	if override.Assembly.SpeedFactor > 0 {
		base.Assembly.SpeedFactor = override.Assembly.SpeedFactor
	}
	if len(override.Assembly.Voices) > 0 {
		base.Assembly.Voices = override.Assembly.Voices
	}

	if override.Paths.StoryList != "" {
		base.Paths.StoryList = override.Paths.StoryList
	}
	if override.Paths.HookedStories != "" {
		base.Paths.HookedStories = override.Paths.HookedStories
	}
	if override.Paths.ExportsDir != "" {
		base.Paths.ExportsDir = override.Paths.ExportsDir
	}
	if override.Paths.AudioDir != "" {
		base.Paths.AudioDir = override.Paths.AudioDir
	}

	if override.Storage.SQLitePath != "" {
		base.Storage.SQLitePath = override.Storage.SQLitePath
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Reddit: RedditConfig{
			UserAgent: "storyforge/1.0",
			Strategy:  "",
		},
		Groq: GroqConfig{
			BaseURL: "https://api.groq.com/openai/v1",
			Model:   "llama3-70b-8192",
		},
		TTS: TTSConfig{
			ServiceURL:     "http://localhost:8880",
			LangCode:       "a",
			TimeoutSeconds: 120,
		},
		Sampler: SamplerConfig{
			TargetCount:   5,
			PostsPerQuery: 15,
			MaxQueries:    60,
			Subreddits: []string{
				"TIFU", "AITA", "confessions", "AskReddit",
				"offmychest", "TrueOffMyChest", "AskWomen",
			},
			TimeFilters: []string{"day", "week", "month"},
		},
		Assembly: AssemblyConfig{
			SampleRate:  24000,
			SpeedFactor: 1.1,
			Voices: []string{
				"af_heart", "af_bella", "af_nicole", "af_aoede", "af_kore",
				"af_sarah", "af_nova", "af_sky", "af_alloy", "af_jessica",
				"af_river", "am_michael", "am_fenrir", "am_puck", "am_echo",
				"am_eric", "am_liam", "am_onyx", "am_santa", "am_adam",
				"bf_emma", "bf_isabella", "bf_alice", "bf_lily",
				"bm_george", "bm_fable", "bm_lewis", "bm_daniel",
			},
		},
		Paths: PathsConfig{
			StoryList:     "story_list.json",
			HookedStories: "hooked_stories.json",
			ExportsDir:    "exports",
			AudioDir:      "wavfiles",
		},
		Storage: StorageConfig{SQLitePath: ""},
	}
}
