package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	SpeechElevenLabs = "elevenlabs"
)

// DefaultPersona is the narration system prompt. It is a text/template
// rendered with the frame's scene description.
const DefaultPersona = `You are Sir David Attenborough. Narrate the picture as if it is a video of snow and mountains, with these humans ski touring as if it is a nature documentary.
Assume this picture is a video, with this section of the video described as "{{.Description}}".
Make it snarky and funny. Don't repeat yourself. Make it extremely short and succinct.
Don't reference the picture directly. If they do anything remotely interesting, make a big deal about it!`

type Config struct {
	Paths      PathsConfig      `yaml:"paths"`
	LLM        LLMConfig        `yaml:"llm"`
	Narration  NarrationConfig  `yaml:"narration"`
	Fitting    FittingConfig    `yaml:"fitting"`
	Speech     SpeechConfig     `yaml:"speech"`
	Transcript TranscriptConfig `yaml:"transcript"`
	FFmpeg     FFmpegConfig     `yaml:"ffmpeg"`
	Retry      RetryConfig      `yaml:"retry"`
	Logging    LoggingConfig    `yaml:"logging"`
	Watch      WatchConfig      `yaml:"watch"`
}

type PathsConfig struct {
	Video       string `yaml:"video"`
	Description string `yaml:"description"`
	Output      string `yaml:"output"`
}

type LLMConfig struct {
	Provider    string `yaml:"provider"`
	VisionModel string `yaml:"vision_model"`
	TextModel   string `yaml:"text_model"`
	BaseURL     string `yaml:"base_url"`

	OpenAIKey string `yaml:"-"`
	GeminiKey string `yaml:"-"`
}

type NarrationConfig struct {
	Persona     string `yaml:"persona"`
	ImagePrompt string `yaml:"image_prompt"`
	MaxTokens   int    `yaml:"max_tokens"`
}

type FittingConfig struct {
	WordsPerMinute int `yaml:"words_per_minute"`
	MaxTokens      int `yaml:"max_tokens"`
}

type SpeechConfig struct {
	Provider string        `yaml:"provider"`
	BaseURL  string        `yaml:"base_url"`
	ModelID  string        `yaml:"model_id"`
	Timeout  time.Duration `yaml:"timeout"`

	APIKey  string `yaml:"-"`
	VoiceID string `yaml:"-"`
}

type TranscriptConfig struct {
	WrapWidth int  `yaml:"wrap_width"`
	Docx      bool `yaml:"docx"`
}

type FFmpegConfig struct {
	Binary       string `yaml:"binary"`
	Probe        string `yaml:"ffprobe"`
	ImageQuality int    `yaml:"image_quality"`
	AudioQuality int    `yaml:"audio_quality"`
}

type RetryConfig struct {
	ImageReadRetries uint64        `yaml:"image_read_retries"`
	ImageReadDelay   time.Duration `yaml:"image_read_delay"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// Load reads the YAML file at path, overlays credentials from the
// environment and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.ApplyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// ApplyEnv fills credentials from getenv. Keys never live in the YAML file.
func (c *Config) ApplyEnv(getenv func(string) string) {
	c.LLM.OpenAIKey = getenv("OPENAI_API_KEY")
	c.LLM.GeminiKey = getenv("GEMINI_API_KEY")
	c.Speech.APIKey = getenv("ELEVENLABS_API_KEY")
	c.Speech.VoiceID = getenv("ELEVENLABS_VOICE_ID")
}

func (c *Config) Validate() error {
	if c.Paths.Video == "" {
		return fmt.Errorf("paths.video is required")
	}
	if c.Paths.Description == "" {
		return fmt.Errorf("paths.description is required")
	}
	if c.Paths.Output == "" {
		c.Paths.Output = "frames"
	}

	c.LLM.Provider = strings.ToLower(c.LLM.Provider)
	switch c.LLM.Provider {
	case "":
		c.LLM.Provider = ProviderOpenAI
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("llm.provider %q is not supported", c.LLM.Provider)
	}
	if c.LLM.VisionModel == "" {
		c.LLM.VisionModel = c.defaultModel()
	}
	if c.LLM.TextModel == "" {
		c.LLM.TextModel = c.LLM.VisionModel
	}

	if c.Narration.Persona == "" {
		c.Narration.Persona = DefaultPersona
	}
	if c.Narration.ImagePrompt == "" {
		c.Narration.ImagePrompt = "Describe this image"
	}
	if c.Narration.MaxTokens == 0 {
		c.Narration.MaxTokens = 500
	}

	if c.Fitting.WordsPerMinute < 0 {
		return fmt.Errorf("fitting.words_per_minute must be positive")
	}
	if c.Fitting.WordsPerMinute == 0 {
		c.Fitting.WordsPerMinute = 200
	}
	if c.Fitting.MaxTokens == 0 {
		c.Fitting.MaxTokens = 500
	}

	c.Speech.Provider = strings.ToLower(c.Speech.Provider)
	switch c.Speech.Provider {
	case "":
		c.Speech.Provider = SpeechElevenLabs
	case SpeechElevenLabs:
	default:
		return fmt.Errorf("speech.provider %q is not supported", c.Speech.Provider)
	}
	if c.Speech.BaseURL == "" {
		c.Speech.BaseURL = "https://api.elevenlabs.io"
	}
	if c.Speech.ModelID == "" {
		c.Speech.ModelID = "eleven_monolingual_v1"
	}
	if c.Speech.Timeout == 0 {
		c.Speech.Timeout = 2 * time.Minute
	}

	if c.Transcript.WrapWidth == 0 {
		c.Transcript.WrapWidth = 80
	}

	if c.FFmpeg.Binary == "" {
		c.FFmpeg.Binary = "ffmpeg"
	}
	if c.FFmpeg.Probe == "" {
		c.FFmpeg.Probe = "ffprobe"
	}
	if c.FFmpeg.ImageQuality == 0 {
		c.FFmpeg.ImageQuality = 2
	}
	if c.FFmpeg.AudioQuality == 0 {
		c.FFmpeg.AudioQuality = 2
	}

	if c.Retry.ImageReadRetries == 0 {
		c.Retry.ImageReadRetries = 100
	}
	if c.Retry.ImageReadDelay == 0 {
		c.Retry.ImageReadDelay = 100 * time.Millisecond
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}

	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = 500 * time.Millisecond
	}

	return nil
}

// RequireCredentials checks that the keys needed for a full run are present.
func (c *Config) RequireCredentials() error {
	switch c.LLM.Provider {
	case ProviderGemini:
		if c.LLM.GeminiKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required (set it in .env)")
		}
	default:
		if c.LLM.OpenAIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required (set it in .env)")
		}
	}
	if c.Speech.APIKey == "" {
		return fmt.Errorf("ELEVENLABS_API_KEY is required (set it in .env)")
	}
	if c.Speech.VoiceID == "" {
		return fmt.Errorf("ELEVENLABS_VOICE_ID is required (set it in .env)")
	}
	return nil
}

func (c *Config) defaultModel() string {
	if c.LLM.Provider == ProviderGemini {
		return "gemini-2.5-flash"
	}
	return "gpt-4o"
}
