// Package config provides the configuration schema and loader for the
// Kavach advisory server.
package config

// LogLevel controls log verbosity for the Kavach server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure for Kavach.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Gemini  GeminiConfig  `yaml:"gemini"`
	Storage StorageConfig `yaml:"storage"`
}

// ServerConfig holds network and logging settings.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on (e.g., ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// GeminiConfig selects the Gemini API key and models for the three
// provider roles.
type GeminiConfig struct {
	// APIKey authenticates against the Gemini API. When empty, the
	// GEMINI_API_KEY environment variable is consulted at startup.
	APIKey string `yaml:"api_key"`

	// AnalysisModel is the quick-scan classification model.
	AnalysisModel string `yaml:"analysis_model"`

	// ThinkingModel is the deep-analysis model.
	ThinkingModel string `yaml:"thinking_model"`

	// ChatModel is the guardian chat model.
	ChatModel string `yaml:"chat_model"`

	// SpeechModel is the text-to-speech model.
	SpeechModel string `yaml:"speech_model"`

	// Voice is the prebuilt speech-synthesis voice name.
	Voice string `yaml:"voice"`
}

// StorageConfig holds persistence settings.
type StorageConfig struct {
	// PrefsDir is the directory of the embedded preference database.
	// When empty, preferences are held in memory only.
	PrefsDir string `yaml:"prefs_dir"`
}
