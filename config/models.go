package config

// Config holds the configuration of the application
// Use cmd.NewAppState to create a new instance
type Config struct {
	Encoder       EncoderConfig       `mapstructure:"encoder"`
	Corpus        CorpusConfig        `mapstructure:"corpus"`
	ArtifactStore ArtifactStoreConfig `mapstructure:"artifact_store"`
	Index         IndexConfig         `mapstructure:"index"`
	Server        ServerConfig        `mapstructure:"server"`
	Log           LogConfig           `mapstructure:"log"`
}

// EncoderConfig selects and parameterizes the symptom embedding encoder.
// Service is either "local" (deterministic in-process encoder) or
// "remote" (HTTP embedding service at ServerURL).
type EncoderConfig struct {
	Service    string `mapstructure:"service"`
	Model      string `mapstructure:"model"`
	Dimensions int    `mapstructure:"dimensions"`
	Normalized bool   `mapstructure:"normalized"`
	ServerURL  string `mapstructure:"server_url"`
}

// CorpusConfig points at the directory holding the medical JSON corpora.
type CorpusConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

type ArtifactStoreConfig struct {
	Type  string           `mapstructure:"type"`
	File  FileStoreConfig  `mapstructure:"file"`
	Redis RedisStoreConfig `mapstructure:"redis"`
}

type FileStoreConfig struct {
	Path string `mapstructure:"path"`
}

type RedisStoreConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type IndexConfig struct {
	TopK int `mapstructure:"top_k"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}
