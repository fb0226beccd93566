// Package notify delivers digest-published events to configured sinks
// (cloud queues or plain HTTP endpoints).
package notify

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	// Supported sink types.
	TypeQueue = "queue"
	TypeHTTP  = "http"

	// Supported queue providers.
	QueueProviderAWSSQS = "aws-sqs"
	QueueProviderAWSSNS = "aws-sns"
	QueueProviderGCP    = "gcp"

	httpDefaultMethod         = "POST"
	httpDefaultTimeoutSeconds = 5
)

// sinksFile represents the structure of the sinks configuration file.
type sinksFile struct {
	Sinks []SinkConfig `json:"sinks" yaml:"sinks"`
}

// SinkConfig is a single sink entry declared in the sinks file.
type SinkConfig struct {
	ID      string           `json:"id" yaml:"id"`
	Type    string           `json:"type" yaml:"type"`
	Enabled *bool            `json:"enabled" yaml:"enabled"`
	Queue   *QueueSinkConfig `json:"queue" yaml:"queue"`
	HTTP    *HTTPSinkConfig  `json:"http" yaml:"http"`
}

// QueueSinkConfig selects a cloud queue provider.
type QueueSinkConfig struct {
	Provider string            `json:"provider" yaml:"provider"`
	SQS      *AWSSQSSinkConfig `json:"sqs" yaml:"sqs"`
	SNS      *AWSSNSSinkConfig `json:"sns" yaml:"sns"`
	GCP      *GCPSinkConfig    `json:"gcp" yaml:"gcp"`
}

// AWSSQSSinkConfig holds AWS SQS specific settings.
type AWSSQSSinkConfig struct {
	QueueURL        string `json:"uri" yaml:"uri"`
	Region          string `json:"region" yaml:"region"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
}

// AWSSNSSinkConfig holds AWS SNS specific settings.
type AWSSNSSinkConfig struct {
	TopicARN        string `json:"topic_arn" yaml:"topic_arn"`
	Region          string `json:"region" yaml:"region"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
}

// GCPSinkConfig holds the minimal Pub/Sub topic settings.
type GCPSinkConfig struct {
	ProjectID       string `json:"project_id" yaml:"project_id"`
	Topic           string `json:"topic" yaml:"topic"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
}

// HTTPSinkConfig holds generic HTTP sink settings.
type HTTPSinkConfig struct {
	URL            string            `json:"url" yaml:"url"`
	Method         string            `json:"method" yaml:"method"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// SinkFile materializes sink definitions loaded from a config file.
type SinkFile struct {
	mu    sync.RWMutex
	sinks []SinkConfig
	idx   map[string]SinkConfig
}

// LoadSinks loads sink definitions from a YAML/JSON file. Environment
// variable references in the file are expanded before decoding so
// credentials can stay out of the file itself.
func LoadSinks(path string) (*SinkFile, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sinks file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sinks file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read sinks file: %w", err)
	}

	expanded := []byte(os.ExpandEnv(string(raw)))

	decoded, err := parseSinksFile(expanded, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(decoded.Sinks) == 0 {
		return nil, errors.New("sinks file contains no sink entries")
	}

	sf := &SinkFile{
		sinks: make([]SinkConfig, len(decoded.Sinks)),
		idx:   make(map[string]SinkConfig, len(decoded.Sinks)),
	}

	for i := range decoded.Sinks {
		cfg := sanitizeSinkConfig(decoded.Sinks[i])
		if err := validateSinkConfig(cfg); err != nil {
			return nil, fmt.Errorf("sinks[%d]: %w", i, err)
		}
		if _, exists := sf.idx[cfg.ID]; exists {
			return nil, fmt.Errorf("duplicate sink id %q", cfg.ID)
		}
		sf.sinks[i] = cfg
		sf.idx[cfg.ID] = cfg
	}

	return sf, nil
}

// parseSinksFile attempts to decode the sinks file content.
func parseSinksFile(data []byte, ext string) (sinksFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var decoded sinksFile
		if err := d.fn(data, &decoded); err == nil {
			return decoded, nil
		}
	}

	return sinksFile{}, errors.New("sinks file format not recognized (expected YAML or JSON)")
}

// sanitizeSinkConfig trims and normalizes the sink config fields.
func sanitizeSinkConfig(cfg SinkConfig) SinkConfig {
	cfg.ID = strings.TrimSpace(cfg.ID)
	cfg.Type = strings.ToLower(strings.TrimSpace(cfg.Type))

	if cfg.Enabled == nil {
		def := true
		cfg.Enabled = &def
	}
	if cfg.Queue != nil {
		qc := *cfg.Queue
		qc.Provider = strings.ToLower(strings.TrimSpace(qc.Provider))
		if qc.SQS != nil {
			s := *qc.SQS
			s.QueueURL = strings.TrimSpace(s.QueueURL)
			s.Region = strings.TrimSpace(s.Region)
			s.AccessKeyID = strings.TrimSpace(s.AccessKeyID)
			s.SecretAccessKey = strings.TrimSpace(s.SecretAccessKey)
			qc.SQS = &s
		}
		if qc.SNS != nil {
			s := *qc.SNS
			s.TopicARN = strings.TrimSpace(s.TopicARN)
			s.Region = strings.TrimSpace(s.Region)
			s.AccessKeyID = strings.TrimSpace(s.AccessKeyID)
			s.SecretAccessKey = strings.TrimSpace(s.SecretAccessKey)
			qc.SNS = &s
		}
		if qc.GCP != nil {
			g := *qc.GCP
			g.ProjectID = strings.TrimSpace(g.ProjectID)
			g.Topic = strings.TrimSpace(g.Topic)
			g.CredentialsFile = strings.TrimSpace(g.CredentialsFile)
			qc.GCP = &g
		}
		cfg.Queue = &qc
	}
	if cfg.HTTP != nil {
		c := *cfg.HTTP
		c.URL = strings.TrimSpace(c.URL)
		c.Method = strings.ToUpper(strings.TrimSpace(c.Method))
		if c.Method == "" {
			c.Method = httpDefaultMethod
		}
		c.Headers = sanitizeHeaders(c.Headers)
		if c.TimeoutSeconds <= 0 {
			c.TimeoutSeconds = httpDefaultTimeoutSeconds
		}
		cfg.HTTP = &c
	}

	return cfg
}

// sanitizeHeaders trims and removes empty headers.
func sanitizeHeaders(headers map[string]string) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		key := strings.TrimSpace(k)
		val := strings.TrimSpace(v)
		if key == "" || val == "" {
			continue
		}
		out[key] = val
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// validateSinkConfig checks that required fields are present.
func validateSinkConfig(cfg SinkConfig) error {
	if cfg.ID == "" {
		return errors.New("id is required")
	}
	if cfg.Type == "" {
		return fmt.Errorf("type is required for sink %q", cfg.ID)
	}
	switch cfg.Type {
	case TypeQueue:
		if cfg.Queue == nil {
			return fmt.Errorf("queue config required for sink %q", cfg.ID)
		}
		switch cfg.Queue.Provider {
		case QueueProviderAWSSQS:
			return validateSQSConfig(cfg.ID, cfg.Queue.SQS)
		case QueueProviderAWSSNS:
			return validateSNSConfig(cfg.ID, cfg.Queue.SNS)
		case QueueProviderGCP:
			return validateGCPConfig(cfg.ID, cfg.Queue.GCP)
		default:
			return fmt.Errorf("queue provider %q not supported for sink %q", cfg.Queue.Provider, cfg.ID)
		}
	case TypeHTTP:
		if cfg.HTTP == nil {
			return fmt.Errorf("http config required for sink %q", cfg.ID)
		}
		if cfg.HTTP.URL == "" {
			return fmt.Errorf("http.url is required for sink %q", cfg.ID)
		}
	default:
		return fmt.Errorf("type %q not supported for sink %q", cfg.Type, cfg.ID)
	}
	return nil
}

func validateSQSConfig(id string, cfg *AWSSQSSinkConfig) error {
	if cfg == nil {
		return fmt.Errorf("sqs config required for sink %q", id)
	}
	if cfg.QueueURL == "" {
		return fmt.Errorf("sqs.uri is required for sink %q", id)
	}
	if cfg.Region == "" {
		return fmt.Errorf("sqs.region is required for sink %q", id)
	}
	if cfg.AccessKeyID == "" {
		return fmt.Errorf("sqs.access_key_id is required for sink %q", id)
	}
	if cfg.SecretAccessKey == "" {
		return fmt.Errorf("sqs.secret_access_key is required for sink %q", id)
	}
	return nil
}

func validateSNSConfig(id string, cfg *AWSSNSSinkConfig) error {
	if cfg == nil {
		return fmt.Errorf("sns config required for sink %q", id)
	}
	if cfg.TopicARN == "" {
		return fmt.Errorf("sns.topic_arn is required for sink %q", id)
	}
	if cfg.Region == "" {
		return fmt.Errorf("sns.region is required for sink %q", id)
	}
	if cfg.AccessKeyID == "" {
		return fmt.Errorf("sns.access_key_id is required for sink %q", id)
	}
	if cfg.SecretAccessKey == "" {
		return fmt.Errorf("sns.secret_access_key is required for sink %q", id)
	}
	return nil
}

func validateGCPConfig(id string, cfg *GCPSinkConfig) error {
	if cfg == nil {
		return fmt.Errorf("gcp config required for sink %q", id)
	}
	if cfg.ProjectID == "" {
		return fmt.Errorf("gcp.project_id is required for sink %q", id)
	}
	if cfg.Topic == "" {
		return fmt.Errorf("gcp.topic is required for sink %q", id)
	}
	return nil
}

// ByID returns the sink config by id.
func (sf *SinkFile) ByID(id string) (SinkConfig, bool) {
	if sf == nil {
		return SinkConfig{}, false
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return SinkConfig{}, false
	}

	sf.mu.RLock()
	defer sf.mu.RUnlock()
	cfg, ok := sf.idx[id]
	return cfg, ok
}

// All returns every configured sink.
func (sf *SinkFile) All() []SinkConfig {
	if sf == nil {
		return nil
	}

	sf.mu.RLock()
	defer sf.mu.RUnlock()

	out := make([]SinkConfig, len(sf.sinks))
	copy(out, sf.sinks)
	return out
}

// Enabled returns the sinks that are enabled.
func (sf *SinkFile) Enabled() []SinkConfig {
	all := sf.All()
	if len(all) == 0 {
		return nil
	}

	out := make([]SinkConfig, 0, len(all))
	for _, cfg := range all {
		if cfg.EnabledValue() {
			out = append(out, cfg)
		}
	}
	return out
}

// EnabledValue returns the enabled flag defaulting to true.
func (cfg SinkConfig) EnabledValue() bool {
	if cfg.Enabled == nil {
		return true
	}
	return *cfg.Enabled
}
