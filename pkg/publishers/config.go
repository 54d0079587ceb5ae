package publishers

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Supported sink types.
const (
	TypeSQS       = "sqs"
	TypeSNS       = "sns"
	TypeGCPPubSub = "gcp_pubsub"
	TypeHTTP      = "http"
)

// PublisherConfig is one sink declared in the publishers file.
type PublisherConfig struct {
	ID      string `json:"id" yaml:"id"`
	Type    string `json:"type" yaml:"type"`
	Enabled *bool  `json:"enabled" yaml:"enabled"`
	// Events restricts the sink to these event kinds; empty receives all.
	Events []string `json:"events" yaml:"events"`

	SQS       *SQSPublisherConfig       `json:"sqs" yaml:"sqs"`
	SNS       *SNSPublisherConfig       `json:"sns" yaml:"sns"`
	GCPPubSub *GCPPubSubPublisherConfig `json:"gcp_pubsub" yaml:"gcp_pubsub"`
	HTTP      *HTTPPublisherConfig      `json:"http" yaml:"http"`
}

// SQSPublisherConfig targets an SQS queue. Queues whose URL ends in ".fifo"
// are grouped per shelter and deduplicated by event id.
type SQSPublisherConfig struct {
	QueueURL  string `json:"uri" yaml:"uri"`
	AWSAccess `yaml:",inline"`
}

// SNSPublisherConfig targets an SNS topic. FIFO topics behave like FIFO queues.
type SNSPublisherConfig struct {
	TopicARN  string `json:"topic_arn" yaml:"topic_arn"`
	AWSAccess `yaml:",inline"`
}

// GCPPubSubPublisherConfig targets a Pub/Sub topic.
type GCPPubSubPublisherConfig struct {
	ProjectID       string `json:"project_id" yaml:"project_id"`
	Topic           string `json:"topic" yaml:"topic"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
	// Ordered publishes with the shelter id as ordering key.
	Ordered bool `json:"ordered" yaml:"ordered"`
}

// HTTPPublisherConfig targets a webhook.
type HTTPPublisherConfig struct {
	URL            string            `json:"url" yaml:"url"`
	Method         string            `json:"method" yaml:"method"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
	// Secret signs each body with HMAC-SHA256 (X-Signature-256 header).
	Secret string `json:"secret" yaml:"secret"`
}

// IsEnabled reports the enabled flag, which defaults to true.
func (cfg PublisherConfig) IsEnabled() bool {
	return cfg.Enabled == nil || *cfg.Enabled
}

// Catalog is the validated content of a publishers file.
type Catalog struct {
	entries []PublisherConfig
	byID    map[string]int
}

// Load reads and validates a publishers file (YAML or JSON).
func Load(path string) (*Catalog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("publishers file path is empty")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read publishers file: %w", err)
	}

	var file struct {
		Publishers []PublisherConfig `json:"publishers" yaml:"publishers"`
	}
	if err := decodeFile(raw, filepath.Ext(path), &file); err != nil {
		return nil, err
	}
	if len(file.Publishers) == 0 {
		return nil, errors.New("publishers file declares no publishers")
	}

	c := &Catalog{
		entries: make([]PublisherConfig, 0, len(file.Publishers)),
		byID:    make(map[string]int, len(file.Publishers)),
	}
	for i, entry := range file.Publishers {
		entry = normalize(entry)
		if err := validate(entry); err != nil {
			return nil, fmt.Errorf("publishers[%d]: %w", i, err)
		}
		if _, dup := c.byID[entry.ID]; dup {
			return nil, fmt.Errorf("duplicate publisher id %q", entry.ID)
		}
		c.byID[entry.ID] = len(c.entries)
		c.entries = append(c.entries, entry)
	}
	return c, nil
}

// decodeFile picks the decoder from the extension. YAML also accepts JSON,
// so it is the fallback for unknown extensions.
func decodeFile(raw []byte, ext string, out any) error {
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode json publishers: %w", err)
		}
	default:
		if err := yaml.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode yaml publishers: %w", err)
		}
	}
	return nil
}

// ByID returns the entry with the given id, enabled or not.
func (c *Catalog) ByID(id string) (PublisherConfig, bool) {
	if c == nil {
		return PublisherConfig{}, false
	}
	i, ok := c.byID[strings.TrimSpace(id)]
	if !ok {
		return PublisherConfig{}, false
	}
	return c.entries[i], true
}

// All returns a copy of every entry in file order.
func (c *Catalog) All() []PublisherConfig {
	if c == nil {
		return nil
	}
	return append([]PublisherConfig(nil), c.entries...)
}

// Enabled returns the entries that are switched on.
func (c *Catalog) Enabled() []PublisherConfig {
	var out []PublisherConfig
	for _, entry := range c.All() {
		if entry.IsEnabled() {
			out = append(out, entry)
		}
	}
	return out
}
