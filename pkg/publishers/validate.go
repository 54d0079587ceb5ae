package publishers

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

const defaultHTTPTimeoutSeconds = 5

var knownKinds = map[string]bool{
	KindAnimalListed:      true,
	KindAdoptionRequested: true,
}

// normalize trims every field and fills in defaults. Nested blocks are copied
// so the caller's config is never mutated.
func normalize(cfg PublisherConfig) PublisherConfig {
	cfg.ID = strings.TrimSpace(cfg.ID)
	cfg.Type = strings.ToLower(strings.TrimSpace(cfg.Type))
	cfg.Events = normalizeKinds(cfg.Events)

	if s := cfg.SQS; s != nil {
		cfg.SQS = &SQSPublisherConfig{
			QueueURL:  strings.TrimSpace(s.QueueURL),
			AWSAccess: s.AWSAccess.trimmed(),
		}
	}
	if s := cfg.SNS; s != nil {
		cfg.SNS = &SNSPublisherConfig{
			TopicARN:  strings.TrimSpace(s.TopicARN),
			AWSAccess: s.AWSAccess.trimmed(),
		}
	}
	if g := cfg.GCPPubSub; g != nil {
		cfg.GCPPubSub = &GCPPubSubPublisherConfig{
			ProjectID:       strings.TrimSpace(g.ProjectID),
			Topic:           strings.TrimSpace(g.Topic),
			CredentialsFile: strings.TrimSpace(g.CredentialsFile),
			Ordered:         g.Ordered,
		}
	}
	if h := cfg.HTTP; h != nil {
		out := &HTTPPublisherConfig{
			URL:            strings.TrimSpace(h.URL),
			Method:         strings.ToUpper(strings.TrimSpace(h.Method)),
			Headers:        trimHeaders(h.Headers),
			TimeoutSeconds: h.TimeoutSeconds,
			Secret:         strings.TrimSpace(h.Secret),
		}
		if out.Method == "" {
			out.Method = http.MethodPost
		}
		if out.TimeoutSeconds <= 0 {
			out.TimeoutSeconds = defaultHTTPTimeoutSeconds
		}
		cfg.HTTP = out
	}
	return cfg
}

func normalizeKinds(kinds []string) []string {
	if len(kinds) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(kinds))
	out := make([]string, 0, len(kinds))
	for _, k := range kinds {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

func trimHeaders(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k != "" && v != "" {
			out[k] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// validate reports the first missing or invalid setting of cfg.
func validate(cfg PublisherConfig) error {
	if cfg.ID == "" {
		return errors.New("id is required")
	}
	for _, k := range cfg.Events {
		if !knownKinds[k] {
			return fmt.Errorf("publisher %q: unknown event kind %q", cfg.ID, k)
		}
	}

	var missing []string
	switch cfg.Type {
	case "":
		return fmt.Errorf("publisher %q: type is required", cfg.ID)
	case TypeSQS:
		if cfg.SQS == nil {
			return fmt.Errorf("publisher %q: sqs block is required", cfg.ID)
		}
		missing = missingFields(map[string]string{"sqs.uri": cfg.SQS.QueueURL, "sqs.region": cfg.SQS.Region})
	case TypeSNS:
		if cfg.SNS == nil {
			return fmt.Errorf("publisher %q: sns block is required", cfg.ID)
		}
		missing = missingFields(map[string]string{"sns.topic_arn": cfg.SNS.TopicARN, "sns.region": cfg.SNS.Region})
	case TypeGCPPubSub:
		if cfg.GCPPubSub == nil {
			return fmt.Errorf("publisher %q: gcp_pubsub block is required", cfg.ID)
		}
		missing = missingFields(map[string]string{"gcp_pubsub.project_id": cfg.GCPPubSub.ProjectID, "gcp_pubsub.topic": cfg.GCPPubSub.Topic})
	case TypeHTTP:
		if cfg.HTTP == nil {
			return fmt.Errorf("publisher %q: http block is required", cfg.ID)
		}
		missing = missingFields(map[string]string{"http.url": cfg.HTTP.URL})
	}
	if len(missing) > 0 {
		return fmt.Errorf("publisher %q: missing %s", cfg.ID, strings.Join(missing, ", "))
	}
	return nil
}

// missingFields lists the empty keys of fields in sorted order.
func missingFields(fields map[string]string) []string {
	var out []string
	for k, v := range fields {
		if v == "" {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
