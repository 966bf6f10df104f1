package gcp

import (
	"testing"

	"github.com/hamperhouse/storefront-backend/pkg/config"
)

func TestClientOptions(t *testing.T) {
	if opts := ClientOptions(config.GCPConfig{}); len(opts) != 0 {
		t.Fatalf("expected default credentials, got %d options", len(opts))
	}
	if opts := ClientOptions(config.GCPConfig{ApplicationCredentials: "/tmp/key.json"}); len(opts) != 1 {
		t.Fatalf("expected file credentials option, got %d", len(opts))
	}
	opts := ClientOptions(config.GCPConfig{CredentialsJSON: "{}", ApplicationCredentials: "/tmp/key.json"})
	if len(opts) != 1 {
		t.Fatalf("expected one option, got %d", len(opts))
	}
}
