package registry

import (
	"testing"

	"github.com/pankratov/modelrelay/internal/config"
)

func TestModelTable_ExactResolution(t *testing.T) {
	cfg := config.DefaultConfig()
	table := NewModelTable(cfg)

	for _, m := range defaultAliases(cfg) {
		if got := table.Resolve(m.Alias); got != m.Name {
			t.Errorf("Resolve(%q) = %q, want %q", m.Alias, got, m.Name)
		}
	}
}

func TestModelTable_Heuristics(t *testing.T) {
	cfg := config.DefaultConfig()
	table := NewModelTable(cfg)

	tests := []struct {
		name  string
		model string
		want  string
	}{
		{
			name:  "opus resolves to large tier",
			model: "my-opus-experiment",
			want:  cfg.LargeModel,
		},
		{
			name:  "405 resolves to large tier",
			model: "llama-405b-custom",
			want:  cfg.LargeModel,
		},
		{
			name:  "digit four resolves to large tier",
			model: "mystery-v4-preview",
			want:  cfg.LargeModel,
		},
		{
			name:  "gemini resolves to mid tier",
			model: "unknown-gemini-exp",
			want:  cfg.MidModel,
		},
		{
			name:  "claude resolves to mid tier",
			model: "claude-custom",
			want:  cfg.MidModel,
		},
		{
			name:  "70 resolves to mid tier",
			model: "some-70b-model",
			want:  cfg.MidModel,
		},
		{
			name:  "large tier rule wins over mid tier rule",
			model: "claude-4-custom",
			want:  cfg.LargeModel,
		},
		{
			name:  "upper case is folded before matching",
			model: "MY-OPUS-MODEL",
			want:  cfg.LargeModel,
		},
		{
			name:  "unmatched name falls back to small tier",
			model: "mystery-llm",
			want:  cfg.SmallModel,
		},
		{
			name:  "empty name falls back to small tier",
			model: "",
			want:  cfg.SmallModel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := table.Resolve(tt.model); got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.model, got, tt.want)
			}
		})
	}
}

func TestModelTable_ConfiguredMappingsReplaceDefaults(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Models = []config.ModelMapping{
		{Alias: "house-model", Name: "acme/house-model-v2"},
	}
	table := NewModelTable(cfg)

	if got := table.Resolve("house-model"); got != "acme/house-model-v2" {
		t.Errorf("Resolve(house-model) = %q, want acme/house-model-v2", got)
	}
	// Default aliases are gone; this name now goes through the heuristics.
	if got := table.Resolve("gpt-3.5-turbo"); got != cfg.SmallModel {
		t.Errorf("Resolve(gpt-3.5-turbo) = %q, want small tier %q", got, cfg.SmallModel)
	}

	models := table.Models()
	if len(models) != 1 {
		t.Fatalf("expected 1 model descriptor, got %d", len(models))
	}
	if models[0].ID != "house-model" || models[0].Object != "model" || models[0].OwnedBy != "acme" {
		t.Errorf("unexpected descriptor: %+v", models[0])
	}
	if models[0].Created == 0 {
		t.Error("expected non-zero created timestamp")
	}
}

func TestModelTable_ModelsOrderIsStable(t *testing.T) {
	cfg := config.DefaultConfig()
	table := NewModelTable(cfg)

	models := table.Models()
	defaults := defaultAliases(cfg)
	if len(models) != len(defaults) {
		t.Fatalf("expected %d descriptors, got %d", len(defaults), len(models))
	}
	for i, m := range defaults {
		if models[i].ID != m.Alias {
			t.Errorf("descriptor %d = %q, want %q", i, models[i].ID, m.Alias)
		}
	}
}
