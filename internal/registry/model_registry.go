// Package registry maintains the static mapping from client-facing model
// names to upstream provider model names. The table is built once at startup
// from configuration and is immutable afterwards, so it is safe to share
// across concurrent requests without locking.
package registry

import (
	"strings"
	"time"

	"github.com/pankratov/modelrelay/internal/config"
)

// ModelInfo describes a client-facing model in OpenAI-compatible format,
// as returned by the /v1/models endpoint.
type ModelInfo struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}

// ModelTable resolves client-facing model names to provider model names.
// Resolution never fails: unknown names fall back to tier heuristics and
// finally to the small-tier model.
type ModelTable struct {
	aliases map[string]string
	order   []string

	largeModel string
	midModel   string
	smallModel string

	created int64
}

// defaultAliases returns the built-in client-name table used when the
// configuration does not define its own mapping. Tier assignment mirrors
// what clients expect of each family's flagship, mid, and economy models.
func defaultAliases(cfg *config.Config) []config.ModelMapping {
	return []config.ModelMapping{
		{Alias: "gpt-4", Name: cfg.LargeModel},
		{Alias: "gpt-4o", Name: cfg.LargeModel},
		{Alias: "gpt-4-turbo", Name: cfg.LargeModel},
		{Alias: "gpt-4o-mini", Name: cfg.SmallModel},
		{Alias: "gpt-3.5-turbo", Name: cfg.SmallModel},
		{Alias: "claude-3-opus", Name: cfg.LargeModel},
		{Alias: "claude-3-5-sonnet", Name: cfg.MidModel},
		{Alias: "claude-3-haiku", Name: cfg.SmallModel},
		{Alias: "gemini-1.5-pro", Name: cfg.MidModel},
		{Alias: "gemini-1.5-flash", Name: cfg.SmallModel},
	}
}

// NewModelTable builds the model table from the configuration.
//
// Parameters:
//   - cfg: The application configuration
//
// Returns:
//   - *ModelTable: The immutable model table
func NewModelTable(cfg *config.Config) *ModelTable {
	mappings := cfg.Models
	if len(mappings) == 0 {
		mappings = defaultAliases(cfg)
	}

	table := &ModelTable{
		aliases:    make(map[string]string, len(mappings)),
		order:      make([]string, 0, len(mappings)),
		largeModel: cfg.LargeModel,
		midModel:   cfg.MidModel,
		smallModel: cfg.SmallModel,
		created:    time.Now().Unix(),
	}
	for _, m := range mappings {
		if m.Alias == "" || m.Name == "" {
			continue
		}
		if _, exists := table.aliases[m.Alias]; !exists {
			table.order = append(table.order, m.Alias)
		}
		table.aliases[m.Alias] = m.Name
	}
	return table
}

// Resolve maps a client-supplied model name to a provider model name.
// Exact table entries win; otherwise the lower-cased name is matched
// against ordered substring heuristics, first match winning. Unknown names
// resolve to the small-tier model, so resolution always succeeds.
//
// Parameters:
//   - name: The client-supplied model name, possibly empty
//
// Returns:
//   - string: The provider model identifier
func (t *ModelTable) Resolve(name string) string {
	if provider, ok := t.aliases[name]; ok {
		return provider
	}

	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "4"),
		strings.Contains(lower, "opus"),
		strings.Contains(lower, "405"):
		return t.largeModel
	case strings.Contains(lower, "claude"),
		strings.Contains(lower, "gemini"),
		strings.Contains(lower, "70"):
		return t.midModel
	default:
		return t.smallModel
	}
}

// Models returns the table's client-facing names as OpenAI-compatible model
// descriptors, in declaration order.
func (t *ModelTable) Models() []ModelInfo {
	models := make([]ModelInfo, 0, len(t.order))
	for _, alias := range t.order {
		models = append(models, ModelInfo{
			ID:      alias,
			Object:  "model",
			Created: t.created,
			OwnedBy: ownerOf(t.aliases[alias]),
		})
	}
	return models
}

// ownerOf derives the owning organization from a provider model name such
// as "meta/llama-3.1-70b-instruct".
func ownerOf(providerModel string) string {
	if idx := strings.IndexByte(providerModel, '/'); idx > 0 {
		return providerModel[:idx]
	}
	return "upstream"
}
