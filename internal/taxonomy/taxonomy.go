package taxonomy

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/careerkit/cvmatch/internal/similarity"
)

// Taxonomy is the closed set of job roles the resume is ranked against.
// It is loaded once at startup and never mutated afterwards, so handlers
// may read it without locking.
type Taxonomy struct {
	roles     []similarity.RoleEntry
	dimension int
}

type taxonomyFile struct {
	Model string                 `json:"model"`
	Roles []similarity.RoleEntry `json:"roles"`
}

// Load reads a role taxonomy file produced by the embed-roles command and
// validates it. Any inconsistency is a deployment error: the caller must
// treat a non-nil error as fatal and refuse to start.
func Load(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy: %w", err)
	}
	var file taxonomyFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode taxonomy: %w", err)
	}
	return New(file.Roles)
}

// New validates the role entries and builds an immutable taxonomy.
func New(roles []similarity.RoleEntry) (*Taxonomy, error) {
	if len(roles) == 0 {
		return nil, fmt.Errorf("taxonomy has no roles")
	}
	dim := len(roles[0].Embedding)
	if dim == 0 {
		return nil, fmt.Errorf("taxonomy role %q has empty embedding", roles[0].Name)
	}
	seen := make(map[string]bool, len(roles))
	for _, role := range roles {
		if role.Name == "" {
			return nil, fmt.Errorf("taxonomy contains role with empty name")
		}
		if seen[role.Name] {
			return nil, fmt.Errorf("taxonomy role %q declared twice", role.Name)
		}
		seen[role.Name] = true
		if len(role.Embedding) != dim {
			return nil, fmt.Errorf("taxonomy role %q dimension %d does not match %d", role.Name, len(role.Embedding), dim)
		}
	}
	copied := make([]similarity.RoleEntry, len(roles))
	copy(copied, roles)
	return &Taxonomy{roles: copied, dimension: dim}, nil
}

// Roles returns the entries in declaration order.
func (t *Taxonomy) Roles() []similarity.RoleEntry {
	return t.roles
}

// Names returns the role names in declaration order.
func (t *Taxonomy) Names() []string {
	names := make([]string, 0, len(t.roles))
	for _, role := range t.roles {
		names = append(names, role.Name)
	}
	return names
}

func (t *Taxonomy) Dimension() int {
	return t.dimension
}

func (t *Taxonomy) Size() int {
	return len(t.roles)
}

// Save writes a taxonomy file. Used by the offline embed-roles command only.
func Save(path, model string, roles []similarity.RoleEntry) error {
	data, err := json.MarshalIndent(taxonomyFile{Model: model, Roles: roles}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode taxonomy: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write taxonomy: %w", err)
	}
	return nil
}
