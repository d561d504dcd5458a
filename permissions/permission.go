package permissions

import (
	_ "embed"
	"encoding/json"

	"github.com/rs/zerolog/log"
)

//go:embed permissions.json
var permissionsData []byte

// Permission lists the roles allowed on one route pattern. Device routes
// also accept callers authenticated by API key.
type Permission struct {
	Permissions []string `json:"permissions"`
	Path        string   `json:"path"`
	Method      string   `json:"method"`
	Skip        bool     `json:"skip"`
	Device      bool     `json:"device"`
}

type PermissionData struct {
	Endpoints []Permission `json:"endpoints"`
	Skip      bool         `json:"skip"`

	index map[string]Permission
}

func key(path, method string) string {
	return method + " " + path
}

// FindPermissions returns the entry for a chi route pattern, or the zero
// Permission when the route is not listed.
func (r *PermissionData) FindPermissions(path, method string) Permission {
	if r.index == nil {
		r.buildIndex()
	}

	return r.index[key(path, method)]
}

func (r *PermissionData) buildIndex() {
	r.index = make(map[string]Permission, len(r.Endpoints))

	for _, endpoint := range r.Endpoints {
		if _, ok := r.index[key(endpoint.Path, endpoint.Method)]; ok {
			log.Warn().Str("path", endpoint.Path).Str("method", endpoint.Method).Msg("Duplicate permission entry, keeping the first")

			continue
		}

		r.index[key(endpoint.Path, endpoint.Method)] = endpoint
	}
}

func Parse(data []byte) (*PermissionData, error) {
	var permissions PermissionData

	if err := json.Unmarshal(data, &permissions); err != nil {
		return nil, err //nolint:wrapcheck
	}

	permissions.buildIndex()

	return &permissions, nil
}

func Get() *PermissionData {
	permissions, err := Parse(permissionsData)
	if err != nil {
		log.Err(err).Msg("Failed to decode embedded permissions")

		return nil
	}

	log.Info().Int("endpoints", len(permissions.Endpoints)).Msg("Successfully loaded embedded permissions")

	return permissions
}
