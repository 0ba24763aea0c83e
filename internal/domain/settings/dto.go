// internal/domain/settings/dto.go
package settings

type SaveRequest struct {
	BuildingID *int64         `json:"building_id"`
	Value      map[string]any `json:"value" binding:"required"`
}

// View is a settings read. GlobalFallback marks a building-scoped read that
// was served from the global record; saving such a view creates a new
// building-scoped record instead of updating the global one.
type View struct {
	Record         *Record        `json:"record,omitempty"`
	Value          map[string]any `json:"value"`
	GlobalFallback bool           `json:"global_fallback"`
	UsingDefaults  bool           `json:"using_defaults"`
}
