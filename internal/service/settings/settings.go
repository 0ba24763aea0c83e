// internal/service/settings/settings.go
package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"settings-service/internal/domain/settings"
	xerrors "settings-service/internal/pkg/errors"
	"settings-service/internal/pkg/prefcache"

	"go.uber.org/zap"
)

// Store persists settings records per (account, kind, building) scope.
type Store interface {
	FindScoped(ctx context.Context, accountID int64, kind settings.Kind, buildingID *int64) (*settings.Record, error)
	Create(ctx context.Context, rec *settings.Record) error
	Update(ctx context.Context, id int64, value map[string]any) error
}

type Service struct {
	store  Store
	prefs  *prefcache.Cache
	logger *zap.Logger
}

func NewService(store Store, prefs *prefcache.Cache, logger *zap.Logger) *Service {
	return &Service{store: store, prefs: prefs, logger: logger}
}

// Get reads a settings panel. A building-scoped read with no record of its
// own falls back to the global record, flagged GlobalFallback; with no
// record at all the panel's defaults are returned, flagged UsingDefaults.
func (s *Service) Get(ctx context.Context, accountID int64, kind settings.Kind, buildingID *int64) (*settings.View, error) {
	if !validKind(kind) {
		return nil, fmt.Errorf("%w: unknown settings kind %q", xerrors.ErrInvalidInput, kind)
	}

	rec, err := s.store.FindScoped(ctx, accountID, kind, buildingID)
	if err == nil {
		return &settings.View{Record: rec, Value: rec.Value}, nil
	}
	if !xerrors.Is(err, xerrors.ErrNotFound) {
		return nil, err
	}

	if buildingID != nil {
		global, gerr := s.store.FindScoped(ctx, accountID, kind, nil)
		if gerr == nil {
			return &settings.View{Record: global, Value: global.Value, GlobalFallback: true}, nil
		}
		if !xerrors.Is(gerr, xerrors.ErrNotFound) {
			return nil, gerr
		}
	}

	return &settings.View{Value: defaultValue(kind), UsingDefaults: true}, nil
}

// Save writes a settings panel for the exact requested scope. A
// building-scoped save always lands on a building-scoped record: if the
// prior read was served from the global record, a new record is created
// rather than the global one mutated.
func (s *Service) Save(ctx context.Context, accountID int64, kind settings.Kind, req *settings.SaveRequest) (*settings.Record, error) {
	if !validKind(kind) {
		return nil, fmt.Errorf("%w: unknown settings kind %q", xerrors.ErrInvalidInput, kind)
	}
	if err := validateValue(kind, req.Value); err != nil {
		return nil, err
	}

	rec, err := s.store.FindScoped(ctx, accountID, kind, req.BuildingID)
	switch {
	case err == nil:
		if err := s.store.Update(ctx, rec.ID, req.Value); err != nil {
			return nil, err
		}
		rec.Value = req.Value
	case xerrors.Is(err, xerrors.ErrNotFound):
		rec = &settings.Record{
			AccountID: accountID,
			Kind:      kind,
			Value:     req.Value,
		}
		if req.BuildingID != nil {
			rec.BuildingID.Int64 = *req.BuildingID
			rec.BuildingID.Valid = true
		}
		if err := s.store.Create(ctx, rec); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	s.mirrorPreferences(ctx, accountID, kind, req.Value)

	s.logger.Info("settings saved",
		zap.Int64("account_id", accountID),
		zap.String("kind", string(kind)),
		zap.Bool("building_scoped", req.BuildingID != nil),
	)
	return rec, nil
}

// mirrorPreferences pushes display-affecting fields into the preference
// cache so the UI picks them up without a round trip to postgres.
func (s *Service) mirrorPreferences(ctx context.Context, accountID int64, kind settings.Kind, value map[string]any) {
	var fields map[string]string
	switch kind {
	case settings.KindLocalization:
		fields = pickStrings(value, "timezone", "date_format", "time_format")
	case settings.KindLanguage:
		fields = pickStrings(value, "language")
	case settings.KindNotification:
		fields = map[string]string{}
		for _, key := range []string{"email_enabled", "sms_enabled", "push_enabled"} {
			if b, ok := value[key].(bool); ok {
				fields[key] = fmt.Sprintf("%t", b)
			}
		}
	default:
		return
	}
	s.prefs.Mirror(ctx, accountID, fields)
}

func pickStrings(value map[string]any, keys ...string) map[string]string {
	out := map[string]string{}
	for _, key := range keys {
		if v, ok := value[key].(string); ok && v != "" {
			out[key] = v
		}
	}
	return out
}

func validKind(kind settings.Kind) bool {
	switch kind {
	case settings.KindInvoice, settings.KindLocalization, settings.KindNotification, settings.KindLanguage:
		return true
	}
	return false
}

// supportedLanguages are the interface languages the panel offers.
var supportedLanguages = map[string]bool{
	"en": true, "hi": true, "kn": true, "ta": true, "te": true, "mr": true,
}

func validateValue(kind settings.Kind, value map[string]any) error {
	if len(value) == 0 {
		return fmt.Errorf("%w: settings value is empty", xerrors.ErrInvalidInput)
	}

	switch kind {
	case settings.KindInvoice:
		if day, ok := numberField(value, "generation_day"); ok && (day < 1 || day > 28) {
			return fmt.Errorf("%w: generation_day must be between 1 and 28", xerrors.ErrInvalidInput)
		}
		if days, ok := numberField(value, "due_days"); ok && days < 0 {
			return fmt.Errorf("%w: due_days must not be negative", xerrors.ErrInvalidInput)
		}
		if pct, ok := numberField(value, "tax_percent"); ok && (pct < 0 || pct > 100) {
			return fmt.Errorf("%w: tax_percent must be between 0 and 100", xerrors.ErrInvalidInput)
		}
	case settings.KindLocalization:
		if tz, ok := value["timezone"].(string); ok && tz != "" {
			if _, err := time.LoadLocation(tz); err != nil {
				return fmt.Errorf("%w: unknown timezone %q", xerrors.ErrInvalidInput, tz)
			}
		}
	case settings.KindLanguage:
		lang, _ := value["language"].(string)
		if !supportedLanguages[lang] {
			return fmt.Errorf("%w: unsupported language %q", xerrors.ErrInvalidInput, lang)
		}
	}
	return nil
}

// numberField reads a numeric field that may arrive as float64 (JSON) or a
// native integer.
func numberField(value map[string]any, key string) (float64, bool) {
	switch v := value[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// defaultValue renders a panel's default struct as the generic map the
// store and the API speak.
func defaultValue(kind settings.Kind) map[string]any {
	var src any
	switch kind {
	case settings.KindInvoice:
		src = settings.DefaultInvoice
	case settings.KindLocalization:
		src = settings.DefaultLocalization
	case settings.KindNotification:
		src = settings.DefaultNotification
	case settings.KindLanguage:
		src = settings.DefaultLanguage
	default:
		return map[string]any{}
	}

	raw, err := json.Marshal(src)
	if err != nil {
		return map[string]any{}
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]any{}
	}
	return out
}
