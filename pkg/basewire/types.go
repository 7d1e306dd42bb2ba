package basewire

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateTimeLayout is the wire format the backend uses for datetime fields.
const DateTimeLayout = "2006-01-02 15:04:05.000Z"

// Record is a single row of a collection. The backend returns records as a
// flat JSON object mixing system fields (id, collectionId, collectionName,
// expand) with schema fields; schema fields land in Data.
type Record struct {
	ID             string
	CollectionID   string
	CollectionName string
	Expand         map[string]json.RawMessage
	Data           map[string]any
}

// systemRecordKeys are lifted out of Data during unmarshaling.
var systemRecordKeys = map[string]bool{
	"id":             true,
	"collectionId":   true,
	"collectionName": true,
	"expand":         true,
}

// UnmarshalJSON implements json.Unmarshaler, splitting system fields from
// schema fields.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage

	err := json.Unmarshal(data, &raw)
	if err != nil {
		return fmt.Errorf("unmarshaling record: %w", err)
	}

	if v, ok := raw["id"]; ok {
		_ = json.Unmarshal(v, &r.ID)
	}

	if v, ok := raw["collectionId"]; ok {
		_ = json.Unmarshal(v, &r.CollectionID)
	}

	if v, ok := raw["collectionName"]; ok {
		_ = json.Unmarshal(v, &r.CollectionName)
	}

	if v, ok := raw["expand"]; ok {
		err = json.Unmarshal(v, &r.Expand)
		if err != nil {
			return fmt.Errorf("unmarshaling record expand: %w", err)
		}
	}

	r.Data = make(map[string]any, len(raw))

	for key, value := range raw {
		if systemRecordKeys[key] {
			continue
		}

		var decoded any

		err = json.Unmarshal(value, &decoded)
		if err != nil {
			return fmt.Errorf("unmarshaling record field %q: %w", key, err)
		}

		r.Data[key] = decoded
	}

	return nil
}

// MarshalJSON implements json.Marshaler, flattening Data back alongside the
// system fields.
func (r Record) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(r.Data)+4)

	for key, value := range r.Data {
		flat[key] = value
	}

	if r.ID != "" {
		flat["id"] = r.ID
	}

	if r.CollectionID != "" {
		flat["collectionId"] = r.CollectionID
	}

	if r.CollectionName != "" {
		flat["collectionName"] = r.CollectionName
	}

	if len(r.Expand) > 0 {
		flat["expand"] = r.Expand
	}

	data, err := json.Marshal(flat)
	if err != nil {
		return nil, fmt.Errorf("marshaling record: %w", err)
	}

	return data, nil
}

// Get returns a schema field value, or nil when absent.
func (r *Record) Get(key string) any {
	if r.Data == nil {
		return nil
	}

	return r.Data[key]
}

// GetString returns a schema field as a string ("" when absent or not a
// string).
func (r *Record) GetString(key string) string {
	s, _ := r.Get(key).(string)

	return s
}

// GetBool returns a schema field as a bool.
func (r *Record) GetBool(key string) bool {
	b, _ := r.Get(key).(bool)

	return b
}

// GetFloat returns a schema field as a float64. JSON numbers decode to
// float64, so this covers numeric fields.
func (r *Record) GetFloat(key string) float64 {
	f, _ := r.Get(key).(float64)

	return f
}

// GetInt returns a schema field truncated to an int.
func (r *Record) GetInt(key string) int {
	return int(r.GetFloat(key))
}

// GetDateTime parses a schema field in the backend's datetime format.
func (r *Record) GetDateTime(key string) (time.Time, error) {
	value := r.GetString(key)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: field %q is not a datetime", ErrDecode, key)
	}

	parsed, err := time.Parse(DateTimeLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: parsing field %q: %w", ErrDecode, key, err)
	}

	return parsed, nil
}

// ListResult is one page of a paginated listing.
type ListResult[T any] struct {
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
	Items      []T `json:"items"`
}

// RecordList is the common page shape for record listings.
type RecordList = ListResult[*Record]

// AuthResponse is returned by the auth endpoints: a signed token plus the
// authenticated record.
type AuthResponse struct {
	Token  string         `json:"token"`
	Record *Record        `json:"record"`
	Meta   map[string]any `json:"meta,omitempty"`
}

// AuthMethodsResponse lists the auth methods enabled for a collection.
type AuthMethodsResponse struct {
	Password PasswordAuthMethod `json:"password"`
	OAuth2   OAuth2AuthMethod   `json:"oauth2"`
	OTP      OTPAuthMethod      `json:"otp"`
	MFA      MFAAuthMethod      `json:"mfa"`
}

// PasswordAuthMethod describes password auth availability.
type PasswordAuthMethod struct {
	Enabled        bool     `json:"enabled"`
	IdentityFields []string `json:"identityFields"`
}

// OAuth2AuthMethod describes OAuth2 auth availability.
type OAuth2AuthMethod struct {
	Enabled   bool             `json:"enabled"`
	Providers []OAuth2Provider `json:"providers"`
}

// OAuth2Provider is a single configured OAuth2 provider.
type OAuth2Provider struct {
	Name                string `json:"name"`
	DisplayName         string `json:"displayName"`
	State               string `json:"state"`
	AuthURL             string `json:"authURL"`
	CodeVerifier        string `json:"codeVerifier"`
	CodeChallenge       string `json:"codeChallenge"`
	CodeChallengeMethod string `json:"codeChallengeMethod"`
}

// OTPAuthMethod describes one-time-password auth availability.
type OTPAuthMethod struct {
	Enabled  bool `json:"enabled"`
	Duration int  `json:"duration"`
}

// MFAAuthMethod describes multi-factor auth availability.
type MFAAuthMethod struct {
	Enabled  bool `json:"enabled"`
	Duration int  `json:"duration"`
}

// OTPResponse is returned by the request-otp endpoint.
type OTPResponse struct {
	OTPID string `json:"otpId"`
}

// Collection describes a collection and its schema.
type Collection struct {
	ID         string            `json:"id,omitempty"`
	Name       string            `json:"name"`
	Type       string            `json:"type,omitempty"`
	System     bool              `json:"system,omitempty"`
	Fields     []CollectionField `json:"fields,omitempty"`
	Indexes    []string          `json:"indexes,omitempty"`
	Created    string            `json:"created,omitempty"`
	Updated    string            `json:"updated,omitempty"`
	ListRule   *string           `json:"listRule,omitempty"`
	ViewRule   *string           `json:"viewRule,omitempty"`
	CreateRule *string           `json:"createRule,omitempty"`
	UpdateRule *string           `json:"updateRule,omitempty"`
	DeleteRule *string           `json:"deleteRule,omitempty"`
}

// CollectionField is a duck-typed schema field: the concrete option set
// depends on the field type, so everything beyond the common keys stays in
// the map.
type CollectionField map[string]any

// Name returns the field's name.
func (f CollectionField) Name() string {
	s, _ := f["name"].(string)

	return s
}

// Type returns the field's type.
func (f CollectionField) Type() string {
	s, _ := f["type"].(string)

	return s
}

// Required reports whether the field is required.
func (f CollectionField) Required() bool {
	b, _ := f["required"].(bool)

	return b
}

// LogEntry is a single request log line.
type LogEntry struct {
	ID      string         `json:"id"`
	Created string         `json:"created"`
	Level   int            `json:"level"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// LogStat is an hourly aggregate of request logs.
type LogStat struct {
	Date  string `json:"date"`
	Total int    `json:"total"`
}

// BackupFileInfo describes a single backup archive.
type BackupFileInfo struct {
	Key      string `json:"key"`
	Size     int64  `json:"size"`
	Modified string `json:"modified"`
}

// CronJob is a registered scheduled job.
type CronJob struct {
	ID         string `json:"id"`
	Expression string `json:"expression"`
}

// HealthResponse is the health-check payload.
type HealthResponse struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// Settings is the application settings payload. The backend's settings
// document is a deep free-form object; callers address sections by key.
type Settings map[string]any
