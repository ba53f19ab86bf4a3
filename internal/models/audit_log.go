package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	AuditActionLogin         = "login"
	AuditActionLogout        = "logout"
	AuditActionRegister      = "register"
	AuditActionFailedLogin   = "failed_login"
	AuditActionAccountLocked = "account_locked"
	AuditActionTokenRefresh  = "token_refresh"
	AuditActionCreate        = "create"
	AuditActionUpdate        = "update"
	AuditActionDelete        = "delete"
	AuditActionBudgetSet     = "budget_set"
)

// Resource names recorded on audit entries.
const (
	AuditResourceUser     = "user"
	AuditResourceCategory = "category"
	AuditResourceExpense  = "expense"
	AuditResourceBudget   = "budget"
)

var auditActions = map[string]struct{}{
	AuditActionLogin: {}, AuditActionLogout: {}, AuditActionRegister: {},
	AuditActionFailedLogin: {}, AuditActionAccountLocked: {}, AuditActionTokenRefresh: {},
	AuditActionCreate: {}, AuditActionUpdate: {}, AuditActionDelete: {}, AuditActionBudgetSet: {},
}

// AuditLog is one row of a user's activity trail. UserID is nil for failed logins
// against unknown emails.
type AuditLog struct {
	ID         uuid.UUID     `gorm:"type:uuid;primary_key" json:"id"`
	UserID     *uuid.UUID    `gorm:"type:uuid;index" json:"userId,omitempty"`
	Action     string        `gorm:"type:varchar(100);not null;index" json:"action"`
	Resource   string        `gorm:"type:varchar(100);not null" json:"resource"`
	ResourceID string        `gorm:"type:varchar(255)" json:"resourceId,omitempty"`
	IPAddress  string        `gorm:"type:varchar(45)" json:"ipAddress,omitempty"`
	UserAgent  string        `gorm:"type:text" json:"userAgent,omitempty"`
	Metadata   AuditMetadata `gorm:"type:text" json:"metadata,omitempty"`
	CreatedAt  time.Time     `gorm:"not null;index" json:"createdAt"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

func (al *AuditLog) BeforeCreate(*gorm.DB) error {
	if al.ID == uuid.Nil {
		al.ID = uuid.New()
	}
	if al.CreatedAt.IsZero() {
		al.CreatedAt = time.Now()
	}
	return nil
}

// AuditEntry describes one audited action. Client details come from the request context.
type AuditEntry struct {
	UserID     *uuid.UUID
	Action     string
	Resource   string
	ResourceID string
	Metadata   AuditMetadata
}

func (e AuditEntry) Validate() error {
	if _, ok := auditActions[e.Action]; !ok {
		return fmt.Errorf("unknown audit action %q", e.Action)
	}
	if e.Resource == "" {
		return fmt.Errorf("audit action %q has no resource", e.Action)
	}
	return nil
}

// Log builds the row for the entry as seen from the given client.
func (e AuditEntry) Log(ipAddress, userAgent string) *AuditLog {
	return &AuditLog{
		UserID:     e.UserID,
		Action:     e.Action,
		Resource:   e.Resource,
		ResourceID: e.ResourceID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Metadata:   e.Metadata,
	}
}

// AuditMetadata is stored as JSON text so the same column works on postgres and sqlite.
type AuditMetadata map[string]any

func (m AuditMetadata) Value() (driver.Value, error) {
	if len(m) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(map[string]any(m))
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func (m *AuditMetadata) Scan(value any) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into AuditMetadata", value)
	}

	if len(raw) == 0 {
		*m = nil
		return nil
	}
	return json.Unmarshal(raw, (*map[string]any)(m))
}
