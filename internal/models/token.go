package models

import "github.com/wolfeidau/gasdesk/internal/store"

const (
	// StatusCompleted is the exact, case-sensitive status of a finished order.
	StatusCompleted = "Completed"

	// StatusDisplayPending is shown for tokens without a status.
	StatusDisplayPending = "Pending"
)

// Token is a pickup token issued outside this system. It has no foreign
// keys; it is matched to tenants by BusiRegNo or Email.
type Token struct {
	Key           string
	Token         string
	CreatedAt     int64 // epoch milliseconds
	CylinderType  string
	CylinderCount int
	Status        string
	BusiRegNo     string
	Email         string
	OutletID      string
}

// DisplayToken is the token string, falling back to the storage key for
// records issued without one.
func (t *Token) DisplayToken() string {
	if t.Token == "" {
		return t.Key
	}
	return t.Token
}

// DisplayStatus is the status, or "Pending" when none was recorded.
func (t *Token) DisplayStatus() string {
	if t.Status == "" {
		return StatusDisplayPending
	}
	return t.Status
}

// Document converts the token to its stored shape.
func (t *Token) Document() store.Document {
	return store.Document{
		"token":         t.Token,
		"createdAt":     t.CreatedAt,
		"cylinderType":  t.CylinderType,
		"cylinderCount": t.CylinderCount,
		"status":        t.Status,
		"busiRegNo":     t.BusiRegNo,
		"email":         t.Email,
		"outletId":      t.OutletID,
	}
}

// DecodeToken builds a Token from a stored document. Tokens are produced
// externally so every field is optional, but a present field must have the
// right type.
func DecodeToken(key string, doc store.Document) (*Token, error) {
	r := &reader{doc: doc, collection: CollectionTokens, key: key}

	t := &Token{
		Key:           key,
		Token:         r.optional("token"),
		CreatedAt:     r.integer("createdAt", false),
		CylinderType:  r.optional("cylinderType"),
		CylinderCount: int(r.integer("cylinderCount", false)),
		Status:        r.optional("status"),
		BusiRegNo:     r.optional("busiRegNo"),
		Email:         r.optional("email"),
		OutletID:      r.optional("outletId"),
	}
	if r.err != nil {
		return nil, r.err
	}

	return t, nil
}
