package models

import "github.com/wolfeidau/gasdesk/internal/store"

// StatusPending is the status every request is written with.
const StatusPending = "pending"

// Request is a cylinder pickup ask, one per tenant key. Tenant identity is
// copied inline at submission time.
type Request struct {
	Kind  TenantKind
	Key   string
	Name  string
	Phone string
	Email string

	Outlet        string
	CylinderType  string // "<weight> kg"
	CylinderCount int
	RequestDate   string // YYYY-MM-DD
	Status        string
}

// Document converts the request to its stored shape.
func (r *Request) Document() store.Document {
	return store.Document{
		r.Kind.KeyField():   r.Key,
		r.Kind.nameField():  r.Name,
		r.Kind.phoneField(): r.Phone,
		"email":             r.Email,
		"outlet":            r.Outlet,
		"cylinderType":      r.CylinderType,
		"cylinderCount":     r.CylinderCount,
		"requestDate":       r.RequestDate,
		"status":            r.Status,
	}
}

// DecodeRequest builds a Request from a stored document.
func DecodeRequest(kind TenantKind, key string, doc store.Document) (*Request, error) {
	rd := &reader{doc: doc, collection: kind.RequestCollection(), key: key}

	req := &Request{
		Kind:          kind,
		Key:           key,
		Name:          rd.optional(kind.nameField()),
		Phone:         rd.optional(kind.phoneField()),
		Email:         rd.optional("email"),
		Outlet:        rd.required("outlet"),
		CylinderType:  rd.required("cylinderType"),
		CylinderCount: int(rd.integer("cylinderCount", true)),
		RequestDate:   rd.required("requestDate"),
		Status:        rd.required("status"),
	}
	if rd.err != nil {
		return nil, rd.err
	}

	return req, nil
}
