package models

import "github.com/wolfeidau/gasdesk/internal/store"

// Outlet is a pickup location. Requests refer to outlets by Name only.
type Outlet struct {
	Key                string
	Name               string
	ManagerName        string
	Phone              string
	Address            string
	RegistrationNumber string
}

// Document converts the outlet to its stored shape.
func (o *Outlet) Document() store.Document {
	return store.Document{
		"outletName":         o.Name,
		"outletManagerName":  o.ManagerName,
		"phoneNumber":        o.Phone,
		"outletAddress":      o.Address,
		"registrationNumber": o.RegistrationNumber,
	}
}

// DecodeOutlet builds an Outlet from a stored document. outletName is the
// only required field.
func DecodeOutlet(key string, doc store.Document) (*Outlet, error) {
	r := &reader{doc: doc, collection: CollectionOutlets, key: key}

	o := &Outlet{
		Key:                key,
		Name:               r.required("outletName"),
		ManagerName:        r.optional("outletManagerName"),
		Phone:              r.optional("phoneNumber"),
		Address:            r.optional("outletAddress"),
		RegistrationNumber: r.optional("registrationNumber"),
	}
	if r.err != nil {
		return nil, r.err
	}

	return o, nil
}
