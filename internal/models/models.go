// Package models holds the typed records of the gas request system and
// their conversion to and from store documents. Store documents are loosely
// typed; everything crossing into the rest of the module goes through the
// Decode functions here.
package models

import (
	"errors"
	"fmt"

	"github.com/wolfeidau/gasdesk/internal/store"
)

// Collection names.
const (
	CollectionCustomers         = "CustomerRegistration"
	CollectionOrganizations     = "OrganizationRegistration"
	CollectionOutlets           = "gasOutletReg"
	CollectionIndividualRequest = "IndCustGasRequests"
	CollectionOrgRequests       = "OrgGasRequests"
	CollectionTokens            = "tokens"
)

// ErrMalformedRecord is returned when a stored document is missing a required
// field or holds a field of the wrong type.
var ErrMalformedRecord = errors.New("malformed record")

func malformed(collection, key, field, reason string) error {
	return fmt.Errorf("%w: %s/%s: %s %s", ErrMalformedRecord, collection, key, field, reason)
}

// reader pulls typed fields out of a document, remembering the first
// failure so decoders read as a flat list of fields.
type reader struct {
	doc        store.Document
	collection string
	key        string
	err        error
}

func (r *reader) required(field string) string {
	s := r.optional(field)
	if r.err == nil && s == "" {
		r.err = malformed(r.collection, r.key, field, "is required")
	}
	return s
}

func (r *reader) optional(field string) string {
	if r.err != nil {
		return ""
	}
	v, ok := r.doc[field]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		r.err = malformed(r.collection, r.key, field, "is not a string")
	}
	return s
}

func (r *reader) integer(field string, required bool) int64 {
	if r.err != nil {
		return 0
	}
	if v, ok := r.doc[field]; !ok || v == nil {
		if required {
			r.err = malformed(r.collection, r.key, field, "is required")
		}
		return 0
	}
	n, ok := r.doc.Int(field)
	if !ok {
		r.err = malformed(r.collection, r.key, field, "is not an integer")
	}
	return n
}
