package models

import (
	"fmt"
	"strings"

	"github.com/wolfeidau/gasdesk/internal/store"
)

// TenantKind distinguishes individual customers from organizations.
type TenantKind string

const (
	KindIndividual   TenantKind = "individual"
	KindOrganization TenantKind = "organization"
)

// ParseTenantKind accepts the kind names case-insensitively.
func ParseTenantKind(s string) (TenantKind, error) {
	switch TenantKind(strings.ToLower(strings.TrimSpace(s))) {
	case KindIndividual:
		return KindIndividual, nil
	case KindOrganization:
		return KindOrganization, nil
	default:
		return "", fmt.Errorf("unknown tenant kind %q", s)
	}
}

// Valid reports whether k is a known kind.
func (k TenantKind) Valid() bool {
	return k == KindIndividual || k == KindOrganization
}

// RegistrationCollection is the collection tenant records of this kind live in.
func (k TenantKind) RegistrationCollection() string {
	if k == KindOrganization {
		return CollectionOrganizations
	}
	return CollectionCustomers
}

// RequestCollection is the collection pickup requests of this kind live in.
func (k TenantKind) RequestCollection() string {
	if k == KindOrganization {
		return CollectionOrgRequests
	}
	return CollectionIndividualRequest
}

// KeyField is the document field holding the business key.
func (k TenantKind) KeyField() string {
	if k == KindOrganization {
		return "busiRegNo"
	}
	return "nic"
}

func (k TenantKind) nameField() string {
	if k == KindOrganization {
		return "orgName"
	}
	return "name"
}

func (k TenantKind) phoneField() string {
	if k == KindOrganization {
		return "orgPhoneNumber"
	}
	return "phoneNumber"
}

// Session identifies the acting tenant for a call. It is passed explicitly
// to every operation that acts on behalf of a tenant.
type Session struct {
	Kind TenantKind
	Key  string // nic or busiRegNo
}

// Tenant is an individual customer or organization account. Key is the
// business key and also the storage key.
type Tenant struct {
	Kind  TenantKind
	Key   string
	Name  string
	Phone string
	Email string

	// Credential is the encoded secret, never the plain secret.
	Credential string

	// Organization only
	Address         string
	ValidationImage string
}

// Document converts the tenant to its stored shape.
func (t *Tenant) Document() store.Document {
	doc := store.Document{
		t.Kind.KeyField():   t.Key,
		t.Kind.nameField():  t.Name,
		t.Kind.phoneField(): t.Phone,
		"email":             t.Email,
		"password":          t.Credential,
	}
	if t.Kind == KindOrganization {
		doc["address"] = t.Address
		doc["validationImage"] = t.ValidationImage
	}
	return doc
}

// DecodeTenant builds a Tenant from a stored document. The storage key wins
// over the key field in the body when both are present.
func DecodeTenant(kind TenantKind, key string, doc store.Document) (*Tenant, error) {
	r := &reader{doc: doc, collection: kind.RegistrationCollection(), key: key}

	t := &Tenant{
		Kind:       kind,
		Key:        key,
		Name:       r.required(kind.nameField()),
		Phone:      r.optional(kind.phoneField()),
		Email:      r.required("email"),
		Credential: r.required("password"),
	}
	if bodyKey := r.optional(kind.KeyField()); bodyKey != "" && bodyKey != key {
		return nil, malformed(r.collection, key, kind.KeyField(), "does not match storage key")
	}
	if kind == KindOrganization {
		t.Address = r.optional("address")
		t.ValidationImage = r.optional("validationImage")
	}
	if r.err != nil {
		return nil, r.err
	}

	return t, nil
}
