package server

import (
	"github.com/wolfeidau/gasdesk/internal/models"
	"github.com/wolfeidau/gasdesk/internal/token"
)

// IndividualRegistration is the body of POST /api/v1/individuals.
type IndividualRegistration struct {
	NIC         string `json:"nic"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

// OrganizationRegistration is the body of POST /api/v1/organizations.
type OrganizationRegistration struct {
	BusiRegNo       string `json:"busiRegNo"`
	OrgName         string `json:"orgName"`
	OrgPhoneNumber  string `json:"orgPhoneNumber"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	Address         string `json:"address"`
	ValidationImage string `json:"validationImage"`
}

// LoginRequest is the body of POST /api/v1/sessions.
type LoginRequest struct {
	Kind     string `json:"kind"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse carries a bearer token for the authenticated tenant.
type SessionResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"` // unix seconds
	Kind      string `json:"kind"`
	Key       string `json:"key"`
}

// Profile is a tenant account without its credential.
type Profile struct {
	Kind               string `json:"kind"`
	Key                string `json:"key"`
	Name               string `json:"name"`
	Phone              string `json:"phone"`
	Email              string `json:"email"`
	Address            string `json:"address,omitempty"`
	HasValidationImage bool   `json:"hasValidationImage,omitempty"`
}

func newProfile(t *models.Tenant) Profile {
	return Profile{
		Kind:               string(t.Kind),
		Key:                t.Key,
		Name:               t.Name,
		Phone:              t.Phone,
		Email:              t.Email,
		Address:            t.Address,
		HasValidationImage: t.ValidationImage != "",
	}
}

// Outlet is a pickup location.
type Outlet struct {
	Key                string `json:"key"`
	Name               string `json:"outletName"`
	ManagerName        string `json:"outletManagerName,omitempty"`
	Phone              string `json:"phoneNumber,omitempty"`
	Address            string `json:"outletAddress,omitempty"`
	RegistrationNumber string `json:"registrationNumber,omitempty"`
}

func newOutlet(o *models.Outlet) Outlet {
	return Outlet{
		Key:                o.Key,
		Name:               o.Name,
		ManagerName:        o.ManagerName,
		Phone:              o.Phone,
		Address:            o.Address,
		RegistrationNumber: o.RegistrationNumber,
	}
}

// OutletList is the response of GET /api/v1/outlets.
type OutletList struct {
	Outlets []Outlet `json:"outlets"`
}

// RequestForm is the body of POST /api/v1/requests. CylinderType may be
// given with or without the " kg" suffix.
type RequestForm struct {
	Outlet        string `json:"outlet"`
	CylinderType  string `json:"cylinderType"`
	CylinderCount int    `json:"cylinderCount"`
	RequestDate   string `json:"requestDate"`
}

// Request is a stored pickup request.
type Request struct {
	Kind          string `json:"kind"`
	Key           string `json:"key"`
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Outlet        string `json:"outlet"`
	CylinderType  string `json:"cylinderType"`
	CylinderCount int    `json:"cylinderCount"`
	RequestDate   string `json:"requestDate"`
	Status        string `json:"status"`
}

func newRequest(r *models.Request) *Request {
	return &Request{
		Kind:          string(r.Kind),
		Key:           r.Key,
		Name:          r.Name,
		Phone:         r.Phone,
		Email:         r.Email,
		Outlet:        r.Outlet,
		CylinderType:  r.CylinderType,
		CylinderCount: r.CylinderCount,
		RequestDate:   r.RequestDate,
		Status:        r.Status,
	}
}

// CurrentRequest is the response of GET /api/v1/requests/current. Request
// is nil when the tenant has not submitted one.
type CurrentRequest struct {
	Request *Request `json:"request"`
}

// Token is a pickup token as displayed to tenants.
type Token struct {
	Key           string `json:"key"`
	Token         string `json:"token"`
	CreatedAt     int64  `json:"createdAt"` // epoch milliseconds
	CylinderType  string `json:"cylinderType"`
	CylinderCount int    `json:"cylinderCount"`
	Status        string `json:"status"`
	OutletID      string `json:"outletId,omitempty"`
}

func newToken(t *models.Token) *Token {
	return &Token{
		Key:           t.Key,
		Token:         t.DisplayToken(),
		CreatedAt:     t.CreatedAt,
		CylinderType:  t.CylinderType,
		CylinderCount: t.CylinderCount,
		Status:        t.DisplayStatus(),
		OutletID:      t.OutletID,
	}
}

// ActiveToken is the response of GET /api/v1/tokens/active. Token is nil
// when no token has been issued; Quote is nil when the cylinder type has
// no listed price.
type ActiveToken struct {
	Token *Token   `json:"token"`
	Quote *float64 `json:"quote,omitempty"`
}

func newActiveToken(t *models.Token) ActiveToken {
	resp := ActiveToken{Token: newToken(t)}
	if quote, ok := token.Quote(t); ok {
		resp.Quote = &quote
	}
	return resp
}

// TokenList is the response of GET /api/v1/tokens/completed, newest first.
type TokenList struct {
	Tokens []*Token `json:"tokens"`
}

// ErrorBody is the envelope of every error response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes a failed call. Field names the form group that
// failed validation.
type ErrorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Field     string `json:"field,omitempty"`
	Retryable bool   `json:"retryable"`
}
